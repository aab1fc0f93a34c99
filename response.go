package httpc

import (
	"encoding/json"
	"io"
)

// Response is a parsed HTTP/1.x response. Body is a streaming reader
// over the decoded body (chunked/compression/charset layers already
// applied); closing it releases the connection the response came in
// on.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Header     *Header
	Body       io.ReadCloser
}

// Bytes reads the entire response body into memory and closes it.
func (r *Response) Bytes() ([]byte, error) {
	data, readErr := io.ReadAll(r.Body)
	closeErr := r.Body.Close()
	if readErr != nil {
		return nil, wrapError(KindIO, "reading response body", readErr)
	}
	if closeErr != nil {
		return nil, wrapError(KindIO, "closing response body", closeErr)
	}
	return data, nil
}

// String reads the entire response body into memory as a string and
// closes it.
func (r *Response) String() (string, error) {
	data, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSON decodes the response body as JSON into v and closes the body
// regardless of whether decoding succeeds.
func (r *Response) JSON(v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return wrapError(KindJSON, "decoding JSON response", err)
	}
	return nil
}
