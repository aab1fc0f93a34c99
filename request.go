package httpc

import (
	"encoding/json"
	"io"
	"net/url"

	"github.com/go-httpc/httpc/internal/body"
	intlurl "github.com/go-httpc/httpc/internal/url"
)

// Request is an HTTP/1.x request to be sent. Exactly one of Body's
// Kind() values determines the wire framing: no body, Content-Length,
// or Transfer-Encoding: chunked.
type Request struct {
	Method string
	URL    *url.URL
	Proto  string
	Header *Header
	Body   body.Writer
}

// NewRequest builds a Request for method and rawURL with an empty body
// and no headers set.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := intlurl.Parse(rawURL)
	if err != nil {
		return nil, wrapError(KindURL, "parsing request URL", err)
	}
	return &Request{
		Method: method,
		URL:    u,
		Proto:  "HTTP/1.1",
		Header: NewHeader(),
		Body:   body.Empty{},
	}, nil
}

// Get builds a GET request for rawURL with an empty body.
func Get(rawURL string) (*Request, error) {
	return NewRequest("GET", rawURL)
}

// Post builds a POST request for rawURL with an empty body; set a body
// on the result with Empty/FromBytes/FromReader/JSON/JSONBuffered.
func Post(rawURL string) (*Request, error) {
	return NewRequest("POST", rawURL)
}

// Empty sets r's body to an empty body.
func (r *Request) Empty() *Request {
	r.Body = body.Empty{}
	return r
}

// FromBytes sets r's body to data, framed with a known Content-Length.
func (r *Request) FromBytes(data []byte) *Request {
	r.Body = body.Bytes{Data: data}
	return r
}

// FromReader sets r's body to a seekable stream, framed with a known
// Content-Length obtained by seeking to its end.
func (r *Request) FromReader(rs io.ReadSeeker) *Request {
	r.Body = body.Reader{R: rs}
	return r
}

// JSON sets r's Content-Type and body to the JSON encoding of v,
// streamed (chunked framing) rather than buffered up front.
func (r *Request) JSON(v any) *Request {
	r.Header.SetOrInsert("Content-Type", "application/json")
	r.Body = body.JSON{Value: v}
	return r
}

// JSONBuffered behaves like JSON but encodes v into memory first, so
// the body is framed with a known Content-Length instead of chunked.
func (r *Request) JSONBuffered(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return wrapError(KindJSON, "encoding JSON request body", err)
	}
	r.Header.SetOrInsert("Content-Type", "application/json")
	r.Body = body.Bytes{Data: data}
	return nil
}

// Gzip wraps r's current body with gzip compression and sets
// Content-Encoding; the result is always framed as chunked.
func (r *Request) Gzip() *Request {
	r.Header.SetOrInsert("Content-Encoding", "gzip")
	r.Body = body.Gzip{Inner: r.Body}
	return r
}
