// Package bodyreader builds the layered response-body decode pipeline
// from spec.md §4.6: chunked transfer-decoding, then content-encoding
// decompression, then charset transcoding to UTF-8, each layer applied
// only if the corresponding header calls for it.
package bodyreader

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/go-httpc/httpc/internal/chunked"
)

// ReadCloser is the layered body reader. Close releases any
// decompressors the pipeline opened; it does not close the underlying
// stream, which is the caller's responsibility.
type ReadCloser struct {
	r       io.Reader
	closers []io.Closer
}

func (rc *ReadCloser) Read(p []byte) (int, error) { return rc.r.Read(p) }

func (rc *ReadCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New builds a reader over r that applies, in order: chunked transfer
// decoding (if transferEncoding names "chunked"), content-encoding
// decompression (gzip/deflate, applied in header order), and charset
// transcoding to UTF-8 (if contentType carries a recognized charset
// parameter).
func New(r *bufio.Reader, transferEncoding, contentEncoding, contentType string, onTrailer func(key, value string)) (*ReadCloser, error) {
	var rc io.Reader = r
	var closers []io.Closer

	if hasToken(transferEncoding, "chunked") {
		rc = chunked.NewReader(r, onTrailer)
	}

	for _, enc := range splitTokens(contentEncoding) {
		switch enc {
		case "gzip", "x-gzip":
			gz, err := gzip.NewReader(rc)
			if err != nil {
				return nil, err
			}
			rc = gz
			closers = append(closers, gz)
		case "deflate":
			fr := flate.NewReader(rc)
			rc = fr
			closers = append(closers, fr)
		}
	}

	if charset := charsetFromContentType(contentType); charset != "" {
		if enc, err := htmlindex.Get(charset); err == nil {
			rc = transform.NewReader(rc, enc.NewDecoder())
		}
	}

	return &ReadCloser{r: rc, closers: closers}, nil
}

func hasToken(header, token string) bool {
	for _, t := range splitTokens(header) {
		if t == token {
			return true
		}
	}
	return false
}

func splitTokens(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(strings.TrimSpace(p)))
	}
	return out
}

func charsetFromContentType(contentType string) string {
	lower := strings.ToLower(contentType)
	idx := strings.Index(lower, "charset=")
	if idx < 0 {
		return ""
	}
	v := contentType[idx+len("charset="):]
	if semi := strings.IndexByte(v, ';'); semi >= 0 {
		v = v[:semi]
	}
	return strings.Trim(strings.TrimSpace(v), `"`)
}
