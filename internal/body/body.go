// Package body implements the outgoing request body writers from
// spec.md §4.5: a small closed set of ways to produce a body, each
// reporting how it should be framed on the wire (no body, a known
// Content-Length, or chunked).
package body

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Kind is how a Writer's output should be framed on the wire.
type Kind int

const (
	KindEmpty Kind = iota
	KindKnownLength
	KindChunked
)

// Writer produces a request body. Kind must be callable before WriteTo
// and must return KindKnownLength's length without actually writing
// anything, since the caller needs it to set Content-Length before any
// bytes go out.
type Writer interface {
	Kind() (Kind, int64, error)
	WriteTo(w io.Writer) error
}

// Empty is a Writer with no body at all.
type Empty struct{}

func (Empty) Kind() (Kind, int64, error) { return KindEmpty, 0, nil }
func (Empty) WriteTo(io.Writer) error    { return nil }

// Bytes is a Writer over an in-memory buffer, framed with a known
// Content-Length.
type Bytes struct {
	Data []byte
}

func (b Bytes) Kind() (Kind, int64, error) { return KindKnownLength, int64(len(b.Data)), nil }

func (b Bytes) WriteTo(w io.Writer) error {
	_, err := w.Write(b.Data)
	return err
}

// Reader is a Writer over a seekable stream (e.g. an *os.File), framed
// with a known Content-Length obtained by seeking to the end and back.
type Reader struct {
	R io.ReadSeeker
}

func (b Reader) Kind() (Kind, int64, error) {
	n, err := b.R.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, err
	}
	return KindKnownLength, n, nil
}

func (b Reader) WriteTo(w io.Writer) error {
	if _, err := b.R.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := io.Copy(w, b.R)
	return err
}

// Gzip wraps another Writer, gzip-compressing its output. The
// compressed length isn't known ahead of encoding, so it is always
// framed as chunked.
type Gzip struct {
	Inner Writer
}

func (Gzip) Kind() (Kind, int64, error) { return KindChunked, 0, nil }

func (g Gzip) WriteTo(w io.Writer) error {
	gz := gzip.NewWriter(w)
	if err := g.Inner.WriteTo(gz); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}

// JSON encodes Value as its body, also always chunked since the
// encoded length isn't known up front.
type JSON struct {
	Value any
}

func (JSON) Kind() (Kind, int64, error) { return KindChunked, 0, nil }

func (j JSON) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := json.NewEncoder(bw).Encode(j.Value); err != nil {
		return err
	}
	return bw.Flush()
}
