package httpc

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Header is an ordered, case-insensitive collection of HTTP header fields.
// Unlike net/http.Header, which is a map and therefore has no stable
// iteration order, Header preserves insertion order end to end: the wire
// codec in send.go writes fields in exactly the order the caller (or the
// pipeline's own normalisation step) added them.
type Header struct {
	fields []headerField
}

type headerField struct {
	key   string // canonical form
	value string
}

// NewHeader returns an empty Header.
func NewHeader() *Header {
	return &Header{}
}

// CanonicalHeaderKey returns the canonical format of an HTTP header field
// name ("content-type" -> "Content-Type"), matching net/textproto's rules.
func CanonicalHeaderKey(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, "-")
}

// Add appends a value, canonicalizing key first. Existing values for key
// are left untouched.
func (h *Header) Add(key, value string) {
	h.fields = append(h.fields, headerField{CanonicalHeaderKey(key), value})
}

// Set replaces all existing values for key with a single value, keeping
// the field in whatever position it already occupied, or appending it if
// key was not present.
func (h *Header) Set(key, value string) {
	k := CanonicalHeaderKey(key)
	for i, f := range h.fields {
		if f.key == k {
			h.fields[i].value = value
			h.removeAllAfter(i, k)
			return
		}
	}
	h.fields = append(h.fields, headerField{k, value})
}

// removeAllAfter deletes any further fields named k that occur after index i.
func (h *Header) removeAllAfter(i int, k string) {
	out := h.fields[:i+1]
	for _, f := range h.fields[i+1:] {
		if f.key != k {
			out = append(out, f)
		}
	}
	h.fields = out
}

// SetOrInsert sets key to value only if key is not already present.
func (h *Header) SetOrInsert(key, value string) {
	if h.Has(key) {
		return
	}
	h.Add(key, value)
}

// Get returns the first value for key, or "" if absent.
func (h *Header) Get(key string) string {
	k := CanonicalHeaderKey(key)
	for _, f := range h.fields {
		if f.key == k {
			return f.value
		}
	}
	return ""
}

// Has reports whether key has at least one value.
func (h *Header) Has(key string) bool {
	k := CanonicalHeaderKey(key)
	for _, f := range h.fields {
		if f.key == k {
			return true
		}
	}
	return false
}

// Values returns every value stored for key, in insertion order.
func (h *Header) Values(key string) []string {
	k := CanonicalHeaderKey(key)
	var vals []string
	for _, f := range h.fields {
		if f.key == k {
			vals = append(vals, f.value)
		}
	}
	return vals
}

// Del removes every value stored for key.
func (h *Header) Del(key string) {
	k := CanonicalHeaderKey(key)
	out := h.fields[:0]
	for _, f := range h.fields {
		if f.key != k {
			out = append(out, f)
		}
	}
	h.fields = out
}

// Clone returns a deep copy.
func (h *Header) Clone() *Header {
	if h == nil {
		return nil
	}
	c := &Header{fields: make([]headerField, len(h.fields))}
	copy(c.fields, h.fields)
	return c
}

// Len returns the number of stored fields (not distinct keys).
func (h *Header) Len() int {
	return len(h.fields)
}

// Each calls fn once per field, in insertion order.
func (h *Header) Each(fn func(key, value string)) {
	for _, f := range h.fields {
		fn(f.key, f.value)
	}
}

// WriteTo serializes every field as "Key: Value\r\n", in insertion order.
// It does not write the terminating blank line.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, f := range h.fields {
		m, err := fmt.Fprintf(w, "%s: %s\r\n", f.key, f.value)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
