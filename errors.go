package httpc

import (
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind identifies the category of an *Error, mirroring the single sum-type
// error taxonomy this library is built around: callers that care about
// "why" switch on Kind rather than string-matching Error().
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingScheme
	KindMissingAuthority
	KindMissingStatus
	KindUnsupportedProtocol
	KindTooManyRedirects
	KindMissingLocation
	KindInvalidChunkSize
	KindInvalidLineEnding
	KindInvalidServerName
	KindIO
	KindURL
	KindHeaderValue
	KindParse
	KindTLS
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindMissingScheme:
		return "missing scheme"
	case KindMissingAuthority:
		return "missing authority"
	case KindMissingStatus:
		return "missing status"
	case KindUnsupportedProtocol:
		return "unsupported protocol"
	case KindTooManyRedirects:
		return "too many redirects"
	case KindMissingLocation:
		return "missing location"
	case KindInvalidChunkSize:
		return "invalid chunk size"
	case KindInvalidLineEnding:
		return "invalid line ending"
	case KindInvalidServerName:
		return "invalid server name"
	case KindIO:
		return "I/O error"
	case KindURL:
		return "URL error"
	case KindHeaderValue:
		return "header value error"
	case KindParse:
		return "parse error"
	case KindTLS:
		return "TLS error"
	case KindJSON:
		return "JSON error"
	default:
		return "unknown error"
	}
}

// Error is the single error type this package returns. It carries a Kind
// for programmatic dispatch and, where one exists, a wrapped cause
// reachable through errors.Unwrap/errors.Is/errors.As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("httpc: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("httpc: %s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As can see through
// an *Error to, say, io.EOF or os.ErrDeadlineExceeded.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause implements github.com/pkg/errors' causer interface, letting
// pkgerrors.Cause walk through an *Error into the pkgerrors-wrapped error
// wrapError attaches underneath it (and from there to whatever that error
// itself wraps).
func (e *Error) Cause() error {
	return e.Err
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// wrapError wraps err with pkgerrors.Wrap before attaching it, so the
// resulting *Error carries a pkg/errors stack trace alongside msg, the way
// the rest of the pack uses this dependency.
func wrapError(kind Kind, msg string, err error) *Error {
	if err != nil {
		err = pkgerrors.Wrap(err, msg)
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Cause returns the deepest cause in err's chain that pkgerrors.Cause can
// reach, or err itself if nothing deeper is wrapped (pkgerrors.Cause
// bottoms out to nil once it reaches an *Error with no wrapped cause; this
// falls back to the original err in that case rather than losing it).
func Cause(err error) error {
	if cause := pkgerrors.Cause(err); cause != nil {
		return cause
	}
	return err
}
