package httpc

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsKind(t *testing.T) {
	err := newError(KindMissingLocation, "no Location header")
	assert.True(t, Is(err, KindMissingLocation))
	assert.False(t, Is(err, KindTooManyRedirects))
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := wrapError(KindIO, "reading response head", io.ErrUnexpectedEOF)
	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := wrapError(KindIO, "dial", io.EOF)
	assert.Contains(t, err.Error(), "I/O error")
	assert.Contains(t, err.Error(), "dial")
	assert.Contains(t, err.Error(), io.EOF.Error())
}

func TestIsReturnsFalseForForeignError(t *testing.T) {
	assert.False(t, Is(io.EOF, KindIO))
}
