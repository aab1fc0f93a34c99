package httpc

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBytes(t *testing.T) {
	resp := &Response{Body: io.NopCloser(strings.NewReader("hello body"))}
	data, err := resp.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello body", string(data))
}

func TestResponseString(t *testing.T) {
	resp := &Response{Body: io.NopCloser(strings.NewReader("text response"))}
	s, err := resp.String()
	require.NoError(t, err)
	assert.Equal(t, "text response", s)
}

func TestResponseJSON(t *testing.T) {
	resp := &Response{Body: io.NopCloser(strings.NewReader(`{"k":"v"}`))}
	var out map[string]string
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "v", out["k"])
}

func TestResponseJSONReturnsWrappedErrorOnBadPayload(t *testing.T) {
	resp := &Response{Body: io.NopCloser(strings.NewReader(`not json`))}
	var out map[string]string
	err := resp.JSON(&out)
	require.Error(t, err)
	assert.True(t, Is(err, KindJSON))
}
