package parsedrv

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineParser completes once it sees a '\n', returning the line (sans
// newline) and the number of bytes consumed.
func lineParser(buf []byte) (int, string, Status, error) {
	i := bytes.IndexByte(buf, '\n')
	if i < 0 {
		return 0, "", Partial, nil
	}
	return i + 1, string(buf[:i]), Complete, nil
}

func TestParseFastPath(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("hello\nworld"))
	val, err := Parse(r, 0, lineParser)
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	rest, _ := io.ReadAll(r)
	assert.Equal(t, "world", string(rest))
}

// slowReader trickles bytes one at a time so the fast path never sees a
// complete line on its first fill, forcing the cold accumulator path.
type slowReader struct {
	data []byte
	pos  int
}

func (s *slowReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:s.pos+1])
	s.pos += n
	return n, nil
}

func TestParseSlowPath(t *testing.T) {
	r := bufio.NewReaderSize(&slowReader{data: []byte("hello\nworld")}, 1)
	val, err := Parse(r, 0, lineParser)
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}

func TestParseUnexpectedEOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("no newline here"))
	_, err := Parse(r, 0, lineParser)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestParseBufferLimit(t *testing.T) {
	r := bufio.NewReaderSize(&slowReader{data: []byte("aaaaaaaaaa\n")}, 1)
	_, err := Parse(r, 4, lineParser)
	require.ErrorIs(t, err, ErrBufferLimit)
}

func TestParseConsumesExactlyConsumedBytes(t *testing.T) {
	r := bufio.NewReaderSize(&slowReader{data: []byte("ab\ncd")}, 1)
	val, err := Parse(r, 0, lineParser)
	require.NoError(t, err)
	assert.Equal(t, "ab", val)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "cd", string(rest))
}
