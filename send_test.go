package httpc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawServer accepts a single connection, reads until the header
// terminator, hands the raw request to onRequest, and writes whatever
// bytes onRequest returns verbatim.
func rawServer(t *testing.T, onRequest func(request string) string) (addr string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		var req []byte
		for {
			line, err := r.ReadBytes('\n')
			req = append(req, line...)
			if err != nil {
				return
			}
			if len(req) >= 4 && string(req[len(req)-4:]) == "\r\n\r\n" {
				break
			}
		}

		resp := onRequest(string(req))
		_, _ = conn.Write([]byte(resp))
	}()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(portStr)
	require.NoError(t, err)
	return ln.Addr().String(), port
}

func TestSendContextParsesStatusLineAndHeaders(t *testing.T) {
	_, port := rawServer(t, func(string) string {
		return "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello"
	})

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)

	resp, err := SendContext(context.Background(), req, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	body, err := resp.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestSendContextDecodesChunkedBody(t *testing.T) {
	_, port := rawServer(t, func(string) string {
		return "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
	})

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)

	resp, err := SendContext(context.Background(), req, DefaultOptions())
	require.NoError(t, err)

	body, err := resp.String()
	require.NoError(t, err)
	assert.Equal(t, "Wikipedia", body)
}

func TestSendContextSendsNormalizedHeaders(t *testing.T) {
	var captured string
	_, port := rawServer(t, func(request string) string {
		captured = request
		return "HTTP/1.1 204 No Content\r\n\r\n"
	})

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/path", port))
	require.NoError(t, err)

	_, err = SendContext(context.Background(), req, DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, captured, "GET /path HTTP/1.1\r\n")
	assert.Contains(t, captured, "Connection: close\r\n")
	assert.Contains(t, captured, "User-Agent: httpc/1.0\r\n")
	assert.Contains(t, captured, "Host: 127.0.0.1\r\n")
}

func TestSendContextFollowsRedirect(t *testing.T) {
	_, finalPort := rawServer(t, func(string) string {
		return "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"
	})
	_, redirectPort := rawServer(t, func(string) string {
		return fmt.Sprintf("HTTP/1.1 302 Found\r\nLocation: http://127.0.0.1:%d/\r\n\r\n", finalPort)
	})

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/start", redirectPort))
	require.NoError(t, err)

	resp, err := SendContext(context.Background(), req, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := resp.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestSendContextUpdatesHostHeaderPerHop(t *testing.T) {
	var capturedFinal string
	_, finalPort := rawServer(t, func(request string) string {
		capturedFinal = request
		return "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"
	})
	_, redirectPort := rawServer(t, func(string) string {
		return fmt.Sprintf("HTTP/1.1 302 Found\r\nLocation: http://localhost:%d/\r\n\r\n", finalPort)
	})

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/start", redirectPort))
	require.NoError(t, err)

	resp, err := SendContext(context.Background(), req, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	_, err = resp.Bytes()
	require.NoError(t, err)

	assert.Contains(t, capturedFinal, "Host: localhost\r\n")
	assert.NotContains(t, capturedFinal, "Host: 127.0.0.1\r\n")
}

func TestHandleRedirectFailsWhenDeadlineAlreadyPassed(t *testing.T) {
	resp := &Response{StatusCode: 302, Header: NewHeader()}
	resp.Header.Set("Location", "http://example.com/")
	redirectsLeft := 5

	_, redirecting, err := handleRedirect(resp, &redirectsLeft, true, time.Now().Add(-time.Second))
	require.Error(t, err)
	assert.False(t, redirecting)
	assert.True(t, Is(err, KindTooManyRedirects))
	assert.Equal(t, 5, redirectsLeft, "the redirect budget must not be spent once the deadline check rejects the hop")
}

func TestHandleRedirectSucceedsWithinDeadline(t *testing.T) {
	resp := &Response{StatusCode: 302, Header: NewHeader()}
	resp.Header.Set("Location", "http://example.com/")
	redirectsLeft := 5

	location, redirecting, err := handleRedirect(resp, &redirectsLeft, true, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, redirecting)
	assert.Equal(t, "http://example.com/", location)
	assert.Equal(t, 4, redirectsLeft)
}

func TestSendContextTooManyRedirectsFails(t *testing.T) {
	_, srvPort := rawServer(t, func(string) string {
		return "HTTP/1.1 302 Found\r\nLocation: http://127.0.0.1:1/\r\n\r\n"
	})

	zero := 0
	opts := DefaultOptions()
	opts.FollowRedirects = &zero

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/", srvPort))
	require.NoError(t, err)

	_, err = SendContext(context.Background(), req, opts)
	require.Error(t, err)
	assert.True(t, Is(err, KindTooManyRedirects))
}

func TestSendContextMissingLocationFails(t *testing.T) {
	_, port := rawServer(t, func(string) string {
		return "HTTP/1.1 301 Moved Permanently\r\n\r\n"
	})

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)

	_, err = SendContext(context.Background(), req, DefaultOptions())
	require.Error(t, err)
	assert.True(t, Is(err, KindMissingLocation))
}

func TestSendContextTimesOutOnSlowServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(time.Second)
	}()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	req, err := NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Timeout = 20 * time.Millisecond

	_, err = SendContext(context.Background(), req, opts)
	require.Error(t, err)
}
