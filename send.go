package httpc

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-httpc/httpc/internal/body"
	"github.com/go-httpc/httpc/internal/bodyreader"
	"github.com/go-httpc/httpc/internal/chunked"
	"github.com/go-httpc/httpc/internal/parsedrv"
	"github.com/go-httpc/httpc/internal/stream"
	intlurl "github.com/go-httpc/httpc/internal/url"
)

const (
	// MaxHeaders bounds how many response header lines a single
	// response head may carry.
	MaxHeaders = 96
	// MaxParseBufLen bounds the accumulator internal/parsedrv grows
	// while waiting for a complete response head.
	MaxParseBufLen = MaxHeaders * 1024

	defaultUserAgent = "httpc/1.0"
)

// Send sends req using DefaultOptions, following redirects up to the
// default depth.
func Send(req *Request) (*Response, error) {
	return SendContext(context.Background(), req, DefaultOptions())
}

// SendContext sends req under opts: it normalises headers once, then
// resolves, connects, writes and reads one hop at a time, following
// redirects (301, 302, 303, 307, 308) up to opts.FollowRedirects hops.
func SendContext(ctx context.Context, req *Request, opts Options) (*Response, error) {
	header := req.Header.Clone()
	header.Set("Connection", "close")
	if header.Get("User-Agent") == "" {
		header.SetOrInsert("User-Agent", defaultUserAgent)
	}
	header.Set("Accept-Encoding", "deflate, gzip")

	kind, length, err := req.Body.Kind()
	if err != nil {
		return nil, wrapError(KindIO, "determining request body kind", err)
	}
	chunkedBody := false
	switch kind {
	case body.KindKnownLength:
		header.SetOrInsert("Content-Length", strconv.FormatInt(length, 10))
	case body.KindChunked:
		header.SetOrInsert("Transfer-Encoding", "chunked")
		chunkedBody = true
	}

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	redirectsLeft := 0
	following := opts.FollowRedirects != nil
	if following {
		redirectsLeft = *opts.FollowRedirects
	}

	proto := req.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}

	target := req.URL

	for {
		https, host, port, err := resolveTarget(target)
		if err != nil {
			return nil, err
		}
		header.Set("Host", host)

		cfg := stream.Config{
			ConnectTimeout: opts.ConnectTimeout,
			ConnectDelay:   opts.ConnectDelay,
			TLSConfig:      opts.tlsConfigFor(),
			Deadline:       deadline,
		}

		opts.Logger.Debugf("connecting to %s:%d (https=%v)", host, port, https)
		st, err := stream.New(ctx, https, host, port, cfg)
		if err != nil {
			return nil, wrapError(KindIO, fmt.Sprintf("connecting to %s:%d", host, port), err)
		}

		if err := writeRequest(st, req.Method, target, proto, header, req.Body, chunkedBody); err != nil {
			_ = st.Close()
			return nil, err
		}

		resp, err := readResponse(st)
		if err != nil {
			_ = st.Close()
			return nil, err
		}

		location, redirecting, err := handleRedirect(resp, &redirectsLeft, following, deadline)
		if err != nil {
			_ = resp.Body.Close()
			return nil, err
		}
		if !redirecting {
			return resp, nil
		}

		_ = resp.Body.Close()

		next, err := intlurl.Resolve(target, location)
		if err != nil {
			return nil, wrapError(KindURL, "resolving redirect location", err)
		}
		target = next
		opts.Logger.Infof("redirecting to %s", target.String())
	}
}

func resolveTarget(target *url.URL) (https bool, host string, port int, err error) {
	scheme := target.Scheme
	if scheme == "" {
		return false, "", 0, newError(KindMissingScheme, "request URL has no scheme")
	}
	host = target.Hostname()
	if host == "" {
		return false, "", 0, newError(KindMissingAuthority, "request URL has no host")
	}

	switch scheme {
	case "http":
		https, port = false, 80
	case "https":
		https, port = true, 443
	default:
		return false, "", 0, newError(KindUnsupportedProtocol, fmt.Sprintf("unsupported scheme %q", scheme))
	}

	if p := target.Port(); p != "" {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return false, "", 0, wrapError(KindURL, "parsing port", convErr)
		}
		port = n
	}

	return https, host, port, nil
}

func writeRequest(w io.Writer, method string, target *url.URL, proto string, header *Header, bw body.Writer, chunkedBody bool) error {
	out := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(out, "%s %s %s\r\n", method, intlurl.PathAndQuery(target), proto); err != nil {
		return wrapError(KindIO, "writing request line", err)
	}

	if _, err := header.WriteTo(out); err != nil {
		return wrapError(KindIO, "writing request headers", err)
	}
	if _, err := out.WriteString("\r\n"); err != nil {
		return wrapError(KindIO, "writing header terminator", err)
	}

	if chunkedBody {
		cw := chunked.NewWriter(out)
		if err := bw.WriteTo(cw); err != nil {
			return wrapError(KindIO, "writing chunked request body", err)
		}
		if err := cw.Close(); err != nil {
			return wrapError(KindIO, "closing chunked request body", err)
		}
	} else if err := bw.WriteTo(out); err != nil {
		return wrapError(KindIO, "writing request body", err)
	}

	if err := out.Flush(); err != nil {
		return wrapError(KindIO, "flushing request", err)
	}
	return nil
}

// responseHead is the result of parsing the status line and headers;
// internal/parsedrv drives parseResponseHead against the buffered
// stream until a complete head is available.
type responseHead struct {
	proto      string
	statusCode int
	status     string
	header     *Header
}

func parseResponseHead(buf []byte) (int, responseHead, parsedrv.Status, error) {
	idx := bytes.Index(buf, []byte("\r\n\r\n"))
	if idx < 0 {
		return 0, responseHead{}, parsedrv.Partial, nil
	}
	consumed := idx + 4

	lines := bytes.Split(buf[:idx], []byte("\r\n"))
	proto, code, reason, err := parseStatusLine(string(lines[0]))
	if err != nil {
		return 0, responseHead{}, parsedrv.Complete, err
	}

	header := NewHeader()
	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		if header.Len() >= MaxHeaders {
			return 0, responseHead{}, parsedrv.Complete, newError(KindParse, "too many response headers")
		}
		i := bytes.IndexByte(line, ':')
		if i <= 0 {
			return 0, responseHead{}, parsedrv.Complete, newError(KindParse, fmt.Sprintf("malformed header line: %q", line))
		}
		key := CanonicalHeaderKey(string(bytes.TrimSpace(line[:i])))
		val := string(bytes.TrimSpace(line[i+1:]))
		header.Add(key, val)
	}

	return consumed, responseHead{proto: proto, statusCode: code, status: reason, header: header}, parsedrv.Complete, nil
}

func parseStatusLine(line string) (proto string, code int, reason string, err error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return "", 0, "", newError(KindMissingStatus, fmt.Sprintf("malformed status line: %q", line))
	}
	proto = parts[0]
	if !strings.HasPrefix(proto, "HTTP/") {
		return "", 0, "", newError(KindUnsupportedProtocol, fmt.Sprintf("invalid response protocol: %q", proto))
	}
	code, convErr := strconv.Atoi(parts[1])
	if convErr != nil {
		return "", 0, "", newError(KindMissingStatus, fmt.Sprintf("invalid status code: %q", parts[1]))
	}
	if len(parts) == 3 {
		reason = parts[2]
	}
	return proto, code, reason, nil
}

func readResponse(st *stream.Stream) (*Response, error) {
	br := bufio.NewReader(st)

	head, err := parsedrv.Parse(br, MaxParseBufLen, parseResponseHead)
	if err != nil {
		return nil, wrapError(KindParse, "reading response head", err)
	}

	onTrailer := func(key, value string) { head.header.Add(key, value) }

	rc, err := bodyreader.New(br, head.header.Get("Transfer-Encoding"), head.header.Get("Content-Encoding"), head.header.Get("Content-Type"), onTrailer)
	if err != nil {
		return nil, wrapError(KindIO, "building response body reader", err)
	}

	return &Response{
		StatusCode: head.statusCode,
		Status:     head.status,
		Proto:      head.proto,
		Header:     head.header,
		Body:       &responseBody{rc: rc, stream: st},
	}, nil
}

// responseBody ties the decoded body reader to the connection it came
// in on, so that closing the body (directly, or via Response.Bytes/
// String/JSON) also releases the socket — there is no connection
// pooling to hand it back to.
type responseBody struct {
	rc     *bodyreader.ReadCloser
	stream *stream.Stream
}

func (b *responseBody) Read(p []byte) (int, error) { return b.rc.Read(p) }

func (b *responseBody) Close() error {
	err := b.rc.Close()
	if streamErr := b.stream.Close(); err == nil {
		err = streamErr
	}
	return err
}

// handleRedirect decides whether resp is a redirect to follow. deadline is
// the overall exchange deadline computed once at the start of SendContext
// (zero if unset): if it has already passed by the time a redirect would be
// followed, that counts as exhausting the redirect budget rather than
// opening another hop that can only time out.
func handleRedirect(resp *Response, redirectsLeft *int, following bool, deadline time.Time) (location string, redirecting bool, err error) {
	if !following {
		return "", false, nil
	}
	switch resp.StatusCode {
	case 301, 302, 303, 307, 308:
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return "", false, newError(KindTooManyRedirects, "overall deadline exceeded before next redirect hop")
		}
		if *redirectsLeft <= 0 {
			return "", false, newError(KindTooManyRedirects, "exceeded redirect limit")
		}
		*redirectsLeft--
		location = resp.Header.Get("Location")
		if location == "" {
			return "", false, newError(KindMissingLocation, "redirect response missing Location header")
		}
		return location, true, nil
	default:
		return "", false, nil
	}
}
