// Package httpc is a minimal, synchronous HTTP/1.x client. A caller
// builds a Request (method, URL, headers, body), sends it with Send or
// SendContext, and gets back a Response whose Body streams the decoded
// body. There is no connection pooling or keep-alive reuse: every call
// opens its own connection and closes it when the body is closed.
//
// Typical use:
//
//	req, err := httpc.Get("https://example.com/")
//	resp, err := req.Send()
//	body, err := resp.String()
package httpc

import "context"

// Send sends r using DefaultOptions. It is shorthand for
// Send(r) == SendContext(context.Background(), r, DefaultOptions()).
func (r *Request) Send() (*Response, error) {
	return Send(r)
}

// SendContext sends r under opts, following redirects per
// opts.FollowRedirects. ctx bounds dialing and the TLS handshake;
// opts.Timeout bounds the whole exchange.
func (r *Request) SendContext(ctx context.Context, opts Options) (*Response, error) {
	return SendContext(ctx, r, opts)
}
