// Package url resolves HTTP(S) request targets and redirect Location
// headers. It is a thin layer over net/url: no third-party URI library
// appears anywhere in the reference corpus, and net/url's RFC 3986
// resolution (ResolveReference) already implements the relative-redirect
// semantics spec.md requires, so reimplementing it by hand would just be a
// worse copy of the standard library.
package url

import (
	"net/url"
	"strings"
)

// Parse parses an absolute request target such as "http://host/path?query".
func Parse(raw string) (*url.URL, error) {
	return url.Parse(raw)
}

// Resolve returns the URL a redirect to location should target, filling in
// scheme and host from base when location is relative (RFC 7231 §7.1.2).
func Resolve(base *url.URL, location string) (*url.URL, error) {
	loc, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(loc), nil
}

// HostForTLS returns the bare host suitable as a TLS ServerName, stripping
// the bracket pair around an IPv6 literal if present.
func HostForTLS(host string) string {
	if strings.HasPrefix(host, "[") {
		if i := strings.IndexByte(host, ']'); i > 0 {
			return host[1:i]
		}
	}
	return host
}

// IsBracketedIPv6 reports whether host is an IPv6 literal in bracket form.
func IsBracketedIPv6(host string) bool {
	return strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]")
}

// PathAndQuery returns the wire form of the request target: "/" when the
// URL carries neither a path nor a query.
func PathAndQuery(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		return p + "?" + u.RawQuery
	}
	return p
}
