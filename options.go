package httpc

import (
	"crypto/tls"
	"crypto/x509"
	"sync"
	"time"

	"github.com/go-httpc/httpc/internal/httplog"
)

const (
	defaultConnectTimeout  = 10 * time.Second
	defaultConnectDelay    = 500 * time.Millisecond
	defaultFollowRedirects = 5
)

// Options configures a Send/SendContext call: dial/handshake timing, an
// optional overall deadline, redirect following, and TLS.
type Options struct {
	// ConnectTimeout bounds each individual Happy-Eyeballs connect
	// attempt.
	ConnectTimeout time.Duration

	// ConnectDelay is the stagger between launching successive
	// Happy-Eyeballs connect attempts.
	ConnectDelay time.Duration

	// Timeout bounds the whole exchange (connect, handshake, write,
	// read) for every hop. Zero means no deadline.
	Timeout time.Duration

	// FollowRedirects caps the number of redirect hops. Nil disables
	// redirect following entirely.
	FollowRedirects *int

	// TLSConfig, if non-nil, replaces the library's default TLS
	// configuration entirely.
	TLSConfig *tls.Config

	// Logger receives trace-level diagnostics from the request
	// pipeline (one line per hop's connect, one per redirect). The
	// zero value discards everything.
	Logger httplog.Logger
}

// DefaultOptions returns the library's defaults: a 10s connect timeout,
// a 500ms Happy-Eyeballs stagger, no overall deadline, up to 5 redirect
// hops, and a lazily-built system-cert-pool TLS config.
func DefaultOptions() Options {
	redirects := defaultFollowRedirects
	return Options{
		ConnectTimeout:  defaultConnectTimeout,
		ConnectDelay:    defaultConnectDelay,
		FollowRedirects: &redirects,
	}
}

var (
	defaultTLSConfigOnce sync.Once
	defaultTLSConfig     *tls.Config
)

// tlsConfigFor returns o.TLSConfig if set, otherwise the process-wide
// default built once from the system certificate pool.
func (o Options) tlsConfigFor() *tls.Config {
	if o.TLSConfig != nil {
		return o.TLSConfig
	}

	defaultTLSConfigOnce.Do(func() {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		defaultTLSConfig = &tls.Config{RootCAs: pool}
	})
	return defaultTLSConfig
}
