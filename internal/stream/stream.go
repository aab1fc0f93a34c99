// Package stream implements the polymorphic connection from spec.md
// §4.4: plain TCP or TLS-over-TCP, each optionally guarded by a single
// deadline watcher spanning connect, handshake, write and read.
package stream

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"time"

	"github.com/go-httpc/httpc/internal/deadline"
	"github.com/go-httpc/httpc/internal/dialer"
	intlurl "github.com/go-httpc/httpc/internal/url"
)

// Config carries the dial/handshake/deadline parameters a Stream needs.
// It is deliberately a standalone struct rather than the root package's
// Options, so this package never imports the root package.
type Config struct {
	ConnectTimeout time.Duration
	ConnectDelay   time.Duration
	Deadline       time.Time // zero value means no deadline
	TLSConfig      *tls.Config
}

// Stream is a connection that is either plain TCP or TLS-over-TCP,
// transparently, from the caller's point of view.
type Stream struct {
	raw     net.Conn
	rw      io.ReadWriter
	watcher *deadline.Watcher
}

// New dials host:port with the Happy-Eyeballs strategy and, for an
// https stream, performs the TLS handshake, all under the single
// deadline in cfg.Deadline if one is set. The watcher is armed on the
// raw socket before the handshake begins, so a slow handshake is
// covered by the same deadline as a slow read.
func New(ctx context.Context, https bool, host string, port int, cfg Config) (*Stream, error) {
	conn, err := dialer.Dial(ctx, host, port, cfg.ConnectTimeout, cfg.ConnectDelay)
	if err != nil {
		return nil, err
	}

	s := &Stream{raw: conn, rw: conn}

	if !cfg.Deadline.IsZero() {
		s.watcher = deadline.Watch(conn, cfg.Deadline)
	}

	if https {
		tlsConn := tls.Client(conn, tlsConfigFor(cfg.TLSConfig, host))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			if s.watcher != nil {
				s.watcher.Cancel()
			}
			_ = conn.Close()
			return nil, err
		}
		s.rw = tlsConn
	}

	return s, nil
}

func tlsConfigFor(base *tls.Config, host string) *tls.Config {
	var cfg *tls.Config
	if base != nil {
		cfg = base.Clone()
	} else {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = intlurl.HostForTLS(host)
	}
	return cfg
}

// Read satisfies io.Reader. While a deadline watcher is armed, a read
// that comes back empty right as the watcher fires is reported as a
// timeout rather than whatever generic error the transport produces.
func (s *Stream) Read(p []byte) (int, error) {
	if s.watcher != nil {
		return (&deadline.Reader{R: s.rw, W: s.watcher}).Read(p)
	}
	return s.rw.Read(p)
}

// Write satisfies io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

// Close cancels the watcher, if any, and closes the underlying socket.
func (s *Stream) Close() error {
	if s.watcher != nil {
		s.watcher.Cancel()
	}
	return s.raw.Close()
}
