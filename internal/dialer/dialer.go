// Package dialer implements the dual-stack "Happy Eyeballs" connection
// strategy from spec.md §4.3: resolve a host, interleave IPv6/IPv4
// candidates, and race staggered parallel connect attempts, returning
// whichever succeeds first.
package dialer

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type candidate struct {
	ip       net.IP
	priority int
}

type dialResult struct {
	conn net.Conn
	err  error
}

// Dial resolves host (a DNS name, a bare IP literal, or a bracketed IPv6
// literal) and returns the first TCP connection to succeed.
func Dial(ctx context.Context, host string, port int, connectTimeout, connectDelay time.Duration) (net.Conn, error) {
	ips, err := resolveHost(ctx, host)
	if err != nil {
		return nil, err
	}

	if len(ips) == 1 {
		return dialOne(ctx, ips[0], port, connectTimeout)
	}

	candidates := interleave(ips)
	results := make(chan dialResult, len(candidates))

	var g errgroup.Group
	launch := func(ip net.IP) {
		g.Go(func() error {
			conn, err := dialOne(ctx, ip, port, connectTimeout)
			results <- dialResult{conn, err}
			return nil
		})
	}

	var firstErr error
	consumed := 0

	for _, c := range candidates {
		launch(c.ip)

		timer := time.NewTimer(connectDelay)
		select {
		case r := <-results:
			timer.Stop()
			consumed++
			if r.err == nil {
				drainInBackground(&g, results, len(candidates)-consumed)
				return r.conn, nil
			}
			if firstErr == nil {
				firstErr = r.err
			}
		case <-timer.C:
		}
	}

	for consumed < len(candidates) {
		r := <-results
		consumed++
		if r.err == nil {
			drainInBackground(&g, results, len(candidates)-consumed)
			return r.conn, nil
		}
		if firstErr == nil {
			firstErr = r.err
		}
	}

	return nil, firstErr
}

// interleave assigns IPv6 addresses even priorities (0, 2, 4, ...) and
// IPv4 addresses odd priorities (1, 3, 5, ...), preserving each family's
// original relative order, then sorts by priority: v6 is preferred by
// position, with no race rigging beyond that.
func interleave(ips []net.IP) []candidate {
	candidates := make([]candidate, len(ips))
	v6n, v4n := 0, 0
	for i, ip := range ips {
		if ip.To4() == nil {
			candidates[i] = candidate{ip: ip, priority: 2 * v6n}
			v6n++
		} else {
			candidates[i] = candidate{ip: ip, priority: 2*v4n + 1}
			v4n++
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})
	return candidates
}

func resolveHost(ctx context.Context, host string) ([]net.IP, error) {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		ip := net.ParseIP(host[1 : len(host)-1])
		if ip == nil {
			return nil, fmt.Errorf("dialer: invalid IPv6 literal %q", host)
		}
		return []net.IP{ip}, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP
	}
	return ips, nil
}

func dialOne(ctx context.Context, ip net.IP, port int, timeout time.Duration) (net.Conn, error) {
	d := net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))
	return d.DialContext(ctx, "tcp", addr)
}

// drainInBackground lets in-flight dials that lost the race finish without
// blocking the winner's caller. Connections that land after the race is
// decided are simply closed; nothing holds a reference to them, matching
// spec.md's "Happy-Eyeballs channel drainage" note.
func drainInBackground(g *errgroup.Group, results chan dialResult, remaining int) {
	go func() {
		for i := 0; i < remaining; i++ {
			r := <-results
			if r.conn != nil {
				_ = r.conn.Close()
			}
		}
		_ = g.Wait()
	}()
}
