// Package probe answers whether the backend is accepting connections.
package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/mediadl/launcher/internal/daemon/metrics"
)

// DefaultTimeout bounds a single connection attempt.
const DefaultTimeout = time.Second

// Prober checks backend liveness with a TCP connect. A backend counts as
// online only if the connection succeeds; every failure reads as offline.
// Safe for concurrent use.
type Prober struct {
	addr    string
	timeout time.Duration
}

// New creates a prober for host:port.
func New(host string, port int, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		timeout: timeout,
	}
}

// Addr returns the probed address.
func (p *Prober) Addr() string {
	return p.addr
}

// IsOnline reports whether host:port accepts a connection within the timeout.
func (p *Prober) IsOnline(ctx context.Context) bool {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		metrics.ProbeDuration.WithLabelValues("offline").Observe(time.Since(start).Seconds())
		return false
	}
	_ = conn.Close()
	metrics.ProbeDuration.WithLabelValues("online").Observe(time.Since(start).Seconds())
	return true
}
