package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mediadl/launcher/internal/daemon/backend"
)

type fakeProber struct {
	online atomic.Bool
	probes atomic.Int32
}

func (p *fakeProber) IsOnline(context.Context) bool {
	p.probes.Add(1)
	return p.online.Load()
}

type fakeController struct {
	mu           sync.Mutex
	launches     int
	terminates   int
	launchErr    error
	terminateErr error
	handle       *backend.Handle
	clock        *fakeClock
	keepHandle   bool // leave a live handle after Launch
}

func (c *fakeController) Launch(context.Context) (*backend.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.launches++
	if c.launchErr != nil {
		return nil, c.launchErr
	}
	h := &backend.Handle{PID: 1000 + c.launches}
	if c.clock != nil {
		h.StartedAt = c.clock.Now()
	}
	if c.keepHandle {
		c.handle = h
	}
	return h, nil
}

func (c *fakeController) Terminate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminates++
	c.handle = nil
	return c.terminateErr
}

func (c *fakeController) Handle() *backend.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

func (c *fakeController) counts() (launches, terminates int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.launches, c.terminates
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []waiter
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, waiter{at: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves time forward and fires every due waiter.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.at.After(c.now) {
			w.ch <- c.now
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending
}

func (c *fakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
