// Package status holds the last observed backend liveness and fans changes
// out to observers (the tray indicator and streaming clients).
package status

import (
	"sync"
	"time"

	"github.com/mediadl/launcher/internal/daemon/metrics"
)

// Change describes a liveness transition.
type Change struct {
	Online bool
	At     time.Time
}

// Broadcaster is the single writer of the last-known online status.
// Observe is atomic against concurrent observers, so an indicator update
// happens exactly once per transition and in transition order.
type Broadcaster struct {
	// notifyMu serializes whole observations, callback included, so the
	// indicator always ends on the last-known status.
	notifyMu sync.Mutex

	mu          sync.Mutex
	online      bool
	observed    bool
	changedAt   time.Time
	subscribers map[string]chan Change
	onChange    func(online bool)
}

// NewBroadcaster creates a broadcaster. The initial state is offline.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan Change),
	}
}

// SetOnChange registers the indicator callback. It is invoked once per
// transition, in order, outside the state lock. The callback may call
// Snapshot but must not call Observe.
func (b *Broadcaster) SetOnChange(fn func(online bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Observe records a liveness observation and reports whether it changed the
// last-known status.
func (b *Broadcaster) Observe(online bool) bool {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	metrics.BackendOnline.Set(metrics.BoolGauge(online))

	b.mu.Lock()
	first := !b.observed
	b.observed = true
	if !first && b.online == online {
		b.mu.Unlock()
		return false
	}
	if first && !online {
		// Initial state is already offline.
		b.mu.Unlock()
		return false
	}
	b.online = online
	b.changedAt = time.Now()
	change := Change{Online: online, At: b.changedAt}
	for _, ch := range b.subscribers {
		select {
		case ch <- change:
		default:
			// Slow subscriber; it can poll Snapshot.
		}
	}
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(online)
	}
	return true
}

// Snapshot returns the last-known status and when it last changed.
func (b *Broadcaster) Snapshot() (online bool, since time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online, b.changedAt
}

// Subscribe registers a subscriber for liveness changes.
func (b *Broadcaster) Subscribe(id string) <-chan Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Change, 16)
	if old, ok := b.subscribers[id]; ok {
		close(old)
	}
	b.subscribers[id] = ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}
