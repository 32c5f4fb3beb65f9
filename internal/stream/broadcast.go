// Package stream publishes hooked events to remote watchers over SSH and
// WebSocket, and provides the matching clients.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/bnema/inputhook/event"
)

// DefaultSubscriberBuffer is the per-subscriber queue length.
const DefaultSubscriberBuffer = 256

// Broadcaster fans events out to subscribers. A subscriber that falls
// behind loses events instead of stalling the hook thread.
type Broadcaster struct {
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription receives published events on C until it is cancelled or
// the broadcaster closes.
type Subscription struct {
	C       <-chan event.Event
	ch      chan event.Event
	dropped atomic.Uint64
	b       *Broadcaster
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broadcaster{buffer: buffer, subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber. On a closed broadcaster the
// returned channel is already closed.
func (b *Broadcaster) Subscribe() *Subscription {
	ch := make(chan event.Event, b.buffer)
	s := &Subscription{C: ch, ch: ch, b: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Publish delivers ev to every subscriber without blocking.
func (b *Broadcaster) Publish(ev event.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			s.dropped.Add(1)
		}
	}
}

// HandleEvent lets a Broadcaster serve directly as a hook handler.
func (b *Broadcaster) HandleEvent(ev event.Event) {
	b.Publish(ev)
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later Subscribe calls get closed
// channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
	}
}

// Cancel unregisters s and closes its channel. It is idempotent.
func (s *Subscription) Cancel() {
	b := s.b
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}

// Dropped counts events lost because C was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}
