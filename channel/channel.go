// Package channel delivers hook events through Go channels instead of
// callbacks.
//
// Every send from the adapter side is non-blocking. Bounded receivers drop
// events that do not fit and count them; the unbounded receiver queues
// everything in memory. Receivers are closed once the hook's run ends.
package channel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/logger"
)

// DefaultCapacity is used when a non-positive capacity is requested. A
// zero-capacity channel would drop every event no receiver is already
// waiting for, since the producer never blocks.
const DefaultCapacity = 256

var (
	// ErrDisconnected is returned once the hook has stopped and every queued
	// event has been received.
	ErrDisconnected = errors.New("channel: disconnected")
	ErrEmpty        = errors.New("channel: empty")
	ErrTimeout      = errors.New("channel: receive timed out")
)

// Filter decides the fate of a grabbed event: true passes it to the
// system, false consumes it.
type Filter func(ev event.Event) bool

// Receiver is the consumer end of a hook channel.
type Receiver struct {
	ch      <-chan event.Event
	dropped atomic.Uint64
}

// C exposes the underlying channel for use in select statements. It is
// closed when the producer side is torn down.
func (r *Receiver) C() <-chan event.Event {
	return r.ch
}

// Recv blocks until an event arrives, the hook stops or ctx is done.
func (r *Receiver) Recv(ctx context.Context) (event.Event, error) {
	select {
	case ev, ok := <-r.ch:
		if !ok {
			return event.Event{}, ErrDisconnected
		}
		return ev, nil
	case <-ctx.Done():
		return event.Event{}, ctx.Err()
	}
}

// RecvTimeout waits at most d for an event.
func (r *Receiver) RecvTimeout(d time.Duration) (event.Event, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case ev, ok := <-r.ch:
		if !ok {
			return event.Event{}, ErrDisconnected
		}
		return ev, nil
	case <-timer.C:
		return event.Event{}, ErrTimeout
	}
}

// TryRecv returns a queued event without waiting.
func (r *Receiver) TryRecv() (event.Event, error) {
	select {
	case ev, ok := <-r.ch:
		if !ok {
			return event.Event{}, ErrDisconnected
		}
		return ev, nil
	default:
		return event.Event{}, ErrEmpty
	}
}

// Dropped returns how many events were discarded because the queue was
// full.
func (r *Receiver) Dropped() uint64 {
	return r.dropped.Load()
}

// Handle controls the hook behind a receiver.
type Handle struct {
	hook    *hook.Hook
	abandon func()
	once    sync.Once
}

// Stop stops the hook and waits for its worker to exit. A second call
// returns hook.ErrNotRunning.
func (h *Handle) Stop() error {
	return h.hook.Stop()
}

func (h *Handle) IsRunning() bool {
	return h.hook.IsRunning()
}

// Done is closed when the hook's run has ended.
func (h *Handle) Done() <-chan struct{} {
	return h.hook.Done()
}

// Err returns the error the run ended with.
func (h *Handle) Err() error {
	return h.hook.Err()
}

// Hook returns the underlying hook.
func (h *Handle) Hook() *hook.Hook {
	return h.hook
}

// Close stops the hook if needed and discards anything still queued.
func (h *Handle) Close() {
	h.hook.Close()
	h.once.Do(func() {
		if h.abandon != nil {
			h.abandon()
		}
	})
}

// Listen runs a listen-mode hook whose events go to a bounded queue.
func Listen(a hook.Adapter, capacity int, opts ...hook.Option) (*Receiver, *Handle, error) {
	q := newBounded(capacity)
	return start(q, hook.New(a, opts...), func(h *hook.Hook) error {
		return h.RunAsync(hook.EventHandlerFunc(q.push))
	})
}

// ListenUnbounded runs a listen-mode hook that never drops events.
func ListenUnbounded(a hook.Adapter, opts ...hook.Option) (*Receiver, *Handle, error) {
	q := newUnbounded()
	return start(q, hook.New(a, opts...), func(h *hook.Hook) error {
		return h.RunAsync(hook.EventHandlerFunc(q.push))
	})
}

// ListenContext is Listen with the hook stopped when ctx is done.
func ListenContext(ctx context.Context, a hook.Adapter, capacity int, opts ...hook.Option) (*Receiver, *Handle, error) {
	rx, handle, err := Listen(a, capacity, opts...)
	if err != nil {
		return nil, nil, err
	}
	go stopOnDone(ctx, handle)
	return rx, handle, nil
}

// Grab runs a grab-mode hook. Every event is queued; filter independently
// decides whether the system sees it.
func Grab(a hook.Adapter, capacity int, filter Filter, opts ...hook.Option) (*Receiver, *Handle, error) {
	if filter == nil {
		filter = func(event.Event) bool { return true }
	}
	q := newBounded(capacity)
	return start(q, hook.New(a, opts...), func(h *hook.Hook) error {
		return h.GrabAsync(hook.GrabHandlerFunc(func(ev event.Event) *event.Event {
			q.push(ev.Clone())
			if filter(ev) {
				return &ev
			}
			return nil
		}))
	})
}

// GrabContext is Grab with the hook stopped when ctx is done.
func GrabContext(ctx context.Context, a hook.Adapter, capacity int, filter Filter, opts ...hook.Option) (*Receiver, *Handle, error) {
	rx, handle, err := Grab(a, capacity, filter, opts...)
	if err != nil {
		return nil, nil, err
	}
	go stopOnDone(ctx, handle)
	return rx, handle, nil
}

func stopOnDone(ctx context.Context, h *Handle) {
	select {
	case <-ctx.Done():
		if err := h.Stop(); err != nil && !errors.Is(err, hook.ErrNotRunning) {
			logger.Warnf("channel: stop on context cancel: %v", err)
		}
	case <-h.Done():
	}
}

type queue interface {
	receiver() *Receiver
	// shutdown is called once the hook's run has ended.
	shutdown()
	// discard drops everything still queued.
	discard()
}

func start(q queue, h *hook.Hook, run func(*hook.Hook) error) (*Receiver, *Handle, error) {
	if err := run(h); err != nil {
		q.shutdown()
		return nil, nil, err
	}
	go func() {
		<-h.Done()
		q.shutdown()
	}()
	return q.receiver(), &Handle{hook: h, abandon: q.discard}, nil
}

// bounded is a fixed-size FIFO with try-send.
type bounded struct {
	rx *Receiver
	ch chan event.Event
}

func newBounded(capacity int) *bounded {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ch := make(chan event.Event, capacity)
	return &bounded{rx: &Receiver{ch: ch}, ch: ch}
}

func (b *bounded) push(ev event.Event) {
	select {
	case b.ch <- ev:
	default:
		b.rx.dropped.Add(1)
	}
}

func (b *bounded) receiver() *Receiver { return b.rx }
func (b *bounded) shutdown()           { close(b.ch) }

func (b *bounded) discard() {
	for {
		select {
		case _, ok := <-b.ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// unbounded buffers in a slice and feeds the receiver from a pump goroutine.
type unbounded struct {
	rx  *Receiver
	out chan event.Event

	mu     sync.Mutex
	buf    []event.Event
	closed bool
	wake   chan struct{}
	quit   chan struct{}
}

func newUnbounded() *unbounded {
	out := make(chan event.Event)
	u := &unbounded{
		rx:   &Receiver{ch: out},
		out:  out,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
	go u.pump()
	return u
}

func (u *unbounded) push(ev event.Event) {
	u.mu.Lock()
	u.buf = append(u.buf, ev)
	u.mu.Unlock()
	u.notify()
}

func (u *unbounded) notify() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

func (u *unbounded) pump() {
	defer close(u.out)
	for {
		u.mu.Lock()
		if len(u.buf) == 0 {
			closed := u.closed
			u.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-u.wake:
			case <-u.quit:
				return
			}
			continue
		}
		ev := u.buf[0]
		u.buf[0] = event.Event{}
		u.buf = u.buf[1:]
		u.mu.Unlock()

		select {
		case u.out <- ev:
		case <-u.quit:
			return
		}
	}
}

func (u *unbounded) receiver() *Receiver { return u.rx }

func (u *unbounded) shutdown() {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()
	u.notify()
}

func (u *unbounded) discard() {
	close(u.quit)
	u.mu.Lock()
	u.buf = nil
	u.mu.Unlock()
}
