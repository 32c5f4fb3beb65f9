// Package hook runs a platform adapter under a start/stop state machine and
// defines the handler contracts used by listen and grab modes.
package hook

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/state"
)

// DefaultStopTimeout bounds how long Stop waits for the adapter loop to exit.
const DefaultStopTimeout = 2 * time.Second

// State is the lifecycle state of a Hook.
type State int32

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Option configures a Hook.
type Option func(*Hook)

// WithMask sets the mask the hook resets on start for adapters that do not
// own one. Adapters with a Mask() method translate into their own mask, so
// for them the option is ignored and the adapter's mask is used.
func WithMask(m *state.Mask) Option {
	return func(h *Hook) {
		h.mask = m
	}
}

// WithStopTimeout sets how long Stop waits for the run to end.
func WithStopTimeout(d time.Duration) Option {
	return func(h *Hook) {
		if d > 0 {
			h.stopTimeout = d
		}
	}
}

// Hook owns one adapter and at most one run of it at a time.
type Hook struct {
	adapter     Adapter
	mask        *state.Mask
	stopTimeout time.Duration

	running atomic.Bool
	state   atomic.Int32

	// mu serializes transitions and guards done and err.
	mu   sync.Mutex
	done chan struct{}
	err  error
}

// New returns an idle hook for adapter. Adapters that expose their mask
// through a Mask() method share it with the hook.
func New(adapter Adapter, opts ...Option) *Hook {
	h := &Hook{
		adapter:     adapter,
		mask:        state.Default(),
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if mp, ok := adapter.(interface{ Mask() *state.Mask }); ok {
		if m := mp.Mask(); m != nil {
			if h.mask != m && h.mask != state.Default() {
				logger.Debugf("hook: %T owns its mask, ignoring WithMask", adapter)
			}
			h.mask = m
		}
	}

	closed := make(chan struct{})
	close(closed)
	h.done = closed
	return h
}

// Run starts the hook in listen mode and blocks until it stops.
func (h *Hook) Run(handler EventHandler) error {
	done, err := h.begin()
	if err != nil {
		return err
	}
	err = h.runListen(handler, nil)
	h.finish(done, err)
	return err
}

// Grab starts the hook in grab mode and blocks until it stops.
func (h *Hook) Grab(handler GrabHandler) error {
	done, err := h.begin()
	if err != nil {
		return err
	}
	err = h.runGrab(handler, nil)
	h.finish(done, err)
	return err
}

// RunAsync starts the hook in listen mode on a worker goroutine. It returns
// once the adapter has registered or failed to.
func (h *Hook) RunAsync(handler EventHandler) error {
	return h.startAsync(func(started chan struct{}) error {
		return h.runListen(handler, started)
	})
}

// GrabAsync starts the hook in grab mode on a worker goroutine.
func (h *Hook) GrabAsync(handler GrabHandler) error {
	return h.startAsync(func(started chan struct{}) error {
		return h.runGrab(handler, started)
	})
}

func (h *Hook) startAsync(run func(started chan struct{}) error) error {
	done, err := h.begin()
	if err != nil {
		return err
	}

	started := make(chan struct{})
	go func() {
		// Native hooks are bound to the thread that installed them.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		h.finish(done, run(started))
	}()

	select {
	case <-started:
		return nil
	case <-done:
		return h.Err()
	}
}

// Stop ends the current run and waits for the adapter loop to exit.
// It must not be called from inside a handler; use RequestStop there.
func (h *Hook) Stop() error {
	done, stopErr, err := h.requestStop()
	if err != nil {
		return err
	}

	timer := time.NewTimer(h.stopTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		return ThreadError(fmt.Sprintf("hook did not stop within %s", h.stopTimeout), stopErr)
	}

	if stopErr != nil {
		var he *Error
		if errors.As(stopErr, &he) {
			return stopErr
		}
		return StopFailed("", stopErr)
	}
	return nil
}

// RequestStop signals the run to end without waiting for it.
func (h *Hook) RequestStop() error {
	_, stopErr, err := h.requestStop()
	if err != nil {
		return err
	}
	if stopErr != nil {
		return StopFailed("", stopErr)
	}
	return nil
}

func (h *Hook) requestStop() (chan struct{}, error, error) {
	h.mu.Lock()
	if State(h.state.Load()) != Running {
		h.mu.Unlock()
		return nil, nil, ErrNotRunning
	}
	h.state.Store(int32(Stopping))
	h.running.Store(false)
	done := h.done
	h.mu.Unlock()

	return done, h.adapter.StopHook(), nil
}

// Close stops a running hook and discards any error.
func (h *Hook) Close() {
	if h.IsRunning() {
		if err := h.Stop(); err != nil {
			logger.Debugf("hook: stop on close: %v", err)
		}
	}
}

// IsRunning reports whether the hook is in the Running state.
func (h *Hook) IsRunning() bool {
	return h.State() == Running
}

func (h *Hook) State() State {
	return State(h.state.Load())
}

// Done is closed when the current or last run has ended.
func (h *Hook) Done() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Err returns the error the last run ended with.
func (h *Hook) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Wait blocks until the current run ends and returns its error.
func (h *Hook) Wait() error {
	<-h.Done()
	return h.Err()
}

// Mask returns the mask reset on every start.
func (h *Hook) Mask() *state.Mask {
	return h.mask
}

func (h *Hook) begin() (chan struct{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if State(h.state.Load()) != Idle {
		return nil, ErrAlreadyRunning
	}
	h.state.Store(int32(Running))
	h.mask.Reset()

	h.done = make(chan struct{})
	h.err = nil
	h.running.Store(true)
	return h.done, nil
}

func (h *Hook) finish(done chan struct{}, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.running.Store(false)
	h.err = err
	h.state.Store(int32(Idle))
	close(done)
}

func (h *Hook) runListen(handler EventHandler, started chan struct{}) (err error) {
	defer recoverWorker(&err)
	return h.adapter.RunHook(&h.running, &listenGuard{next: handler, signal: signal{ch: started}})
}

func (h *Hook) runGrab(handler GrabHandler, started chan struct{}) (err error) {
	defer recoverWorker(&err)
	return h.adapter.RunGrabHook(&h.running, &grabGuard{next: handler, signal: signal{ch: started}})
}

func recoverWorker(err *error) {
	if r := recover(); r != nil {
		*err = ThreadError(fmt.Sprintf("hook worker panicked: %v", r), nil)
	}
}

// signal closes ch on the first HookEnabled event.
type signal struct {
	ch   chan struct{}
	once sync.Once
}

func (s *signal) observe(ev event.Event) {
	if s.ch != nil && ev.Type == event.HookEnabled {
		s.once.Do(func() { close(s.ch) })
	}
}

type listenGuard struct {
	next EventHandler
	signal
}

func (g *listenGuard) HandleEvent(ev event.Event) {
	g.observe(ev)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("hook: event handler panicked on %s: %v", ev.Type, r)
		}
	}()
	g.next.HandleEvent(ev)
}

type grabGuard struct {
	next GrabHandler
	signal
}

func (g *grabGuard) HandleGrab(ev event.Event) (out *event.Event) {
	g.observe(ev)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("hook: grab handler panicked on %s, passing event through: %v", ev.Type, r)
			out = &ev
		}
	}()
	return g.next.HandleGrab(ev)
}
