// Package virtual is an in-memory adapter. Raw signals are injected through
// its methods and flow through the same translation path as real devices,
// which makes it the backend of choice for tests and dry runs.
package virtual

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/state"
)

const queueSize = 1024

type signalKind uint8

const (
	sigKeyDown signalKind = iota
	sigKeyUp
	sigKeyTyped
	sigFlags
	sigButtonDown
	sigButtonUp
	sigMoveTo
	sigMoveBy
	sigScroll
)

type signal struct {
	kind   signalKind
	key    event.Key
	raw    uint32
	ch     rune
	flags  uint32
	button event.Button
	x, y   float64
	dir    event.ScrollDirection
}

type Option func(*Adapter)

// WithDisplays sets what Displays reports.
func WithDisplays(displays ...display.Info) Option {
	return func(a *Adapter) {
		a.displays = displays
	}
}

func WithSettings(s display.SystemSettings) Option {
	return func(a *Adapter) {
		a.settings = s
	}
}

// WithLoopback controls whether simulated input is also delivered to a
// running hook, the way the OS echoes injected events. On by default.
func WithLoopback(on bool) Option {
	return func(a *Adapter) {
		a.loopback = on
	}
}

// WithTranslator passes options to the adapter's translator.
func WithTranslator(opts ...translate.Option) Option {
	return func(a *Adapter) {
		a.trOpts = append(a.trOpts, opts...)
	}
}

// Adapter implements hook.Adapter, hook.Simulator and display.Provider.
type Adapter struct {
	mask     *state.Mask
	tr       *translate.Translator
	trOpts   []translate.Option
	loopback bool

	signals chan signal
	pending atomic.Int64

	mu        sync.Mutex
	stop      chan struct{}
	displays  []display.Info
	settings  display.SystemSettings
	simulated []event.Event
	passed    []event.Event
	consumed  []event.Event
}

func New(opts ...Option) *Adapter {
	a := &Adapter{
		mask:     state.New(),
		loopback: true,
		signals:  make(chan signal, queueSize),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.tr = translate.New(a.mask, a.trOpts...)
	return a
}

// Mask returns the adapter's own mask, which hooks built on it share.
func (a *Adapter) Mask() *state.Mask {
	return a.mask
}

func (a *Adapter) RunHook(running *atomic.Bool, h hook.EventHandler) error {
	return a.run(running, func(ev event.Event) {
		h.HandleEvent(ev)
	})
}

func (a *Adapter) RunGrabHook(running *atomic.Bool, h hook.GrabHandler) error {
	return a.run(running, func(ev event.Event) {
		if ev.Type.IsLifecycle() {
			h.HandleGrab(ev)
			return
		}
		out := h.HandleGrab(ev)

		a.mu.Lock()
		defer a.mu.Unlock()
		if out == nil {
			a.consumed = append(a.consumed, ev)
		} else {
			a.passed = append(a.passed, *out)
		}
	})
}

func (a *Adapter) run(running *atomic.Bool, deliver func(event.Event)) error {
	stop := make(chan struct{})
	a.mu.Lock()
	a.stop = stop
	a.mu.Unlock()

	a.tr.Reset()
	deliver(a.tr.HookEnabled())

	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

loop:
	for running.Load() {
		select {
		case sig := <-a.signals:
			for _, ev := range a.translate(sig) {
				deliver(ev)
			}
			a.pending.Add(-1)
		case <-stop:
			break loop
		case <-poll.C:
		}
	}

	deliver(a.tr.HookDisabled())
	return nil
}

func (a *Adapter) translate(sig signal) []event.Event {
	switch sig.kind {
	case sigKeyDown:
		return []event.Event{a.tr.KeyDown(sig.key, sig.raw)}
	case sigKeyUp:
		return []event.Event{a.tr.KeyUp(sig.key, sig.raw)}
	case sigKeyTyped:
		return []event.Event{a.tr.KeyTyped(sig.key, sig.raw, sig.ch)}
	case sigFlags:
		if ev, ok := a.tr.FlagsChanged(sig.flags, sig.key, sig.raw); ok {
			return []event.Event{ev}
		}
	case sigButtonDown:
		return []event.Event{a.tr.ButtonDown(sig.button)}
	case sigButtonUp:
		evs := []event.Event{a.tr.ButtonUp(sig.button)}
		if click, ok := a.tr.Click(sig.button); ok {
			evs = append(evs, click)
		}
		return evs
	case sigMoveTo:
		return []event.Event{a.tr.MoveTo(sig.x, sig.y)}
	case sigMoveBy:
		return []event.Event{a.tr.MoveBy(sig.x, sig.y)}
	case sigScroll:
		return []event.Event{a.tr.Scroll(sig.dir, sig.x)}
	}
	return nil
}

func (a *Adapter) StopHook() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	return nil
}

func (a *Adapter) inject(sig signal) {
	a.pending.Add(1)
	a.signals <- sig
}

// KeyDown injects a physical key press.
func (a *Adapter) KeyDown(k event.Key, raw uint32) {
	a.inject(signal{kind: sigKeyDown, key: k, raw: raw})
}

func (a *Adapter) KeyUp(k event.Key, raw uint32) {
	a.inject(signal{kind: sigKeyUp, key: k, raw: raw})
}

// Type injects a KeyTyped signal carrying ch.
func (a *Adapter) Type(k event.Key, raw uint32, ch rune) {
	a.inject(signal{kind: sigKeyTyped, key: k, raw: raw, ch: ch})
}

// Flags injects a modifier flag word, as reported by flag-based platforms.
func (a *Adapter) Flags(flags uint32, k event.Key, raw uint32) {
	a.inject(signal{kind: sigFlags, flags: flags, key: k, raw: raw})
}

func (a *Adapter) ButtonDown(b event.Button) {
	a.inject(signal{kind: sigButtonDown, button: b})
}

func (a *Adapter) ButtonUp(b event.Button) {
	a.inject(signal{kind: sigButtonUp, button: b})
}

// MoveTo injects an absolute pointer position.
func (a *Adapter) MoveTo(x, y float64) {
	a.inject(signal{kind: sigMoveTo, x: x, y: y})
}

// MoveBy injects a relative pointer motion.
func (a *Adapter) MoveBy(dx, dy float64) {
	a.inject(signal{kind: sigMoveBy, x: dx, y: dy})
}

func (a *Adapter) ScrollWheel(dir event.ScrollDirection, delta float64) {
	a.inject(signal{kind: sigScroll, dir: dir, x: delta})
}

// WaitIdle blocks until every injected signal has been delivered or the
// timeout expires. It reports whether the queue drained.
func (a *Adapter) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for a.pending.Load() > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// Simulate records ev and, with loopback on, replays it into the hook.
func (a *Adapter) Simulate(ev event.Event) error {
	return hook.SimulateEvent(a, ev)
}

func (a *Adapter) KeyPress(k event.Key) error {
	a.record(event.NewKeyPressed(k, k.RawCode(), a.mask.Get()))
	a.echo(signal{kind: sigKeyDown, key: k, raw: k.RawCode()})
	return nil
}

func (a *Adapter) KeyRelease(k event.Key) error {
	a.record(event.NewKeyReleased(k, k.RawCode(), a.mask.Get()))
	a.echo(signal{kind: sigKeyUp, key: k, raw: k.RawCode()})
	return nil
}

func (a *Adapter) MouseMove(x, y float64) error {
	a.record(event.NewMouseMoved(x, y, a.mask.Get()))
	a.echo(signal{kind: sigMoveTo, x: x, y: y})
	return nil
}

func (a *Adapter) MousePress(b event.Button) error {
	x, y := a.tr.Position()
	a.record(event.NewMousePressed(b, x, y, a.mask.Get()))
	a.echo(signal{kind: sigButtonDown, button: b})
	return nil
}

func (a *Adapter) MouseRelease(b event.Button) error {
	x, y := a.tr.Position()
	a.record(event.NewMouseReleased(b, x, y, a.mask.Get()))
	a.echo(signal{kind: sigButtonUp, button: b})
	return nil
}

func (a *Adapter) Scroll(dir event.ScrollDirection, delta float64) error {
	x, y := a.tr.Position()
	a.record(event.NewMouseWheel(x, y, dir, delta, a.mask.Get()))
	a.echo(signal{kind: sigScroll, dir: dir, x: delta})
	return nil
}

func (a *Adapter) record(ev event.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.simulated = append(a.simulated, ev)
}

func (a *Adapter) echo(sig signal) {
	if !a.loopback {
		return
	}
	a.pending.Add(1)
	select {
	case a.signals <- sig:
	default:
		a.pending.Add(-1)
	}
}

// Simulated returns the events passed to the simulator, in order.
func (a *Adapter) Simulated() []event.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]event.Event(nil), a.simulated...)
}

// Passed returns the events a grab handler let through.
func (a *Adapter) Passed() []event.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]event.Event(nil), a.passed...)
}

// Consumed returns the events a grab handler swallowed.
func (a *Adapter) Consumed() []event.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]event.Event(nil), a.consumed...)
}

func (a *Adapter) Displays() ([]display.Info, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.displays) == 0 {
		return nil, hook.NotSupported("virtual adapter has no displays configured")
	}
	return append([]display.Info(nil), a.displays...), nil
}

func (a *Adapter) SystemSettings() (display.SystemSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings, nil
}
