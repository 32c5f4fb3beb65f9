// Package translate turns raw adapter signals into events while keeping the
// state mask in step. Every platform adapter funnels through a Translator so
// that drag detection and modifier tracking behave the same everywhere.
package translate

import (
	"math"
	"sync"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/state"
)

const (
	// DefaultDoubleClick is used when the platform does not report one.
	DefaultDoubleClick = 500 * time.Millisecond

	// clickSlop is how far the pointer may travel between two clicks that
	// still count as one multi-click.
	clickSlop = 4.0
)

type Option func(*Translator)

// WithClickSynthesis turns MouseClicked generation on or off.
func WithClickSynthesis(on bool) Option {
	return func(t *Translator) {
		t.clicks = on
	}
}

// WithDoubleClick sets the multi-click interval.
func WithDoubleClick(d time.Duration) Option {
	return func(t *Translator) {
		if d > 0 {
			t.doubleClick = d
		}
	}
}

// WithClock replaces time.Now for click timing.
func WithClock(now func() time.Time) Option {
	return func(t *Translator) {
		t.now = now
	}
}

type click struct {
	button event.Button
	x, y   float64
	at     time.Time
	count  uint8
}

// Translator converts raw signals into events. It is safe for concurrent
// use, although adapters normally call it from a single thread.
type Translator struct {
	mask        *state.Mask
	clicks      bool
	doubleClick time.Duration
	now         func() time.Time

	mu    sync.Mutex
	x, y  float64
	flags uint32

	// pressed maps each held button to whether it was dragged since its
	// press.
	pressed map[event.Button]bool
	last    click
	// lock keys currently down; autorepeat must not toggle them again
	locks map[event.Key]bool
}

func New(mask *state.Mask, opts ...Option) *Translator {
	t := &Translator{
		mask:        mask,
		clicks:      true,
		doubleClick: DefaultDoubleClick,
		now:         time.Now,
		pressed:     make(map[event.Button]bool),
		locks:       make(map[event.Key]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mask returns the mask the translator updates.
func (t *Translator) Mask() *state.Mask {
	return t.mask
}

func (t *Translator) HookEnabled() event.Event {
	return event.NewHookEnabled(t.mask.Get())
}

func (t *Translator) HookDisabled() event.Event {
	return event.NewHookDisabled(t.mask.Get())
}

// KeyDown applies a key press to the mask and returns KeyPressed.
// Modifier keys set their bit; lock keys toggle theirs once per physical
// press, so autorepeat of a held lock key leaves the bit alone.
func (t *Translator) KeyDown(key event.Key, raw uint32) event.Event {
	if bit := modifierBit(key); bit != 0 {
		t.mask.Set(bit)
	} else if bit := lockBit(key); bit != 0 {
		t.mu.Lock()
		repeat := t.locks[key]
		t.locks[key] = true
		t.mu.Unlock()
		if !repeat {
			t.mask.Toggle(bit)
		}
	}
	return event.NewKeyPressed(key, raw, t.mask.Get())
}

// KeyUp clears a modifier bit and returns KeyReleased.
func (t *Translator) KeyUp(key event.Key, raw uint32) event.Event {
	if bit := modifierBit(key); bit != 0 {
		t.mask.Unset(bit)
	} else if lockBit(key) != 0 {
		t.mu.Lock()
		delete(t.locks, key)
		t.mu.Unlock()
	}
	return event.NewKeyReleased(key, raw, t.mask.Get())
}

// KeyTyped returns a KeyTyped event carrying the resolved character.
func (t *Translator) KeyTyped(key event.Key, raw uint32, ch rune) event.Event {
	return event.NewKeyTyped(key, raw, ch, t.mask.Get())
}

// FlagsChanged handles platforms that report modifier changes as a new flag
// word rather than as key transitions. flags uses the state modifier bits.
//
// The first of Shift, Ctrl, Alt and Meta whose bit differs from the last
// seen flags decides whether a press or a release is reported. All four bits
// are then synced into the mask. It returns false when none changed.
func (t *Translator) FlagsChanged(flags uint32, key event.Key, raw uint32) (event.Event, bool) {
	const tracked = state.Shift | state.Ctrl | state.Alt | state.Meta

	t.mu.Lock()
	prev := t.flags
	t.flags = flags & tracked
	t.mu.Unlock()

	changed := (prev ^ flags) & tracked
	if changed == 0 {
		return event.Event{}, false
	}

	t.mask.Unset(tracked &^ flags)
	t.mask.Set(flags & tracked)

	for _, bit := range []uint32{state.Shift, state.Ctrl, state.Alt, state.Meta} {
		if changed&bit == 0 {
			continue
		}
		if flags&bit != 0 {
			return event.NewKeyPressed(key, raw, t.mask.Get()), true
		}
		return event.NewKeyReleased(key, raw, t.mask.Get()), true
	}
	return event.Event{}, false
}

// ButtonDown sets the button bit and returns MousePressed at the tracked
// position. The bit is set before the event is built, so its mask shows the
// button held.
func (t *Translator) ButtonDown(b event.Button) event.Event {
	t.mask.Set(state.ButtonMask(b.Number()))

	t.mu.Lock()
	t.pressed[b] = false
	x, y := t.x, t.y
	t.mu.Unlock()

	return event.NewMousePressed(b, x, y, t.mask.Get())
}

// ButtonUp clears the button bit and returns MouseReleased.
func (t *Translator) ButtonUp(b event.Button) event.Event {
	t.mask.Unset(state.ButtonMask(b.Number()))

	t.mu.Lock()
	x, y := t.x, t.y
	t.mu.Unlock()

	return event.NewMouseReleased(b, x, y, t.mask.Get())
}

// Click returns the MouseClicked event that follows a release of b, if any.
// A release of a button dragged since its press, or without a matching
// press, produces nothing.
func (t *Translator) Click(b event.Button) (event.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	dragged, wasPressed := t.pressed[b]
	delete(t.pressed, b)
	if !t.clicks || !wasPressed || dragged {
		return event.Event{}, false
	}

	now := t.now()
	count := uint8(1)
	if t.last.count > 0 && t.last.button == b &&
		now.Sub(t.last.at) <= t.doubleClick &&
		math.Abs(t.x-t.last.x) <= clickSlop && math.Abs(t.y-t.last.y) <= clickSlop &&
		t.last.count < math.MaxUint8 {
		count = t.last.count + 1
	}
	t.last = click{button: b, x: t.x, y: t.y, at: now, count: count}

	return event.NewMouseClicked(b, t.x, t.y, count, t.mask.Get()), true
}

// MoveTo records an absolute pointer position. It returns MouseDragged when
// any button is held at this moment and MouseMoved otherwise.
func (t *Translator) MoveTo(x, y float64) event.Event {
	held := t.mask.IsButtonHeld()

	t.mu.Lock()
	t.x, t.y = x, y
	if held {
		for b := range t.pressed {
			t.pressed[b] = true
		}
	}
	t.mu.Unlock()

	if held {
		return event.NewMouseDragged(x, y, t.mask.Get())
	}
	return event.NewMouseMoved(x, y, t.mask.Get())
}

// MoveBy applies a relative motion to the tracked position.
func (t *Translator) MoveBy(dx, dy float64) event.Event {
	t.mu.Lock()
	x, y := t.x+dx, t.y+dy
	t.mu.Unlock()
	return t.MoveTo(x, y)
}

// Scroll returns a MouseWheel event at the tracked position. Delta is
// reported as a magnitude.
func (t *Translator) Scroll(dir event.ScrollDirection, delta float64) event.Event {
	t.mu.Lock()
	x, y := t.x, t.y
	t.mu.Unlock()
	return event.NewMouseWheel(x, y, dir, math.Abs(delta), t.mask.Get())
}

// ScrollAt updates the tracked position and scrolls there.
func (t *Translator) ScrollAt(x, y float64, dir event.ScrollDirection, delta float64) event.Event {
	t.SetPosition(x, y)
	return t.Scroll(dir, delta)
}

// SetPosition moves the tracked pointer without producing an event. Adapters
// whose button callbacks carry coordinates call it first.
func (t *Translator) SetPosition(x, y float64) {
	t.mu.Lock()
	t.x, t.y = x, y
	t.mu.Unlock()
}

func (t *Translator) Position() (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.x, t.y
}

// Reset forgets flag, press and click history. The mask is left to the hook.
func (t *Translator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flags = 0
	t.last = click{}
	clear(t.pressed)
	clear(t.locks)
}

func modifierBit(k event.Key) uint32 {
	switch k {
	case event.ShiftLeft, event.ShiftRight:
		return state.Shift
	case event.ControlLeft, event.ControlRight:
		return state.Ctrl
	case event.AltLeft, event.AltRight:
		return state.Alt
	case event.MetaLeft, event.MetaRight:
		return state.Meta
	}
	return 0
}

func lockBit(k event.Key) uint32 {
	switch k {
	case event.CapsLock:
		return state.CapsLock
	case event.NumLock:
		return state.NumLock
	case event.ScrollLock:
		return state.ScrollLock
	}
	return 0
}
