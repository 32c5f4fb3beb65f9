// Package event defines the normalized input event produced by every
// platform adapter.
package event

import "time"

// KeyboardData is the payload of key events.
type KeyboardData struct {
	Key     Key    `json:"key"`
	RawCode uint32 `json:"raw_code"`
	// Char is the resolved character for KeyTyped, 0 otherwise.
	Char rune `json:"char,omitempty"`
}

// MouseData is the payload of button and motion events.
type MouseData struct {
	// Button is nil for pure motion.
	Button *Button `json:"button,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Clicks uint8   `json:"clicks"`
}

// WheelData is the payload of MouseWheel.
type WheelData struct {
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Direction ScrollDirection `json:"direction"`
	Delta     float64         `json:"delta"`
}

// Event is one normalized input event. Exactly one of Keyboard, Mouse and
// Wheel is set, chosen by Type; lifecycle markers carry none.
//
// Mask is the state mask snapshot taken when the event was built, after
// the event's own press or release was applied.
type Event struct {
	Type     Type          `json:"event_type"`
	Time     time.Time     `json:"time"`
	Mask     uint32        `json:"mask"`
	Keyboard *KeyboardData `json:"keyboard,omitempty"`
	Mouse    *MouseData    `json:"mouse,omitempty"`
	Wheel    *WheelData    `json:"wheel,omitempty"`
}

// New returns a payload-less event of type t.
func New(t Type, mask uint32) Event {
	return Event{Type: t, Time: time.Now(), Mask: mask}
}

func NewHookEnabled(mask uint32) Event  { return New(HookEnabled, mask) }
func NewHookDisabled(mask uint32) Event { return New(HookDisabled, mask) }

func NewKeyPressed(key Key, raw uint32, mask uint32) Event {
	return keyEvent(KeyPressed, key, raw, 0, mask)
}

func NewKeyReleased(key Key, raw uint32, mask uint32) Event {
	return keyEvent(KeyReleased, key, raw, 0, mask)
}

func NewKeyTyped(key Key, raw uint32, ch rune, mask uint32) Event {
	return keyEvent(KeyTyped, key, raw, ch, mask)
}

func NewMousePressed(b Button, x, y float64, mask uint32) Event {
	return buttonEvent(MousePressed, b, x, y, 1, mask)
}

func NewMouseReleased(b Button, x, y float64, mask uint32) Event {
	return buttonEvent(MouseReleased, b, x, y, 1, mask)
}

func NewMouseClicked(b Button, x, y float64, clicks uint8, mask uint32) Event {
	return buttonEvent(MouseClicked, b, x, y, clicks, mask)
}

func NewMouseMoved(x, y float64, mask uint32) Event {
	return motionEvent(MouseMoved, x, y, mask)
}

func NewMouseDragged(x, y float64, mask uint32) Event {
	return motionEvent(MouseDragged, x, y, mask)
}

func NewMouseWheel(x, y float64, dir ScrollDirection, delta float64, mask uint32) Event {
	e := New(MouseWheel, mask)
	e.Wheel = &WheelData{X: x, Y: y, Direction: dir, Delta: delta}
	return e
}

func keyEvent(t Type, key Key, raw uint32, ch rune, mask uint32) Event {
	e := New(t, mask)
	e.Keyboard = &KeyboardData{Key: key, RawCode: raw, Char: ch}
	return e
}

func buttonEvent(t Type, b Button, x, y float64, clicks uint8, mask uint32) Event {
	e := New(t, mask)
	e.Mouse = &MouseData{Button: &b, X: x, Y: y, Clicks: clicks}
	return e
}

func motionEvent(t Type, x, y float64, mask uint32) Event {
	e := New(t, mask)
	e.Mouse = &MouseData{X: x, Y: y}
	return e
}

// Clone returns a deep copy of e. Payload pointers are never shared with
// the original.
func (e Event) Clone() Event {
	c := e
	if e.Keyboard != nil {
		kb := *e.Keyboard
		c.Keyboard = &kb
	}
	if e.Mouse != nil {
		m := *e.Mouse
		if e.Mouse.Button != nil {
			b := *e.Mouse.Button
			m.Button = &b
		}
		c.Mouse = &m
	}
	if e.Wheel != nil {
		w := *e.Wheel
		c.Wheel = &w
	}
	return c
}

func (e Event) IsKeyboard() bool {
	return e.Type == KeyPressed || e.Type == KeyReleased || e.Type == KeyTyped
}

func (e Event) IsMouse() bool {
	switch e.Type {
	case MousePressed, MouseReleased, MouseClicked, MouseMoved, MouseDragged, MouseWheel:
		return true
	}
	return false
}

// Key returns the key of a keyboard event.
func (e Event) Key() (Key, bool) {
	if e.Keyboard == nil {
		return 0, false
	}
	return e.Keyboard.Key, true
}

// Button returns the button of a button event.
func (e Event) Button() (Button, bool) {
	if e.Mouse == nil || e.Mouse.Button == nil {
		return 0, false
	}
	return *e.Mouse.Button, true
}

// Position returns the pointer coordinates carried by mouse and wheel events.
func (e Event) Position() (x, y float64, ok bool) {
	switch {
	case e.Mouse != nil:
		return e.Mouse.X, e.Mouse.Y, true
	case e.Wheel != nil:
		return e.Wheel.X, e.Wheel.Y, true
	}
	return 0, 0, false
}
