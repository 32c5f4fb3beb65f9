package translate

import (
	"testing"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *fakeClock                   { return &fakeClock{t: time.Unix(1700000000, 0)} }
func newTranslator(c *fakeClock) *Translator { return New(state.New(), WithClock(c.now)) }

func TestDragDetection(t *testing.T) {
	tr := newTranslator(newClock())

	ev := tr.MoveTo(10, 10)
	assert.Equal(t, event.MouseMoved, ev.Type)

	ev = tr.ButtonDown(event.Left)
	assert.Equal(t, event.MousePressed, ev.Type)
	assert.NotZero(t, ev.Mask&state.Button1, "press event must see its own button held")
	assert.Equal(t, 10.0, ev.Mouse.X)

	ev = tr.MoveTo(20, 15)
	assert.Equal(t, event.MouseDragged, ev.Type)
	assert.Equal(t, state.Button1, ev.Mask&state.Buttons)

	ev = tr.ButtonUp(event.Left)
	assert.Equal(t, event.MouseReleased, ev.Type)
	assert.Zero(t, ev.Mask&state.Button1)

	_, ok := tr.Click(event.Left)
	assert.False(t, ok, "a dragged release is not a click")

	ev = tr.MoveTo(30, 15)
	assert.Equal(t, event.MouseMoved, ev.Type)
}

func TestMultipleButtonsHeld(t *testing.T) {
	tr := newTranslator(newClock())

	tr.ButtonDown(event.Left)
	tr.ButtonDown(event.Right)
	tr.ButtonUp(event.Left)

	ev := tr.MoveBy(5, 0)
	assert.Equal(t, event.MouseDragged, ev.Type, "right button is still held")
	assert.Equal(t, state.Button2, ev.Mask&state.Buttons)

	tr.ButtonUp(event.Right)
	ev = tr.MoveBy(5, 0)
	assert.Equal(t, event.MouseMoved, ev.Type)
	assert.Equal(t, 10.0, ev.Mouse.X)
}

func TestUnknownButtonHasNoBit(t *testing.T) {
	tr := newTranslator(newClock())

	ev := tr.ButtonDown(event.Button(9))
	assert.Zero(t, ev.Mask&state.Buttons)
	assert.Equal(t, event.MouseMoved, tr.MoveTo(1, 1).Type)
}

func TestModifiers(t *testing.T) {
	tr := newTranslator(newClock())

	ev := tr.KeyDown(event.ShiftLeft, 42)
	assert.True(t, state.IsShift(ev.Mask))

	ev = tr.KeyDown(event.KeyA, 30)
	assert.Equal(t, state.Shift, ev.Mask)

	ev = tr.KeyUp(event.ShiftLeft, 42)
	assert.False(t, state.IsShift(ev.Mask))

	ev = tr.KeyDown(event.ControlRight, 97)
	assert.True(t, state.IsCtrl(ev.Mask))
	ev = tr.KeyDown(event.MetaLeft, 125)
	assert.True(t, state.IsMeta(ev.Mask))
	ev = tr.KeyDown(event.AltRight, 100)
	assert.Equal(t, state.Ctrl|state.Meta|state.Alt, ev.Mask)
}

func TestLockKeysToggle(t *testing.T) {
	tr := newTranslator(newClock())

	ev := tr.KeyDown(event.CapsLock, 58)
	assert.NotZero(t, ev.Mask&state.CapsLock)
	ev = tr.KeyUp(event.CapsLock, 58)
	assert.NotZero(t, ev.Mask&state.CapsLock, "release does not clear a lock")

	ev = tr.KeyDown(event.CapsLock, 58)
	assert.Zero(t, ev.Mask&state.CapsLock)

	ev = tr.KeyDown(event.NumLock, 69)
	assert.NotZero(t, ev.Mask&state.NumLock)
	ev = tr.KeyDown(event.ScrollLock, 70)
	assert.NotZero(t, ev.Mask&state.ScrollLock)
}

func TestLockKeyAutorepeat(t *testing.T) {
	tr := newTranslator(newClock())

	// Held CapsLock: one press, two repeats, one release.
	tr.KeyDown(event.CapsLock, 20)
	ev := tr.KeyDown(event.CapsLock, 20)
	assert.Equal(t, event.KeyPressed, ev.Type)
	tr.KeyDown(event.CapsLock, 20)
	ev = tr.KeyUp(event.CapsLock, 20)
	assert.NotZero(t, ev.Mask&state.CapsLock)

	ev = tr.KeyDown(event.CapsLock, 20)
	assert.Zero(t, ev.Mask&state.CapsLock, "a new press toggles again")
	tr.KeyUp(event.CapsLock, 20)

	tr.KeyDown(event.NumLock, 144)
	tr.KeyDown(event.NumLock, 144)
	assert.True(t, tr.Mask().Has(state.NumLock))
}

func TestFlagsChanged(t *testing.T) {
	tr := newTranslator(newClock())

	ev, ok := tr.FlagsChanged(state.Shift, event.ShiftLeft, 56)
	require.True(t, ok)
	assert.Equal(t, event.KeyPressed, ev.Type)
	assert.Equal(t, state.Shift, ev.Mask)

	ev, ok = tr.FlagsChanged(state.Shift|state.Meta, event.MetaLeft, 55)
	require.True(t, ok)
	assert.Equal(t, event.KeyPressed, ev.Type)
	assert.Equal(t, state.Shift|state.Meta, ev.Mask)

	ev, ok = tr.FlagsChanged(state.Meta, event.ShiftLeft, 56)
	require.True(t, ok)
	assert.Equal(t, event.KeyReleased, ev.Type)
	assert.Equal(t, state.Meta, ev.Mask)

	_, ok = tr.FlagsChanged(state.Meta, event.MetaLeft, 55)
	assert.False(t, ok, "no tracked bit changed")
}

func TestFlagsChangedFirstBitDecides(t *testing.T) {
	tr := newTranslator(newClock())
	tr.FlagsChanged(state.Ctrl, event.ControlLeft, 59)

	// Shift pressed and Ctrl released in one report: Shift is checked first.
	ev, ok := tr.FlagsChanged(state.Shift, event.ShiftLeft, 56)
	require.True(t, ok)
	assert.Equal(t, event.KeyPressed, ev.Type)
	assert.Equal(t, state.Shift, ev.Mask)
}

func TestFlagsChangedKeepsButtons(t *testing.T) {
	tr := newTranslator(newClock())
	tr.ButtonDown(event.Left)

	ev, ok := tr.FlagsChanged(state.Alt, event.AltLeft, 58)
	require.True(t, ok)
	assert.Equal(t, state.Alt|state.Button1, ev.Mask)
}

func TestClickSynthesis(t *testing.T) {
	clock := newClock()
	tr := newTranslator(clock)
	tr.SetPosition(100, 100)

	tr.ButtonDown(event.Left)
	tr.ButtonUp(event.Left)
	ev, ok := tr.Click(event.Left)
	require.True(t, ok)
	assert.Equal(t, event.MouseClicked, ev.Type)
	assert.Equal(t, uint8(1), ev.Mouse.Clicks)

	clock.advance(200 * time.Millisecond)
	tr.MoveTo(102, 101)
	tr.ButtonDown(event.Left)
	tr.ButtonUp(event.Left)
	ev, ok = tr.Click(event.Left)
	require.True(t, ok)
	assert.Equal(t, uint8(2), ev.Mouse.Clicks)

	// Too slow for a triple click.
	clock.advance(time.Second)
	tr.ButtonDown(event.Left)
	tr.ButtonUp(event.Left)
	ev, ok = tr.Click(event.Left)
	require.True(t, ok)
	assert.Equal(t, uint8(1), ev.Mouse.Clicks)

	// Another button restarts the count.
	clock.advance(100 * time.Millisecond)
	tr.ButtonDown(event.Right)
	tr.ButtonUp(event.Right)
	ev, ok = tr.Click(event.Right)
	require.True(t, ok)
	assert.Equal(t, uint8(1), ev.Mouse.Clicks)
}

func TestDragIsTrackedPerButton(t *testing.T) {
	tr := newTranslator(newClock())

	tr.ButtonDown(event.Left)
	tr.MoveTo(40, 40)
	tr.ButtonDown(event.Right)
	tr.ButtonUp(event.Right)
	_, ok := tr.Click(event.Right)
	assert.True(t, ok, "right was never dragged")

	tr.ButtonUp(event.Left)
	_, ok = tr.Click(event.Left)
	assert.False(t, ok, "left was dragged before right was pressed")
}

func TestClickNeedsNearbyPointer(t *testing.T) {
	clock := newClock()
	tr := newTranslator(clock)

	tr.ButtonDown(event.Left)
	tr.ButtonUp(event.Left)
	_, ok := tr.Click(event.Left)
	require.True(t, ok)

	tr.SetPosition(50, 0)
	tr.ButtonDown(event.Left)
	tr.ButtonUp(event.Left)
	ev, ok := tr.Click(event.Left)
	require.True(t, ok)
	assert.Equal(t, uint8(1), ev.Mouse.Clicks)
}

func TestClickWithoutPress(t *testing.T) {
	tr := newTranslator(newClock())
	tr.ButtonUp(event.Middle)
	_, ok := tr.Click(event.Middle)
	assert.False(t, ok)
}

func TestClickSynthesisDisabled(t *testing.T) {
	tr := New(state.New(), WithClickSynthesis(false))
	tr.ButtonDown(event.Left)
	tr.ButtonUp(event.Left)
	_, ok := tr.Click(event.Left)
	assert.False(t, ok)
}

func TestScroll(t *testing.T) {
	tr := newTranslator(newClock())
	tr.SetPosition(4, 8)

	ev := tr.Scroll(event.ScrollDown, -3)
	require.NotNil(t, ev.Wheel)
	assert.Equal(t, event.ScrollDown, ev.Wheel.Direction)
	assert.Equal(t, 3.0, ev.Wheel.Delta)
	assert.Equal(t, 4.0, ev.Wheel.X)

	ev = tr.ScrollAt(1, 2, event.ScrollRight, 1)
	assert.Equal(t, 1.0, ev.Wheel.X)
	x, y := tr.Position()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
}

func TestReset(t *testing.T) {
	tr := newTranslator(newClock())
	tr.FlagsChanged(state.Shift, event.ShiftLeft, 56)
	tr.ButtonDown(event.Left)
	tr.Reset()

	_, ok := tr.Click(event.Left)
	assert.False(t, ok)

	// The flag history is gone, so Shift reads as a fresh press.
	ev, ok := tr.FlagsChanged(state.Shift, event.ShiftLeft, 56)
	require.True(t, ok)
	assert.Equal(t, event.KeyPressed, ev.Type)
}

func TestLifecycleMarkers(t *testing.T) {
	tr := newTranslator(newClock())
	tr.KeyDown(event.ShiftRight, 54)

	assert.Equal(t, event.HookEnabled, tr.HookEnabled().Type)
	ev := tr.HookDisabled()
	assert.Equal(t, event.HookDisabled, ev.Type)
	assert.Equal(t, state.Shift, ev.Mask)
	assert.Nil(t, ev.Mouse)
}
