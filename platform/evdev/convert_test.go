//go:build linux

package evdev

import (
	"testing"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/state"
	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func in(typ, code uint16, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: typ, Code: code, Value: value}
}

func syn() evdev.InputEvent {
	return in(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

func feedAll(f *frame, events ...evdev.InputEvent) []event.Event {
	var out []event.Event
	for _, ev := range events {
		out = append(out, f.feed(ev)...)
	}
	return out
}

func newTestFrame() (*frame, *state.Mask) {
	mask := state.New()
	return newFrame(translate.New(mask, translate.WithClickSynthesis(false))), mask
}

func TestKeyCodes(t *testing.T) {
	tests := []struct {
		code uint16
		key  event.Key
	}{
		{evdev.KEY_A, event.KeyA},
		{evdev.KEY_ESC, event.Escape},
		{evdev.KEY_LEFTSHIFT, event.ShiftLeft},
		{evdev.KEY_KPENTER, event.NumpadEnter},
		{evdev.KEY_F24, event.F24},
		{evdev.KEY_SYSRQ, event.PrintScreen},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.key, KeyFromCode(tt.code))
			code, ok := CodeFromKey(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestUnknownKeyCode(t *testing.T) {
	k := KeyFromCode(0x2ff)
	assert.True(t, k.IsUnknown())
	assert.Equal(t, uint32(0x2ff), k.RawCode())

	code, ok := CodeFromKey(k)
	require.True(t, ok)
	assert.Equal(t, uint16(0x2ff), code)

	_, ok = CodeFromKey(event.Unknown(0))
	assert.False(t, ok)
}

func TestKeyPressRepeatRelease(t *testing.T) {
	f, mask := newTestFrame()

	evs := feedAll(f,
		in(evdev.EV_KEY, evdev.KEY_LEFTSHIFT, keyPress), syn(),
		in(evdev.EV_KEY, evdev.KEY_A, keyPress), syn(),
		in(evdev.EV_KEY, evdev.KEY_A, keyRepeat), syn(),
		in(evdev.EV_KEY, evdev.KEY_A, keyRelease), syn(),
	)
	require.Len(t, evs, 4)
	assert.Equal(t, event.KeyPressed, evs[0].Type)
	assert.Equal(t, event.KeyPressed, evs[1].Type)
	assert.Equal(t, event.KeyA, evs[1].Keyboard.Key)
	assert.Equal(t, uint32(evdev.KEY_A), evs[1].Keyboard.RawCode)
	assert.True(t, state.IsShift(evs[1].Mask))
	assert.Equal(t, event.KeyPressed, evs[2].Type)
	assert.Equal(t, event.KeyReleased, evs[3].Type)
	assert.True(t, mask.Has(state.Shift))
}

func TestRepeatDoesNotToggleLocks(t *testing.T) {
	f, mask := newTestFrame()

	feedAll(f, in(evdev.EV_KEY, evdev.KEY_CAPSLOCK, keyPress), syn())
	require.True(t, mask.Has(state.CapsLock))
	feedAll(f, in(evdev.EV_KEY, evdev.KEY_CAPSLOCK, keyRepeat), syn())
	assert.True(t, mask.Has(state.CapsLock))
}

func TestRelativeMotionCoalescesPerFrame(t *testing.T) {
	f, _ := newTestFrame()

	evs := feedAll(f,
		in(evdev.EV_REL, evdev.REL_X, 5),
		in(evdev.EV_REL, evdev.REL_Y, -3),
	)
	assert.Empty(t, evs, "motion waits for SYN_REPORT")

	evs = f.feed(syn())
	require.Len(t, evs, 1)
	assert.Equal(t, event.MouseMoved, evs[0].Type)
	assert.Equal(t, 5.0, evs[0].Mouse.X)
	assert.Equal(t, -3.0, evs[0].Mouse.Y)
}

func TestDragWhileButtonHeld(t *testing.T) {
	f, mask := newTestFrame()

	evs := feedAll(f,
		in(evdev.EV_KEY, evdev.BTN_LEFT, keyPress), syn(),
		in(evdev.EV_REL, evdev.REL_X, 10), syn(),
		in(evdev.EV_KEY, evdev.BTN_LEFT, keyRelease), syn(),
		in(evdev.EV_REL, evdev.REL_X, 1), syn(),
	)
	require.Len(t, evs, 4)
	assert.Equal(t, event.MousePressed, evs[0].Type)
	assert.True(t, state.ButtonMask(1)&evs[0].Mask != 0)
	assert.Equal(t, event.MouseDragged, evs[1].Type)
	assert.Equal(t, event.MouseReleased, evs[2].Type)
	assert.Equal(t, event.MouseMoved, evs[3].Type)
	assert.False(t, mask.IsButtonHeld())
}

func TestButtonFlushesPendingMotionFirst(t *testing.T) {
	f, _ := newTestFrame()

	evs := feedAll(f,
		in(evdev.EV_REL, evdev.REL_X, 4),
		in(evdev.EV_KEY, evdev.BTN_RIGHT, keyPress),
		syn(),
	)
	require.Len(t, evs, 2)
	assert.Equal(t, event.MouseMoved, evs[0].Type)
	assert.Equal(t, event.MousePressed, evs[1].Type)
	b, _ := evs[1].Button()
	assert.Equal(t, event.Right, b)
	assert.Equal(t, 4.0, evs[1].Mouse.X)
}

func TestButtonCodes(t *testing.T) {
	assert.Equal(t, event.Left, buttonFromCode(evdev.BTN_LEFT))
	assert.Equal(t, event.Middle, buttonFromCode(evdev.BTN_MIDDLE))
	assert.Equal(t, event.Button4, buttonFromCode(evdev.BTN_SIDE))
	assert.Equal(t, event.Button5, buttonFromCode(evdev.BTN_EXTRA))
	assert.Equal(t, uint8(7), buttonFromCode(evdev.BTN_BACK).Number())
}

func TestWheel(t *testing.T) {
	f, _ := newTestFrame()

	evs := feedAll(f,
		in(evdev.EV_REL, evdev.REL_WHEEL, 1),
		in(evdev.EV_REL, evdev.REL_WHEEL, -2),
		in(evdev.EV_REL, evdev.REL_HWHEEL, 1),
		in(evdev.EV_REL, evdev.REL_HWHEEL, -1),
	)
	require.Len(t, evs, 4)
	want := []event.ScrollDirection{event.ScrollUp, event.ScrollDown, event.ScrollRight, event.ScrollLeft}
	for i, ev := range evs {
		assert.Equal(t, event.MouseWheel, ev.Type)
		assert.Equal(t, want[i], ev.Wheel.Direction)
	}
	assert.Equal(t, 2.0, evs[1].Wheel.Delta)
}

func TestAbsolutePosition(t *testing.T) {
	f, _ := newTestFrame()

	evs := feedAll(f, in(evdev.EV_ABS, evdev.ABS_X, 300), in(evdev.EV_ABS, evdev.ABS_Y, 200), syn())
	require.Len(t, evs, 1)
	assert.Equal(t, 300.0, evs[0].Mouse.X)
	assert.Equal(t, 200.0, evs[0].Mouse.Y)

	// Only Y changes; X keeps the last value.
	evs = feedAll(f, in(evdev.EV_ABS, evdev.ABS_Y, 250), syn())
	require.Len(t, evs, 1)
	assert.Equal(t, 300.0, evs[0].Mouse.X)
	assert.Equal(t, 250.0, evs[0].Mouse.Y)
}

func TestSynDroppedDiscardsFrame(t *testing.T) {
	f, _ := newTestFrame()

	evs := feedAll(f,
		in(evdev.EV_REL, evdev.REL_X, 50),
		in(evdev.EV_SYN, evdev.SYN_DROPPED, 0),
		syn(),
	)
	assert.Empty(t, evs)
}

func TestExcluded(t *testing.T) {
	patterns := append([]string{VirtualDeviceName}, DefaultExclude...)
	assert.True(t, excluded("Power Button", patterns))
	assert.True(t, excluded("inputhook virtual input", patterns))
	assert.False(t, excluded("Logitech USB Receiver", patterns))
	assert.False(t, excluded("anything", []string{""}))
}

func TestDeviceKind(t *testing.T) {
	assert.Equal(t, "keyboard", DeviceInfo{Keyboard: true}.Kind())
	assert.Equal(t, "keyboard+pointer", DeviceInfo{Keyboard: true, Pointer: true}.Kind())
	assert.Equal(t, "other", DeviceInfo{}.Kind())
}
