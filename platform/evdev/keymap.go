//go:build linux

package evdev

import (
	"github.com/bnema/inputhook/event"
	evdev "github.com/gvalkov/golang-evdev"
)

// X11Offset is the difference between X11 and evdev keycodes.
const X11Offset = 8

var keyByCode = map[uint16]event.Key{
	evdev.KEY_A: event.KeyA, evdev.KEY_B: event.KeyB, evdev.KEY_C: event.KeyC,
	evdev.KEY_D: event.KeyD, evdev.KEY_E: event.KeyE, evdev.KEY_F: event.KeyF,
	evdev.KEY_G: event.KeyG, evdev.KEY_H: event.KeyH, evdev.KEY_I: event.KeyI,
	evdev.KEY_J: event.KeyJ, evdev.KEY_K: event.KeyK, evdev.KEY_L: event.KeyL,
	evdev.KEY_M: event.KeyM, evdev.KEY_N: event.KeyN, evdev.KEY_O: event.KeyO,
	evdev.KEY_P: event.KeyP, evdev.KEY_Q: event.KeyQ, evdev.KEY_R: event.KeyR,
	evdev.KEY_S: event.KeyS, evdev.KEY_T: event.KeyT, evdev.KEY_U: event.KeyU,
	evdev.KEY_V: event.KeyV, evdev.KEY_W: event.KeyW, evdev.KEY_X: event.KeyX,
	evdev.KEY_Y: event.KeyY, evdev.KEY_Z: event.KeyZ,

	evdev.KEY_0: event.Num0, evdev.KEY_1: event.Num1, evdev.KEY_2: event.Num2,
	evdev.KEY_3: event.Num3, evdev.KEY_4: event.Num4, evdev.KEY_5: event.Num5,
	evdev.KEY_6: event.Num6, evdev.KEY_7: event.Num7, evdev.KEY_8: event.Num8,
	evdev.KEY_9: event.Num9,

	evdev.KEY_F1: event.F1, evdev.KEY_F2: event.F2, evdev.KEY_F3: event.F3,
	evdev.KEY_F4: event.F4, evdev.KEY_F5: event.F5, evdev.KEY_F6: event.F6,
	evdev.KEY_F7: event.F7, evdev.KEY_F8: event.F8, evdev.KEY_F9: event.F9,
	evdev.KEY_F10: event.F10, evdev.KEY_F11: event.F11, evdev.KEY_F12: event.F12,
	evdev.KEY_F13: event.F13, evdev.KEY_F14: event.F14, evdev.KEY_F15: event.F15,
	evdev.KEY_F16: event.F16, evdev.KEY_F17: event.F17, evdev.KEY_F18: event.F18,
	evdev.KEY_F19: event.F19, evdev.KEY_F20: event.F20, evdev.KEY_F21: event.F21,
	evdev.KEY_F22: event.F22, evdev.KEY_F23: event.F23, evdev.KEY_F24: event.F24,

	evdev.KEY_LEFTSHIFT: event.ShiftLeft, evdev.KEY_RIGHTSHIFT: event.ShiftRight,
	evdev.KEY_LEFTCTRL: event.ControlLeft, evdev.KEY_RIGHTCTRL: event.ControlRight,
	evdev.KEY_LEFTALT: event.AltLeft, evdev.KEY_RIGHTALT: event.AltRight,
	evdev.KEY_LEFTMETA: event.MetaLeft, evdev.KEY_RIGHTMETA: event.MetaRight,

	evdev.KEY_ESC: event.Escape, evdev.KEY_TAB: event.Tab, evdev.KEY_CAPSLOCK: event.CapsLock,
	evdev.KEY_SPACE: event.Space, evdev.KEY_ENTER: event.Enter, evdev.KEY_BACKSPACE: event.Backspace,
	evdev.KEY_INSERT: event.Insert, evdev.KEY_DELETE: event.Delete,
	evdev.KEY_HOME: event.Home, evdev.KEY_END: event.End,
	evdev.KEY_PAGEUP: event.PageUp, evdev.KEY_PAGEDOWN: event.PageDown,
	evdev.KEY_UP: event.ArrowUp, evdev.KEY_DOWN: event.ArrowDown,
	evdev.KEY_LEFT: event.ArrowLeft, evdev.KEY_RIGHT: event.ArrowRight,

	evdev.KEY_NUMLOCK: event.NumLock, evdev.KEY_SCROLLLOCK: event.ScrollLock,
	evdev.KEY_SYSRQ: event.PrintScreen, evdev.KEY_PAUSE: event.Pause,

	evdev.KEY_GRAVE: event.Grave, evdev.KEY_MINUS: event.Minus, evdev.KEY_EQUAL: event.Equal,
	evdev.KEY_LEFTBRACE: event.BracketLeft, evdev.KEY_RIGHTBRACE: event.BracketRight,
	evdev.KEY_BACKSLASH: event.Backslash, evdev.KEY_SEMICOLON: event.Semicolon,
	evdev.KEY_APOSTROPHE: event.Quote, evdev.KEY_COMMA: event.Comma,
	evdev.KEY_DOT: event.Period, evdev.KEY_SLASH: event.Slash,

	evdev.KEY_KP0: event.Numpad0, evdev.KEY_KP1: event.Numpad1, evdev.KEY_KP2: event.Numpad2,
	evdev.KEY_KP3: event.Numpad3, evdev.KEY_KP4: event.Numpad4, evdev.KEY_KP5: event.Numpad5,
	evdev.KEY_KP6: event.Numpad6, evdev.KEY_KP7: event.Numpad7, evdev.KEY_KP8: event.Numpad8,
	evdev.KEY_KP9: event.Numpad9,
	evdev.KEY_KPPLUS: event.NumpadAdd, evdev.KEY_KPMINUS: event.NumpadSubtract,
	evdev.KEY_KPASTERISK: event.NumpadMultiply, evdev.KEY_KPSLASH: event.NumpadDivide,
	evdev.KEY_KPDOT: event.NumpadDecimal, evdev.KEY_KPENTER: event.NumpadEnter,
	evdev.KEY_KPEQUAL: event.NumpadEqual,

	evdev.KEY_VOLUMEUP: event.VolumeUp, evdev.KEY_VOLUMEDOWN: event.VolumeDown,
	evdev.KEY_MUTE: event.VolumeMute, evdev.KEY_PLAYPAUSE: event.MediaPlayPause,
	evdev.KEY_STOPCD: event.MediaStop, evdev.KEY_NEXTSONG: event.MediaNext,
	evdev.KEY_PREVIOUSSONG: event.MediaPrevious,

	evdev.KEY_BACK: event.BrowserBack, evdev.KEY_FORWARD: event.BrowserForward,
	evdev.KEY_REFRESH: event.BrowserRefresh, evdev.KEY_STOP: event.BrowserStop,
	evdev.KEY_SEARCH: event.BrowserSearch, evdev.KEY_BOOKMARKS: event.BrowserFavorites,
	evdev.KEY_HOMEPAGE: event.BrowserHome,

	evdev.KEY_MAIL: event.LaunchMail, evdev.KEY_COMPUTER: event.LaunchApp1,
	evdev.KEY_CALC: event.LaunchApp2,

	evdev.KEY_102ND: event.IntlBackslash, evdev.KEY_YEN: event.IntlYen, evdev.KEY_RO: event.IntlRo,

	evdev.KEY_COMPOSE: event.ContextMenu,
}

var codeByKey = func() map[event.Key]uint16 {
	m := make(map[event.Key]uint16, len(keyByCode))
	for code, k := range keyByCode {
		m[k] = code
	}
	return m
}()

// KeyFromCode maps an evdev key code to a Key. Codes without a name become
// Unknown(code).
func KeyFromCode(code uint16) event.Key {
	if k, ok := keyByCode[code]; ok {
		return k
	}
	return event.Unknown(uint32(code))
}

// CodeFromKey is the inverse of KeyFromCode. Unknown keys map back to the
// raw code they carry.
func CodeFromKey(k event.Key) (uint16, bool) {
	if code, ok := codeByKey[k]; ok {
		return code, true
	}
	if raw := k.RawCode(); raw != 0 && raw <= 0xffff {
		return uint16(raw), true
	}
	return 0, false
}
