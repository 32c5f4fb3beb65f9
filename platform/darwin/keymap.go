//go:build darwin

package darwin

import "github.com/bnema/inputhook/event"

// Virtual key codes from HIToolbox Events.h.
const (
	kvkReturn       = 0x24
	kvkTab          = 0x30
	kvkSpace        = 0x31
	kvkDelete       = 0x33
	kvkEscape       = 0x35
	kvkRightCommand = 0x36
	kvkCommand      = 0x37
	kvkShift        = 0x38
	kvkCapsLock     = 0x39
	kvkOption       = 0x3A
	kvkControl      = 0x3B
	kvkRightShift   = 0x3C
	kvkRightOption  = 0x3D
	kvkRightControl = 0x3E
	kvkFunction     = 0x3F
)

var keyByCode = map[uint16]event.Key{
	0x00: event.KeyA, 0x0B: event.KeyB, 0x08: event.KeyC, 0x02: event.KeyD,
	0x0E: event.KeyE, 0x03: event.KeyF, 0x05: event.KeyG, 0x04: event.KeyH,
	0x22: event.KeyI, 0x26: event.KeyJ, 0x28: event.KeyK, 0x25: event.KeyL,
	0x2E: event.KeyM, 0x2D: event.KeyN, 0x1F: event.KeyO, 0x23: event.KeyP,
	0x0C: event.KeyQ, 0x0F: event.KeyR, 0x01: event.KeyS, 0x11: event.KeyT,
	0x20: event.KeyU, 0x09: event.KeyV, 0x0D: event.KeyW, 0x07: event.KeyX,
	0x10: event.KeyY, 0x06: event.KeyZ,

	0x1D: event.Num0, 0x12: event.Num1, 0x13: event.Num2, 0x14: event.Num3,
	0x15: event.Num4, 0x17: event.Num5, 0x16: event.Num6, 0x1A: event.Num7,
	0x1C: event.Num8, 0x19: event.Num9,

	0x7A: event.F1, 0x78: event.F2, 0x63: event.F3, 0x76: event.F4,
	0x60: event.F5, 0x61: event.F6, 0x62: event.F7, 0x64: event.F8,
	0x65: event.F9, 0x6D: event.F10, 0x67: event.F11, 0x6F: event.F12,
	0x69: event.F13, 0x6B: event.F14, 0x71: event.F15, 0x6A: event.F16,
	0x40: event.F17, 0x4F: event.F18, 0x50: event.F19, 0x5A: event.F20,

	kvkShift: event.ShiftLeft, kvkRightShift: event.ShiftRight,
	kvkControl: event.ControlLeft, kvkRightControl: event.ControlRight,
	kvkOption: event.AltLeft, kvkRightOption: event.AltRight,
	kvkCommand: event.MetaLeft, kvkRightCommand: event.MetaRight,

	kvkEscape: event.Escape, kvkTab: event.Tab, kvkCapsLock: event.CapsLock,
	kvkSpace: event.Space, kvkReturn: event.Enter, kvkDelete: event.Backspace,
	0x72: event.Insert, 0x75: event.Delete, 0x73: event.Home, 0x77: event.End,
	0x74: event.PageUp, 0x79: event.PageDown,
	0x7E: event.ArrowUp, 0x7D: event.ArrowDown, 0x7B: event.ArrowLeft, 0x7C: event.ArrowRight,
	0x47: event.NumLock, 0x6E: event.ContextMenu,

	0x32: event.Grave, 0x1B: event.Minus, 0x18: event.Equal,
	0x21: event.BracketLeft, 0x1E: event.BracketRight, 0x2A: event.Backslash,
	0x29: event.Semicolon, 0x27: event.Quote, 0x2B: event.Comma,
	0x2F: event.Period, 0x2C: event.Slash,
	0x0A: event.IntlBackslash, 0x5D: event.IntlYen, 0x5E: event.IntlRo,

	0x52: event.Numpad0, 0x53: event.Numpad1, 0x54: event.Numpad2, 0x55: event.Numpad3,
	0x56: event.Numpad4, 0x57: event.Numpad5, 0x58: event.Numpad6, 0x59: event.Numpad7,
	0x5B: event.Numpad8, 0x5C: event.Numpad9,
	0x45: event.NumpadAdd, 0x4E: event.NumpadSubtract, 0x43: event.NumpadMultiply,
	0x4B: event.NumpadDivide, 0x41: event.NumpadDecimal, 0x4C: event.NumpadEnter,
	0x51: event.NumpadEqual,

	0x48: event.VolumeUp, 0x49: event.VolumeDown, 0x4A: event.VolumeMute,
}

var codeByKey = func() map[event.Key]uint16 {
	m := make(map[event.Key]uint16, len(keyByCode))
	for code, k := range keyByCode {
		m[k] = code
	}
	return m
}()

// KeyFromCode maps a macOS virtual key code to a Key.
func KeyFromCode(code uint16) event.Key {
	if k, ok := keyByCode[code]; ok {
		return k
	}
	return event.Unknown(uint32(code))
}

// CodeFromKey is the inverse of KeyFromCode. Unknown keys round-trip
// through their raw code.
func CodeFromKey(k event.Key) (uint16, bool) {
	if code, ok := codeByKey[k]; ok {
		return code, true
	}
	if raw := k.RawCode(); raw > 0 && raw <= 0x7F {
		return uint16(raw), true
	}
	return 0, false
}

// CGEventFlags modifier bits.
const (
	flagAlphaShift = 0x00010000
	flagShift      = 0x00020000
	flagControl    = 0x00040000
	flagAlternate  = 0x00080000
	flagCommand    = 0x00100000
)
