package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a physical key independent of keyboard layout.
//
// Named keys are small positive values. Keys the platform reports but this
// package has no name for are Unknown(raw) and keep the raw code.
// The zero value is Unknown(0).
type Key uint32

const unknownBit Key = 1 << 31

const (
	KeyA Key = iota + 1
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Num0
	Num1
	Num2
	Num3
	Num4
	Num5
	Num6
	Num7
	Num8
	Num9

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24

	ShiftLeft
	ShiftRight
	ControlLeft
	ControlRight
	AltLeft
	AltRight
	MetaLeft
	MetaRight

	Escape
	Tab
	CapsLock
	Space
	Enter
	Backspace
	Insert
	Delete
	Home
	End
	PageUp
	PageDown
	ArrowUp
	ArrowDown
	ArrowLeft
	ArrowRight

	NumLock
	ScrollLock
	PrintScreen
	Pause

	Grave
	Minus
	Equal
	BracketLeft
	BracketRight
	Backslash
	Semicolon
	Quote
	Comma
	Period
	Slash

	Numpad0
	Numpad1
	Numpad2
	Numpad3
	Numpad4
	Numpad5
	Numpad6
	Numpad7
	Numpad8
	Numpad9
	NumpadAdd
	NumpadSubtract
	NumpadMultiply
	NumpadDivide
	NumpadDecimal
	NumpadEnter
	NumpadEqual

	VolumeUp
	VolumeDown
	VolumeMute
	MediaPlayPause
	MediaStop
	MediaNext
	MediaPrevious

	BrowserBack
	BrowserForward
	BrowserRefresh
	BrowserStop
	BrowserSearch
	BrowserFavorites
	BrowserHome

	LaunchMail
	LaunchApp1
	LaunchApp2

	IntlBackslash
	IntlYen
	IntlRo

	ContextMenu

	keyCount
)

var keyNames = [...]string{
	KeyA: "KeyA", KeyB: "KeyB", KeyC: "KeyC", KeyD: "KeyD", KeyE: "KeyE",
	KeyF: "KeyF", KeyG: "KeyG", KeyH: "KeyH", KeyI: "KeyI", KeyJ: "KeyJ",
	KeyK: "KeyK", KeyL: "KeyL", KeyM: "KeyM", KeyN: "KeyN", KeyO: "KeyO",
	KeyP: "KeyP", KeyQ: "KeyQ", KeyR: "KeyR", KeyS: "KeyS", KeyT: "KeyT",
	KeyU: "KeyU", KeyV: "KeyV", KeyW: "KeyW", KeyX: "KeyX", KeyY: "KeyY",
	KeyZ: "KeyZ",

	Num0: "Num0", Num1: "Num1", Num2: "Num2", Num3: "Num3", Num4: "Num4",
	Num5: "Num5", Num6: "Num6", Num7: "Num7", Num8: "Num8", Num9: "Num9",

	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",
	F13: "F13", F14: "F14", F15: "F15", F16: "F16", F17: "F17", F18: "F18",
	F19: "F19", F20: "F20", F21: "F21", F22: "F22", F23: "F23", F24: "F24",

	ShiftLeft: "ShiftLeft", ShiftRight: "ShiftRight",
	ControlLeft: "ControlLeft", ControlRight: "ControlRight",
	AltLeft: "AltLeft", AltRight: "AltRight",
	MetaLeft: "MetaLeft", MetaRight: "MetaRight",

	Escape: "Escape", Tab: "Tab", CapsLock: "CapsLock", Space: "Space",
	Enter: "Enter", Backspace: "Backspace", Insert: "Insert", Delete: "Delete",
	Home: "Home", End: "End", PageUp: "PageUp", PageDown: "PageDown",
	ArrowUp: "ArrowUp", ArrowDown: "ArrowDown", ArrowLeft: "ArrowLeft", ArrowRight: "ArrowRight",

	NumLock: "NumLock", ScrollLock: "ScrollLock", PrintScreen: "PrintScreen", Pause: "Pause",

	Grave: "Grave", Minus: "Minus", Equal: "Equal", BracketLeft: "BracketLeft",
	BracketRight: "BracketRight", Backslash: "Backslash", Semicolon: "Semicolon",
	Quote: "Quote", Comma: "Comma", Period: "Period", Slash: "Slash",

	Numpad0: "Numpad0", Numpad1: "Numpad1", Numpad2: "Numpad2", Numpad3: "Numpad3",
	Numpad4: "Numpad4", Numpad5: "Numpad5", Numpad6: "Numpad6", Numpad7: "Numpad7",
	Numpad8: "Numpad8", Numpad9: "Numpad9", NumpadAdd: "NumpadAdd",
	NumpadSubtract: "NumpadSubtract", NumpadMultiply: "NumpadMultiply",
	NumpadDivide: "NumpadDivide", NumpadDecimal: "NumpadDecimal",
	NumpadEnter: "NumpadEnter", NumpadEqual: "NumpadEqual",

	VolumeUp: "VolumeUp", VolumeDown: "VolumeDown", VolumeMute: "VolumeMute",
	MediaPlayPause: "MediaPlayPause", MediaStop: "MediaStop",
	MediaNext: "MediaNext", MediaPrevious: "MediaPrevious",

	BrowserBack: "BrowserBack", BrowserForward: "BrowserForward",
	BrowserRefresh: "BrowserRefresh", BrowserStop: "BrowserStop",
	BrowserSearch: "BrowserSearch", BrowserFavorites: "BrowserFavorites",
	BrowserHome: "BrowserHome",

	LaunchMail: "LaunchMail", LaunchApp1: "LaunchApp1", LaunchApp2: "LaunchApp2",

	IntlBackslash: "IntlBackslash", IntlYen: "IntlYen", IntlRo: "IntlRo",

	ContextMenu: "ContextMenu",
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		if name != "" {
			m[name] = Key(k)
		}
	}
	return m
}()

// Unknown returns the key for a raw code that has no name.
func Unknown(raw uint32) Key {
	if raw == 0 {
		return 0
	}
	return unknownBit | Key(raw&^uint32(unknownBit))
}

// IsUnknown reports whether k is an Unknown(raw) key.
func (k Key) IsUnknown() bool {
	return k == 0 || k&unknownBit != 0 || k >= keyCount
}

// RawCode returns the raw code carried by an Unknown key, or 0.
func (k Key) RawCode() uint32 {
	if k&unknownBit != 0 {
		return uint32(k &^ unknownBit)
	}
	return 0
}

func (k Key) String() string {
	if k.IsUnknown() {
		return "Unknown(" + strconv.FormatUint(uint64(k.RawCode()), 10) + ")"
	}
	return keyNames[k]
}

// ParseKey parses the text form produced by String.
func ParseKey(s string) (Key, error) {
	if k, ok := keysByName[s]; ok {
		return k, nil
	}
	if inner, ok := strings.CutPrefix(s, "Unknown("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if ok {
			raw, err := strconv.ParseUint(inner, 10, 31)
			if err == nil {
				return Unknown(uint32(raw)), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Key) IsModifier() bool {
	switch k {
	case ShiftLeft, ShiftRight, ControlLeft, ControlRight, AltLeft, AltRight, MetaLeft, MetaRight:
		return true
	}
	return false
}

func (k Key) IsLetter() bool   { return k >= KeyA && k <= KeyZ }
func (k Key) IsNumber() bool   { return k >= Num0 && k <= Num9 }
func (k Key) IsFunction() bool { return k >= F1 && k <= F24 }
func (k Key) IsNumpad() bool   { return k >= Numpad0 && k <= NumpadEqual }
func (k Key) IsMedia() bool    { return k >= VolumeUp && k <= MediaPrevious }

func (k Key) IsNavigation() bool {
	switch k {
	case ArrowUp, ArrowDown, ArrowLeft, ArrowRight, Home, End, PageUp, PageDown:
		return true
	}
	return false
}

// Keys returns every named key in declaration order.
func Keys() []Key {
	keys := make([]Key, 0, keyCount-1)
	for k := KeyA; k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
