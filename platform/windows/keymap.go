//go:build windows

package windows

import "github.com/bnema/inputhook/event"

// Virtual-key codes.
const (
	vkLButton  = 0x01
	vkRButton  = 0x02
	vkMButton  = 0x04
	vkXButton1 = 0x05
	vkXButton2 = 0x06
	vkBack     = 0x08
	vkTab      = 0x09
	vkReturn   = 0x0D
	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkPause    = 0x13
	vkCapital  = 0x14
	vkEscape   = 0x1B
	vkConvert  = 0x1C
	vkSpace    = 0x20
	vkPrior    = 0x21
	vkNext     = 0x22
	vkEnd      = 0x23
	vkHome     = 0x24
	vkLeft     = 0x25
	vkUp       = 0x26
	vkRight    = 0x27
	vkDown     = 0x28
	vkSnapshot = 0x2C
	vkInsert   = 0x2D
	vkDelete   = 0x2E
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkApps     = 0x5D
	vkNumpad0  = 0x60
	vkMultiply = 0x6A
	vkAdd      = 0x6B
	vkSubtract = 0x6D
	vkDecimal  = 0x6E
	vkDivide   = 0x6F
	vkF1       = 0x70
	vkNumLock  = 0x90
	vkScroll   = 0x91
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5

	vkBrowserBack      = 0xA6
	vkBrowserForward   = 0xA7
	vkBrowserRefresh   = 0xA8
	vkBrowserStop      = 0xA9
	vkBrowserSearch    = 0xAA
	vkBrowserFavorites = 0xAB
	vkBrowserHome      = 0xAC
	vkVolumeMute       = 0xAD
	vkVolumeDown       = 0xAE
	vkVolumeUp         = 0xAF
	vkMediaNext        = 0xB0
	vkMediaPrev        = 0xB1
	vkMediaStop        = 0xB2
	vkMediaPlayPause   = 0xB3
	vkLaunchMail       = 0xB4
	vkLaunchApp1       = 0xB6
	vkLaunchApp2       = 0xB7

	vkOEM1      = 0xBA // ;:
	vkOEMPlus   = 0xBB
	vkOEMComma  = 0xBC
	vkOEMMinus  = 0xBD
	vkOEMPeriod = 0xBE
	vkOEM2      = 0xBF // /?
	vkOEM3      = 0xC0 // `~
	vkOEM4      = 0xDB // [{
	vkOEM5      = 0xDC // \|
	vkOEM6      = 0xDD // ]}
	vkOEM7      = 0xDE // '"
	vkOEM102    = 0xE2
	vkABNTC1    = 0xC1 // Brazilian /? , Ro on ABNT
)

var keyByVK = func() map[uint32]event.Key {
	m := map[uint32]event.Key{
		vkBack: event.Backspace, vkTab: event.Tab, vkReturn: event.Enter,
		vkPause: event.Pause, vkCapital: event.CapsLock, vkEscape: event.Escape,
		vkSpace: event.Space, vkPrior: event.PageUp, vkNext: event.PageDown,
		vkEnd: event.End, vkHome: event.Home,
		vkLeft: event.ArrowLeft, vkUp: event.ArrowUp, vkRight: event.ArrowRight, vkDown: event.ArrowDown,
		vkSnapshot: event.PrintScreen, vkInsert: event.Insert, vkDelete: event.Delete,
		vkLWin: event.MetaLeft, vkRWin: event.MetaRight, vkApps: event.ContextMenu,

		vkMultiply: event.NumpadMultiply, vkAdd: event.NumpadAdd, vkSubtract: event.NumpadSubtract,
		vkDecimal: event.NumpadDecimal, vkDivide: event.NumpadDivide,
		vkNumLock: event.NumLock, vkScroll: event.ScrollLock,

		// Generic modifier codes show up in injected input.
		vkShift: event.ShiftLeft, vkControl: event.ControlLeft, vkMenu: event.AltLeft,
		vkLShift: event.ShiftLeft, vkRShift: event.ShiftRight,
		vkLControl: event.ControlLeft, vkRControl: event.ControlRight,
		vkLMenu: event.AltLeft, vkRMenu: event.AltRight,

		vkBrowserBack: event.BrowserBack, vkBrowserForward: event.BrowserForward,
		vkBrowserRefresh: event.BrowserRefresh, vkBrowserStop: event.BrowserStop,
		vkBrowserSearch: event.BrowserSearch, vkBrowserFavorites: event.BrowserFavorites,
		vkBrowserHome: event.BrowserHome,
		vkVolumeMute: event.VolumeMute, vkVolumeDown: event.VolumeDown, vkVolumeUp: event.VolumeUp,
		vkMediaNext: event.MediaNext, vkMediaPrev: event.MediaPrevious,
		vkMediaStop: event.MediaStop, vkMediaPlayPause: event.MediaPlayPause,
		vkLaunchMail: event.LaunchMail, vkLaunchApp1: event.LaunchApp1, vkLaunchApp2: event.LaunchApp2,

		vkOEM1: event.Semicolon, vkOEMPlus: event.Equal, vkOEMComma: event.Comma,
		vkOEMMinus: event.Minus, vkOEMPeriod: event.Period, vkOEM2: event.Slash,
		vkOEM3: event.Grave, vkOEM4: event.BracketLeft, vkOEM5: event.Backslash,
		vkOEM6: event.BracketRight, vkOEM7: event.Quote, vkOEM102: event.IntlBackslash,
		vkABNTC1: event.IntlRo, vkConvert: event.IntlYen,
	}
	for i := uint32(0); i < 26; i++ {
		m['A'+i] = event.KeyA + event.Key(i)
	}
	for i := uint32(0); i < 10; i++ {
		m['0'+i] = event.Num0 + event.Key(i)
		m[vkNumpad0+i] = event.Numpad0 + event.Key(i)
	}
	for i := uint32(0); i < 24; i++ {
		m[vkF1+i] = event.F1 + event.Key(i)
	}
	return m
}()

var vkByKey = func() map[event.Key]uint32 {
	m := make(map[event.Key]uint32, len(keyByVK))
	for vk, k := range keyByVK {
		switch vk {
		case vkShift, vkControl, vkMenu:
			continue
		}
		m[k] = vk
	}
	m[event.NumpadEnter] = vkReturn
	return m
}()

// llkhfExtended marks keys from the extended part of the keyboard.
const llkhfExtended = 0x01

// KeyFromVK maps a virtual-key code to a Key. The extended flag separates
// NumpadEnter from Enter.
func KeyFromVK(vk, flags uint32) event.Key {
	if vk == vkReturn && flags&llkhfExtended != 0 {
		return event.NumpadEnter
	}
	if k, ok := keyByVK[vk]; ok {
		return k
	}
	return event.Unknown(vk)
}

// VKFromKey is the inverse of KeyFromVK. extended reports whether the key
// must be sent with KEYEVENTF_EXTENDEDKEY.
func VKFromKey(k event.Key) (vk uint32, extended bool, ok bool) {
	vk, ok = vkByKey[k]
	if !ok {
		if raw := k.RawCode(); raw > 0 && raw <= 0xFE {
			return raw, false, true
		}
		return 0, false, false
	}
	switch k {
	case event.NumpadEnter, event.ControlRight, event.AltRight,
		event.Insert, event.Delete, event.Home, event.End, event.PageUp, event.PageDown,
		event.ArrowUp, event.ArrowDown, event.ArrowLeft, event.ArrowRight,
		event.NumpadDivide, event.NumLock, event.PrintScreen:
		extended = true
	}
	return vk, extended, true
}
