//go:build windows

// Package windows hooks input with low-level keyboard and mouse hooks and
// simulates it with SendInput.
package windows

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/slot"
	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/state"
	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procSetTimer            = user32.NewProc("SetTimer")
	procKillTimer           = user32.NewProc("KillTimer")
	procGetKeyState         = user32.NewProc("GetKeyState")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
	wmMouseHWheel = 0x020E

	wheelDelta = 120

	// pollInterval drives a thread timer so the message loop rechecks the
	// running flag even when no input arrives.
	pollInterval = 100 * time.Millisecond
)

type point struct{ X, Y int32 }

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type kbdLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msLLHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// session is the state hook callbacks reach through the process-wide slot.
// Low-level hook procedures carry no user pointer, so only one run can be
// installed at a time.
type session struct {
	tr     *translate.Translator
	listen func(event.Event)
	grab   func(event.Event) *event.Event
}

var (
	active slot.Slot[*session]

	keyboardProc = windows.NewCallback(keyboardHook)
	mouseProc    = windows.NewCallback(mouseHook)
)

// Adapter implements hook.Adapter, hook.Simulator and display.Provider.
type Adapter struct {
	mask     *state.Mask
	tr       *translate.Translator
	threadID atomic.Uint32
}

// New returns an adapter bound to mask, or the process-wide mask when nil.
func New(mask *state.Mask, opts ...translate.Option) *Adapter {
	if mask == nil {
		mask = state.Default()
	}
	return &Adapter{mask: mask, tr: translate.New(mask, opts...)}
}

func (a *Adapter) Mask() *state.Mask {
	return a.mask
}

func (a *Adapter) RunHook(running *atomic.Bool, h hook.EventHandler) error {
	return a.run(running, &session{tr: a.tr, listen: h.HandleEvent})
}

func (a *Adapter) RunGrabHook(running *atomic.Bool, h hook.GrabHandler) error {
	return a.run(running, &session{tr: a.tr, grab: h.HandleGrab})
}

func (r *session) deliver(ev event.Event) bool {
	if r.grab == nil {
		r.listen(ev)
		return true
	}
	return r.grab(ev) != nil
}

func (a *Adapter) run(running *atomic.Bool, r *session) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !active.Claim(r) {
		return hook.StartFailed("another hook is already installed in this process", nil)
	}
	defer active.Release()

	hMod, _, _ := procGetModuleHandle.Call(0)
	kb, _, err := procSetWindowsHookEx.Call(whKeyboardLL, keyboardProc, hMod, 0)
	if kb == 0 {
		return hook.StartFailed("SetWindowsHookEx(WH_KEYBOARD_LL)", err)
	}
	defer procUnhookWindowsHookEx.Call(kb)
	ms, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseProc, hMod, 0)
	if ms == 0 {
		return hook.StartFailed("SetWindowsHookEx(WH_MOUSE_LL)", err)
	}
	defer procUnhookWindowsHookEx.Call(ms)

	timer, _, _ := procSetTimer.Call(0, 0, uintptr(pollInterval/time.Millisecond), 0)
	if timer != 0 {
		defer procKillTimer.Call(0, timer)
	}

	a.threadID.Store(windows.GetCurrentThreadId())
	defer a.threadID.Store(0)

	a.tr.Reset()
	a.seedState()
	r.deliver(a.tr.HookEnabled())

	var m msg
	for running.Load() {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}

	r.deliver(a.tr.HookDisabled())
	return nil
}

// seedState copies lock key state and the cursor position into the
// translator so the first events carry the right mask and coordinates.
func (a *Adapter) seedState() {
	for vk, bit := range map[uintptr]uint32{
		vkCapital: state.CapsLock,
		vkNumLock: state.NumLock,
		vkScroll:  state.ScrollLock,
	} {
		if ks, _, _ := procGetKeyState.Call(vk); ks&1 != 0 {
			a.mask.Set(bit)
		}
	}
	var p point
	if ok, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p))); ok != 0 {
		a.tr.SetPosition(float64(p.X), float64(p.Y))
	}
}

// StopHook posts WM_QUIT to the hook thread.
func (a *Adapter) StopHook() error {
	tid := a.threadID.Load()
	if tid == 0 {
		return nil
	}
	ok, _, err := procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	if ok == 0 {
		return fmt.Errorf("PostThreadMessage: %w", err)
	}
	return nil
}

func callNext(nCode int, wParam, lParam uintptr) uintptr {
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func keyboardHook(nCode int, wParam, lParam uintptr) uintptr {
	r, ok := active.Load()
	if nCode < 0 || !ok {
		return callNext(nCode, wParam, lParam)
	}

	kb := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
	key := KeyFromVK(kb.VkCode, kb.Flags)

	var ev event.Event
	switch wParam {
	case wmKeyDown, wmSysKeyDown:
		ev = r.tr.KeyDown(key, kb.VkCode)
	case wmKeyUp, wmSysKeyUp:
		ev = r.tr.KeyUp(key, kb.VkCode)
	default:
		return callNext(nCode, wParam, lParam)
	}

	if !r.deliver(ev) {
		return 1
	}
	return callNext(nCode, wParam, lParam)
}

func mouseHook(nCode int, wParam, lParam uintptr) uintptr {
	r, ok := active.Load()
	if nCode < 0 || !ok {
		return callNext(nCode, wParam, lParam)
	}

	ms := (*msLLHookStruct)(unsafe.Pointer(lParam))
	x, y := float64(ms.Pt.X), float64(ms.Pt.Y)

	pass := true
	switch uint32(wParam) {
	case wmMouseMove:
		pass = r.deliver(r.tr.MoveTo(x, y))
	case wmLButtonDown, wmRButtonDown, wmMButtonDown, wmXButtonDown:
		r.tr.SetPosition(x, y)
		pass = r.deliver(r.tr.ButtonDown(buttonOf(uint32(wParam), ms.MouseData)))
	case wmLButtonUp, wmRButtonUp, wmMButtonUp, wmXButtonUp:
		b := buttonOf(uint32(wParam), ms.MouseData)
		r.tr.SetPosition(x, y)
		pass = r.deliver(r.tr.ButtonUp(b))
		if click, ok := r.tr.Click(b); ok {
			// The release already decided whether the input passes.
			r.deliver(click)
		}
	case wmMouseWheel, wmMouseHWheel:
		dir, delta := wheel(uint32(wParam), ms.MouseData)
		pass = r.deliver(r.tr.ScrollAt(x, y, dir, delta))
	default:
		return callNext(nCode, wParam, lParam)
	}

	if !pass {
		return 1
	}
	return callNext(nCode, wParam, lParam)
}

func buttonOf(message, mouseData uint32) event.Button {
	switch message {
	case wmLButtonDown, wmLButtonUp:
		return event.Left
	case wmRButtonDown, wmRButtonUp:
		return event.Right
	case wmMButtonDown, wmMButtonUp:
		return event.Middle
	}
	if mouseData>>16 == 2 {
		return event.Button5
	}
	return event.Button4
}

// wheel decodes the signed high word of mouseData in WHEEL_DELTA units.
func wheel(message, mouseData uint32) (event.ScrollDirection, float64) {
	raw := int16(mouseData >> 16)
	delta := float64(raw) / wheelDelta
	if message == wmMouseHWheel {
		if raw > 0 {
			return event.ScrollRight, delta
		}
		return event.ScrollLeft, delta
	}
	if raw > 0 {
		return event.ScrollUp, delta
	}
	return event.ScrollDown, delta
}
