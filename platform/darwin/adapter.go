//go:build darwin

// Package darwin hooks input with a Quartz event tap and simulates it by
// posting CGEvents. The process needs the Accessibility or Input Monitoring
// permission, otherwise the tap cannot be created.
package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>

extern CGEventRef goTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static CFMachPortRef createTap(int listenOnly) {
	CGEventMask mask = CGEventMaskBit(kCGEventKeyDown)
		| CGEventMaskBit(kCGEventKeyUp)
		| CGEventMaskBit(kCGEventFlagsChanged)
		| CGEventMaskBit(kCGEventMouseMoved)
		| CGEventMaskBit(kCGEventLeftMouseDown)
		| CGEventMaskBit(kCGEventLeftMouseUp)
		| CGEventMaskBit(kCGEventRightMouseDown)
		| CGEventMaskBit(kCGEventRightMouseUp)
		| CGEventMaskBit(kCGEventOtherMouseDown)
		| CGEventMaskBit(kCGEventOtherMouseUp)
		| CGEventMaskBit(kCGEventLeftMouseDragged)
		| CGEventMaskBit(kCGEventRightMouseDragged)
		| CGEventMaskBit(kCGEventOtherMouseDragged)
		| CGEventMaskBit(kCGEventScrollWheel);

	return CGEventTapCreate(kCGSessionEventTap,
		kCGHeadInsertEventTap,
		listenOnly ? kCGEventTapOptionListenOnly : kCGEventTapOptionDefault,
		mask,
		goTapCallback,
		NULL);
}

static CFRunLoopSourceRef attachTap(CFMachPortRef tap) {
	CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
	CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
	CGEventTapEnable(tap, true);
	return source;
}

static void detachTap(CFMachPortRef tap, CFRunLoopSourceRef source) {
	CGEventTapEnable(tap, false);
	CFRunLoopRemoveSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
	CFRelease(source);
	CFMachPortInvalidate(tap);
	CFRelease(tap);
}

static int runOnce(double seconds) {
	return CFRunLoopRunInMode(kCFRunLoopDefaultMode, seconds, false);
}

static CGPoint cursorLocation(void) {
	CGEventRef ev = CGEventCreate(NULL);
	CGPoint p = CGEventGetLocation(ev);
	CFRelease(ev);
	return p;
}

static UniChar typedChar(CGEventRef ev) {
	UniChar buf[4];
	UniCharCount n = 0;
	CGEventKeyboardGetUnicodeString(ev, 4, &n, buf);
	return n == 1 ? buf[0] : 0;
}
*/
import "C"

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unicode"
	"unsafe"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/slot"
	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/state"
)

// pollInterval bounds how long the run loop sleeps before it rechecks the
// running flag.
const pollInterval = 100 * time.Millisecond

// session is what the tap callback reaches through the process-wide slot.
type session struct {
	tr     *translate.Translator
	mask   *state.Mask
	tap    C.CFMachPortRef
	listen func(event.Event)
	grab   func(event.Event) *event.Event
}

var active slot.Slot[*session]

// Adapter implements hook.Adapter, hook.Simulator and display.Provider.
type Adapter struct {
	mask *state.Mask
	tr   *translate.Translator

	mu   sync.Mutex
	loop C.CFRunLoopRef

	// Buttons held by simulated presses, so moves become drags.
	simButtons atomic.Uint32
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
	return a.run(running, &session{tr: a.tr, mask: a.mask, listen: h.HandleEvent}, true)
}

func (a *Adapter) RunGrabHook(running *atomic.Bool, h hook.GrabHandler) error {
	return a.run(running, &session{tr: a.tr, mask: a.mask, grab: h.HandleGrab}, false)
}

func (s *session) deliver(ev event.Event) bool {
	if s.grab == nil {
		s.listen(ev)
		return true
	}
	return s.grab(ev) != nil
}

func (a *Adapter) run(running *atomic.Bool, s *session, listenOnly bool) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !active.Claim(s) {
		return hook.StartFailed("another hook is already installed in this process", nil)
	}
	defer active.Release()

	var lo C.int
	if listenOnly {
		lo = 1
	}
	tap := C.createTap(lo)
	if tap == nil {
		return hook.PermissionDenied("event tap creation failed, grant Accessibility or Input Monitoring access", nil)
	}
	s.tap = tap
	source := C.attachTap(tap)
	defer C.detachTap(tap, source)

	a.mu.Lock()
	a.loop = C.CFRunLoopGetCurrent()
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.loop = nil
		a.mu.Unlock()
	}()

	a.tr.Reset()
	p := C.cursorLocation()
	a.tr.SetPosition(float64(p.x), float64(p.y))
	s.deliver(a.tr.HookEnabled())

	for running.Load() {
		C.runOnce(C.double(pollInterval.Seconds()))
	}

	s.deliver(a.tr.HookDisabled())
	return nil
}

// StopHook wakes the run loop so it notices the cleared running flag.
func (a *Adapter) StopHook() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loop != nil {
		C.CFRunLoopStop(a.loop)
	}
	return nil
}

// modifierBits converts CGEventFlags to state modifier bits.
func modifierBits(flags uint64) uint32 {
	var bits uint32
	if flags&flagShift != 0 {
		bits |= state.Shift
	}
	if flags&flagControl != 0 {
		bits |= state.Ctrl
	}
	if flags&flagAlternate != 0 {
		bits |= state.Alt
	}
	if flags&flagCommand != 0 {
		bits |= state.Meta
	}
	return bits
}

//export goTapCallback
func goTapCallback(proxy C.CGEventTapProxy, typ C.CGEventType, ev C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	s, ok := active.Load()
	if !ok {
		return ev
	}

	switch typ {
	case C.kCGEventTapDisabledByTimeout, C.kCGEventTapDisabledByUserInput:
		C.CGEventTapEnable(s.tap, true)
		return ev
	}

	if !s.handle(typ, ev) {
		return nil
	}
	return ev
}

// handle converts one CGEvent and reports whether it should pass on.
func (s *session) handle(typ C.CGEventType, ev C.CGEventRef) bool {
	loc := C.CGEventGetLocation(ev)
	x, y := float64(loc.x), float64(loc.y)

	switch typ {
	case C.kCGEventKeyDown:
		code := uint16(C.CGEventGetIntegerValueField(ev, C.kCGKeyboardEventKeycode))
		key := KeyFromCode(code)
		pass := s.deliver(s.tr.KeyDown(key, uint32(code)))
		if ch := rune(C.typedChar(ev)); ch != 0 && unicode.IsPrint(ch) && s.mask.Get()&(state.Ctrl|state.Meta) == 0 {
			s.deliver(s.tr.KeyTyped(key, uint32(code), ch))
		}
		return pass

	case C.kCGEventKeyUp:
		code := uint16(C.CGEventGetIntegerValueField(ev, C.kCGKeyboardEventKeycode))
		return s.deliver(s.tr.KeyUp(KeyFromCode(code), uint32(code)))

	case C.kCGEventFlagsChanged:
		code := uint16(C.CGEventGetIntegerValueField(ev, C.kCGKeyboardEventKeycode))
		flags := uint64(C.CGEventGetFlags(ev))
		if code == kvkCapsLock {
			// Caps Lock reports once per toggle, never as a held key.
			if (flags&flagAlphaShift != 0) == s.mask.Has(state.CapsLock) {
				return true
			}
			pass := s.deliver(s.tr.KeyDown(event.CapsLock, uint32(code)))
			s.deliver(s.tr.KeyUp(event.CapsLock, uint32(code)))
			return pass
		}
		if out, ok := s.tr.FlagsChanged(modifierBits(flags), KeyFromCode(code), uint32(code)); ok {
			return s.deliver(out)
		}
		return true

	case C.kCGEventMouseMoved, C.kCGEventLeftMouseDragged, C.kCGEventRightMouseDragged, C.kCGEventOtherMouseDragged:
		return s.deliver(s.tr.MoveTo(x, y))

	case C.kCGEventLeftMouseDown, C.kCGEventRightMouseDown, C.kCGEventOtherMouseDown:
		s.tr.SetPosition(x, y)
		return s.deliver(s.tr.ButtonDown(buttonOf(typ, ev)))

	case C.kCGEventLeftMouseUp, C.kCGEventRightMouseUp, C.kCGEventOtherMouseUp:
		b := buttonOf(typ, ev)
		s.tr.SetPosition(x, y)
		pass := s.deliver(s.tr.ButtonUp(b))
		if click, ok := s.tr.Click(b); ok {
			s.deliver(click)
		}
		return pass

	case C.kCGEventScrollWheel:
		vertical := int64(C.CGEventGetIntegerValueField(ev, C.kCGScrollWheelEventDeltaAxis1))
		horizontal := int64(C.CGEventGetIntegerValueField(ev, C.kCGScrollWheelEventDeltaAxis2))
		pass := true
		if vertical != 0 {
			dir, delta := scrollVertical(vertical)
			pass = s.deliver(s.tr.ScrollAt(x, y, dir, delta))
		}
		if horizontal != 0 {
			dir, delta := scrollHorizontal(horizontal)
			pass = s.deliver(s.tr.ScrollAt(x, y, dir, delta)) && pass
		}
		return pass
	}
	return true
}

func buttonOf(typ C.CGEventType, ev C.CGEventRef) event.Button {
	switch typ {
	case C.kCGEventLeftMouseDown, C.kCGEventLeftMouseUp:
		return event.Left
	case C.kCGEventRightMouseDown, C.kCGEventRightMouseUp:
		return event.Right
	}
	return buttonFromNumber(int64(C.CGEventGetIntegerValueField(ev, C.kCGMouseEventButtonNumber)))
}

// buttonFromNumber maps a zero-based CGMouseButton to a Button.
func buttonFromNumber(n int64) event.Button {
	if n < 0 || n > 254 {
		return event.Middle
	}
	return event.Button(n + 1)
}

// Axis 1 is positive when scrolling up.
func scrollVertical(v int64) (event.ScrollDirection, float64) {
	if v > 0 {
		return event.ScrollUp, float64(v)
	}
	return event.ScrollDown, float64(v)
}

// Axis 2 is positive when scrolling left.
func scrollHorizontal(v int64) (event.ScrollDirection, float64) {
	if v > 0 {
		return event.ScrollLeft, float64(v)
	}
	return event.ScrollRight, float64(v)
}
