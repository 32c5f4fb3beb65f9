//go:build darwin

package darwin

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation

#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>

static int postKey(CGKeyCode code, bool down) {
	CGEventRef ev = CGEventCreateKeyboardEvent(NULL, code, down);
	if (ev == NULL) {
		return 0;
	}
	CGEventPost(kCGHIDEventTap, ev);
	CFRelease(ev);
	return 1;
}

static int postMouse(CGEventType type, double x, double y, CGMouseButton button, int64_t number) {
	CGEventRef ev = CGEventCreateMouseEvent(NULL, type, CGPointMake(x, y), button);
	if (ev == NULL) {
		return 0;
	}
	CGEventSetIntegerValueField(ev, kCGMouseEventButtonNumber, number);
	CGEventPost(kCGHIDEventTap, ev);
	CFRelease(ev);
	return 1;
}

static int postScroll(int32_t vertical, int32_t horizontal) {
	CGEventRef ev = CGEventCreateScrollWheelEvent2(NULL, kCGScrollEventUnitLine, 2, vertical, horizontal, 0);
	if (ev == NULL) {
		return 0;
	}
	CGEventPost(kCGHIDEventTap, ev);
	CFRelease(ev);
	return 1;
}

static CGPoint currentLocation(void) {
	CGEventRef ev = CGEventCreate(NULL);
	CGPoint p = CGEventGetLocation(ev);
	CFRelease(ev);
	return p;
}
*/
import "C"

import (
	"fmt"
	"math"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/state"
)

func (a *Adapter) Simulate(ev event.Event) error {
	return hook.SimulateEvent(a, ev)
}

func (a *Adapter) KeyPress(k event.Key) error {
	return postKey(k, true)
}

func (a *Adapter) KeyRelease(k event.Key) error {
	return postKey(k, false)
}

func postKey(k event.Key, down bool) error {
	code, ok := CodeFromKey(k)
	if !ok {
		return hook.SimulateFailed(fmt.Sprintf("no key code for %s", k), nil)
	}
	if C.postKey(C.CGKeyCode(code), C.bool(down)) == 0 {
		return hook.SimulateFailed("CGEventCreateKeyboardEvent", nil)
	}
	return nil
}

// MouseMove warps the pointer to absolute desktop coordinates. While a
// simulated button is held the move is posted as a drag of that button.
func (a *Adapter) MouseMove(x, y float64) error {
	typ, button, number := C.CGEventType(C.kCGEventMouseMoved), C.CGMouseButton(C.kCGMouseButtonLeft), int64(0)
	held := a.simButtons.Load()
	switch {
	case held&state.ButtonMask(uint8(event.Left)) != 0:
		typ = C.kCGEventLeftMouseDragged
	case held&state.ButtonMask(uint8(event.Right)) != 0:
		typ, button, number = C.kCGEventRightMouseDragged, C.kCGMouseButtonRight, 1
	case held != 0:
		typ, button, number = C.kCGEventOtherMouseDragged, C.kCGMouseButtonCenter, 2
	}
	if C.postMouse(typ, C.double(x), C.double(y), button, C.int64_t(number)) == 0 {
		return hook.SimulateFailed("CGEventCreateMouseEvent", nil)
	}
	return nil
}

func (a *Adapter) MousePress(b event.Button) error {
	return a.postButton(b, true)
}

func (a *Adapter) MouseRelease(b event.Button) error {
	return a.postButton(b, false)
}

func (a *Adapter) postButton(b event.Button, down bool) error {
	if b == 0 {
		return hook.SimulateFailed("button 0", hook.NotSupported("buttons start at 1"))
	}
	number := int64(b) - 1

	var typ C.CGEventType
	var button C.CGMouseButton
	switch b {
	case event.Left:
		typ, button = C.kCGEventLeftMouseUp, C.kCGMouseButtonLeft
		if down {
			typ = C.kCGEventLeftMouseDown
		}
	case event.Right:
		typ, button = C.kCGEventRightMouseUp, C.kCGMouseButtonRight
		if down {
			typ = C.kCGEventRightMouseDown
		}
	default:
		typ, button = C.kCGEventOtherMouseUp, C.CGMouseButton(number)
		if down {
			typ = C.kCGEventOtherMouseDown
		}
	}

	bit := state.ButtonMask(uint8(b))
	if down {
		a.simButtons.Or(bit)
	} else {
		a.simButtons.And(^bit)
	}

	p := C.currentLocation()
	if C.postMouse(typ, p.x, p.y, button, C.int64_t(number)) == 0 {
		return hook.SimulateFailed("CGEventCreateMouseEvent", nil)
	}
	return nil
}

// Scroll posts delta lines, at least one.
func (a *Adapter) Scroll(dir event.ScrollDirection, delta float64) error {
	n := int32(math.Round(math.Abs(delta)))
	if n == 0 {
		n = 1
	}
	var vertical, horizontal int32
	switch dir {
	case event.ScrollUp:
		vertical = n
	case event.ScrollDown:
		vertical = -n
	case event.ScrollLeft:
		horizontal = n
	case event.ScrollRight:
		horizontal = -n
	default:
		return hook.SimulateFailed(fmt.Sprintf("scroll direction %s", dir), nil)
	}
	if C.postScroll(C.int32_t(vertical), C.int32_t(horizontal)) == 0 {
		return hook.SimulateFailed("CGEventCreateScrollWheelEvent2", nil)
	}
	return nil
}
