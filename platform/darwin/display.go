//go:build darwin

package darwin

/*
#cgo LDFLAGS: -framework CoreGraphics -framework Cocoa -framework Carbon

#include <CoreGraphics/CoreGraphics.h>
#include <Carbon/Carbon.h>
#import <Cocoa/Cocoa.h>

typedef struct {
	uint32_t id;
	double x, y, width, height;
	double pixelWidth;
	double refresh;
	int main;
} displayDesc;

static int listDisplays(displayDesc *out, int max) {
	CGDirectDisplayID ids[32];
	uint32_t count = 0;
	if (max > 32) {
		max = 32;
	}
	if (CGGetActiveDisplayList(max, ids, &count) != kCGErrorSuccess) {
		return -1;
	}
	for (uint32_t i = 0; i < count; i++) {
		CGRect r = CGDisplayBounds(ids[i]);
		out[i].id = ids[i];
		out[i].x = r.origin.x;
		out[i].y = r.origin.y;
		out[i].width = r.size.width;
		out[i].height = r.size.height;
		out[i].main = CGDisplayIsMain(ids[i]);
		out[i].pixelWidth = 0;
		out[i].refresh = 0;
		CGDisplayModeRef mode = CGDisplayCopyDisplayMode(ids[i]);
		if (mode != NULL) {
			out[i].pixelWidth = (double)CGDisplayModeGetPixelWidth(mode);
			out[i].refresh = CGDisplayModeGetRefreshRate(mode);
			CGDisplayModeRelease(mode);
		}
	}
	return (int)count;
}

static double keyRepeatInterval(void) { return [NSEvent keyRepeatInterval]; }
static double keyRepeatDelay(void)    { return [NSEvent keyRepeatDelay]; }
static double doubleClickInterval(void) { return [NSEvent doubleClickInterval]; }

static double mouseScaling(void) {
	double v = -1;
	CFPropertyListRef ref = CFPreferencesCopyAppValue(CFSTR("com.apple.mouse.scaling"), kCFPreferencesAnyApplication);
	if (ref == NULL) {
		return v;
	}
	if (CFGetTypeID(ref) == CFNumberGetTypeID()) {
		CFNumberGetValue((CFNumberRef)ref, kCFNumberDoubleType, &v);
	}
	CFRelease(ref);
	return v;
}

static int inputSourceID(char *buf, int size) {
	TISInputSourceRef src = TISCopyCurrentKeyboardLayoutInputSource();
	if (src == NULL) {
		return 0;
	}
	int ok = 0;
	CFStringRef id = (CFStringRef)TISGetInputSourceProperty(src, kTISPropertyInputSourceID);
	if (id != NULL) {
		ok = CFStringGetCString(id, buf, size, kCFStringEncodingUTF8);
	}
	CFRelease(src);
	return ok;
}
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/hook"
)

const maxDisplays = 32

func (a *Adapter) Displays() ([]display.Info, error) {
	var descs [maxDisplays]C.displayDesc
	n := int(C.listDisplays(&descs[0], maxDisplays))
	if n < 0 {
		return nil, hook.Platform("CGGetActiveDisplayList failed", nil)
	}

	displays := make([]display.Info, 0, n)
	for _, d := range descs[:n] {
		info := display.Info{
			ID:   uint32(d.id),
			Name: fmt.Sprintf("display-%d", uint32(d.id)),
			Bounds: display.Rect{
				X:      int32(d.x),
				Y:      int32(d.y),
				Width:  uint32(d.width),
				Height: uint32(d.height),
			},
			ScaleFactor: scaleOf(float64(d.pixelWidth), float64(d.width)),
			RefreshRate: float64(d.refresh),
			IsPrimary:   d.main != 0,
		}
		displays = append(displays, info)
	}
	display.MarkPrimary(displays)
	return displays, nil
}

// scaleOf is the backing pixel width over the point width.
func scaleOf(pixels, points float64) float64 {
	if pixels <= 0 || points <= 0 {
		return 1
	}
	return math.Round(pixels/points*100) / 100
}

func (a *Adapter) SystemSettings() (display.SystemSettings, error) {
	var s display.SystemSettings

	if interval := float64(C.keyRepeatInterval()); interval > 0 {
		s.KeyboardRepeatRate = display.Uint32(uint32(math.Round(1 / interval)))
	}
	if delay := float64(C.keyRepeatDelay()); delay > 0 {
		s.KeyboardRepeatDelay = display.Uint32(uint32(math.Round(delay * 1000)))
	}
	if dc := float64(C.doubleClickInterval()); dc > 0 {
		s.DoubleClickTime = display.Uint32(uint32(math.Round(dc * 1000)))
	}
	if v := float64(C.mouseScaling()); v >= 0 {
		s.MouseSensitivity = display.Float64(v)
		// A scaling of -1 in the defaults database disables acceleration.
		s.MouseAcceleration = display.Bool(v > 0)
	}

	buf := make([]byte, 256)
	if C.inputSourceID((*C.char)(unsafe.Pointer(&buf[0])), C.int(len(buf))) != 0 {
		s.KeyboardLayout = display.String(C.GoString((*C.char)(unsafe.Pointer(&buf[0]))))
	}
	return s, nil
}

// DoubleClickTime returns the system multi-click interval in milliseconds.
func DoubleClickTime() uint32 {
	return uint32(math.Round(float64(C.doubleClickInterval()) * 1000))
}
