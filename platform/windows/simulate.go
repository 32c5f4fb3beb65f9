//go:build windows

package windows

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
)

var (
	procSendInput        = user32.NewProc("SendInput")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002

	mouseeventfMove        = 0x0001
	mouseeventfLeftDown    = 0x0002
	mouseeventfLeftUp      = 0x0004
	mouseeventfRightDown   = 0x0008
	mouseeventfRightUp     = 0x0010
	mouseeventfMiddleDown  = 0x0020
	mouseeventfMiddleUp    = 0x0040
	mouseeventfXDown       = 0x0080
	mouseeventfXUp         = 0x0100
	mouseeventfWheel       = 0x0800
	mouseeventfHWheel      = 0x1000
	mouseeventfVirtualDesk = 0x4000
	mouseeventfAbsolute    = 0x8000

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT is a tagged union sized by its largest member, MOUSEINPUT.
type mouseINPUT struct {
	Type uint32
	Mi   mouseInput
}

type keybdINPUT struct {
	Type uint32
	Ki   keybdInput
	_    [unsafe.Sizeof(mouseInput{}) - unsafe.Sizeof(keybdInput{})]byte
}

func sendMouse(mi mouseInput) error {
	in := mouseINPUT{Type: inputMouse, Mi: mi}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return hook.SimulateFailed("SendInput", err)
	}
	return nil
}

func sendKey(ki keybdInput) error {
	in := keybdINPUT{Type: inputKeyboard, Ki: ki}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return hook.SimulateFailed("SendInput", err)
	}
	return nil
}

func (a *Adapter) Simulate(ev event.Event) error {
	return hook.SimulateEvent(a, ev)
}

func (a *Adapter) KeyPress(k event.Key) error {
	return key(k, 0)
}

func (a *Adapter) KeyRelease(k event.Key) error {
	return key(k, keyeventfKeyUp)
}

func key(k event.Key, flags uint32) error {
	vk, extended, ok := VKFromKey(k)
	if !ok {
		return hook.SimulateFailed(fmt.Sprintf("no virtual-key code for %s", k), nil)
	}
	if extended {
		flags |= keyeventfExtendedKey
	}
	return sendKey(keybdInput{WVk: uint16(vk), DwFlags: flags})
}

func metric(index uintptr) int32 {
	v, _, _ := procGetSystemMetrics.Call(index)
	return int32(v)
}

// MouseMove moves the pointer to absolute desktop coordinates, normalized
// to the 0..65535 range SendInput expects across the virtual screen.
func (a *Adapter) MouseMove(x, y float64) error {
	left, top := float64(metric(smXVirtualScreen)), float64(metric(smYVirtualScreen))
	width, height := float64(metric(smCXVirtualScreen)), float64(metric(smCYVirtualScreen))
	if width <= 1 || height <= 1 {
		return hook.SimulateFailed("virtual screen size unavailable", nil)
	}

	nx := math.Round((x - left) * 65535 / (width - 1))
	ny := math.Round((y - top) * 65535 / (height - 1))
	return sendMouse(mouseInput{
		Dx:      int32(nx),
		Dy:      int32(ny),
		DwFlags: mouseeventfMove | mouseeventfAbsolute | mouseeventfVirtualDesk,
	})
}

func (a *Adapter) MousePress(b event.Button) error {
	flags, data, err := buttonFlags(b, true)
	if err != nil {
		return err
	}
	return sendMouse(mouseInput{DwFlags: flags, MouseData: data})
}

func (a *Adapter) MouseRelease(b event.Button) error {
	flags, data, err := buttonFlags(b, false)
	if err != nil {
		return err
	}
	return sendMouse(mouseInput{DwFlags: flags, MouseData: data})
}

func buttonFlags(b event.Button, down bool) (flags, data uint32, err error) {
	pick := func(d, u uint32) uint32 {
		if down {
			return d
		}
		return u
	}
	switch b {
	case event.Left:
		return pick(mouseeventfLeftDown, mouseeventfLeftUp), 0, nil
	case event.Right:
		return pick(mouseeventfRightDown, mouseeventfRightUp), 0, nil
	case event.Middle:
		return pick(mouseeventfMiddleDown, mouseeventfMiddleUp), 0, nil
	case event.Button4:
		return pick(mouseeventfXDown, mouseeventfXUp), 1, nil
	case event.Button5:
		return pick(mouseeventfXDown, mouseeventfXUp), 2, nil
	}
	return 0, 0, hook.SimulateFailed(fmt.Sprintf("button %s", b), hook.NotSupported("only buttons 1-5 can be simulated"))
}

// Scroll sends delta notches of WHEEL_DELTA each.
func (a *Adapter) Scroll(dir event.ScrollDirection, delta float64) error {
	amount := int32(math.Round(math.Abs(delta) * wheelDelta))
	if amount == 0 {
		amount = wheelDelta
	}
	flags := uint32(mouseeventfWheel)
	switch dir {
	case event.ScrollUp:
	case event.ScrollDown:
		amount = -amount
	case event.ScrollRight:
		flags = mouseeventfHWheel
	case event.ScrollLeft:
		flags = mouseeventfHWheel
		amount = -amount
	default:
		return hook.SimulateFailed(fmt.Sprintf("scroll direction %s", dir), nil)
	}
	return sendMouse(mouseInput{DwFlags: flags, MouseData: uint32(amount)})
}
