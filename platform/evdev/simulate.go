//go:build linux

package evdev

import (
	"fmt"
	"math"
	"sync"

	"github.com/ThomasT75/uinput"
	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
)

// VirtualDeviceName is the name of the uinput devices created for
// simulation. The listener skips devices with this name so injected events
// are not read back as physical input.
const VirtualDeviceName = "inputhook virtual input"

const uinputPath = "/dev/uinput"

// Simulator injects input through uinput. uinput only takes relative
// motion, so the last requested position is tracked here.
type Simulator struct {
	mu       sync.Mutex
	mouse    uinput.Mouse
	keyboard uinput.Keyboard
	x, y     float64
	closed   bool
}

func NewSimulator() (*Simulator, error) {
	mouse, err := uinput.CreateMouse(uinputPath, []byte(VirtualDeviceName))
	if err != nil {
		return nil, hook.PermissionDenied("create virtual mouse", err)
	}
	keyboard, err := uinput.CreateKeyboard(uinputPath, []byte(VirtualDeviceName))
	if err != nil {
		mouse.Close()
		return nil, hook.PermissionDenied("create virtual keyboard", err)
	}
	return &Simulator{mouse: mouse, keyboard: keyboard}, nil
}

func (s *Simulator) Simulate(ev event.Event) error {
	return hook.SimulateEvent(s, ev)
}

func (s *Simulator) KeyPress(k event.Key) error {
	return s.key(k, true)
}

func (s *Simulator) KeyRelease(k event.Key) error {
	return s.key(k, false)
}

func (s *Simulator) key(k event.Key, down bool) error {
	code, ok := CodeFromKey(k)
	if !ok {
		return hook.SimulateFailed(fmt.Sprintf("no evdev code for %s", k), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hook.SimulateFailed("simulator closed", nil)
	}

	var err error
	if down {
		err = s.keyboard.KeyDown(int(code))
	} else {
		err = s.keyboard.KeyUp(int(code))
	}
	if err != nil {
		return hook.SimulateFailed(fmt.Sprintf("key %s", k), err)
	}
	return nil
}

// Warp sets the tracked position without moving the pointer.
func (s *Simulator) Warp(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

// MouseMove moves the pointer by the difference to the last position.
func (s *Simulator) MouseMove(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hook.SimulateFailed("simulator closed", nil)
	}

	dx := int32(math.Round(x - s.x))
	dy := int32(math.Round(y - s.y))
	s.x, s.y = x, y
	if dx == 0 && dy == 0 {
		return nil
	}
	if err := s.mouse.Move(dx, dy); err != nil {
		return hook.SimulateFailed("mouse move", err)
	}
	return nil
}

func (s *Simulator) MousePress(b event.Button) error {
	return s.button(b, true)
}

func (s *Simulator) MouseRelease(b event.Button) error {
	return s.button(b, false)
}

func (s *Simulator) button(b event.Button, down bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hook.SimulateFailed("simulator closed", nil)
	}

	var err error
	switch b {
	case event.Left:
		if down {
			err = s.mouse.LeftPress()
		} else {
			err = s.mouse.LeftRelease()
		}
	case event.Right:
		if down {
			err = s.mouse.RightPress()
		} else {
			err = s.mouse.RightRelease()
		}
	case event.Middle:
		if down {
			err = s.mouse.MiddlePress()
		} else {
			err = s.mouse.MiddleRelease()
		}
	default:
		return hook.SimulateFailed(fmt.Sprintf("button %s", b), hook.NotSupported("uinput mouse has no side buttons"))
	}
	if err != nil {
		return hook.SimulateFailed(fmt.Sprintf("button %s", b), err)
	}
	return nil
}

// Scroll sends delta wheel notches, at least one.
func (s *Simulator) Scroll(dir event.ScrollDirection, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hook.SimulateFailed("simulator closed", nil)
	}

	n := int32(math.Max(1, math.Round(math.Abs(delta))))
	var err error
	switch dir {
	case event.ScrollUp:
		err = s.mouse.Wheel(false, n)
	case event.ScrollDown:
		err = s.mouse.Wheel(false, -n)
	case event.ScrollLeft:
		err = s.mouse.Wheel(true, -n)
	case event.ScrollRight:
		err = s.mouse.Wheel(true, n)
	default:
		return hook.SimulateFailed(fmt.Sprintf("scroll direction %s", dir), nil)
	}
	if err != nil {
		return hook.SimulateFailed("scroll", err)
	}
	return nil
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.mouse.Close()
	if e := s.keyboard.Close(); e != nil && err == nil {
		err = e
	}
	return err
}
