package hook

import (
	"sync/atomic"

	"github.com/bnema/inputhook/event"
)

// EventHandler receives events in listen mode. It runs on the adapter's
// thread and must return quickly.
type EventHandler interface {
	HandleEvent(ev event.Event)
}

// GrabHandler receives events in grab mode. Returning nil consumes the
// event; returning an event passes that event through, possibly modified.
type GrabHandler interface {
	HandleGrab(ev event.Event) *event.Event
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ev event.Event)

func (f EventHandlerFunc) HandleEvent(ev event.Event) { f(ev) }

// GrabHandlerFunc adapts a function to GrabHandler.
type GrabHandlerFunc func(ev event.Event) *event.Event

func (f GrabHandlerFunc) HandleGrab(ev event.Event) *event.Event { return f(ev) }

// Pass returns a pass-through result for ev.
func Pass(ev event.Event) *event.Event {
	return &ev
}

// Adapter is the platform side of a hook: it registers with the OS,
// translates native events and calls the handler.
//
// RunHook and RunGrabHook block. They deliver HookEnabled before the first
// input event and HookDisabled after the last, and return once running is
// cleared or StopHook is called. RunGrabHook degrades to listen behaviour on
// platforms without interception and logs a warning.
type Adapter interface {
	RunHook(running *atomic.Bool, h EventHandler) error
	RunGrabHook(running *atomic.Bool, h GrabHandler) error
	// StopHook unblocks the adapter loop. It is safe to call from any
	// goroutine.
	StopHook() error
}

// Simulator injects synthetic input.
type Simulator interface {
	Simulate(ev event.Event) error
	KeyPress(k event.Key) error
	KeyRelease(k event.Key) error
	MouseMove(x, y float64) error
	MousePress(b event.Button) error
	MouseRelease(b event.Button) error
	Scroll(dir event.ScrollDirection, delta float64) error
}

// SimulateEvent dispatches ev to the matching Simulator primitive. Adapters
// use it to implement Simulate.
func SimulateEvent(s Simulator, ev event.Event) error {
	switch {
	case ev.IsKeyboard() && ev.Keyboard == nil,
		ev.Type == event.MouseWheel && ev.Wheel == nil,
		ev.IsMouse() && ev.Type != event.MouseWheel && ev.Mouse == nil:
		return SimulateFailed(ev.Type.String()+" event has no payload", nil)
	}

	switch ev.Type {
	case event.KeyPressed:
		return s.KeyPress(ev.Keyboard.Key)
	case event.KeyReleased:
		return s.KeyRelease(ev.Keyboard.Key)
	case event.KeyTyped:
		if err := s.KeyPress(ev.Keyboard.Key); err != nil {
			return err
		}
		return s.KeyRelease(ev.Keyboard.Key)
	case event.MousePressed:
		return s.MousePress(buttonOf(ev))
	case event.MouseReleased:
		return s.MouseRelease(buttonOf(ev))
	case event.MouseClicked:
		b := buttonOf(ev)
		for i := 0; i < int(max(ev.Mouse.Clicks, 1)); i++ {
			if err := s.MousePress(b); err != nil {
				return err
			}
			if err := s.MouseRelease(b); err != nil {
				return err
			}
		}
		return nil
	case event.MouseMoved, event.MouseDragged:
		return s.MouseMove(ev.Mouse.X, ev.Mouse.Y)
	case event.MouseWheel:
		return s.Scroll(ev.Wheel.Direction, ev.Wheel.Delta)
	case event.HookEnabled, event.HookDisabled:
		return nil
	}
	return SimulateFailed("unsupported event type "+ev.Type.String(), nil)
}

func buttonOf(ev event.Event) event.Button {
	if b, ok := ev.Button(); ok {
		return b
	}
	return event.Left
}
