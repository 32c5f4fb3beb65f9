//go:build linux

package evdev

import (
	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/translate"
	evdev "github.com/gvalkov/golang-evdev"
)

const (
	keyRelease = 0
	keyPress   = 1
	keyRepeat  = 2
)

// BTN_* codes between BTN_LEFT and BTN_TASK are mouse buttons.
const (
	btnFirst = evdev.BTN_LEFT
	btnLast  = evdev.BTN_TASK
)

// frame accumulates one device's events up to SYN_REPORT, so a diagonal
// motion becomes one event instead of two.
type frame struct {
	tr *translate.Translator

	dx, dy     float64
	absX, absY float64
	hasRel     bool
	hasAbsX    bool
	hasAbsY    bool
}

func newFrame(tr *translate.Translator) *frame {
	return &frame{tr: tr}
}

// feed converts one raw event. Motion is held back until the frame ends;
// everything else is emitted immediately.
func (f *frame) feed(ev evdev.InputEvent) []event.Event {
	switch ev.Type {
	case evdev.EV_SYN:
		switch ev.Code {
		case evdev.SYN_REPORT:
			return f.flush()
		case evdev.SYN_DROPPED:
			f.reset()
		}
	case evdev.EV_KEY:
		if ev.Code >= btnFirst && ev.Code <= btnLast {
			return f.button(ev)
		}
		return f.key(ev)
	case evdev.EV_REL:
		return f.rel(ev)
	case evdev.EV_ABS:
		switch ev.Code {
		case evdev.ABS_X:
			f.absX, f.hasAbsX = float64(ev.Value), true
		case evdev.ABS_Y:
			f.absY, f.hasAbsY = float64(ev.Value), true
		}
	}
	return nil
}

func (f *frame) key(ev evdev.InputEvent) []event.Event {
	k := KeyFromCode(ev.Code)
	raw := uint32(ev.Code)
	switch ev.Value {
	case keyPress:
		return []event.Event{f.tr.KeyDown(k, raw)}
	case keyRelease:
		return []event.Event{f.tr.KeyUp(k, raw)}
	case keyRepeat:
		// Repeats report a press without touching lock state again.
		return []event.Event{event.NewKeyPressed(k, raw, f.tr.Mask().Get())}
	}
	return nil
}

func (f *frame) button(ev evdev.InputEvent) []event.Event {
	// Pending motion belongs before the button change.
	out := f.flush()
	b := buttonFromCode(ev.Code)
	switch ev.Value {
	case keyPress:
		out = append(out, f.tr.ButtonDown(b))
	case keyRelease:
		out = append(out, f.tr.ButtonUp(b))
		if click, ok := f.tr.Click(b); ok {
			out = append(out, click)
		}
	}
	return out
}

func (f *frame) rel(ev evdev.InputEvent) []event.Event {
	v := float64(ev.Value)
	switch ev.Code {
	case evdev.REL_X:
		f.dx += v
		f.hasRel = true
	case evdev.REL_Y:
		f.dy += v
		f.hasRel = true
	case evdev.REL_WHEEL:
		dir := event.ScrollDown
		if v > 0 {
			dir = event.ScrollUp
		}
		return append(f.flush(), f.tr.Scroll(dir, v))
	case evdev.REL_HWHEEL:
		dir := event.ScrollLeft
		if v > 0 {
			dir = event.ScrollRight
		}
		return append(f.flush(), f.tr.Scroll(dir, v))
	}
	return nil
}

func (f *frame) flush() []event.Event {
	var out []event.Event
	if f.hasAbsX || f.hasAbsY {
		x, y := f.tr.Position()
		if f.hasAbsX {
			x = f.absX
		}
		if f.hasAbsY {
			y = f.absY
		}
		out = append(out, f.tr.MoveTo(x, y))
	}
	if f.hasRel && (f.dx != 0 || f.dy != 0) {
		out = append(out, f.tr.MoveBy(f.dx, f.dy))
	}
	f.reset()
	return out
}

func (f *frame) reset() {
	f.dx, f.dy = 0, 0
	f.hasRel, f.hasAbsX, f.hasAbsY = false, false, false
}

func buttonFromCode(code uint16) event.Button {
	switch code {
	case evdev.BTN_LEFT:
		return event.Left
	case evdev.BTN_RIGHT:
		return event.Right
	case evdev.BTN_MIDDLE:
		return event.Middle
	case evdev.BTN_SIDE:
		return event.Button4
	case evdev.BTN_EXTRA:
		return event.Button5
	}
	return event.Button(code - btnFirst + 1)
}
