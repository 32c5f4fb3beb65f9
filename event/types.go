package event

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the kind of an Event.
type Type uint8

const (
	HookEnabled Type = iota
	HookDisabled
	KeyPressed
	KeyReleased
	KeyTyped
	MousePressed
	MouseReleased
	MouseClicked
	MouseMoved
	MouseDragged
	MouseWheel
)

var typeNames = [...]string{
	HookEnabled:   "HookEnabled",
	HookDisabled:  "HookDisabled",
	KeyPressed:    "KeyPressed",
	KeyReleased:   "KeyReleased",
	KeyTyped:      "KeyTyped",
	MousePressed:  "MousePressed",
	MouseReleased: "MouseReleased",
	MouseClicked:  "MouseClicked",
	MouseMoved:    "MouseMoved",
	MouseDragged:  "MouseDragged",
	MouseWheel:    "MouseWheel",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("invalid event type %d", t)
	}
	return []byte(typeNames[t]), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	for i, name := range typeNames {
		if name == string(text) {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", text)
}

// IsLifecycle reports whether t is HookEnabled or HookDisabled.
func (t Type) IsLifecycle() bool {
	return t == HookEnabled || t == HookDisabled
}

// Button is a 1-indexed mouse button. Values outside 1..5 are unnamed.
type Button uint8

const (
	Left    Button = 1
	Right   Button = 2
	Middle  Button = 3
	Button4 Button = 4
	Button5 Button = 5
)

// ButtonFromNumber is the inverse of Button.Number.
func ButtonFromNumber(n uint8) Button {
	return Button(n)
}

// Number returns the canonical 1-indexed button number.
func (b Button) Number() uint8 {
	return uint8(b)
}

func (b Button) IsUnknown() bool {
	return b < Left || b > Button5
}

func (b Button) String() string {
	switch b {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Middle:
		return "Middle"
	case Button4:
		return "Button4"
	case Button5:
		return "Button5"
	}
	return "Unknown(" + strconv.Itoa(int(b)) + ")"
}

func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	s := string(text)
	for n := Left; n <= Button5; n++ {
		if n.String() == s {
			*b = n
			return nil
		}
	}
	if inner, ok := strings.CutPrefix(s, "Unknown("); ok {
		if inner, ok = strings.CutSuffix(inner, ")"); ok {
			n, err := strconv.ParseUint(inner, 10, 8)
			if err == nil {
				*b = Button(n)
				return nil
			}
		}
	}
	return fmt.Errorf("unknown button %q", s)
}

// ScrollDirection is the direction of a wheel rotation, independent of the
// platform's sign convention.
type ScrollDirection uint8

const (
	ScrollUp ScrollDirection = iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

var directionNames = [...]string{
	ScrollUp:    "Up",
	ScrollDown:  "Down",
	ScrollLeft:  "Left",
	ScrollRight: "Right",
}

func (d ScrollDirection) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "ScrollDirection(" + strconv.Itoa(int(d)) + ")"
}

// IsVertical reports whether d is Up or Down.
func (d ScrollDirection) IsVertical() bool {
	return d == ScrollUp || d == ScrollDown
}

func (d ScrollDirection) MarshalText() ([]byte, error) {
	if int(d) >= len(directionNames) {
		return nil, fmt.Errorf("invalid scroll direction %d", d)
	}
	return []byte(directionNames[d]), nil
}

func (d *ScrollDirection) UnmarshalText(text []byte) error {
	for i, name := range directionNames {
		if name == string(text) {
			*d = ScrollDirection(i)
			return nil
		}
	}
	return fmt.Errorf("unknown scroll direction %q", text)
}
