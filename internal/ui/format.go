package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/state"
	"github.com/charmbracelet/lipgloss"
)

var maskNames = []struct {
	bit  uint32
	name string
}{
	{state.Shift, "Shift"},
	{state.Ctrl, "Ctrl"},
	{state.Alt, "Alt"},
	{state.Meta, "Meta"},
	{state.CapsLock, "CapsLock"},
	{state.NumLock, "NumLock"},
	{state.ScrollLock, "ScrollLock"},
	{state.Button1, "Button1"},
	{state.Button2, "Button2"},
	{state.Button3, "Button3"},
	{state.Button4, "Button4"},
	{state.Button5, "Button5"},
}

// MaskNames lists the set bits of mask, modifiers first.
func MaskNames(mask uint32) []string {
	var names []string
	for _, m := range maskNames {
		if mask&m.bit != 0 {
			names = append(names, m.name)
		}
	}
	return names
}

// EventLine renders ev as one unstyled line.
func EventLine(ev event.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-13s", ev.Type)

	switch {
	case ev.Keyboard != nil:
		fmt.Fprintf(&b, " %s (raw %d)", ev.Keyboard.Key, ev.Keyboard.RawCode)
		if ev.Keyboard.Char != 0 {
			fmt.Fprintf(&b, " %q", ev.Keyboard.Char)
		}
	case ev.Mouse != nil:
		if ev.Mouse.Button != nil {
			fmt.Fprintf(&b, " %s", *ev.Mouse.Button)
		}
		fmt.Fprintf(&b, " at (%.0f, %.0f)", ev.Mouse.X, ev.Mouse.Y)
		if ev.Type == event.MouseClicked {
			fmt.Fprintf(&b, " x%d", ev.Mouse.Clicks)
		}
	case ev.Wheel != nil:
		fmt.Fprintf(&b, " %s %g at (%.0f, %.0f)", ev.Wheel.Direction, ev.Wheel.Delta, ev.Wheel.X, ev.Wheel.Y)
	}

	if names := MaskNames(ev.Mask); len(names) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(names, "+"))
	}
	return b.String()
}

// FormatEvent renders ev as a colored line.
func FormatEvent(ev event.Event) string {
	return eventStyle(ev.Type).Render(EventLine(ev))
}

func eventStyle(t event.Type) lipgloss.Style {
	switch t {
	case event.KeyPressed, event.KeyReleased, event.KeyTyped:
		return keyEventStyle
	case event.MousePressed, event.MouseReleased, event.MouseClicked:
		return buttonEventStyle
	case event.MouseMoved, event.MouseDragged:
		return motionEventStyle
	case event.MouseWheel:
		return wheelEventStyle
	}
	return hookEventStyle
}
