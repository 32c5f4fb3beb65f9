// Package display describes monitors and the input-related system settings
// that platform adapters can report.
package display

import (
	"fmt"

	"github.com/bnema/inputhook/hook"
)

// Rect is an area in the global desktop coordinate space.
type Rect struct {
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= float64(r.X) && x < float64(r.X)+float64(r.Width) &&
		y >= float64(r.Y) && y < float64(r.Y)+float64(r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Info describes one monitor.
type Info struct {
	ID          uint32  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Bounds      Rect    `json:"bounds"`
	ScaleFactor float64 `json:"scale_factor"`
	// RefreshRate in Hz, 0 when unknown.
	RefreshRate float64 `json:"refresh_rate,omitempty"`
	IsPrimary   bool    `json:"is_primary"`
}

// SystemSettings holds input settings. A nil field was not available on
// this platform.
type SystemSettings struct {
	KeyboardRepeatRate         *uint32  `json:"keyboard_repeat_rate,omitempty"`
	KeyboardRepeatDelay        *uint32  `json:"keyboard_repeat_delay,omitempty"`
	MouseSensitivity           *float64 `json:"mouse_sensitivity,omitempty"`
	MouseAcceleration          *bool    `json:"mouse_acceleration,omitempty"`
	MouseAccelerationThreshold *float64 `json:"mouse_acceleration_threshold,omitempty"`
	// DoubleClickTime in milliseconds.
	DoubleClickTime *uint32 `json:"double_click_time,omitempty"`
	KeyboardLayout  *string `json:"keyboard_layout,omitempty"`
}

// Provider is implemented by platform adapters that can query displays.
type Provider interface {
	Displays() ([]Info, error)
	SystemSettings() (SystemSettings, error)
}

// Primary returns the primary display, or the first one when none is
// marked primary.
func Primary(p Provider) (Info, error) {
	displays, err := p.Displays()
	if err != nil {
		return Info{}, err
	}
	for _, d := range displays {
		if d.IsPrimary {
			return d, nil
		}
	}
	if len(displays) > 0 {
		return displays[0], nil
	}
	return Info{}, hook.NotSupported("no displays reported")
}

// At returns the display containing the point, or nil.
func At(p Provider, x, y float64) (*Info, error) {
	displays, err := p.Displays()
	if err != nil {
		return nil, err
	}
	for i := range displays {
		if displays[i].Bounds.Contains(x, y) {
			return &displays[i], nil
		}
	}
	return nil, nil
}

// MarkPrimary flags the display at the origin as primary, falling back to
// the first, unless one is already marked.
func MarkPrimary(displays []Info) {
	for _, d := range displays {
		if d.IsPrimary {
			return
		}
	}
	for i := range displays {
		if displays[i].Bounds.X == 0 && displays[i].Bounds.Y == 0 {
			displays[i].IsPrimary = true
			return
		}
	}
	if len(displays) > 0 {
		displays[0].IsPrimary = true
	}
}

// Uint32 and the helpers below build optional SystemSettings fields.
func Uint32(v uint32) *uint32    { return &v }
func Float64(v float64) *float64 { return &v }
func Bool(v bool) *bool          { return &v }
func String(v string) *string    { return &v }
