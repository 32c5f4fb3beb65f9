package desktop

import (
	"context"
	"strconv"
	"strings"

	"github.com/bnema/inputhook/display"
)

const (
	gnomeKeyboard = "org.gnome.desktop.peripherals.keyboard"
	gnomeMouse    = "org.gnome.desktop.peripherals.mouse"
	gnomeSources  = "org.gnome.desktop.input-sources"
)

// SystemSettings gathers what gsettings, xset and setxkbmap report. Fields
// no tool could answer stay nil; it never fails outright.
func (d *Detector) SystemSettings() (display.SystemSettings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var s display.SystemSettings
	d.gnomeSettings(ctx, &s)
	if s.KeyboardRepeatRate == nil || s.MouseAccelerationThreshold == nil {
		if out, err := d.run(ctx, "xset", "q"); err == nil {
			mergeXset(&s, string(out))
		}
	}
	if s.KeyboardLayout == nil {
		if out, err := d.run(ctx, "setxkbmap", "-query"); err == nil {
			if layout := parseXkbLayout(string(out)); layout != "" {
				s.KeyboardLayout = display.String(layout)
			}
		}
	}
	return s, nil
}

func (d *Detector) gsettings(ctx context.Context, schema, key string) (string, bool) {
	out, err := d.run(ctx, "gsettings", "get", schema, key)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(out))
	// Typed GVariant output, e.g. "uint32 30".
	if typ, rest, ok := strings.Cut(v, " "); ok && (strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int")) {
		v = rest
	}
	return v, v != ""
}

func (d *Detector) gnomeSettings(ctx context.Context, s *display.SystemSettings) {
	if v, ok := d.gsettings(ctx, gnomeKeyboard, "repeat-interval"); ok {
		if ms, err := strconv.ParseUint(v, 10, 32); err == nil && ms > 0 {
			s.KeyboardRepeatRate = display.Uint32(uint32(1000 / ms))
		}
	}
	if v, ok := d.gsettings(ctx, gnomeKeyboard, "delay"); ok {
		if ms, err := strconv.ParseUint(v, 10, 32); err == nil {
			s.KeyboardRepeatDelay = display.Uint32(uint32(ms))
		}
	}
	if v, ok := d.gsettings(ctx, gnomeMouse, "speed"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.MouseSensitivity = display.Float64(f)
		}
	}
	if v, ok := d.gsettings(ctx, gnomeMouse, "accel-profile"); ok {
		s.MouseAcceleration = display.Bool(strings.Trim(v, "'") != "flat")
	}
	if v, ok := d.gsettings(ctx, gnomeMouse, "double-click"); ok {
		if ms, err := strconv.ParseUint(v, 10, 32); err == nil {
			s.DoubleClickTime = display.Uint32(uint32(ms))
		}
	}
	if v, ok := d.gsettings(ctx, gnomeSources, "sources"); ok {
		if layout := parseGnomeSources(v); layout != "" {
			s.KeyboardLayout = display.String(layout)
		}
	}
}

// parseGnomeSources returns the first xkb layout of "[('xkb', 'us'), ...]".
func parseGnomeSources(v string) string {
	_, rest, ok := strings.Cut(v, "('xkb', '")
	if !ok {
		return ""
	}
	layout, _, _ := strings.Cut(rest, "'")
	return layout
}

// mergeXset fills unset fields from `xset q`, whose relevant lines read
// "auto repeat delay:  660    repeat rate:  25" and
// "acceleration:  2/1    threshold:  4".
func mergeXset(s *display.SystemSettings, out string) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		for i := 0; i+1 < len(fields); i++ {
			val := fields[i+1]
			switch fields[i] {
			case "delay:":
				if n, err := strconv.ParseUint(val, 10, 32); err == nil && s.KeyboardRepeatDelay == nil {
					s.KeyboardRepeatDelay = display.Uint32(uint32(n))
				}
			case "rate:":
				if n, err := strconv.ParseUint(val, 10, 32); err == nil && s.KeyboardRepeatRate == nil {
					s.KeyboardRepeatRate = display.Uint32(uint32(n))
				}
			case "acceleration:":
				num, den, _ := strings.Cut(val, "/")
				n, err1 := strconv.ParseFloat(num, 64)
				dv, err2 := strconv.ParseFloat(den, 64)
				if err1 == nil && err2 == nil && dv != 0 {
					if s.MouseSensitivity == nil {
						s.MouseSensitivity = display.Float64(n / dv)
					}
					if s.MouseAcceleration == nil {
						s.MouseAcceleration = display.Bool(n/dv != 1)
					}
				}
			case "threshold:":
				if f, err := strconv.ParseFloat(val, 64); err == nil && s.MouseAccelerationThreshold == nil {
					s.MouseAccelerationThreshold = display.Float64(f)
				}
			}
		}
	}
}

func parseXkbLayout(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "layout:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
