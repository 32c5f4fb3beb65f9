package desktop

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/inputhook/display"
)

func scaleOr1(s float64) float64 {
	if s <= 0 {
		return 1
	}
	return s
}

type wlrMode struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Refresh float64 `json:"refresh"`
	Current bool    `json:"current"`
}

func parseWlrRandr(out []byte) ([]display.Info, error) {
	var outputs []struct {
		Name        string    `json:"name"`
		Enabled     bool      `json:"enabled"`
		Scale       float64   `json:"scale"`
		Primary     bool      `json:"primary"`
		Modes       []wlrMode `json:"modes"`
		CurrentMode *wlrMode  `json:"current_mode"`
		Position    struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"position"`
	}
	if err := json.Unmarshal(out, &outputs); err != nil {
		return nil, fmt.Errorf("decode wlr-randr json: %w", err)
	}

	var displays []display.Info
	for _, o := range outputs {
		if !o.Enabled {
			continue
		}
		mode := o.CurrentMode
		for i := range o.Modes {
			if o.Modes[i].Current {
				mode = &o.Modes[i]
				break
			}
		}
		if mode == nil || mode.Width <= 0 || mode.Height <= 0 {
			continue
		}
		displays = append(displays, display.Info{
			ID:   uint32(len(displays)),
			Name: o.Name,
			Bounds: display.Rect{
				X:      int32(o.Position.X),
				Y:      int32(o.Position.Y),
				Width:  uint32(mode.Width),
				Height: uint32(mode.Height),
			},
			ScaleFactor: scaleOr1(o.Scale),
			RefreshRate: mode.Refresh,
			IsPrimary:   o.Primary,
		})
	}
	return displays, nil
}

func parseHyprctl(out []byte) ([]display.Info, error) {
	var monitors []struct {
		ID          int     `json:"id"`
		Name        string  `json:"name"`
		Width       int     `json:"width"`
		Height      int     `json:"height"`
		RefreshRate float64 `json:"refreshRate"`
		X           int     `json:"x"`
		Y           int     `json:"y"`
		Scale       float64 `json:"scale"`
		Disabled    bool    `json:"disabled"`
	}
	if err := json.Unmarshal(out, &monitors); err != nil {
		return nil, fmt.Errorf("decode hyprctl json: %w", err)
	}

	var displays []display.Info
	for _, m := range monitors {
		if m.Disabled || m.Width <= 0 || m.Height <= 0 {
			continue
		}
		displays = append(displays, display.Info{
			ID:          uint32(m.ID),
			Name:        m.Name,
			Bounds:      display.Rect{X: int32(m.X), Y: int32(m.Y), Width: uint32(m.Width), Height: uint32(m.Height)},
			ScaleFactor: scaleOr1(m.Scale),
			RefreshRate: m.RefreshRate,
		})
	}
	return displays, nil
}

func parseSway(out []byte) ([]display.Info, error) {
	var outputs []struct {
		Name    string  `json:"name"`
		Active  bool    `json:"active"`
		Primary bool    `json:"primary"`
		Scale   float64 `json:"scale"`
		Rect    struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"rect"`
		CurrentMode struct {
			Width   int `json:"width"`
			Height  int `json:"height"`
			Refresh int `json:"refresh"` // mHz
		} `json:"current_mode"`
	}
	if err := json.Unmarshal(out, &outputs); err != nil {
		return nil, fmt.Errorf("decode swaymsg json: %w", err)
	}

	var displays []display.Info
	for _, o := range outputs {
		if !o.Active {
			continue
		}
		w, h := o.CurrentMode.Width, o.CurrentMode.Height
		if w <= 0 || h <= 0 {
			w, h = o.Rect.Width, o.Rect.Height
		}
		displays = append(displays, display.Info{
			ID:          uint32(len(displays)),
			Name:        o.Name,
			Bounds:      display.Rect{X: int32(o.Rect.X), Y: int32(o.Rect.Y), Width: uint32(w), Height: uint32(h)},
			ScaleFactor: scaleOr1(o.Scale),
			RefreshRate: float64(o.CurrentMode.Refresh) / 1000,
			IsPrimary:   o.Primary,
		})
	}
	return displays, nil
}

// parseXrandr reads `xrandr --query` text. Output lines look like
// "DP-1 connected primary 1920x1080+0+0 (normal ...)"; the indented mode
// line marked with '*' carries the refresh rate.
func parseXrandr(out []byte) ([]display.Info, error) {
	var displays []display.Info
	var cur *display.Info

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if cur != nil && cur.RefreshRate == 0 {
				cur.RefreshRate = currentRefresh(line)
			}
			continue
		}

		cur = nil
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "connected" {
			continue
		}
		info := display.Info{ID: uint32(len(displays)), Name: fields[0], ScaleFactor: 1}
		geometry := false
		for _, f := range fields[2:] {
			if f == "primary" {
				info.IsPrimary = true
				continue
			}
			if r, ok := parseGeometry(f); ok {
				info.Bounds = r
				geometry = true
				break
			}
		}
		if !geometry {
			// Connected but not active.
			continue
		}
		displays = append(displays, info)
		cur = &displays[len(displays)-1]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return displays, nil
}

// parseGeometry parses "WxH+X+Y". Offsets may be negative ("+-1920").
func parseGeometry(s string) (display.Rect, bool) {
	size, offsets, ok := strings.Cut(s, "+")
	if !ok {
		return display.Rect{}, false
	}
	ws, hs, ok := strings.Cut(size, "x")
	if !ok {
		return display.Rect{}, false
	}
	xs, ys, ok := strings.Cut(offsets, "+")
	if !ok {
		return display.Rect{}, false
	}

	w, err1 := strconv.ParseUint(ws, 10, 32)
	h, err2 := strconv.ParseUint(hs, 10, 32)
	x, err3 := strconv.ParseInt(xs, 10, 32)
	y, err4 := strconv.ParseInt(ys, 10, 32)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return display.Rect{}, false
	}
	return display.Rect{X: int32(x), Y: int32(y), Width: uint32(w), Height: uint32(h)}, true
}

func currentRefresh(modeLine string) float64 {
	for _, f := range strings.Fields(modeLine) {
		if !strings.Contains(f, "*") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimRight(f, "*+"), 64)
		if err == nil {
			return v
		}
	}
	return 0
}
