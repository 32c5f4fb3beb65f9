package desktop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers commands keyed by "name arg1 arg2".
type fakeRunner map[string]string

func (f fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	out, ok := f[key]
	if !ok {
		return nil, errors.New("executable file not found in $PATH")
	}
	return []byte(out), nil
}

const wlrRandrJSON = `[
  {"name":"DP-1","enabled":true,"scale":1.5,
   "modes":[{"width":2560,"height":1440,"refresh":59.951,"current":false},
            {"width":3840,"height":2160,"refresh":60.0,"current":true}],
   "position":{"x":0,"y":0}},
  {"name":"HDMI-A-1","enabled":true,"scale":1.0,
   "current_mode":{"width":1920,"height":1080,"refresh":74.97},
   "position":{"x":-1920,"y":0}},
  {"name":"eDP-1","enabled":false,"modes":[],"position":{"x":0,"y":0}}
]`

const hyprctlJSON = `[
  {"id":3,"name":"DP-2","width":1920,"height":1080,"refreshRate":143.98,"x":1920,"y":0,"scale":1.0},
  {"id":1,"name":"DP-1","width":1920,"height":1080,"refreshRate":60,"x":0,"y":0,"scale":0}
]`

const swayJSON = `[
  {"name":"eDP-1","active":true,"primary":false,"scale":2.0,
   "rect":{"x":0,"y":0,"width":1280,"height":800},
   "current_mode":{"width":2560,"height":1600,"refresh":60001}},
  {"name":"DP-3","active":false}
]`

const xrandrText = `Screen 0: minimum 8 x 8, current 3840 x 1080, maximum 32767 x 32767
HDMI-1 connected 1920x1080+-1920+0 (normal left inverted right x axis y axis) 527mm x 296mm
   1920x1080     60.00 +  74.97*
   1280x720      60.00
DP-1 connected primary 1920x1080+0+0 (normal left inverted right x axis y axis) 527mm x 296mm
   1920x1080     60.00*+  50.00
DP-2 disconnected (normal left inverted right x axis y axis)
DP-3 connected (normal left inverted right x axis y axis)
   1920x1080     60.00 +
`

func TestParseWlrRandr(t *testing.T) {
	displays, err := parseWlrRandr([]byte(wlrRandrJSON))
	require.NoError(t, err)
	require.Len(t, displays, 2)

	assert.Equal(t, "DP-1", displays[0].Name)
	assert.Equal(t, display.Rect{X: 0, Y: 0, Width: 3840, Height: 2160}, displays[0].Bounds)
	assert.Equal(t, 1.5, displays[0].ScaleFactor)
	assert.Equal(t, 60.0, displays[0].RefreshRate)

	assert.Equal(t, display.Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}, displays[1].Bounds)
	assert.Equal(t, uint32(1), displays[1].ID)
}

func TestParseHyprctl(t *testing.T) {
	displays, err := parseHyprctl([]byte(hyprctlJSON))
	require.NoError(t, err)
	require.Len(t, displays, 2)
	assert.Equal(t, uint32(3), displays[0].ID)
	assert.InDelta(t, 143.98, displays[0].RefreshRate, 0.001)
	assert.Equal(t, 1.0, displays[1].ScaleFactor)
}

func TestParseSway(t *testing.T) {
	displays, err := parseSway([]byte(swayJSON))
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, uint32(2560), displays[0].Bounds.Width)
	assert.InDelta(t, 60.001, displays[0].RefreshRate, 0.0001)
	assert.Equal(t, 2.0, displays[0].ScaleFactor)
}

func TestParseXrandr(t *testing.T) {
	displays, err := parseXrandr([]byte(xrandrText))
	require.NoError(t, err)
	require.Len(t, displays, 2)

	assert.Equal(t, "HDMI-1", displays[0].Name)
	assert.Equal(t, display.Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}, displays[0].Bounds)
	assert.InDelta(t, 74.97, displays[0].RefreshRate, 0.001)
	assert.False(t, displays[0].IsPrimary)

	assert.Equal(t, "DP-1", displays[1].Name)
	assert.True(t, displays[1].IsPrimary)
	assert.Equal(t, 60.0, displays[1].RefreshRate)
}

func TestParseBadJSON(t *testing.T) {
	for name, parse := range map[string]func([]byte) ([]display.Info, error){
		"wlr-randr": parseWlrRandr,
		"hyprctl":   parseHyprctl,
		"swaymsg":   parseSway,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parse([]byte("not json"))
			assert.Error(t, err)
		})
	}
}

func TestDisplaysFallsThroughBackends(t *testing.T) {
	d := NewWithRunner(fakeRunner{
		"wlr-randr --json":    "garbage",
		"hyprctl monitors -j": "[]",
		"xrandr --query":      xrandrText,
	}.run)

	displays, err := d.Displays()
	require.NoError(t, err)
	require.Len(t, displays, 2)
	assert.Equal(t, "DP-1", displays[1].Name)
}

func TestDisplaysMarksPrimaryAtOrigin(t *testing.T) {
	d := NewWithRunner(fakeRunner{"hyprctl monitors -j": hyprctlJSON}.run)

	displays, err := d.Displays()
	require.NoError(t, err)
	primary, err := display.Primary(staticProvider(displays))
	require.NoError(t, err)
	assert.Equal(t, "DP-1", primary.Name)
}

func TestDisplaysNoBackend(t *testing.T) {
	_, err := NewWithRunner(fakeRunner{}.run).Displays()
	assert.ErrorIs(t, err, hook.ErrNotSupported)
}

func TestSystemSettingsGnome(t *testing.T) {
	d := NewWithRunner(fakeRunner{
		"gsettings get " + gnomeKeyboard + " repeat-interval": "uint32 25\n",
		"gsettings get " + gnomeKeyboard + " delay":           "uint32 400\n",
		"gsettings get " + gnomeMouse + " speed":              "-0.25\n",
		"gsettings get " + gnomeMouse + " accel-profile":      "'flat'\n",
		"gsettings get " + gnomeMouse + " double-click":       "400\n",
		"gsettings get " + gnomeSources + " sources":          "[('xkb', 'fr+azerty'), ('xkb', 'us')]\n",
		"xset q": "Pointer Control:\n  acceleration:  2/1    threshold:  4\n",
	}.run)

	s, err := d.SystemSettings()
	require.NoError(t, err)
	require.NotNil(t, s.KeyboardRepeatRate)
	assert.Equal(t, uint32(40), *s.KeyboardRepeatRate)
	assert.Equal(t, uint32(400), *s.KeyboardRepeatDelay)
	assert.Equal(t, -0.25, *s.MouseSensitivity)
	assert.False(t, *s.MouseAcceleration)
	assert.Equal(t, uint32(400), *s.DoubleClickTime)
	assert.Equal(t, "fr+azerty", *s.KeyboardLayout)
	// Only the threshold comes from xset; gsettings values win.
	assert.Equal(t, 4.0, *s.MouseAccelerationThreshold)
}

func TestSystemSettingsX11Fallback(t *testing.T) {
	d := NewWithRunner(fakeRunner{
		"xset q": `Keyboard Control:
  auto repeat:  on    key click percent:  0    LED mask:  00000000
  auto repeat delay:  660    repeat rate:  25
Pointer Control:
  acceleration:  2/1    threshold:  4
`,
		"setxkbmap -query": "rules:      evdev\nmodel:      pc105\nlayout:     de\n",
	}.run)

	s, err := d.SystemSettings()
	require.NoError(t, err)
	assert.Equal(t, uint32(660), *s.KeyboardRepeatDelay)
	assert.Equal(t, uint32(25), *s.KeyboardRepeatRate)
	assert.Equal(t, 2.0, *s.MouseSensitivity)
	assert.True(t, *s.MouseAcceleration)
	assert.Equal(t, "de", *s.KeyboardLayout)
	assert.Nil(t, s.DoubleClickTime)
}

func TestSystemSettingsNothingAvailable(t *testing.T) {
	s, err := NewWithRunner(fakeRunner{}.run).SystemSettings()
	require.NoError(t, err)
	assert.Equal(t, display.SystemSettings{}, s)
}

type staticProvider []display.Info

func (p staticProvider) Displays() ([]display.Info, error) { return p, nil }

func (p staticProvider) SystemSettings() (display.SystemSettings, error) {
	return display.SystemSettings{}, nil
}
