package display

import (
	"errors"
	"testing"

	"github.com/bnema/inputhook/hook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	displays []Info
	err      error
}

func (s staticProvider) Displays() ([]Info, error)               { return s.displays, s.err }
func (s staticProvider) SystemSettings() (SystemSettings, error) { return SystemSettings{}, s.err }

func dualHead() []Info {
	return []Info{
		{ID: 0, Name: "DP-1", Bounds: Rect{X: -1920, Y: 0, Width: 1920, Height: 1080}, ScaleFactor: 1},
		{ID: 1, Name: "eDP-1", Bounds: Rect{X: 0, Y: 0, Width: 2560, Height: 1440}, ScaleFactor: 1.5, IsPrimary: true},
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 100, Y: 50, Width: 200, Height: 100}

	tests := []struct {
		x, y float64
		want bool
	}{
		{100, 50, true},
		{299.9, 149.9, true},
		{300, 100, false},
		{150, 150, false},
		{99, 60, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Contains(tt.x, tt.y), "(%v,%v)", tt.x, tt.y)
	}
	assert.Equal(t, "200x100+100+50", r.String())
}

func TestPrimary(t *testing.T) {
	d, err := Primary(staticProvider{displays: dualHead()})
	require.NoError(t, err)
	assert.Equal(t, "eDP-1", d.Name)

	noPrimary := dualHead()
	noPrimary[1].IsPrimary = false
	d, err = Primary(staticProvider{displays: noPrimary})
	require.NoError(t, err)
	assert.Equal(t, "DP-1", d.Name, "falls back to the first display")

	_, err = Primary(staticProvider{})
	assert.ErrorIs(t, err, hook.ErrNotSupported)

	boom := errors.New("xrandr failed")
	_, err = Primary(staticProvider{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestAt(t *testing.T) {
	p := staticProvider{displays: dualHead()}

	d, err := At(p, -10, 10)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "DP-1", d.Name)

	d, err = At(p, 2000, 1000)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "eDP-1", d.Name)

	d, err = At(p, 5000, 0)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestMarkPrimary(t *testing.T) {
	displays := dualHead()
	displays[1].IsPrimary = false
	MarkPrimary(displays)
	assert.False(t, displays[0].IsPrimary)
	assert.True(t, displays[1].IsPrimary, "display at the origin wins")

	shifted := []Info{
		{Name: "A", Bounds: Rect{X: 10, Width: 10, Height: 10}},
		{Name: "B", Bounds: Rect{X: 20, Width: 10, Height: 10}},
	}
	MarkPrimary(shifted)
	assert.True(t, shifted[0].IsPrimary)
	assert.False(t, shifted[1].IsPrimary)

	MarkPrimary(nil)
}
