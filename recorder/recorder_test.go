package recorder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/platform/virtual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecording(t *testing.T) {
	r := New()
	assert.Empty(t, r.Events)
	assert.Equal(t, time.Duration(0), r.Duration())
	assert.Equal(t, 0, r.EventCount())
	assert.Nil(t, r.Description)

	r.WithDescription("login macro")
	require.NotNil(t, r.Description)
	assert.Equal(t, "login macro", *r.Description)
}

func TestDurationIsLastElapsed(t *testing.T) {
	r := New()
	r.Append(time.Second, event.NewKeyPressed(event.KeyA, 30, 0))
	r.Append(5*time.Second, event.NewKeyReleased(event.KeyA, 30, 0))
	assert.Equal(t, 5*time.Second, r.Duration())
	assert.Equal(t, 2, r.EventCount())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macro.json")

	r := New().WithDescription("test")
	r.Append(100*time.Millisecond, event.NewKeyPressed(event.KeyA, 30, 0))
	r.Append(150*time.Millisecond, event.NewMouseWheel(5, 6, event.ScrollDown, 1, 0))
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"elapsed": 100000000`), "elapsed is stored in nanoseconds")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Description)
	assert.Equal(t, "test", *loaded.Description)
	require.Equal(t, 2, loaded.EventCount())
	assert.Equal(t, 100*time.Millisecond, loaded.Events[0].Elapsed)
	assert.Equal(t, event.KeyPressed, loaded.Events[0].Event.Type)
	assert.Equal(t, event.ScrollDown, loaded.Events[1].Event.Wheel.Direction)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func script() *Recording {
	r := New()
	r.Append(0, event.NewHookEnabled(0))
	r.Append(0, event.NewKeyPressed(event.KeyH, 35, 0))
	r.Append(20*time.Millisecond, event.NewKeyReleased(event.KeyH, 35, 0))
	r.Append(40*time.Millisecond, event.NewMouseMoved(10, 20, 0))
	r.Append(40*time.Millisecond, event.NewHookDisabled(0))
	return r
}

func simulatedTypes(a *virtual.Adapter) []event.Type {
	var out []event.Type
	for _, ev := range a.Simulated() {
		out = append(out, ev.Type)
	}
	return out
}

func TestPlaybackSkipsLifecycle(t *testing.T) {
	a := virtual.New(virtual.WithLoopback(false))
	require.NoError(t, script().PlaybackFast(context.Background(), a))
	assert.Equal(t, []event.Type{event.KeyPressed, event.KeyReleased, event.MouseMoved}, simulatedTypes(a))
}

func TestPlaybackWithSpeedTiming(t *testing.T) {
	a := virtual.New(virtual.WithLoopback(false))

	start := time.Now()
	require.NoError(t, script().PlaybackWithSpeed(context.Background(), a, 2))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Len(t, a.Simulated(), 3)
}

func TestPlaybackRejectsBadSpeed(t *testing.T) {
	a := virtual.New(virtual.WithLoopback(false))
	for _, speed := range []float64{0, -1} {
		err := script().PlaybackWithSpeed(context.Background(), a, speed)
		assert.ErrorIs(t, err, ErrInvalidSpeed)
	}
	assert.Empty(t, a.Simulated())
}

func TestPlaybackCancel(t *testing.T) {
	r := New()
	r.Append(0, event.NewKeyPressed(event.KeyA, 30, 0))
	r.Append(time.Hour, event.NewKeyReleased(event.KeyA, 30, 0))

	a := virtual.New(virtual.WithLoopback(false))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Playback(ctx, a)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Len(t, a.Simulated(), 1)
}

func TestEventRecorder(t *testing.T) {
	a := virtual.New()
	rec := NewEventRecorder(a)

	_, err := rec.Stop()
	assert.ErrorIs(t, err, hook.ErrNotRunning)

	require.NoError(t, rec.Start())
	assert.True(t, rec.IsRecording())
	assert.ErrorIs(t, rec.Start(), hook.ErrAlreadyRunning)

	a.KeyDown(event.KeyA, 30)
	a.KeyUp(event.KeyA, 30)
	a.MoveTo(3, 4)
	require.True(t, a.WaitIdle(time.Second))

	r, err := rec.Stop()
	require.NoError(t, err)
	assert.False(t, rec.IsRecording())
	require.Equal(t, 3, r.EventCount())
	assert.Equal(t, event.KeyPressed, r.Events[0].Event.Type)
	assert.Equal(t, event.MouseMoved, r.Events[2].Event.Type)
	for i := 1; i < len(r.Events); i++ {
		assert.GreaterOrEqual(t, r.Events[i].Elapsed, r.Events[i-1].Elapsed)
	}
}

func TestRecordFor(t *testing.T) {
	a := virtual.New()
	rec := NewEventRecorder(a)

	go func() {
		time.Sleep(10 * time.Millisecond)
		a.KeyDown(event.Space, 57)
	}()
	r, err := rec.RecordFor(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, r.EventCount())
	assert.Equal(t, event.KeyPressed, r.Events[0].Event.Type)
	assert.False(t, rec.IsRecording())
}

func TestRecordThenReplay(t *testing.T) {
	src := virtual.New()
	rec := NewEventRecorder(src)
	require.NoError(t, rec.Start())
	src.ButtonDown(event.Left)
	src.ButtonUp(event.Left)
	require.True(t, src.WaitIdle(time.Second))
	r, err := rec.Stop()
	require.NoError(t, err)

	dst := virtual.New(virtual.WithLoopback(false))
	require.NoError(t, r.PlaybackFast(context.Background(), dst))

	// MouseClicked replays as one more press and release.
	assert.Equal(t, []event.Type{
		event.MousePressed, event.MouseReleased,
		event.MousePressed, event.MouseReleased,
	}, simulatedTypes(dst))
}
