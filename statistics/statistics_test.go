package statistics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/platform/virtual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(base time.Time, d time.Duration, ev event.Event) event.Event {
	ev.Time = base.Add(d)
	return ev
}

func TestRecordCounts(t *testing.T) {
	s := New()
	base := time.Now()

	s.Record(at(base, 0, event.NewKeyPressed(event.KeyA, 30, 0)))
	s.Record(at(base, 0, event.NewKeyReleased(event.KeyA, 30, 0)))
	s.Record(at(base, 0, event.NewMousePressed(event.Left, 0, 0, 0)))
	s.Record(at(base, 0, event.NewMouseReleased(event.Left, 0, 0, 0)))
	s.Record(at(base, 0, event.NewMouseClicked(event.Left, 0, 0, 1, 0)))
	s.Record(at(base, 0, event.NewMouseMoved(3, 4, 0)))
	s.Record(at(base, 0, event.NewMouseDragged(3, 4, 0)))
	s.Record(at(base, 0, event.NewMouseWheel(0, 0, event.ScrollUp, 1, 0)))
	s.Record(at(base, 0, event.NewHookEnabled(0)))

	assert.Equal(t, uint64(9), s.TotalEvents())
	assert.Equal(t, uint64(1), s.KeyPresses)
	assert.Equal(t, uint64(1), s.KeyReleases)
	assert.Equal(t, uint64(1), s.MousePresses)
	assert.Equal(t, uint64(1), s.MouseReleases)
	assert.Equal(t, uint64(1), s.MouseClicks)
	assert.Equal(t, uint64(1), s.MouseMoves)
	assert.Equal(t, uint64(1), s.MouseDrags)
	assert.Equal(t, uint64(1), s.MouseWheels)
}

func TestMouseDistance(t *testing.T) {
	s := New()
	s.Record(event.NewMouseMoved(3, 4, 0))
	s.Record(event.NewMouseDragged(6, 8, 0))
	assert.InDelta(t, 10.0, s.MouseDistance, 1e-9)
	assert.Equal(t, 6.0, s.MouseX)
	assert.Equal(t, 8.0, s.MouseY)
}

func TestScrollTotals(t *testing.T) {
	s := New()
	s.Record(event.NewMouseWheel(0, 0, event.ScrollUp, 3, 0))
	s.Record(event.NewMouseWheel(0, 0, event.ScrollDown, -1, 0))
	s.Record(event.NewMouseWheel(0, 0, event.ScrollLeft, 2, 0))
	s.Record(event.NewMouseWheel(0, 0, event.ScrollRight, 0.5, 0))
	assert.Equal(t, 2.0, s.VerticalScroll)
	assert.Equal(t, -1.5, s.HorizontalScroll)
}

func TestActiveTyping(t *testing.T) {
	s := New()
	base := time.Now()
	s.Record(at(base, 0, event.NewKeyPressed(event.KeyA, 30, 0)))
	s.Record(at(base, 2*time.Second, event.NewKeyPressed(event.KeyB, 48, 0)))
	// A pause of 5s or more is not typing.
	s.Record(at(base, 10*time.Second, event.NewKeyPressed(event.KeyC, 46, 0)))
	s.Record(at(base, 11*time.Second, event.NewKeyPressed(event.KeyC, 46, 0)))

	assert.Equal(t, 3*time.Second, s.ActiveTyping)
	assert.Equal(t, base, s.FirstKeyTime)
	assert.Equal(t, base.Add(11*time.Second), s.LastKeyTime)

	k, n, ok := s.MostFrequentKey()
	require.True(t, ok)
	assert.Equal(t, event.KeyC, k)
	assert.Equal(t, uint64(2), n)
}

func TestAvgClickInterval(t *testing.T) {
	s := New()
	base := time.Now()
	s.Record(at(base, 0, event.NewMousePressed(event.Left, 0, 0, 0)))
	assert.Equal(t, time.Duration(0), s.AvgClickInterval)
	s.Record(at(base, 100*time.Millisecond, event.NewMousePressed(event.Right, 0, 0, 0)))
	s.Record(at(base, 400*time.Millisecond, event.NewMousePressed(event.Right, 0, 0, 0)))
	assert.Equal(t, 200*time.Millisecond, s.AvgClickInterval)

	b, n, ok := s.MostFrequentButton()
	require.True(t, ok)
	assert.Equal(t, event.Right, b)
	assert.Equal(t, uint64(2), n)
}

func TestMostFrequentEmpty(t *testing.T) {
	s := New()
	_, _, ok := s.MostFrequentKey()
	assert.False(t, ok)
	_, _, ok = s.MostFrequentButton()
	assert.False(t, ok)
}

func TestRates(t *testing.T) {
	s := New()
	s.StartTime = time.Now().Add(-2 * time.Minute)
	s.EndTime = s.StartTime.Add(2 * time.Minute)
	for i := 0; i < 10; i++ {
		s.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	}
	for i := 0; i < 30; i++ {
		s.Record(event.NewMouseMoved(float64(i), 0, 0))
	}

	assert.Equal(t, 2*time.Minute, s.CollectionDuration())
	assert.InDelta(t, 20.0, s.EventsPerMinute(), 1e-9)
	assert.InDelta(t, 5.0, s.KeysPerMinute(), 1e-9)
	assert.InDelta(t, 0.75, s.MouseActivityRatio(), 1e-9)

	short := New()
	short.StartTime = time.Now()
	short.EndTime = short.StartTime.Add(500 * time.Millisecond)
	short.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	assert.Equal(t, 0.0, short.EventsPerMinute())
	assert.Equal(t, 0.0, New().MouseActivityRatio())
	assert.Equal(t, time.Duration(0), New().CollectionDuration())
}

func TestActivityAndBreaks(t *testing.T) {
	s := New()
	assert.False(t, s.IsActiveRecently(time.Minute))

	s.Record(event.NewMouseMoved(1, 1, 0))
	assert.True(t, s.IsActiveRecently(time.Minute))

	s.ActiveTyping = time.Hour
	s.LastKeyTime = time.Now()
	assert.True(t, s.NeedsBreak(30*time.Minute))
	assert.False(t, s.NeedsBreak(2*time.Hour))

	s.LastKeyTime = time.Now().Add(-2 * time.Minute)
	assert.False(t, s.NeedsBreak(30*time.Minute))
}

func TestMerge(t *testing.T) {
	a := New()
	a.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	a.Record(event.NewMousePressed(event.Left, 0, 0, 0))
	b := New()
	b.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	b.Record(event.NewMouseWheel(0, 0, event.ScrollUp, 2, 0))

	a.Merge(b)
	assert.Equal(t, uint64(4), a.TotalEvents())
	assert.Equal(t, uint64(2), a.KeyFrequency[event.KeyA])
	assert.Equal(t, uint64(1), a.ButtonClicks[event.Left])
	assert.Equal(t, 2.0, a.VerticalScroll)
}

func TestZeroValueIsUsable(t *testing.T) {
	var s EventStatistics
	s.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	s.Record(event.NewMousePressed(event.Left, 1, 1, 0))
	assert.Equal(t, uint64(1), s.KeyFrequency[event.KeyA])
	assert.Equal(t, uint64(1), s.ButtonClicks[event.Left])

	var merged EventStatistics
	merged.Merge(&s)
	assert.Equal(t, uint64(2), merged.EventCount)
	assert.Equal(t, uint64(1), merged.KeyFrequency[event.KeyA])
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	c := s.Clone()
	s.Record(event.NewKeyPressed(event.KeyA, 30, 0))
	assert.Equal(t, uint64(1), c.KeyFrequency[event.KeyA])
}

func TestTopKeys(t *testing.T) {
	s := New()
	for _, k := range []event.Key{event.KeyB, event.KeyA, event.KeyB, event.KeyC, event.KeyC, event.KeyC} {
		s.Record(event.NewKeyPressed(k, 0, 0))
	}
	assert.Equal(t, []event.Key{event.KeyC, event.KeyB}, s.TopKeys(2))
	assert.Len(t, s.TopKeys(10), 3)
}

func TestSummary(t *testing.T) {
	s := New()
	s.StartTime = time.Now().Add(-65 * time.Second)
	s.EndTime = time.Now()
	s.Record(event.NewKeyPressed(event.KeyQ, 16, 0))
	s.Record(event.NewMousePressed(event.Middle, 0, 0, 0))

	out := s.Summary()
	assert.Contains(t, out, "Duration: 01:05")
	assert.Contains(t, out, "Total Events: 2")
	assert.True(t, strings.Contains(out, "Most pressed: "+event.KeyQ.String()))
	assert.Contains(t, out, "Most clicked: Middle (1 times)")
}

func TestCollector(t *testing.T) {
	a := virtual.New()
	c := NewCollector(a)

	_, err := c.Stop()
	assert.ErrorIs(t, err, hook.ErrNotRunning)

	require.NoError(t, c.Start())
	assert.True(t, c.IsCollecting())
	assert.ErrorIs(t, c.Start(), hook.ErrAlreadyRunning)

	a.KeyDown(event.KeyA, 30)
	a.KeyUp(event.KeyA, 30)
	a.MoveTo(3, 4)
	require.True(t, a.WaitIdle(time.Second))

	snap := c.Snapshot()
	assert.Equal(t, uint64(1), snap.KeyPresses)

	s, err := c.Stop()
	require.NoError(t, err)
	assert.False(t, c.IsCollecting())
	assert.False(t, s.EndTime.IsZero())
	assert.Equal(t, uint64(1), s.KeyPresses)
	assert.Equal(t, uint64(1), s.MouseMoves)
	assert.InDelta(t, 5.0, s.MouseDistance, 1e-9)
}

func TestCollectFor(t *testing.T) {
	a := virtual.New()
	go func() {
		time.Sleep(10 * time.Millisecond)
		a.ButtonDown(event.Left)
		a.ButtonUp(event.Left)
	}()
	s, err := NewCollector(a).CollectFor(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.MouseClicks)
	assert.Equal(t, uint64(1), s.ButtonClicks[event.Left])
}
