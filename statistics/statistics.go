// Package statistics aggregates input events into usage metrics such as
// key frequency, pointer travel and typing time.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bnema/inputhook/event"
)

const (
	// typingGap is the longest pause between key presses that still counts
	// as continuous typing.
	typingGap = 5 * time.Second

	// restGap is how long the keyboard must be idle before NeedsBreak
	// treats the user as already resting.
	restGap = time.Minute
)

// EventStatistics is a running aggregate of events. Event times come from
// Event.Time, so recorded streams aggregate the same as live ones.
type EventStatistics struct {
	EventCount    uint64 `json:"event_count"`
	KeyPresses    uint64 `json:"key_presses"`
	KeyReleases   uint64 `json:"key_releases"`
	MousePresses  uint64 `json:"mouse_presses"`
	MouseReleases uint64 `json:"mouse_releases"`
	MouseClicks   uint64 `json:"mouse_clicks"`
	MouseMoves    uint64 `json:"mouse_moves"`
	MouseDrags    uint64 `json:"mouse_drags"`
	MouseWheels   uint64 `json:"mouse_wheels"`

	KeyFrequency map[event.Key]uint64    `json:"key_frequency"`
	ButtonClicks map[event.Button]uint64 `json:"button_clicks"`

	// MouseDistance is the summed straight-line travel between motion
	// events, starting from (0, 0).
	MouseDistance float64 `json:"mouse_distance"`
	MouseX        float64 `json:"mouse_x"`
	MouseY        float64 `json:"mouse_y"`

	// Up and Right count positive.
	VerticalScroll   float64 `json:"vertical_scroll"`
	HorizontalScroll float64 `json:"horizontal_scroll"`

	ActiveTyping time.Duration `json:"active_typing"`
	// AvgClickInterval is the mean time between button presses, zero until
	// two presses were seen.
	AvgClickInterval time.Duration `json:"avg_click_interval"`

	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	FirstKeyTime   time.Time `json:"first_key_time"`
	LastKeyTime    time.Time `json:"last_key_time"`
	FirstMouseTime time.Time `json:"first_mouse_time"`
	LastMouseTime  time.Time `json:"last_mouse_time"`

	lastPress     time.Time
	pressInterval time.Duration
	pressGaps     uint64
}

// New returns empty statistics.
func New() *EventStatistics {
	return &EventStatistics{
		KeyFrequency: make(map[event.Key]uint64),
		ButtonClicks: make(map[event.Button]uint64),
	}
}

func (s *EventStatistics) init() {
	if s.KeyFrequency == nil {
		s.KeyFrequency = make(map[event.Key]uint64)
	}
	if s.ButtonClicks == nil {
		s.ButtonClicks = make(map[event.Button]uint64)
	}
}

// Record folds ev into the aggregate. The zero value is ready to use.
func (s *EventStatistics) Record(ev event.Event) {
	s.init()
	s.EventCount++
	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}

	switch ev.Type {
	case event.KeyPressed:
		s.KeyPresses++
		if s.FirstKeyTime.IsZero() {
			s.FirstKeyTime = at
		}
		if !s.LastKeyTime.IsZero() {
			if gap := at.Sub(s.LastKeyTime); gap >= 0 && gap < typingGap {
				s.ActiveTyping += gap
			}
		}
		s.LastKeyTime = at
		if k, ok := ev.Key(); ok {
			s.KeyFrequency[k]++
		}

	case event.KeyReleased:
		s.KeyReleases++

	case event.MousePressed:
		s.MousePresses++
		if !s.lastPress.IsZero() {
			s.pressInterval += at.Sub(s.lastPress)
			s.pressGaps++
			s.AvgClickInterval = s.pressInterval / time.Duration(s.pressGaps)
		}
		s.lastPress = at
		if b, ok := ev.Button(); ok {
			s.ButtonClicks[b]++
		}

	case event.MouseReleased:
		s.MouseReleases++

	case event.MouseClicked:
		s.MouseClicks++

	case event.MouseMoved, event.MouseDragged:
		if ev.Type == event.MouseMoved {
			s.MouseMoves++
		} else {
			s.MouseDrags++
		}
		if s.FirstMouseTime.IsZero() {
			s.FirstMouseTime = at
		}
		s.LastMouseTime = at
		if ev.Mouse != nil {
			s.MouseDistance += math.Hypot(ev.Mouse.X-s.MouseX, ev.Mouse.Y-s.MouseY)
			s.MouseX, s.MouseY = ev.Mouse.X, ev.Mouse.Y
		}

	case event.MouseWheel:
		s.MouseWheels++
		if w := ev.Wheel; w != nil {
			d := math.Abs(w.Delta)
			switch w.Direction {
			case event.ScrollUp:
				s.VerticalScroll += d
			case event.ScrollDown:
				s.VerticalScroll -= d
			case event.ScrollRight:
				s.HorizontalScroll += d
			case event.ScrollLeft:
				s.HorizontalScroll -= d
			}
		}
	}
}

func (s *EventStatistics) TotalEvents() uint64 {
	return s.EventCount
}

// MostFrequentKey returns the most pressed key. Ties go to the lower key
// code so the answer is stable.
func (s *EventStatistics) MostFrequentKey() (event.Key, uint64, bool) {
	var best event.Key
	var n uint64
	for k, c := range s.KeyFrequency {
		if c > n || (c == n && k < best) {
			best, n = k, c
		}
	}
	return best, n, n > 0
}

// MostFrequentButton returns the most pressed button, lower number on ties.
func (s *EventStatistics) MostFrequentButton() (event.Button, uint64, bool) {
	var best event.Button
	var n uint64
	for b, c := range s.ButtonClicks {
		if c > n || (c == n && b < best) {
			best, n = b, c
		}
	}
	return best, n, n > 0
}

// CollectionDuration is EndTime minus StartTime, or the time since
// StartTime while collection is still open.
func (s *EventStatistics) CollectionDuration() time.Duration {
	switch {
	case s.StartTime.IsZero():
		return 0
	case s.EndTime.IsZero():
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// EventsPerMinute is zero for collections shorter than a second.
func (s *EventStatistics) EventsPerMinute() float64 {
	return perMinute(s.EventCount, s.CollectionDuration())
}

func (s *EventStatistics) KeysPerMinute() float64 {
	return perMinute(s.KeyPresses, s.CollectionDuration())
}

func perMinute(n uint64, d time.Duration) float64 {
	if d < time.Second {
		return 0
	}
	return float64(n) / d.Minutes()
}

// MouseActivityRatio is the share of mouse input among key presses, button
// presses and moves.
func (s *EventStatistics) MouseActivityRatio() float64 {
	mouse := s.MouseMoves + s.MousePresses
	total := s.KeyPresses + mouse
	if total == 0 {
		return 0
	}
	return float64(mouse) / float64(total)
}

// IsActiveRecently reports whether a key press or pointer motion happened
// within d.
func (s *EventStatistics) IsActiveRecently(d time.Duration) bool {
	recent := func(t time.Time) bool {
		return !t.IsZero() && time.Since(t) < d
	}
	return recent(s.LastKeyTime) || recent(s.LastMouseTime)
}

// NeedsBreak reports whether active typing exceeded threshold and the
// keyboard has not been idle for a minute since.
func (s *EventStatistics) NeedsBreak(threshold time.Duration) bool {
	if s.ActiveTyping <= threshold {
		return false
	}
	if !s.LastKeyTime.IsZero() && time.Since(s.LastKeyTime) > restGap {
		return false
	}
	return true
}

// Merge adds other's counters into s. Positions and time bounds are kept.
func (s *EventStatistics) Merge(other *EventStatistics) {
	s.init()
	s.EventCount += other.EventCount
	s.KeyPresses += other.KeyPresses
	s.KeyReleases += other.KeyReleases
	s.MousePresses += other.MousePresses
	s.MouseReleases += other.MouseReleases
	s.MouseClicks += other.MouseClicks
	s.MouseMoves += other.MouseMoves
	s.MouseDrags += other.MouseDrags
	s.MouseWheels += other.MouseWheels

	for k, c := range other.KeyFrequency {
		s.KeyFrequency[k] += c
	}
	for b, c := range other.ButtonClicks {
		s.ButtonClicks[b] += c
	}

	s.MouseDistance += other.MouseDistance
	s.VerticalScroll += other.VerticalScroll
	s.HorizontalScroll += other.HorizontalScroll
	s.ActiveTyping += other.ActiveTyping
}

// Clone returns a deep copy.
func (s *EventStatistics) Clone() *EventStatistics {
	c := *s
	c.KeyFrequency = make(map[event.Key]uint64, len(s.KeyFrequency))
	for k, v := range s.KeyFrequency {
		c.KeyFrequency[k] = v
	}
	c.ButtonClicks = make(map[event.Button]uint64, len(s.ButtonClicks))
	for b, v := range s.ButtonClicks {
		c.ButtonClicks[b] = v
	}
	return &c
}

// TopKeys returns up to n keys ordered by press count.
func (s *EventStatistics) TopKeys(n int) []event.Key {
	keys := make([]event.Key, 0, len(s.KeyFrequency))
	for k := range s.KeyFrequency {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := s.KeyFrequency[keys[i]], s.KeyFrequency[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Summary renders a plain-text report.
func (s *EventStatistics) Summary() string {
	d := s.CollectionDuration()
	secs := int64(d / time.Second)

	var b strings.Builder
	b.WriteString("=== Input Statistics ===\n")
	fmt.Fprintf(&b, "Duration: %02d:%02d\n", secs/60, secs%60)
	fmt.Fprintf(&b, "Total Events: %d\n", s.EventCount)
	fmt.Fprintf(&b, "Events/min: %.1f\n\n", s.EventsPerMinute())

	b.WriteString("Keyboard:\n")
	fmt.Fprintf(&b, "- Presses: %d\n", s.KeyPresses)
	fmt.Fprintf(&b, "- Releases: %d\n", s.KeyReleases)
	fmt.Fprintf(&b, "- Keys/min: %.1f\n", s.KeysPerMinute())
	if k, n, ok := s.MostFrequentKey(); ok {
		fmt.Fprintf(&b, "- Most pressed: %s (%d times)\n", k, n)
	}

	b.WriteString("\nMouse:\n")
	fmt.Fprintf(&b, "- Clicks: %d\n", s.MouseClicks)
	fmt.Fprintf(&b, "- Moves: %d\n", s.MouseMoves)
	fmt.Fprintf(&b, "- Drags: %d\n", s.MouseDrags)
	fmt.Fprintf(&b, "- Distance: %.0f pixels\n", s.MouseDistance)
	if s.AvgClickInterval > 0 {
		fmt.Fprintf(&b, "- Avg click interval: %s\n", s.AvgClickInterval.Round(time.Millisecond))
	}
	if btn, n, ok := s.MostFrequentButton(); ok {
		fmt.Fprintf(&b, "- Most clicked: %s (%d times)\n", btn, n)
	}
	return b.String()
}
