// Package recorder captures input events with their timing and replays them
// through a simulator.
package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
)

// ErrInvalidSpeed is returned for a playback speed that is not positive.
var ErrInvalidSpeed = errors.New("playback speed must be positive")

// RecordedEvent is an event and the time since the recording started.
// Elapsed is stored in JSON as integer nanoseconds.
type RecordedEvent struct {
	Elapsed time.Duration `json:"elapsed"`
	Event   event.Event   `json:"event"`
}

// Recording is an ordered list of recorded events.
type Recording struct {
	Events      []RecordedEvent `json:"events"`
	CreatedAt   time.Time       `json:"created_at"`
	Description *string         `json:"description,omitempty"`
}

// New returns an empty recording stamped with the current time.
func New() *Recording {
	return &Recording{Events: []RecordedEvent{}, CreatedAt: time.Now()}
}

// WithDescription sets the description and returns r.
func (r *Recording) WithDescription(desc string) *Recording {
	r.Description = &desc
	return r
}

// Duration is the elapsed time of the last event, zero when empty.
func (r *Recording) Duration() time.Duration {
	if len(r.Events) == 0 {
		return 0
	}
	return r.Events[len(r.Events)-1].Elapsed
}

func (r *Recording) EventCount() int {
	return len(r.Events)
}

// Append adds ev at elapsed.
func (r *Recording) Append(elapsed time.Duration, ev event.Event) {
	r.Events = append(r.Events, RecordedEvent{Elapsed: elapsed, Event: ev})
}

// Save writes r as indented JSON.
func (r *Recording) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recording file: %w", err)
	}
	return nil
}

// Load reads a recording written by Save.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording file: %w", err)
	}
	var r Recording
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to deserialize recording: %w", err)
	}
	if r.Events == nil {
		r.Events = []RecordedEvent{}
	}
	return &r, nil
}

// Playback replays r at its original pace.
func (r *Recording) Playback(ctx context.Context, sim hook.Simulator) error {
	return r.PlaybackWithSpeed(ctx, sim, 1)
}

// PlaybackWithSpeed replays r with every delay divided by speed, so 2 runs
// twice as fast. Each event waits until its scaled elapsed time measured
// from the start of playback, which keeps slow simulators from drifting.
// Lifecycle markers are skipped.
func (r *Recording) PlaybackWithSpeed(ctx context.Context, sim hook.Simulator, speed float64) error {
	if speed <= 0 {
		return ErrInvalidSpeed
	}
	if len(r.Events) == 0 {
		return nil
	}

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for _, rec := range r.Events {
		if rec.Event.Type.IsLifecycle() {
			continue
		}

		target := time.Duration(float64(rec.Elapsed) / speed)
		if wait := target - time.Since(start); wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := sim.Simulate(rec.Event); err != nil {
			return err
		}
	}
	return nil
}

// PlaybackFast replays r without any delay.
func (r *Recording) PlaybackFast(ctx context.Context, sim hook.Simulator) error {
	for _, rec := range r.Events {
		if rec.Event.Type.IsLifecycle() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sim.Simulate(rec.Event); err != nil {
			return err
		}
	}
	return nil
}
