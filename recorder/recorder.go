package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/logger"
)

// EventRecorder records every event of a background hook until stopped.
type EventRecorder struct {
	adapter hook.Adapter
	opts    []hook.Option

	mu        sync.Mutex
	hook      *hook.Hook
	recording *Recording
	start     time.Time
}

// NewEventRecorder returns a recorder that hooks adapter. opts are passed
// to every hook it creates.
func NewEventRecorder(adapter hook.Adapter, opts ...hook.Option) *EventRecorder {
	return &EventRecorder{adapter: adapter, opts: opts}
}

// Start begins a new recording. It fails with hook.ErrAlreadyRunning while
// a recording is in progress.
func (r *EventRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hook != nil {
		return hook.ErrAlreadyRunning
	}

	r.recording = New()
	r.start = time.Now()

	h := hook.New(r.adapter, r.opts...)
	if err := h.RunAsync(hook.EventHandlerFunc(r.record)); err != nil {
		r.recording = nil
		return err
	}
	r.hook = h
	logger.Debug("recording started")
	return nil
}

func (r *EventRecorder) record(ev event.Event) {
	if ev.Type.IsLifecycle() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording == nil {
		return
	}
	r.recording.Append(time.Since(r.start), ev)
}

// Stop ends the recording and returns it. It fails with hook.ErrNotRunning
// when nothing is being recorded.
func (r *EventRecorder) Stop() (*Recording, error) {
	r.mu.Lock()
	h := r.hook
	r.hook = nil
	r.mu.Unlock()
	if h == nil {
		return nil, hook.ErrNotRunning
	}

	// The hook must be stopped without holding mu, its handler takes it.
	stopErr := h.Stop()

	r.mu.Lock()
	rec := r.recording
	r.recording = nil
	r.mu.Unlock()

	if stopErr != nil {
		return rec, stopErr
	}
	logger.Debug("recording stopped", "events", rec.EventCount(), "duration", rec.Duration())
	return rec, nil
}

func (r *EventRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hook != nil
}

// RecordFor records for d, or until ctx is done, and returns the result.
func (r *EventRecorder) RecordFor(ctx context.Context, d time.Duration) (*Recording, error) {
	if err := r.Start(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return r.Stop()
}
