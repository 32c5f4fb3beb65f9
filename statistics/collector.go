package statistics

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/hook"
)

// Collector feeds the events of a background hook into EventStatistics.
type Collector struct {
	adapter hook.Adapter
	opts    []hook.Option

	mu    sync.Mutex
	hook  *hook.Hook
	stats *EventStatistics
}

// NewCollector returns a collector that hooks adapter. The collection
// clock starts now.
func NewCollector(adapter hook.Adapter, opts ...hook.Option) *Collector {
	s := New()
	s.StartTime = time.Now()
	return &Collector{adapter: adapter, opts: opts, stats: s}
}

// Start begins collecting. It fails with hook.ErrAlreadyRunning when
// collection is in progress.
func (c *Collector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		return hook.ErrAlreadyRunning
	}

	h := hook.New(c.adapter, c.opts...)
	if err := h.RunAsync(hook.EventHandlerFunc(c.record)); err != nil {
		return err
	}
	c.hook = h
	return nil
}

func (c *Collector) record(ev event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Record(ev)
}

// Stop ends collection, stamps EndTime and returns a copy of the result.
func (c *Collector) Stop() (*EventStatistics, error) {
	c.mu.Lock()
	h := c.hook
	c.hook = nil
	c.mu.Unlock()
	if h == nil {
		return nil, hook.ErrNotRunning
	}

	err := h.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.EndTime = time.Now()
	return c.stats.Clone(), err
}

// Snapshot returns a copy of the statistics so far.
func (c *Collector) Snapshot() *EventStatistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.Clone()
}

func (c *Collector) IsCollecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hook != nil
}

// CollectFor collects for d, or until ctx is done.
func (c *Collector) CollectFor(ctx context.Context, d time.Duration) (*EventStatistics, error) {
	if err := c.Start(); err != nil {
		return nil, err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return c.Stop()
}
