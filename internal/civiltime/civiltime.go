// Package civiltime normalizes timestamps to the agency's fixed civil
// zone (UTC+3, Krasnodar). Stored instants carry no zone information, so
// the same shift is applied symmetrically when persisting and when
// rendering, regardless of the viewer's local clock.
package civiltime

import (
	"sync"
	"time"
)

// FixedOffsetMinutes is the civil offset of the agency's reference zone.
const FixedOffsetMinutes = 180

// OffsetFunc reports the viewer's local offset in minutes for the given
// instant. The sign convention follows UTC minus local time: zones east
// of UTC yield negative values (UTC+3 is -180).
type OffsetFunc func(time.Time) int

// SystemOffsetMinutes derives the local offset of the running process.
func SystemOffsetMinutes(t time.Time) int {
	_, seconds := t.Zone()
	return -seconds / 60
}

// Normalizer shifts instants between viewer-local readings and the fixed
// civil zone.
type Normalizer struct {
	localOffset OffsetFunc
}

// NewNormalizer constructs a Normalizer. A nil offset function falls back
// to the process-local zone.
func NewNormalizer(localOffset OffsetFunc) *Normalizer {
	if localOffset == nil {
		localOffset = SystemOffsetMinutes
	}
	return &Normalizer{localOffset: localOffset}
}

// Store converts a wall-clock instant into the persisted representation.
func (n *Normalizer) Store(t time.Time) time.Time {
	minutes := n.localOffset(t) + FixedOffsetMinutes
	return t.Add(-time.Duration(minutes) * time.Minute)
}

// Display converts a persisted instant back into the fixed-zone civil
// reading for rendering.
func (n *Normalizer) Display(t time.Time) time.Time {
	minutes := n.localOffset(t) + FixedOffsetMinutes
	return t.Add(time.Duration(minutes) * time.Minute)
}

// Clock maintains the current civil wall time on a one second cadence.
// Callers read the cached value through Now; Stop tears the ticker down.
type Clock struct {
	mu         sync.RWMutex
	current    time.Time
	normalizer *Normalizer
	now        func() time.Time
	interval   time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

// NewClock constructs a display clock driven by the supplied time source.
func NewClock(normalizer *Normalizer, now func() time.Time) *Clock {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	if now == nil {
		now = time.Now
	}
	c := &Clock{
		normalizer: normalizer,
		now:        now,
		interval:   time.Second,
		done:       make(chan struct{}),
	}
	c.current = normalizer.Display(now())
	return c
}

// Start launches the periodic refresh. It returns immediately.
func (c *Clock) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.refresh()
			case <-c.done:
				return
			}
		}
	}()
}

func (c *Clock) refresh() {
	display := c.normalizer.Display(c.now())
	c.mu.Lock()
	c.current = display
	c.mu.Unlock()
}

// Now returns the most recently sampled civil wall time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Stop cancels the refresh loop. It is safe to call multiple times.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
