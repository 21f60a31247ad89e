package metrics

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of the counter state taken at one instant.
//
// Both fields are read under the same lock, so TotalRequests and LastHitAt
// always reflect the same update; a reader never observes one field ahead
// of the other.
type Snapshot struct {
	// TotalRequests is the number of requests recorded since process start.
	TotalRequests int64

	// LastHitAt is the time of the most recent recorded request.
	// The zero value means no request has been recorded yet.
	LastHitAt time.Time
}

// RequestCounter tracks the total number of requests served by this process
// and the timestamp of the most recent one.
//
// A single mutex guards all mutable fields, so [RequestCounter.RecordHit]
// and [RequestCounter.Snapshot] serialize with respect to each other under
// concurrent callers. The start time is immutable after construction.
type RequestCounter struct {
	mu        sync.Mutex
	startedAt time.Time
	total     int64
	lastHitAt time.Time
}

// NewRequestCounter creates a counter for a process started at startedAt.
//
// The counter starts at zero with no last-hit time and lives for the process
// lifetime; there is no teardown.
func NewRequestCounter(startedAt time.Time) *RequestCounter {
	return &RequestCounter{startedAt: startedAt}
}

// RecordHit records one inbound request observed at now.
//
// The total is incremented by exactly one and the last-hit time is replaced.
// RecordHit cannot fail and is safe for concurrent use.
func (c *RequestCounter) RecordHit(now time.Time) {
	c.mu.Lock()
	c.total++
	c.lastHitAt = now
	c.mu.Unlock()
}

// Snapshot returns a consistent copy of the current counter state.
func (c *RequestCounter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		TotalRequests: c.total,
		LastHitAt:     c.lastHitAt,
	}
}

// Uptime returns the number of whole seconds elapsed between process start
// and now. The result is never negative, even if now precedes the start time
// due to clock adjustment.
func (c *RequestCounter) Uptime(now time.Time) int64 {
	secs := int64(now.Sub(c.startedAt) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs
}

// StartedAt returns the process start time the counter was created with.
func (c *RequestCounter) StartedAt() time.Time {
	return c.startedAt
}
