package reminder

import "sync/atomic"

// Clock is the store's revision counter.
//
// Every mutation of the active set (and every history append) is stamped with
// a strictly increasing revision from this clock. The auto-expire timer
// remembers the revision it was armed at and is discarded on fire if the
// store has moved on since.
//
// Revisions also order the events published on the change feed, so a
// replay of the feed observes mutations in the order they were applied.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next revision and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current revision without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
