package testutil

import (
	"sync"
	"time"

	"github.com/roach88/reminders/internal/reminder"
)

// ManualScheduler is a reminder.Scheduler whose time only moves when Advance
// is called.
//
// Callbacks run synchronously on the goroutine calling Advance, in due-time
// order (ties broken by scheduling order). A callback may schedule further
// timers; those fire within the same Advance if they fall due before its end.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
// The mutex is never held while a callback runs.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*ManualTimer
}

// ManualTimer is a timer created by ManualScheduler.
type ManualTimer struct {
	sched   *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc schedules f to run once d has elapsed on the manual clock.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) reminder.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &ManualTimer{
		sched: s,
		at:    s.now + d,
		seq:   s.seq,
		f:     f,
	}
	s.timers = append(s.timers, t)
	return t
}

// Stop cancels the timer. Returns false if it already fired or was stopped.
func (t *ManualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.compactLocked()
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()

		next.f()
	}
}

// Now returns the elapsed manual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of timers that are neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Scheduled returns the total number of timers ever created.
func (s *ManualScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *ManualTimer {
	var next *ManualTimer
	for _, t := range s.timers {
		if t.stopped || t.fired || t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (s *ManualScheduler) compactLocked() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}
