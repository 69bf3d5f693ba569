package reminder

import "time"

// Timer is a single pending deferred call.
type Timer interface {
	// Stop cancels the call. It returns false if the call already ran or
	// was already stopped.
	Stop() bool
}

// Scheduler runs a function once after a delay.
//
// SystemScheduler is the production implementation. Tests substitute
// testutil.ManualScheduler so time only moves when the test says so.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules on the Go runtime timer.
type SystemScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
