// Package timer abstracts one-shot timers so that countdowns and deferred work can be driven by a fake clock in tests.
package timer

import "time"

type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call stopped the timer.
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	// Now is the current time on the clock that fires the timers.
	Now() time.Time
}

type systemScheduler struct{}

// System returns a Scheduler backed by time.AfterFunc.
func System() Scheduler {
	return systemScheduler{}
}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (systemScheduler) Now() time.Time {
	return time.Now()
}
