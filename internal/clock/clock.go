// Package clock provides the timer abstraction that drives polling sessions.
//
// Sessions never call the time package directly for scheduling. They ask a
// [Clock] for timers, which lets tests replace wall-clock time with a [Fake]
// and step through backoff tiers and watchdog expiries deterministically.
package clock

import "time"

// Timer is a pending callback created by [Clock.AfterFunc].
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was already stopped.
	Stop() bool
}

// Clock reports the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// Real returns a [Clock] backed by the time package.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
