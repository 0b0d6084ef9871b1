package time

import "time"

// Timer is the subset of *time.Timer that callers need
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time and deferred calls so timing code can be driven by tests
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the real clock
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
