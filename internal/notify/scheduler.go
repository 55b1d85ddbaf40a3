package notify

import "time"

// Scheduler abstracts timer creation so tests can drive expiry deterministically
// instead of sleeping.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type Timer interface {
	Stop() bool
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
