package session

import "time"

// Cancel stops a timer armed through a Scheduler. It is safe to call more
// than once.
type Cancel func()

// Scheduler arms repeating timers on behalf of a Session. Implementations
// must invoke fire on the goroutine that owns the Session.
type Scheduler interface {
	Every(interval time.Duration, fire func()) Cancel
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}
