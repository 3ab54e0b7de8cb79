package clock

import "time"

// Clock supplies the current time. Game machines measure reaction latency
// as the difference between two Now calls, so implementations must be
// monotonic within a session.
type Clock interface {
	Now() time.Time
}

// CancelFunc stops a pending timer. It reports whether the timer was still
// pending when cancelled.
type CancelFunc func() bool

// Scheduler arms delayed callbacks. A callback runs at most once.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

// System is the production Clock and Scheduler backed by the time package.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
