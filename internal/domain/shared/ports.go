package shared

import (
	"context"
	"time"
)

// Locker serializes work on a single key (a pen, a statement entry).
// Lock blocks until the key is held or ctx is done; the returned func
// releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Clock supplies the current time to date-relative computations
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now returns the current time
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns the wall clock
func SystemClock() Clock {
	return ClockFunc(time.Now)
}
