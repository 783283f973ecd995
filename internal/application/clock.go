package application

import "time"

// Clock is read once per operation so a single call sees a single "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock()
	}
	return c
}
