package service

import "time"

// Clock abstracts "now" so lead-time checks and timestamps are deterministic
// under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock used in production.
func SystemClock() Clock { return systemClock{} }
