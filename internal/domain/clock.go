package domain

import "time"

// Clock supplies the current time to every state-transition function so
// scheduler behavior can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
