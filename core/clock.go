package core

import "time"

type (
	// Clock is a current-time source. The reminder engine takes one so tests
	// can pin "today"/"tomorrow" boundaries deterministically.
	Clock interface {
		Now() time.Time
	}

	// ClockFunc adapts a plain func to a Clock.
	ClockFunc func() time.Time
)

func (f ClockFunc) Now() time.Time { return f() }

// RealClock returns the wall clock.
func RealClock() Clock { return ClockFunc(time.Now) }
