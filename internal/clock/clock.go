// Package clock lets services read the current time through an injected
// value, so forecasts can be replayed against a fixed "now" in tests.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Fixed always returns T.
type Fixed struct {
	T time.Time
}

func (c Fixed) Now() time.Time {
	return c.T
}

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Truncated wraps a clock and truncates its readings, e.g. to whole
// minutes, so repeated forecasts inside the same minute share a "now".
type Truncated struct {
	Clock Clock
	To    time.Duration
}

func (c Truncated) Now() time.Time {
	return c.Clock.Now().Truncate(c.To)
}

var (
	_ Clock = Real{}
	_ Clock = Fixed{}
	_ Clock = Func(nil)
	_ Clock = Truncated{}
)
