// Package clock provides an injectable time source so that date-stamping
// logic (loan dates, shelf transitions, dashboard windows) is deterministic
// in tests.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time {
	return f.Time
}

// Today truncates the clock's current time to a UTC calendar date.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
