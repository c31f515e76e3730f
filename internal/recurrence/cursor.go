package recurrence

import (
	"errors"
	"iter"
	"time"
)

// MaxOccurrences caps how many candidates a cursor evaluates.
const MaxOccurrences = 100_000

// ErrTooManyOccurrences is reported by Cursor.Err when MaxOccurrences was hit
// before the cursor passed its upper bound.
var ErrTooManyOccurrences = errors.New("recurrence: occurrence cap reached")

// Cursor walks the occurrences of a rule from a begin date up to and
// including an upper bound. Occurrence k is always derived from the begin
// date, so month-end clamping and weekday snapping never drift.
type Cursor struct {
	rule  Rule
	begin time.Time
	until time.Time

	k    int
	done bool
	err  error
}

// NewCursor returns a cursor positioned before the first occurrence.
func NewCursor(rule Rule, begin, until time.Time) *Cursor {
	return &Cursor{rule: rule, begin: begin, until: until}
}

// Next returns the next occurrence, or false once the cursor is past until.
func (c *Cursor) Next() (time.Time, bool) {
	for !c.done {
		if c.k >= MaxOccurrences {
			c.done = true
			c.err = ErrTooManyOccurrences
			break
		}
		t := Occurrence(c.rule, c.begin, c.k)
		c.k++
		if t.After(c.until) {
			c.done = true
			break
		}
		// Weekday snapping can land before the begin date on the first period.
		if t.Before(c.begin) {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

// Reset rewinds the cursor to the begin date.
func (c *Cursor) Reset() {
	c.k = 0
	c.done = false
	c.err = nil
}

// Err reports whether the cursor stopped on the occurrence cap.
func (c *Cursor) Err() error {
	return c.err
}

// All rewinds the cursor and yields every occurrence.
func (c *Cursor) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		c.Reset()
		for t, ok := c.Next(); ok; t, ok = c.Next() {
			if !yield(t) {
				return
			}
		}
	}
}

// Occurrences collects every occurrence of rule in [begin, until].
func Occurrences(rule Rule, begin, until time.Time) ([]time.Time, error) {
	c := NewCursor(rule, begin, until)
	var out []time.Time
	for t := range c.All() {
		out = append(out, t)
	}
	return out, c.Err()
}

// Occurrence computes the k-th candidate date of rule counted from begin.
// The result may precede begin for anchored monthly/yearly rules when k is 0.
func Occurrence(rule Rule, begin time.Time, k int) time.Time {
	switch r := rule.(type) {
	case Daily:
		return begin.AddDate(0, 0, k*r.Step)

	case Weekly:
		first := begin
		if r.Weekday != nil {
			first = begin.AddDate(0, 0, daysUntil(begin.Weekday(), *r.Weekday))
		}
		return first.AddDate(0, 0, 7*k*r.Step)

	case Monthly:
		nominal := addMonths(begin, k*r.Step)
		if r.Anchor == nil {
			return nominal
		}
		return snapToWeekday(nominal, *r.Anchor)

	case Yearly:
		nominal := addMonths(begin, 12*k*r.Step)
		if r.Anchor == nil {
			return nominal
		}
		if r.Anchor.Month != nil {
			nominal = withMonth(nominal, *r.Anchor.Month)
		}
		return snapToWeekday(nominal, r.Anchor.WeekdayAnchor)
	}
	// Compile never produces another Rule implementation.
	panic("recurrence: unknown rule type")
}

// snapToWeekday moves nominal to the anchor's weekday within its month. When
// the extra weeks push the date into the next month the nominal date is kept.
func snapToWeekday(nominal time.Time, a WeekdayAnchor) time.Time {
	first := time.Date(nominal.Year(), nominal.Month(), 1,
		nominal.Hour(), nominal.Minute(), nominal.Second(), nominal.Nanosecond(), nominal.Location())
	candidate := first.AddDate(0, 0, daysUntil(first.Weekday(), a.Weekday))

	if a.Week != nil && *a.Week > 0 {
		shifted := candidate.AddDate(0, 0, 7*(*a.Week))
		if shifted.Month() != nominal.Month() {
			return nominal
		}
		candidate = shifted
	}
	return candidate
}

// daysUntil is the number of days from one weekday forward to the next target weekday.
func daysUntil(from, target time.Weekday) int {
	return (int(target) - int(from) + 7) % 7
}

// addMonths adds n months, clamping the day to the end of the target month
// (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := t.Day()
	if last := daysIn(year, month, t.Location()); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func withMonth(t time.Time, m time.Month) time.Time {
	day := t.Day()
	if last := daysIn(t.Year(), m, t.Location()); day > last {
		day = last
	}
	return time.Date(t.Year(), m, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, m time.Month, loc *time.Location) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
