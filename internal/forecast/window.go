// Package forecast projects recurring obligations into a dated, balanced
// stream of future transactions.
//
// Every function in this package is a pure function of its inputs. "Now" is
// always passed in through Window; nothing here reads the system clock.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/finance-forecast/internal/domain"
)

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("invalid forecast window")

// Window is the visible forecast range [From, To] together with the instant
// the forecast is computed at.
type Window struct {
	From time.Time
	To   time.Time
	Now  time.Time
}

// Validate reports whether the window is usable.
func (w Window) Validate() error {
	if w.To.Before(w.From) {
		return fmt.Errorf("%w: to %s is before from %s", ErrInvalidWindow,
			w.To.Format(time.RFC3339), w.From.Format(time.RFC3339))
	}
	return nil
}

// Bucket says where an occurrence ends up relative to a window.
type Bucket int

const (
	// Discarded occurrences happened before now and are not projected.
	Discarded Bucket = iota
	// Skipped occurrences are in the future but before the window starts.
	Skipped
	// Included occurrences fall inside the visible window.
	Included
)

func (b Bucket) String() string {
	switch b {
	case Discarded:
		return "discarded"
	case Skipped:
		return "skipped"
	case Included:
		return "included"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// Classify places date into exactly one bucket.
func (w Window) Classify(date time.Time) Bucket {
	switch {
	case date.Before(w.Now):
		return Discarded
	case date.Before(w.From):
		return Skipped
	default:
		return Included
	}
}

// Result is what a generator produces for one record.
type Result struct {
	Included []domain.GeneratedTransaction
	Skipped  []domain.GeneratedTransaction
}

// add classifies tx and appends it to the matching bucket.
func (r *Result) add(w Window, tx domain.GeneratedTransaction) Bucket {
	b := w.Classify(tx.Date)
	switch b {
	case Included:
		r.Included = append(r.Included, tx)
	case Skipped:
		r.Skipped = append(r.Skipped, tx)
	}
	return b
}

// merge appends other's buckets onto r.
func (r *Result) merge(other Result) {
	r.Included = append(r.Included, other.Included...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// until is the last instant a record may produce an occurrence at.
func (w Window) until(end *time.Time) time.Time {
	if end != nil && end.Before(w.To) {
		return *end
	}
	return w.To
}
