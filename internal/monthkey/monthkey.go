// Package monthkey provides the calendar-month key used to partition cached
// ERP sales data.
//
// A Key identifies one calendar month as a (year, month) pair with a stable
// canonical string form "YYYY-MM". Keys order totally by (year, month), which
// lets the range planner enumerate a date range month by month and keeps the
// per-month store's key space sortable.
//
// The refresh-window check is the one piece of policy that lives here: a month
// is "hot" when it falls within the most recent N calendar months relative to
// a reference date. Hot months are subject to age-based expiry; everything
// older is "cold" and, once cached, trusted indefinitely. Future months are
// never hot -- they cannot have data yet.
package monthkey

import (
	"fmt"
	"time"

	"github.com/andrefarina/salesops-cli-go/internal/core"
)

// Key identifies a single calendar month. Month is 1-indexed.
type Key struct {
	Year  int
	Month int
}

// FromDate extracts the calendar month key of a date.
func FromDate(t time.Time) Key {
	return Key{Year: t.Year(), Month: int(t.Month())}
}

// Parse parses the canonical "YYYY-MM" form.
func Parse(s string) (Key, error) {
	t, err := time.Parse(core.MonthFmt, s)
	if err != nil {
		return Key{}, fmt.Errorf("invalid month key '%s' (expected YYYY-MM)", s)
	}
	return FromDate(t), nil
}

// String returns the canonical "YYYY-MM" storage form.
func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// Label returns the human-readable "Jan/2006" form used in progress output
// and per-month error lists.
func (k Key) Label() string {
	return k.Start().Format(core.LabelFmt)
}

// MarshalText encodes the canonical "YYYY-MM" form, so JSON-stored entries
// carry the same key form as their file names.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the canonical "YYYY-MM" form.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Next returns the following calendar month, rolling the year past December.
func (k Key) Next() Key {
	if k.Month == 12 {
		return Key{Year: k.Year + 1, Month: 1}
	}
	return Key{Year: k.Year, Month: k.Month + 1}
}

// Compare orders keys chronologically: -1, 0 or +1.
func (k Key) Compare(other Key) int {
	a := k.Year*12 + k.Month
	b := other.Year*12 + other.Month
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether k is chronologically before other.
func (k Key) Before(other Key) bool {
	return k.Compare(other) < 0
}

// After reports whether k is chronologically after other.
func (k Key) After(other Key) bool {
	return k.Compare(other) > 0
}

// Start returns the first day of the month (date only, midnight UTC).
func (k Key) Start() time.Time {
	return time.Date(k.Year, time.Month(k.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month (date only, midnight UTC).
func (k Key) End() time.Time {
	return k.Start().AddDate(0, 1, -1)
}

// MonthsBetween returns how many whole calendar months k lies before now's
// month. Zero means the current month; negative means a future month.
func (k Key) MonthsBetween(now time.Time) int {
	return (now.Year()-k.Year)*12 + (int(now.Month()) - k.Month)
}

// WithinRefreshWindow reports whether k falls inside the most recent
// windowSize calendar months relative to now. Future months are never within
// the window.
func (k Key) WithinRefreshWindow(now time.Time, windowSize int) bool {
	d := k.MonthsBetween(now)
	return d >= 0 && d < windowSize
}
