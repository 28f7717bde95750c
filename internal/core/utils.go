package core

import (
	"fmt"
	"time"
)

// ParseDate parses a YYYY-MM-DD string into a time.Time (date only, at midnight UTC).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// GetTimeRange returns (start, end) dates representing a period.
// Supported periods: this-month, last-month, this-quarter, last-quarter.
func GetTimeRange(period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case "this-month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return first, last, nil

	case "last-month":
		first := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return first, last, nil

	case "this-quarter":
		q := (int(now.Month()) - 1) / 3
		first := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 3, -1)
		return first, last, nil

	case "last-quarter":
		q := (int(now.Month()) - 1) / 3
		var first time.Time
		if q == 0 {
			first = time.Date(now.Year()-1, time.October, 1, 0, 0, 0, 0, time.UTC)
		} else {
			first = time.Date(now.Year(), time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		}
		last := first.AddDate(0, 3, -1)
		return first, last, nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("unknown period: %s", period)
}

// DateOnly returns a time.Time with only the date portion (midnight UTC).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a time.Time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateFmt)
}
