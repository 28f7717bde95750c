package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-17")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 17 {
		t.Errorf("Expected 2025-03-17, got %v", d)
	}

	if _, err := ParseDate("17/03/2025"); err == nil {
		t.Error("Expected error for non-ISO format")
	}
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Error("Expected error for impossible date")
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	d, _ := ParseDate("2024-12-31")
	if got := FormatDate(d); got != "2024-12-31" {
		t.Errorf("Expected '2024-12-31', got %s", got)
	}
}

func TestDateOnly(t *testing.T) {
	stamp := time.Date(2025, time.June, 15, 23, 59, 58, 123, time.FixedZone("X", 3600))
	got := DateOnly(stamp)
	want := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestGetTimeRange(t *testing.T) {
	now := time.Date(2025, time.February, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		period string
		first  string
		last   string
	}{
		{"this-month", "2025-02-01", "2025-02-28"},
		{"last-month", "2025-01-01", "2025-01-31"},
		{"this-quarter", "2025-01-01", "2025-03-31"},
		{"last-quarter", "2024-10-01", "2024-12-31"},
	}
	for _, c := range cases {
		first, last, err := GetTimeRange(c.period, now)
		if err != nil {
			t.Fatalf("GetTimeRange(%s) failed: %v", c.period, err)
		}
		if FormatDate(first) != c.first || FormatDate(last) != c.last {
			t.Errorf("%s: expected %s..%s, got %s..%s",
				c.period, c.first, c.last, FormatDate(first), FormatDate(last))
		}
	}
}

func TestGetTimeRangeYearBoundaries(t *testing.T) {
	// January: last-month and last-quarter both cross into the prior year.
	now := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)

	first, last, err := GetTimeRange("last-month", now)
	if err != nil {
		t.Fatalf("GetTimeRange failed: %v", err)
	}
	if FormatDate(first) != "2024-12-01" || FormatDate(last) != "2024-12-31" {
		t.Errorf("Expected 2024-12-01..2024-12-31, got %s..%s", FormatDate(first), FormatDate(last))
	}

	first, last, err = GetTimeRange("last-quarter", now)
	if err != nil {
		t.Fatalf("GetTimeRange failed: %v", err)
	}
	if FormatDate(first) != "2024-10-01" || FormatDate(last) != "2024-12-31" {
		t.Errorf("Expected 2024-10-01..2024-12-31, got %s..%s", FormatDate(first), FormatDate(last))
	}
}

func TestGetTimeRangeUnknownPeriod(t *testing.T) {
	if _, _, err := GetTimeRange("next-month", time.Now()); err == nil {
		t.Error("Expected error for unsupported period")
	}
}
