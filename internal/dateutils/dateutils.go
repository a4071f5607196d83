// Package dateutils parses statement dates with configurable patterns and
// formats ledger dates.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DateLayoutISO is the layout of dates stored in the ledger.
const DateLayoutISO = "2006-01-02"

// DateLayoutMonth is the layout accepted for month selections (yyyy-MM).
const DateLayoutMonth = "2006-01"

var whitespace = regexp.MustCompile(`\s+`)

// IsStrftime reports whether pattern uses strftime directives such as %Y.
// Anything else is treated as a Go reference layout.
func IsStrftime(pattern string) bool {
	return strings.Contains(pattern, "%")
}

// ValidatePattern checks that pattern can be used by Parse.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("date pattern is empty")
	}
	if !IsStrftime(pattern) {
		return nil
	}
	if _, err := strftime.Layout(pattern); err != nil {
		return fmt.Errorf("invalid date pattern %q: %w", pattern, err)
	}
	return nil
}

// Parse parses value with pattern and returns the calendar date at midnight UTC.
//
// Strftime patterns accept non-padded day and month numbers, so "%Y/%m/%d"
// matches both "2025/01/05" and "2025/1/5".
func Parse(value, pattern string) (time.Time, error) {
	value = CleanDateString(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	var (
		t   time.Time
		err error
	)
	if IsStrftime(pattern) {
		t, err = strftime.Parse(pattern, value)
	} else {
		t, err = time.Parse(pattern, value)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q does not match pattern %q: %w", value, pattern, err)
	}
	return TruncateDay(t), nil
}

// ParseISODate parses a yyyy-MM-dd date.
func ParseISODate(value string) (time.Time, error) {
	return Parse(value, DateLayoutISO)
}

// ToISODate formats a date as yyyy-MM-dd.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims value and collapses inner whitespace.
func CleanDateString(value string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(value), " ")
}

// TruncateDay drops the time of day, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of the month for a given date
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// MonthBounds parses a yyyy-MM month and returns its first and last day.
func MonthBounds(month string) (time.Time, time.Time, error) {
	t, err := Parse(month, DateLayoutMonth)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return StartOfMonth(t), EndOfMonth(t), nil
}
