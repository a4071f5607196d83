package models

import (
	"fmt"
	"time"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range, rejecting an end date before the start date.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateDay(start), End: truncateDay(end)}
	if r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("date range end %s is before start %s",
			r.End.Format(DateLayoutISO), r.Start.Format(DateLayoutISO))
	}
	return r, nil
}

// Contains reports whether d falls within [Start, End], comparing calendar days only.
func (r DateRange) Contains(d time.Time) bool {
	day := truncateDay(d)
	return !day.Before(truncateDay(r.Start)) && !day.After(truncateDay(r.End))
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayoutISO) + ".." + r.End.Format(DateLayoutISO)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
