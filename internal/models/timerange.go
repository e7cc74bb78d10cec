package models

import (
	"fmt"
	"time"
)

// TimeRange is a trailing report window
type TimeRange string

const (
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
	TimeRange90d TimeRange = "90d"
	TimeRange1y  TimeRange = "1y"

	DefaultTimeRange = TimeRange30d
)

// ParseTimeRange validates a timeRange query value; empty means the default
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return DefaultTimeRange, nil
	}
	tr := TimeRange(s)
	if tr.Days() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return tr, nil
}

// Days returns the window length, or 0 for an unknown range
func (tr TimeRange) Days() int {
	switch tr {
	case TimeRange7d:
		return 7
	case TimeRange30d:
		return 30
	case TimeRange90d:
		return 90
	case TimeRange1y:
		return 365
	}
	return 0
}

// Start returns the inclusive start of the window ending at now
func (tr TimeRange) Start(now time.Time) time.Time {
	return now.AddDate(0, 0, -tr.Days())
}

// PreviousStart returns the start of the equally long window before Start
func (tr TimeRange) PreviousStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -2*tr.Days())
}

// MonthBuckets is the number of calendar months the window ending at now
// touches, so the monthly trend covers every order the totals count.
func (tr TimeRange) MonthBuckets(now time.Time) int {
	start := tr.Start(now)
	return (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month()) + 1
}

// DayBuckets is the number of day buckets shown for this window
func (tr TimeRange) DayBuckets() int {
	return min(tr.Days(), 90)
}
