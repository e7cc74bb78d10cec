package report

import (
	"fmt"
	"time"

	"dental-shop/internal/models"
)

// Granularity is the width of a trend bucket
type Granularity int

const (
	Day Granularity = iota
	Month
)

func (g Granularity) String() string {
	if g == Month {
		return "month"
	}
	return "day"
}

// Bucket is one time slot of a trend series
type Bucket struct {
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OrderCount int       `json:"orderCount"`
	Revenue    float64   `json:"revenue"`
}

// Buckets walks back count calendar days or months from now and returns
// them oldest first. An order belongs to a bucket when its creation time
// lies in [Start, End].
func Buckets(orders []models.Order, g Granularity, count int, now time.Time) []Bucket {
	if count <= 0 {
		return []Bucket{}
	}

	out := make([]Bucket, 0, count)
	for i := count - 1; i >= 0; i-- {
		start, end := bounds(g, i, now)
		b := Bucket{
			Label: label(g, start, now),
			Start: start,
			End:   end,
		}

		var revenue Money
		for _, o := range orders {
			if o.CreatedAt.Before(start) || o.CreatedAt.After(end) {
				continue
			}
			b.OrderCount++
			revenue.Add(o.Total)
		}
		b.Revenue = revenue.Float()

		out = append(out, b)
	}
	return out
}

// bounds returns the first and last instant of the bucket offset steps
// before the one containing now.
func bounds(g Granularity, offset int, now time.Time) (time.Time, time.Time) {
	loc := now.Location()
	var start, next time.Time
	switch g {
	case Month:
		start = time.Date(now.Year(), now.Month()-time.Month(offset), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	default:
		start = time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 0, 1)
	}
	return start, next.Add(-time.Nanosecond)
}

// label formats a bucket start. A two-digit year is appended only when the
// bucket falls outside the current year.
func label(g Granularity, start, now time.Time) string {
	var s string
	if g == Month {
		s = start.Format("Jan")
	} else {
		s = start.Format("Jan 2")
	}
	if start.Year() != now.Year() {
		s = fmt.Sprintf("%s '%02d", s, start.Year()%100)
	}
	return s
}
