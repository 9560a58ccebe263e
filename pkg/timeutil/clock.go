package timeutil

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in seconds since midnight. Working hours
// are stored as HH:mm:ss and requested windows arrive as HH:mm; both parse to
// the same Clock so comparisons always happen at second precision.
type Clock int

const DateLayout = "2006-01-02"

// ParseClock accepts "HH:mm" or "HH:mm:ss". The whole string must match the
// layout; partial matches like "1:2:3" are rejected.
func ParseClock(s string) (Clock, error) {
	var layout string
	switch len(s) {
	case 5:
		layout = "15:04"
	case 8:
		layout = "15:04:05"
	default:
		return 0, fmt.Errorf("invalid wall-clock time %q: want HH:mm or HH:mm:ss", s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid wall-clock time %q: %w", s, err)
	}
	return Clock(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60)
}

// Normalize returns the HH:mm:ss form of a wall-clock string.
func Normalize(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Contains reports whether [candStart, candEnd] fits entirely inside
// [hStart, hEnd]. Callers guarantee start < end on both sides.
func Contains(hStart, hEnd, candStart, candEnd Clock) bool {
	return candStart >= hStart && candEnd <= hEnd
}

// OverlapsClock reports half-open overlap between two same-day wall-clock
// intervals: [aStart,aEnd) and [bStart,bEnd).
func OverlapsClock(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}

// Overlaps reports half-open overlap between two timestamp intervals.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Combine expands a calendar date plus a wall-clock time into a timestamp in
// the given location.
func Combine(date string, c Clock, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d.Add(time.Duration(c) * time.Second), nil
}
