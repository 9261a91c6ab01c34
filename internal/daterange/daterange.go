// Package daterange holds the calendar-day arithmetic shared by every
// date-driven view: day boundaries and closed-interval overlap.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a date-only value.
const DateLayout = "2006-01-02"

// lastMillisecond is the offset of 23:59:59.999 from midnight.
const lastMillisecond = 24*time.Hour - time.Millisecond

// StartOfDay returns local midnight of the calendar day of d in d's location.
func StartOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// EndOfDay returns 23:59:59.999 of the calendar day of d in d's location.
func EndOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, int(999*time.Millisecond), d.Location())
}

// Range is a closed interval [Start, End].
type Range struct {
	Start time.Time
	End   time.Time
}

// Day returns the whole calendar day containing d.
func Day(d time.Time) Range {
	return Range{Start: StartOfDay(d), End: EndOfDay(d)}
}

// Days returns the range from the start of from's day to the end of to's day.
func Days(from, to time.Time) Range {
	return Range{Start: StartOfDay(from), End: EndOfDay(to)}
}

// Overlaps reports whether the closed intervals share at least one instant.
func (r Range) Overlaps(o Range) bool {
	return Overlaps(r.Start, r.End, o.Start, o.End)
}

// Contains reports whether t lies inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps reports whether [s1,e1] and [s2,e2] overlap, i.e. s1 <= e2 && e1 >= s2.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// AddDays moves d by n calendar days, keeping the wall clock.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// ParseDate reads a date-only value ("2024-01-02") or an RFC3339 timestamp
// and returns the start of that calendar day in loc. Timestamps are first
// converted into loc so "2024-01-02T23:30:00-05:00" lands on the local day.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return StartOfDay(t.In(loc)), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: expected %s or RFC3339", raw, DateLayout)
}

// Format renders the calendar day of t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}
