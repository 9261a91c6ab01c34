// Package partition derives the date-driven and board views of a job from
// one canonical task list. Every function returns fresh slices and leaves
// its input untouched.
package partition

import (
	"strings"
	"time"

	"jobsched/internal/daterange"
	"jobsched/internal/models"
)

const (
	// WeekSpanDays is how far past today the rolling week window reaches.
	WeekSpanDays = 7
	// GridDays is the number of day buckets in the week grid.
	GridDays = 7
)

// Within returns the dated tasks overlapping r. Dates are placed in loc.
func Within(tasks []models.Task, r daterange.Range, loc *time.Location) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range tasks {
		span, ok := t.Span(loc)
		if !ok {
			continue
		}
		if span.Overlaps(r) {
			out = append(out, t)
		}
	}
	return out
}

// Today returns the tasks overlapping the calendar day of now.
func Today(tasks []models.Task, now time.Time) []models.Task {
	return Within(tasks, daterange.Day(now), now.Location())
}

// Week returns the tasks overlapping the rolling window from the start of
// today to the end of the day seven days later.
func Week(tasks []models.Task, now time.Time) []models.Task {
	return Within(tasks, WeekRange(now), now.Location())
}

// WeekRange is the window used by Week.
func WeekRange(now time.Time) daterange.Range {
	return daterange.Days(now, daterange.AddDays(now, WeekSpanDays))
}

// Completed returns the tasks in a completed state regardless of dates.
func Completed(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.Status.Completed() {
			out = append(out, t)
		}
	}
	return out
}

// DayBucket holds the tasks touching one calendar day.
type DayBucket struct {
	Date  models.Date   `json:"date"`
	Tasks []models.Task `json:"tasks"`
}

// WeekGrid buckets tasks into the GridDays calendar days starting today. A
// multi-day task appears in every bucket it overlaps.
func WeekGrid(tasks []models.Task, now time.Time) []DayBucket {
	buckets := make([]DayBucket, 0, GridDays)
	for i := 0; i < GridDays; i++ {
		day := daterange.AddDays(daterange.StartOfDay(now), i)
		buckets = append(buckets, DayBucket{
			Date:  models.NewDate(day),
			Tasks: Within(tasks, daterange.Day(day), now.Location()),
		})
	}
	return buckets
}

// Mine returns the tasks assigned to the worker with the given email.
// Emails are compared after trimming and lower-casing both sides.
func Mine(tasks []models.Task, email string) []models.Task {
	out := make([]models.Task, 0)
	key := normalizeEmail(email)
	if key == "" {
		return out
	}
	for _, t := range tasks {
		if t.AssignedWorker == nil {
			continue
		}
		if normalizeEmail(t.AssignedWorker.Email) == key {
			out = append(out, t)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
