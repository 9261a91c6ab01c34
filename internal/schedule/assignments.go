// Package schedule models the editable state of a job schedule: the set of
// selected workers with their booked hours, and the checks a schedule must
// pass before it is submitted.
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"jobsched/internal/models"
)

// Assignments is the ordered list of selected workers and their hours.
// Methods return new values and never modify the receiver.
type Assignments []models.WorkerAssignment

// Seed builds the initial state for the selected workers, taking hours from
// persisted where present.
func Seed(selected []int64, persisted map[int64]float64) Assignments {
	out := make(Assignments, 0, len(selected))
	seen := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, models.WorkerAssignment{WorkerID: id, HoursAssigned: persisted[id]})
	}
	return out
}

// SelectWorkers reconciles the list against a new selection: entries for
// kept workers keep their hours, new workers start at zero, and workers not
// in ids are dropped. The result follows the order of ids.
func (a Assignments) SelectWorkers(ids []int64) Assignments {
	return Seed(ids, a.hoursByWorker())
}

// SetHours updates the hours of one worker. Unknown workers are ignored.
func (a Assignments) SetHours(workerID int64, hours float64) Assignments {
	out := a.clone()
	for i := range out {
		if out[i].WorkerID == workerID {
			out[i].HoursAssigned = hours
		}
	}
	return out
}

// SetHoursText coerces raw form input to a number and applies it. Empty input
// counts as zero.
func (a Assignments) SetHoursText(workerID int64, raw string) (Assignments, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return a.SetHours(workerID, 0), nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return a, fmt.Errorf("hours for worker %d: %q is not a number", workerID, raw)
	}
	return a.SetHours(workerID, hours), nil
}

// Hours returns the hours of one worker.
func (a Assignments) Hours(workerID int64) (float64, bool) {
	for _, w := range a {
		if w.WorkerID == workerID {
			return w.HoursAssigned, true
		}
	}
	return 0, false
}

// WorkerIDs lists the selected workers in order.
func (a Assignments) WorkerIDs() []int64 {
	out := make([]int64, 0, len(a))
	for _, w := range a {
		out = append(out, w.WorkerID)
	}
	return out
}

// Total sums the booked hours.
func (a Assignments) Total() float64 {
	var sum float64
	for _, w := range a {
		sum += w.HoursAssigned
	}
	return sum
}

func (a Assignments) hoursByWorker() map[int64]float64 {
	m := make(map[int64]float64, len(a))
	for _, w := range a {
		m[w.WorkerID] = w.HoursAssigned
	}
	return m
}

func (a Assignments) clone() Assignments {
	out := make(Assignments, len(a))
	copy(out, a)
	return out
}
