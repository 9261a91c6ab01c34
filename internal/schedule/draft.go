package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobsched/internal/models"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("invalid schedule")

// ValidationError lists the user-facing problems that block a submit.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Submitter persists a schedule. The backend client and the local store both
// satisfy it.
type Submitter interface {
	CreateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error)
	UpdateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error)
}

// Draft is a schedule being created or edited.
type Draft struct {
	ID             int64
	ProjectSetupID int64
	StartDate      models.Date
	EndDate        models.Date
	Notes          string
	Assignments    Assignments
}

// NewDraft starts an empty schedule.
func NewDraft() *Draft {
	return &Draft{Assignments: Assignments{}}
}

// EditDraft opens a persisted schedule for editing, keeping its booked hours.
func EditDraft(s models.Schedule) *Draft {
	persisted := make(map[int64]float64, len(s.WorkerAssignments))
	selected := make([]int64, 0, len(s.WorkerAssignments))
	for _, w := range s.WorkerAssignments {
		if _, dup := persisted[w.WorkerID]; !dup {
			selected = append(selected, w.WorkerID)
		}
		persisted[w.WorkerID] = w.HoursAssigned
	}
	return &Draft{
		ID:             s.ID,
		ProjectSetupID: s.ProjectSetupID,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Notes:          s.Notes,
		Assignments:    Seed(selected, persisted),
	}
}

// Submitted takes a schedule exactly as a client sent it. Unlike EditDraft
// the worker entries are kept as given, duplicates included, so Validate
// reports them.
func Submitted(s models.Schedule) *Draft {
	assignments := make(Assignments, len(s.WorkerAssignments))
	copy(assignments, s.WorkerAssignments)
	return &Draft{
		ID:             s.ID,
		ProjectSetupID: s.ProjectSetupID,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Notes:          s.Notes,
		Assignments:    assignments,
	}
}

// EditJob opens the schedule behind a job read model for editing.
func EditJob(job models.Job) *Draft {
	s := models.Schedule{
		ID:             job.ID,
		ProjectSetupID: job.ProjectSetup.ID,
		StartDate:      job.StartDate,
		EndDate:        job.EndDate,
		Notes:          job.Notes,
	}
	for _, w := range job.Workers {
		s.WorkerAssignments = append(s.WorkerAssignments, models.WorkerAssignment{WorkerID: w.ID, HoursAssigned: w.HoursAssigned})
	}
	return EditDraft(s)
}

// SelectWorkers replaces the worker selection, see Assignments.SelectWorkers.
func (d *Draft) SelectWorkers(ids []int64) {
	d.Assignments = d.Assignments.SelectWorkers(ids)
}

// SetHours sets the hours of one selected worker.
func (d *Draft) SetHours(workerID int64, hours float64) {
	d.Assignments = d.Assignments.SetHours(workerID, hours)
}

// Validate reports every problem that blocks submission.
func (d *Draft) Validate() error {
	var problems []string
	if d.ProjectSetupID <= 0 {
		problems = append(problems, "project is required")
	}
	if !d.StartDate.Valid() {
		problems = append(problems, "start date is required")
	}
	if !d.EndDate.Valid() {
		problems = append(problems, "end date is required")
	}
	if d.StartDate.Valid() && d.EndDate.Valid() && d.EndDate.Before(d.StartDate) {
		problems = append(problems, "end date must not be before start date")
	}
	if len(d.Assignments) == 0 {
		problems = append(problems, "at least one worker must be assigned")
	}
	seen := make(map[int64]struct{}, len(d.Assignments))
	for _, w := range d.Assignments {
		if w.WorkerID <= 0 {
			problems = append(problems, "worker id must be positive")
			continue
		}
		if _, dup := seen[w.WorkerID]; dup {
			problems = append(problems, fmt.Sprintf("worker %d is assigned twice", w.WorkerID))
		}
		seen[w.WorkerID] = struct{}{}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Schedule returns the record that would be submitted.
func (d *Draft) Schedule() models.Schedule {
	return models.Schedule{
		ID:                d.ID,
		ProjectSetupID:    d.ProjectSetupID,
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		Notes:             strings.TrimSpace(d.Notes),
		WorkerAssignments: append([]models.WorkerAssignment{}, d.Assignments...),
	}
}

// Submit validates the draft and hands it to s. s is not called when the
// draft is invalid.
func (d *Draft) Submit(ctx context.Context, s Submitter) (models.Schedule, error) {
	if err := d.Validate(); err != nil {
		return models.Schedule{}, err
	}
	if d.ID == 0 {
		return s.CreateSchedule(ctx, d.Schedule())
	}
	return s.UpdateSchedule(ctx, d.Schedule())
}
