package models

import (
	"errors"
	"strings"
	"time"

	"jobsched/internal/daterange"
)

var (
	ErrEmptyTitle   = errors.New("task title must not be empty")
	ErrInvalidDates = errors.New("start date must not be after end date")
)

// ProjectSetup describes a project that jobs are scheduled for.
type ProjectSetup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Stages    []Stage   `json:"stages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Board returns the ordered stage keys of the project's kanban board.
func (p ProjectSetup) Board() []Stage {
	if len(p.Stages) == 0 {
		return DefaultStages
	}
	return p.Stages
}

// Worker is a schedulable employee.
type Worker struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Email       string       `json:"email" db:"email"`
	JobTitle    string       `json:"jobTitle" db:"job_title"`
	Status      WorkerStatus `json:"status" db:"status"`
	WeeklyHours float64      `json:"weeklyHours" db:"weekly_hours"`
	HourlyRate  float64      `json:"hourlyRate" db:"hourly_rate"`
}

// WorkerRef points at the worker a task is assigned to.
type WorkerRef struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Attachment is a file linked from a comment.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Comment is one entry of a task's append-only discussion.
type Comment struct {
	ID         string      `json:"id"`
	Author     string      `json:"author"`
	Content    string      `json:"content"`
	Timestamp  time.Time   `json:"timestamp"`
	Attachment *Attachment `json:"file,omitempty"`
}

// Task is a unit of schedulable work shown on the kanban, gantt and calendar.
type Task struct {
	ID             int64      `json:"id"`
	JobID          int64      `json:"job"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StartDate      Date       `json:"startDate"`
	EndDate        Date       `json:"endDate"`
	Status         Status     `json:"status"`
	Stage          Stage      `json:"stage"`
	Priority       Priority   `json:"priority"`
	AssignedWorker *WorkerRef `json:"assignedWorker"`
	Comments       []Comment  `json:"comments"`
	Position       int64      `json:"position"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Dated reports whether both boundaries are present.
func (t Task) Dated() bool {
	return t.StartDate.Valid() && t.EndDate.Valid()
}

// Span returns the closed interval covered by the task in loc. ok is false
// when either date is missing.
func (t Task) Span(loc *time.Location) (daterange.Range, bool) {
	if !t.Dated() {
		return daterange.Range{}, false
	}
	return daterange.Days(t.StartDate.In(loc), t.EndDate.In(loc)), true
}

// Validate checks the fields a stored task must satisfy.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.Dated() && t.EndDate.Before(t.StartDate) {
		return ErrInvalidDates
	}
	return nil
}

// WorkerAssignment is the number of hours one worker is booked on a schedule.
type WorkerAssignment struct {
	WorkerID      int64   `json:"workerId" db:"worker_id"`
	HoursAssigned float64 `json:"hoursAssigned" db:"hours_assigned"`
}

// Schedule binds a project setup to a date range and a set of workers.
type Schedule struct {
	ID                int64              `json:"id" db:"id"`
	ProjectSetupID    int64              `json:"projectSetupId" db:"project_setup_id"`
	StartDate         Date               `json:"startDate" db:"start_date"`
	EndDate           Date               `json:"endDate" db:"end_date"`
	Notes             string             `json:"notes" db:"notes"`
	WorkerAssignments []WorkerAssignment `json:"workerIds" db:"-"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// ScheduledWorker is a worker together with the hours booked on a job.
type ScheduledWorker struct {
	Worker
	HoursAssigned float64 `json:"hoursAssigned" db:"hours_assigned"`
}

// Job is the read model of a schedule served at /jobs/{id}.
type Job struct {
	ID           int64             `json:"id"`
	StartDate    Date              `json:"startDate"`
	EndDate      Date              `json:"endDate"`
	Notes        string            `json:"notes"`
	Workers      []ScheduledWorker `json:"workers"`
	ProjectSetup ProjectSetup      `json:"projectSetup"`
}
