package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusInProgress Status = "inProgress"
	StatusDelayed    Status = "delayed"
	StatusCompleted  Status = "completed"
	// StatusUnknown marks upstream values that could not be parsed.
	StatusUnknown Status = "unknown"
)

// ParseStatus normalizes case, whitespace and separators. Both "complete"
// and "completed" parse as StatusCompleted. An empty value is upcoming.
func ParseStatus(raw string) (Status, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case "", "upcoming":
		return StatusUpcoming, nil
	case "inprogress":
		return StatusInProgress, nil
	case "delayed":
		return StatusDelayed, nil
	case "complete", "completed":
		return StatusCompleted, nil
	}
	return StatusUnknown, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Completed reports whether s is a completed variant.
func (s Status) Completed() bool {
	return s == StatusCompleted
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, string(data))
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Priority orders tasks within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority is case-insensitive; empty defaults to medium.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, string(data))
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Stage is a process step used as a kanban column key.
type Stage string

const (
	StageMachining    Stage = "Machining"
	StageAssembly     Stage = "Assembly"
	StageDelivery     Stage = "Delivery"
	StageInstallation Stage = "Installation"
	// StageUnscheduled is the catch-all column for tasks whose stage is not on the board.
	StageUnscheduled Stage = "unscheduled"
)

// DefaultStages is the board used when a project setup defines none.
var DefaultStages = []Stage{StageMachining, StageAssembly, StageDelivery, StageInstallation}

// WorkerStatus tells whether a worker can be scheduled.
type WorkerStatus string

const (
	WorkerActive   WorkerStatus = "active"
	WorkerInactive WorkerStatus = "inactive"
)

// ValidWorkerStatuses enumerates the accepted worker statuses.
var ValidWorkerStatuses = map[WorkerStatus]struct{}{
	WorkerActive:   {},
	WorkerInactive: {},
}
