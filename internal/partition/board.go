package partition

import (
	"sort"
	"strings"
	"time"

	"jobsched/internal/models"
)

// Column is one kanban column.
type Column struct {
	Stage models.Stage  `json:"stage"`
	Tasks []models.Task `json:"tasks"`
}

// Kanban buckets every task by stage in board order. Tasks whose stage is
// not on the board land in a trailing models.StageUnscheduled column, which
// is always present. Stage keys match case-insensitively.
func Kanban(tasks []models.Task, stages []models.Stage) []Column {
	columns := make([]Column, 0, len(stages)+1)
	index := make(map[string]int, len(stages))
	for _, s := range stages {
		key := stageKey(s)
		if _, dup := index[key]; dup || key == stageKey(models.StageUnscheduled) {
			continue
		}
		index[key] = len(columns)
		columns = append(columns, Column{Stage: s, Tasks: []models.Task{}})
	}
	catchAll := len(columns)
	columns = append(columns, Column{Stage: models.StageUnscheduled, Tasks: []models.Task{}})

	for _, t := range tasks {
		i, ok := index[stageKey(t.Stage)]
		if !ok {
			i = catchAll
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return columns
}

func stageKey(s models.Stage) string {
	return strings.ToLower(strings.TrimSpace(string(s)))
}

// Gantt returns the dated tasks ordered by start date, then end date, then id.
func Gantt(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Dated() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StartDate != b.StartDate {
			return a.StartDate.Before(b.StartDate)
		}
		if a.EndDate != b.EndDate {
			return a.EndDate.Before(b.EndDate)
		}
		return a.ID < b.ID
	})
	return out
}

// Event is an all-day calendar entry. End is exclusive, the midnight after
// the task's last day.
type Event struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	AllDay   bool          `json:"allDay"`
	Stage    models.Stage  `json:"stage"`
	Status   models.Status `json:"status"`
	Assignee string        `json:"assignee,omitempty"`
}

// Calendar turns dated tasks into all-day events placed in loc.
func Calendar(tasks []models.Task, loc *time.Location) []Event {
	events := make([]Event, 0, len(tasks))
	for _, t := range Gantt(tasks) {
		ev := Event{
			ID:     t.ID,
			Title:  t.Title,
			Start:  t.StartDate.In(loc),
			End:    t.EndDate.In(loc).AddDate(0, 0, 1),
			AllDay: true,
			Stage:  t.Stage,
			Status: t.Status,
		}
		if t.AssignedWorker != nil {
			ev.Assignee = t.AssignedWorker.Name
			if ev.Assignee == "" {
				ev.Assignee = t.AssignedWorker.Email
			}
		}
		events = append(events, ev)
	}
	return events
}

// Views is every derived view of one task list at one instant.
type Views struct {
	Today     []models.Task `json:"today"`
	Week      []models.Task `json:"week"`
	Completed []models.Task `json:"completed"`
	WeekGrid  []DayBucket   `json:"weekGrid"`
	Kanban    []Column      `json:"kanban"`
	Gantt     []models.Task `json:"gantt"`
	Calendar  []Event       `json:"calendar"`
}

// Build computes all views from the same list so they stay consistent.
func Build(tasks []models.Task, now time.Time, stages []models.Stage) Views {
	return Views{
		Today:     Today(tasks, now),
		Week:      Week(tasks, now),
		Completed: Completed(tasks),
		WeekGrid:  WeekGrid(tasks, now),
		Kanban:    Kanban(tasks, stages),
		Gantt:     Gantt(tasks),
		Calendar:  Calendar(tasks, now.Location()),
	}
}
