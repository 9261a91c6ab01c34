package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsched/internal/board"
	"jobsched/internal/models"
	"jobsched/internal/partition"
	"jobsched/internal/viewstate"
)

func TestRenderBoard(t *testing.T) {
	cut := models.Task{
		ID:             1,
		Title:          "Cut panels",
		StartDate:      models.MustDate("2024-01-01"),
		EndDate:        models.MustDate("2024-01-03"),
		Status:         models.StatusInProgress,
		Stage:          models.StageMachining,
		AssignedWorker: &models.WorkerRef{Email: "ana@example.com"},
	}
	loose := models.Task{ID: 2, Title: "Order hinges", Status: models.StatusUpcoming}

	snap := board.Snapshot{
		State: viewstate.Ready,
		Date:  models.MustDate("2024-01-02"),
		Job: &models.Job{
			ID:           7,
			StartDate:    models.MustDate("2024-01-01"),
			EndDate:      models.MustDate("2024-01-12"),
			ProjectSetup: models.ProjectSetup{Name: "Kitchen"},
		},
		Views: partition.Views{
			Today: []models.Task{cut},
			Week:  []models.Task{cut},
			Kanban: []partition.Column{
				{Stage: models.StageMachining, Tasks: []models.Task{cut}},
				{Stage: models.StageUnscheduled, Tasks: []models.Task{loose}},
			},
		},
	}

	var out bytes.Buffer
	require.NoError(t, renderBoard(&out, snap))
	text := out.String()

	assert.Contains(t, text, "Kitchen")
	assert.Contains(t, text, "2024-01-01 to 2024-01-12")
	assert.Contains(t, text, "Today (1)")
	assert.Contains(t, text, "Completed (0)")
	assert.Contains(t, text, "#1 Cut panels")
	assert.Contains(t, text, "2024-01-01..2024-01-03")
	assert.Contains(t, text, "@ana@example.com")
	assert.Contains(t, text, "Kanban: unscheduled (1)")
	assert.Contains(t, text, "undated")
}

func TestRenderBoardNotice(t *testing.T) {
	snap := board.Snapshot{
		State:  viewstate.Failed,
		Notice: "could not load job 3: boom",
		Date:   models.MustDate("2024-01-02"),
		Viewer: "bo@example.com",
	}

	var out bytes.Buffer
	require.NoError(t, renderBoard(&out, snap))
	text := out.String()

	assert.Contains(t, text, "Board for 2024-01-02")
	assert.Contains(t, text, "could not load job 3: boom")
	assert.Contains(t, text, "assigned to bo@example.com")
	assert.Contains(t, text, "none")
}
