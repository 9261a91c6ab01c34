package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsched/internal/models"
	"jobsched/internal/partition"
	"jobsched/internal/schedule"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	return newTestClientIn(t, mux, time.UTC)
}

func newTestClientIn(t *testing.T, mux *http.ServeMux, loc *time.Location) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Token: "secret", Location: loc})
}

func TestGetJob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/5", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{
			"startDate": "2024-01-01",
			"endDate": "2024-01-05T00:00:00.000Z",
			"workers": [{"id": 1, "name": "Ana", "email": "ana@example.com", "hoursAssigned": 10}],
			"projectSetup": {"id": 3, "name": "Kitchen", "stages": ["Cut", "Weld"]}
		}`)
	})
	c := newTestClient(t, mux)

	job, err := c.GetJob(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), job.ID)
	assert.Equal(t, "2024-01-05", job.EndDate.String())
	require.Len(t, job.Workers, 1)
	assert.Equal(t, float64(10), job.Workers[0].HoursAssigned)
	assert.Equal(t, []models.Stage{"Cut", "Weld"}, job.ProjectSetup.Board())
}

func TestListJobTasksTolerantDecode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/kanban-tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("job"))
		writeJSON(w, http.StatusOK, `[
			{"id": 1, "title": "a", "status": "Complete", "priority": "HIGH", "assignedWorker": "ana@example.com", "startDate": "2024-01-01", "endDate": "2024-01-02"},
			{"id": 2, "title": "b", "status": "archived", "priority": "whenever", "assignedWorker": {"id": 4, "email": "bo@example.com"}},
			{"id": 3, "title": "c", "status": "in progress", "assignedWorker": 9},
			{"id": 4, "title": "d", "assignedWorker": null}
		]`)
	})
	c := newTestClient(t, mux)

	tasks, err := c.ListJobTasks(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, models.StatusCompleted, tasks[0].Status)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "ana@example.com", tasks[0].AssignedWorker.Email)
	assert.True(t, tasks[0].Dated())

	assert.Equal(t, models.StatusUnknown, tasks[1].Status)
	assert.Equal(t, models.PriorityMedium, tasks[1].Priority)
	assert.Equal(t, int64(4), tasks[1].AssignedWorker.ID)

	assert.Equal(t, models.StatusInProgress, tasks[2].Status)
	assert.Equal(t, int64(9), tasks[2].AssignedWorker.ID)

	assert.Equal(t, models.StatusUpcoming, tasks[3].Status)
	assert.Nil(t, tasks[3].AssignedWorker)
	assert.NotNil(t, tasks[3].Comments)
}

func TestTimestampsReadInServiceZone(t *testing.T) {
	auckland := time.FixedZone("NZDT", 13*60*60)
	mux := http.NewServeMux()
	mux.HandleFunc("/kanban-tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id": 1, "title": "Install", "startDate": "2024-01-01T11:00:00.000Z", "endDate": "2024-01-01T11:00:00.000Z"}]`)
	})
	mux.HandleFunc("/jobs/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"startDate": "2024-01-01T11:00:00.000Z", "endDate": "2024-01-09T10:59:59.000Z"}`)
	})
	mux.HandleFunc("/job-scheduling", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id": 3, "startDate": "2024-01-01T11:00:00.000Z"}`)
	})
	c := newTestClientIn(t, mux, auckland)

	tasks, err := c.ListJobTasks(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2024-01-02", tasks[0].StartDate.String())
	assert.Equal(t, "2024-01-02", tasks[0].EndDate.String())

	now := time.Date(2024, 1, 2, 12, 0, 0, 0, auckland)
	assert.Len(t, partition.Today(tasks, now), 1)
	assert.Len(t, partition.Week(tasks, now), 1)
	assert.Len(t, partition.WeekGrid(tasks, now)[0].Tasks, 1)

	job, err := c.GetJob(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", job.StartDate.String())
	assert.Equal(t, "2024-01-09", job.EndDate.String())

	created, err := c.CreateSchedule(context.Background(), models.Schedule{
		ProjectSetupID:    1,
		StartDate:         models.MustDate("2024-01-02"),
		EndDate:           models.MustDate("2024-01-05"),
		WorkerAssignments: []models.WorkerAssignment{{WorkerID: 1, HoursAssigned: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", created.StartDate.String())
	assert.Equal(t, "2024-01-05", created.EndDate.String())
}

func TestUnreadableUpstreamDateIsAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/kanban-tasks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id": 1, "title": "x", "startDate": "next week", "endDate": "2024-01-02"}]`)
	})
	c := newTestClient(t, mux)

	tasks, err := c.ListJobTasks(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].StartDate.Valid())
	assert.False(t, tasks[0].Dated())
}

func TestUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error": "job not found"}`)
	})
	c := newTestClient(t, mux)

	_, err := c.GetJob(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "job not found", apiErr.Message)
}

func TestScheduleSubmit(t *testing.T) {
	var posted, put map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/job-scheduling", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		writeJSON(w, http.StatusCreated, `{"id": 12}`)
	})
	mux.HandleFunc("/job-scheduling/12", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&put))
		writeJSON(w, http.StatusOK, `{}`)
	})
	c := newTestClient(t, mux)

	d := schedule.NewDraft()
	d.ProjectSetupID = 3
	d.StartDate = models.MustDate("2024-01-01")
	d.EndDate = models.MustDate("2024-01-02")
	d.SelectWorkers([]int64{1, 2})
	d.SetHours(2, 6)

	created, err := d.Submit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(12), created.ID)
	assert.Equal(t, "2024-01-01", posted["startDate"])
	assert.Equal(t, []any{
		map[string]any{"workerId": float64(1), "hoursAssigned": float64(0)},
		map[string]any{"workerId": float64(2), "hoursAssigned": float64(6)},
	}, posted["workerIds"])

	edit := schedule.EditDraft(created)
	edit.SelectWorkers([]int64{2})
	_, err = edit.Submit(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"workerId": float64(2), "hoursAssigned": float64(6)}}, put["workerIds"])
}

func TestInvalidScheduleNeverHitsNetwork(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, `{}`)
	})
	c := newTestClient(t, mux)

	d := schedule.NewDraft()
	d.ProjectSetupID = 3
	d.StartDate = models.MustDate("2024-02-01")
	d.EndDate = models.MustDate("2024-01-01")
	d.SelectWorkers([]int64{1})

	_, err := d.Submit(context.Background(), c)
	assert.ErrorIs(t, err, schedule.ErrValidation)
	assert.Zero(t, calls)
}

func TestTaskWrites(t *testing.T) {
	var created, updated map[string]any
	deleted := false
	mux := http.NewServeMux()
	mux.HandleFunc("/kanban-tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		writeJSON(w, http.StatusCreated, `{"id": 40, "job": 2, "title": "Hang doors", "status": "upcoming"}`)
	})
	mux.HandleFunc("/kanban-tasks/40", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, `{"id": 40, "job": 2, "title": "Hang doors", "status": "upcoming",
				"comments": [{"id": "c1", "author": "lead", "content": "first"}]}`)
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			writeJSON(w, http.StatusOK, `{"id": 40}`)
		case http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		}
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	task, err := c.CreateTask(ctx, models.Task{JobID: 2, Title: "Hang doors"})
	require.NoError(t, err)
	assert.Equal(t, int64(40), task.ID)
	assert.Equal(t, "Hang doors", created["title"])

	comment, err := c.AddComment(ctx, 40, models.Comment{Author: "ana@example.com", Content: "second"})
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	comments, ok := updated["comments"].([]any)
	require.True(t, ok)
	require.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].(map[string]any)["id"])
	assert.Equal(t, "second", comments[1].(map[string]any)["content"])

	_, err = c.AddComment(ctx, 40, models.Comment{})
	assert.Error(t, err)

	require.NoError(t, c.DeleteTask(ctx, 40))
	assert.True(t, deleted)
}
