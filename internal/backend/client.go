// Package backend talks to the upstream dashboard API that owns jobs, kanban
// tasks and schedules when this service is not the system of record.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"jobsched/internal/models"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Location is the zone calendar days are read in. Upstream timestamps
	// are converted into it before their date is taken. Defaults to Local.
	Location *time.Location
	Logger   *slog.Logger
}

// Client is a thin typed wrapper over the upstream REST endpoints.
type Client struct {
	http   *resty.Client
	loc    *time.Location
	logger *slog.Logger
}

// APIError is a non-2xx answer from the upstream.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: upstream returned %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: upstream returned %d: %s", e.Method, e.Path, e.Status, e.Message)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New builds a client for opts.BaseURL.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	h := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		h.SetAuthToken(opts.Token)
	}
	return &Client{http: h, loc: loc, logger: logger}
}

func (c *Client) do(ctx context.Context, method, path string, prepare func(r *resty.Request)) error {
	r := c.http.R().SetContext(ctx).SetError(&errorBody{})
	prepare(r)

	resp, err := r.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Method: method, Path: resp.Request.URL, Status: resp.StatusCode()}
		if body, ok := resp.Error().(*errorBody); ok {
			apiErr.Message = body.Error
			if apiErr.Message == "" {
				apiErr.Message = body.Message
			}
		}
		return apiErr
	}
	return nil
}

// GetJob fetches GET /jobs/{id}.
func (c *Client) GetJob(ctx context.Context, id int64) (models.Job, error) {
	var raw wireJob
	err := c.do(ctx, resty.MethodGet, "/jobs/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10)).SetResult(&raw)
	})
	if err != nil {
		return models.Job{}, err
	}
	job := raw.Job
	job.StartDate = c.day(raw.StartDate, "job", id)
	job.EndDate = c.day(raw.EndDate, "job", id)
	if job.ID == 0 {
		job.ID = id
	}
	return job, nil
}

// ListJobTasks fetches GET /kanban-tasks?job={id}. Records with an
// unrecognized status are kept with models.StatusUnknown and logged.
func (c *Client) ListJobTasks(ctx context.Context, jobID int64) ([]models.Task, error) {
	var raw []wireTask
	err := c.do(ctx, resty.MethodGet, "/kanban-tasks", func(r *resty.Request) {
		r.SetQueryParam("job", strconv.FormatInt(jobID, 10)).SetResult(&raw)
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(raw))
	for _, w := range raw {
		tasks = append(tasks, c.task(w))
	}
	return tasks, nil
}

// UpdateTask sends the full record to PUT /kanban-tasks/{id}.
func (c *Client) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var out wireTask
	err := c.do(ctx, resty.MethodPut, "/kanban-tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(t.ID, 10)).SetBody(t).SetResult(&out)
	})
	if err != nil {
		return models.Task{}, err
	}
	return c.task(out), nil
}

func (c *Client) getTask(ctx context.Context, id int64) (models.Task, error) {
	var out wireTask
	err := c.do(ctx, resty.MethodGet, "/kanban-tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10)).SetResult(&out)
	})
	if err != nil {
		return models.Task{}, err
	}
	return c.task(out), nil
}

// CreateTask posts a new task to /kanban-tasks.
func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var out wireTask
	err := c.do(ctx, resty.MethodPost, "/kanban-tasks", func(r *resty.Request) {
		r.SetBody(t).SetResult(&out)
	})
	if err != nil {
		return models.Task{}, err
	}
	return c.task(out), nil
}

// DeleteTask removes a task with DELETE /kanban-tasks/{id}.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, resty.MethodDelete, "/kanban-tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	})
}

// AddComment appends c to the task's comments and sends the full record
// back. The upstream stores the array as given, so existing entries are
// always sent unchanged.
func (c *Client) AddComment(ctx context.Context, taskID int64, cm models.Comment) (models.Comment, error) {
	if strings.TrimSpace(cm.Content) == "" && cm.Attachment == nil {
		return models.Comment{}, fmt.Errorf("comment must have content or a file")
	}
	t, err := c.getTask(ctx, taskID)
	if err != nil {
		return models.Comment{}, err
	}
	if cm.ID == "" {
		cm.ID = uuid.NewString()
	}
	if cm.Timestamp.IsZero() {
		cm.Timestamp = time.Now().UTC()
	}
	t.Comments = append(t.Comments, cm)
	if _, err := c.UpdateTask(ctx, t); err != nil {
		return models.Comment{}, err
	}
	return cm, nil
}

type schedulePayload struct {
	ProjectSetupID int64                     `json:"projectSetupId"`
	StartDate      models.Date               `json:"startDate"`
	EndDate        models.Date               `json:"endDate"`
	Notes          string                    `json:"notes"`
	WorkerIDs      []models.WorkerAssignment `json:"workerIds"`
}

func payloadOf(s models.Schedule) schedulePayload {
	workers := s.WorkerAssignments
	if workers == nil {
		workers = []models.WorkerAssignment{}
	}
	return schedulePayload{
		ProjectSetupID: s.ProjectSetupID,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Notes:          s.Notes,
		WorkerIDs:      workers,
	}
}

// CreateSchedule posts to /job-scheduling.
func (c *Client) CreateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error) {
	var out wireSchedule
	err := c.do(ctx, resty.MethodPost, "/job-scheduling", func(r *resty.Request) {
		r.SetBody(payloadOf(s)).SetResult(&out)
	})
	if err != nil {
		return models.Schedule{}, err
	}
	return merged(s, c.schedule(out)), nil
}

// UpdateSchedule puts the full record to /job-scheduling/{id}.
func (c *Client) UpdateSchedule(ctx context.Context, s models.Schedule) (models.Schedule, error) {
	var out wireSchedule
	err := c.do(ctx, resty.MethodPut, "/job-scheduling/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(s.ID, 10)).SetBody(payloadOf(s)).SetResult(&out)
	})
	if err != nil {
		return models.Schedule{}, err
	}
	return merged(s, c.schedule(out)), nil
}

// merged fills fields the upstream left out of its answer from what was sent.
func merged(sent, got models.Schedule) models.Schedule {
	if got.ID == 0 {
		got.ID = sent.ID
	}
	if got.ProjectSetupID == 0 {
		got.ProjectSetupID = sent.ProjectSetupID
	}
	if !got.StartDate.Valid() {
		got.StartDate = sent.StartDate
	}
	if !got.EndDate.Valid() {
		got.EndDate = sent.EndDate
	}
	if got.WorkerAssignments == nil {
		got.WorkerAssignments = sent.WorkerAssignments
	}
	if got.Notes == "" {
		got.Notes = sent.Notes
	}
	return got
}

// day reads an upstream date in the client's location. Unreadable values
// are logged and treated as absent.
func (c *Client) day(raw, kind string, id int64) models.Date {
	d, err := models.ParseDateIn(raw, c.loc)
	if err != nil {
		c.logger.Warn("unreadable date from upstream", slog.String("record", kind), slog.Int64("id", id), slog.String("value", raw))
		return models.Date{}
	}
	return d
}

type wireJob struct {
	models.Job
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type wireSchedule struct {
	models.Schedule
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (c *Client) schedule(w wireSchedule) models.Schedule {
	s := w.Schedule
	s.StartDate = c.day(w.StartDate, "schedule", s.ID)
	s.EndDate = c.day(w.EndDate, "schedule", s.ID)
	return s
}

// wireTask decodes the loosely typed task records of the upstream.
type wireTask struct {
	models.Task
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Status         string          `json:"status"`
	Priority       string          `json:"priority"`
	AssignedWorker json.RawMessage `json:"assignedWorker"`
}

func (c *Client) task(w wireTask) models.Task {
	t := w.Task
	t.StartDate = c.day(w.StartDate, "task", t.ID)
	t.EndDate = c.day(w.EndDate, "task", t.ID)

	status, err := models.ParseStatus(w.Status)
	if err != nil {
		c.logger.Warn("unrecognized task status from upstream", slog.Int64("task", t.ID), slog.String("status", w.Status))
	}
	t.Status = status

	priority, err := models.ParsePriority(w.Priority)
	if err != nil {
		c.logger.Warn("unrecognized task priority from upstream", slog.Int64("task", t.ID), slog.String("priority", w.Priority))
		priority = models.PriorityMedium
	}
	t.Priority = priority
	t.AssignedWorker = decodeWorkerRef(w.AssignedWorker)
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	return t
}

// decodeWorkerRef accepts an object, an email string or a numeric id.
func decodeWorkerRef(raw json.RawMessage) *models.WorkerRef {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	var ref models.WorkerRef
	if err := json.Unmarshal(raw, &ref); err == nil {
		if ref.ID == 0 && ref.Email == "" {
			return nil
		}
		return &ref
	}
	var email string
	if err := json.Unmarshal(raw, &email); err == nil {
		if strings.TrimSpace(email) == "" {
			return nil
		}
		return &models.WorkerRef{Email: email}
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil && id != 0 {
		return &models.WorkerRef{ID: id}
	}
	return nil
}
