// Package board loads a job with its task list and derives every dashboard
// view from it.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jobsched/internal/models"
	"jobsched/internal/partition"
	"jobsched/internal/viewstate"
)

// Source fetches the records a board is built from.
type Source interface {
	GetJob(ctx context.Context, id int64) (models.Job, error)
	ListJobTasks(ctx context.Context, jobID int64) ([]models.Task, error)
}

// Request selects the job, the reference instant and the audience of a board.
type Request struct {
	JobID int64
	Now   time.Time
	// Viewer restricts the board to tasks assigned to this email. Empty
	// means the manager view over all tasks.
	Viewer string
	// Stages overrides the project's kanban columns when set.
	Stages []models.Stage
}

// Snapshot is a rendered board.
type Snapshot struct {
	State  viewstate.Phase `json:"state"`
	Notice string          `json:"notice,omitempty"`
	Date   models.Date     `json:"date"`
	Viewer string          `json:"viewer,omitempty"`
	Job    *models.Job     `json:"job,omitempty"`
	Stages []models.Stage  `json:"stages"`
	Views  partition.Views `json:"views"`
}

type loaded struct {
	job   *models.Job
	tasks []models.Task
}

// Loader builds snapshots from a Source.
type Loader struct {
	src    Source
	logger *slog.Logger
}

// NewLoader returns a loader reading from src.
func NewLoader(src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{src: src, logger: logger}
}

// Load fetches the job and its tasks concurrently. A fetch failure does not
// fail the call: the snapshot reports the error state with a notice and all
// views are built over an empty task list. Once ctx is done the result of a
// pending fetch is discarded.
func (l *Loader) Load(ctx context.Context, req Request) Snapshot {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	m := viewstate.New(loaded{tasks: []models.Task{}})
	ticket := m.Begin()
	stop := context.AfterFunc(ctx, m.Detach)
	defer stop()

	data, err := l.fetch(ctx, req.JobID)
	if err != nil {
		if m.Reject(ticket, err) {
			l.logger.Warn("board fetch failed", slog.Int64("job", req.JobID), slog.String("error", err.Error()))
		}
	} else {
		m.Resolve(ticket, data)
	}

	state := m.State()
	snap := Snapshot{
		State:  state.Phase,
		Date:   models.NewDate(req.Now),
		Viewer: req.Viewer,
		Job:    state.Data.job,
	}
	switch {
	case state.Err != nil:
		snap.Notice = fmt.Sprintf("could not load job %d: %v", req.JobID, state.Err)
	case m.Detached():
		snap.Notice = "request cancelled"
	}

	tasks := state.Data.tasks
	if req.Viewer != "" {
		tasks = partition.Mine(tasks, req.Viewer)
	}

	snap.Stages = req.Stages
	if len(snap.Stages) == 0 {
		setup := models.ProjectSetup{}
		if snap.Job != nil {
			setup = snap.Job.ProjectSetup
		}
		snap.Stages = setup.Board()
	}
	snap.Views = partition.Build(tasks, req.Now, snap.Stages)
	return snap
}

func (l *Loader) fetch(ctx context.Context, jobID int64) (loaded, error) {
	var (
		job   models.Job
		tasks []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		job, err = l.src.GetJob(gctx, jobID)
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tasks, err = l.src.ListJobTasks(gctx, jobID)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return loaded{}, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return loaded{job: &job, tasks: tasks}, nil
}
