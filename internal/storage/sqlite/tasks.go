package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"jobsched/internal/models"
)

type taskRow struct {
	ID          int64          `db:"id"`
	JobID       int64          `db:"job_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	StartDate   models.Date    `db:"start_date"`
	EndDate     models.Date    `db:"end_date"`
	Status      string         `db:"status"`
	Stage       string         `db:"stage"`
	Priority    string         `db:"priority"`
	Position    int64          `db:"position"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	WorkerID    sql.NullInt64  `db:"assigned_worker_id"`
	WorkerEmail sql.NullString `db:"worker_email"`
	WorkerName  sql.NullString `db:"worker_name"`
}

type commentRow struct {
	ID             string    `db:"id"`
	TaskID         int64     `db:"task_id"`
	Author         string    `db:"author"`
	Content        string    `db:"content"`
	AttachmentName string    `db:"attachment_name"`
	AttachmentURL  string    `db:"attachment_url"`
	CreatedAt      time.Time `db:"created_at"`
}

const taskSelect = `SELECT t.id, t.job_id, t.title, t.description, t.start_date, t.end_date, t.status, t.stage, t.priority,
        t.position, t.created_at, t.updated_at, t.assigned_worker_id, w.email AS worker_email, w.name AS worker_name
        FROM tasks t LEFT JOIN workers w ON w.id = t.assigned_worker_id`

func (s *Store) taskModel(r taskRow) models.Task {
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		s.logger.Warn("unrecognized stored task status", slog.Int64("task", r.ID), slog.String("status", r.Status))
	}
	priority, err := models.ParsePriority(r.Priority)
	if err != nil {
		priority = models.PriorityMedium
	}
	t := models.Task{
		ID:          r.ID,
		JobID:       r.JobID,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Status:      status,
		Stage:       models.Stage(r.Stage),
		Priority:    priority,
		Comments:    []models.Comment{},
		Position:    r.Position,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.WorkerID.Valid {
		t.AssignedWorker = &models.WorkerRef{ID: r.WorkerID.Int64, Email: r.WorkerEmail.String, Name: r.WorkerName.String}
	}
	return t
}

func (r commentRow) model() models.Comment {
	c := models.Comment{ID: r.ID, Author: r.Author, Content: r.Content, Timestamp: r.CreatedAt}
	if r.AttachmentName != "" || r.AttachmentURL != "" {
		c.Attachment = &models.Attachment{Name: r.AttachmentName, URL: r.AttachmentURL}
	}
	return c
}

// ListJobTasks returns the tasks of a job ordered by stage and position,
// each with its comments.
func (s *Store) ListJobTasks(ctx context.Context, jobID int64) ([]models.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, taskSelect+` WHERE t.job_id = ? ORDER BY t.stage, t.position, t.id`, jobID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var comments []commentRow
	err := s.db.SelectContext(ctx, &comments, `SELECT c.id, c.task_id, c.author, c.content, c.attachment_name, c.attachment_url, c.created_at
        FROM task_comments c JOIN tasks t ON t.id = c.task_id WHERE t.job_id = ? ORDER BY c.task_id, c.seq`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	byTask := make(map[int64][]models.Comment)
	for _, c := range comments {
		byTask[c.TaskID] = append(byTask[c.TaskID], c.model())
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		t := s.taskModel(r)
		if cs, ok := byTask[t.ID]; ok {
			t.Comments = cs
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// GetTask retrieves a task by id with its comments.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var r taskRow
	if err := s.db.GetContext(ctx, &r, taskSelect+` WHERE t.id = ?`, id); err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", notFound(err, "task"))
	}
	t := s.taskModel(r)

	var comments []commentRow
	if err := s.db.SelectContext(ctx, &comments, `SELECT id, task_id, author, content, attachment_name, attachment_url, created_at
        FROM task_comments WHERE task_id = ? ORDER BY seq`, id); err != nil {
		return models.Task{}, fmt.Errorf("list comments: %w", err)
	}
	for _, c := range comments {
		t.Comments = append(t.Comments, c.model())
	}
	return t, nil
}

// CreateTask inserts a new task for a job.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	normalizeTask(&t)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	workerID, err := resolveWorker(ctx, tx, t.AssignedWorker)
	if err != nil {
		return models.Task{}, err
	}
	pos, err := nextPosition(ctx, tx, t.JobID, t.Stage)
	if err != nil {
		return models.Task{}, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO tasks(job_id, title, description, start_date, end_date, status, stage, priority, assigned_worker_id, position)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.JobID, t.Title, strings.TrimSpace(t.Description), t.StartDate, t.EndDate, t.Status, t.Stage, t.Priority, workerID, pos)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	if err := appendComments(ctx, tx, id, t.Comments); err != nil {
		return models.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// UpdateTask overwrites a task with the full record. The task moves to the
// end of its new column when the stage changes. Comments are append-only:
// entries not yet stored are appended and stored entries are never removed.
func (s *Store) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	current, err := s.GetTask(ctx, t.ID)
	if err != nil {
		return models.Task{}, err
	}

	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	normalizeTask(&t)
	if t.JobID == 0 {
		t.JobID = current.JobID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	workerID, err := resolveWorker(ctx, tx, t.AssignedWorker)
	if err != nil {
		return models.Task{}, err
	}
	position := current.Position
	if t.Stage != current.Stage || t.JobID != current.JobID {
		position, err = nextPosition(ctx, tx, t.JobID, t.Stage)
		if err != nil {
			return models.Task{}, err
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE tasks SET job_id = ?, title = ?, description = ?, start_date = ?, end_date = ?, status = ?, stage = ?,
        priority = ?, assigned_worker_id = ?, position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.JobID, t.Title, strings.TrimSpace(t.Description), t.StartDate, t.EndDate, t.Status, t.Stage, t.Priority, workerID, position, t.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}

	known := make(map[string]struct{}, len(current.Comments))
	for _, c := range current.Comments {
		known[c.ID] = struct{}{}
	}
	var fresh []models.Comment
	for _, c := range t.Comments {
		if _, ok := known[c.ID]; ok && c.ID != "" {
			continue
		}
		fresh = append(fresh, c)
	}
	if err := appendComments(ctx, tx, t.ID, fresh); err != nil {
		return models.Task{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit task: %w", err)
	}
	return s.GetTask(ctx, t.ID)
}

// AddComment appends one comment to a task. The id and timestamp are
// assigned by the store when missing.
func (s *Store) AddComment(ctx context.Context, taskID int64, c models.Comment) (models.Comment, error) {
	if strings.TrimSpace(c.Content) == "" && c.Attachment == nil {
		return models.Comment{}, fmt.Errorf("comment must have content or a file")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Comment{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT 1 FROM tasks WHERE id = ?`, taskID); err != nil {
		return models.Comment{}, fmt.Errorf("add comment: %w", notFound(err, "task"))
	}
	if err := appendComments(ctx, tx, taskID, []models.Comment{c}); err != nil {
		return models.Comment{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Comment{}, fmt.Errorf("commit comment: %w", err)
	}
	return c, nil
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return checkAffected(res, "task")
}

func normalizeTask(t *models.Task) {
	if t.Status == "" {
		t.Status = models.StatusUpcoming
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	t.Stage = models.Stage(strings.TrimSpace(string(t.Stage)))
}

func resolveWorker(ctx context.Context, tx *sqlx.Tx, ref *models.WorkerRef) (sql.NullInt64, error) {
	if ref == nil || (ref.ID == 0 && strings.TrimSpace(ref.Email) == "") {
		return sql.NullInt64{}, nil
	}
	var id int64
	var err error
	if ref.ID != 0 {
		err = tx.GetContext(ctx, &id, `SELECT id FROM workers WHERE id = ?`, ref.ID)
	} else {
		err = tx.GetContext(ctx, &id, `SELECT id FROM workers WHERE email = ? COLLATE NOCASE`, normalizeEmail(ref.Email))
	}
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("assigned worker: %w", notFound(err, "worker"))
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func appendComments(ctx context.Context, tx *sqlx.Tx, taskID int64, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	var seq sql.NullInt64
	if err := tx.GetContext(ctx, &seq, `SELECT MAX(seq) FROM task_comments WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("select comment seq: %w", err)
	}
	next := int64(0)
	if seq.Valid {
		next = seq.Int64 + 1
	}

	for _, c := range comments {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.Timestamp.IsZero() {
			c.Timestamp = time.Now().UTC()
		}
		var name, url string
		if c.Attachment != nil {
			name, url = c.Attachment.Name, c.Attachment.URL
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO task_comments(id, task_id, seq, author, content, attachment_name, attachment_url, created_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?)`, c.ID, taskID, next, strings.TrimSpace(c.Author), c.Content, name, url, c.Timestamp)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		next++
	}
	return nil
}

func nextPosition(ctx context.Context, tx *sqlx.Tx, jobID int64, stage models.Stage) (int64, error) {
	var position sql.NullInt64
	err := tx.GetContext(ctx, &position, `SELECT MAX(position) FROM tasks WHERE job_id = ? AND stage = ?`, jobID, stage)
	if err != nil {
		return 0, fmt.Errorf("select position: %w", err)
	}
	if position.Valid {
		return position.Int64 + 1, nil
	}
	return 0, nil
}
