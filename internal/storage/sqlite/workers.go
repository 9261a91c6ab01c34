package sqlite

import (
	"context"
	"fmt"
	"strings"

	"jobsched/internal/models"
)

const workerColumns = `id, name, email, job_title, status, weekly_hours, hourly_rate`

// ListWorkers returns all workers ordered by name.
func (s *Store) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	workers := []models.Worker{}
	if err := s.db.SelectContext(ctx, &workers, `SELECT `+workerColumns+` FROM workers ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	return workers, nil
}

// CreateWorker inserts a worker. Emails are unique regardless of case.
func (s *Store) CreateWorker(ctx context.Context, w models.Worker) (models.Worker, error) {
	if strings.TrimSpace(w.Name) == "" {
		return models.Worker{}, fmt.Errorf("worker name must not be empty")
	}
	email := normalizeEmail(w.Email)
	if email == "" {
		return models.Worker{}, fmt.Errorf("worker email must not be empty")
	}
	if w.Status == "" {
		w.Status = models.WorkerActive
	}
	if _, ok := models.ValidWorkerStatuses[w.Status]; !ok {
		return models.Worker{}, fmt.Errorf("invalid worker status %q", w.Status)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO workers(name, email, job_title, status, weekly_hours, hourly_rate) VALUES(?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(w.Name), email, strings.TrimSpace(w.JobTitle), w.Status, w.WeeklyHours, w.HourlyRate)
	if err != nil {
		return models.Worker{}, fmt.Errorf("insert worker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Worker{}, fmt.Errorf("worker id: %w", err)
	}
	return s.GetWorker(ctx, id)
}

// GetWorker fetches a worker by id.
func (s *Store) GetWorker(ctx context.Context, id int64) (models.Worker, error) {
	var w models.Worker
	if err := s.db.GetContext(ctx, &w, `SELECT `+workerColumns+` FROM workers WHERE id = ?`, id); err != nil {
		return models.Worker{}, fmt.Errorf("get worker: %w", notFound(err, "worker"))
	}
	return w, nil
}

// FindWorkerByEmail looks a worker up by trimmed, case-folded email.
func (s *Store) FindWorkerByEmail(ctx context.Context, email string) (models.Worker, error) {
	var w models.Worker
	if err := s.db.GetContext(ctx, &w, `SELECT `+workerColumns+` FROM workers WHERE email = ? COLLATE NOCASE`, normalizeEmail(email)); err != nil {
		return models.Worker{}, fmt.Errorf("find worker: %w", notFound(err, "worker"))
	}
	return w, nil
}
