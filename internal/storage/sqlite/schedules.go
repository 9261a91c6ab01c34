package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"jobsched/internal/models"
)

const scheduleColumns = `id, project_setup_id, start_date, end_date, notes, created_at, updated_at`

// ListSchedules returns every schedule with its worker hours, newest first.
func (s *Store) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	schedules := []models.Schedule{}
	if err := s.db.SelectContext(ctx, &schedules, `SELECT `+scheduleColumns+` FROM schedules ORDER BY start_date DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	var rows []struct {
		ScheduleID int64 `db:"schedule_id"`
		models.WorkerAssignment
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT schedule_id, worker_id, hours_assigned FROM schedule_workers ORDER BY schedule_id, position`); err != nil {
		return nil, fmt.Errorf("list schedule workers: %w", err)
	}
	byID := make(map[int64][]models.WorkerAssignment, len(schedules))
	for _, r := range rows {
		byID[r.ScheduleID] = append(byID[r.ScheduleID], r.WorkerAssignment)
	}
	for i := range schedules {
		schedules[i].WorkerAssignments = byID[schedules[i].ID]
		if schedules[i].WorkerAssignments == nil {
			schedules[i].WorkerAssignments = []models.WorkerAssignment{}
		}
	}
	return schedules, nil
}

// GetSchedule fetches one schedule and its persisted worker hours.
func (s *Store) GetSchedule(ctx context.Context, id int64) (models.Schedule, error) {
	var sc models.Schedule
	if err := s.db.GetContext(ctx, &sc, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id); err != nil {
		return models.Schedule{}, fmt.Errorf("get schedule: %w", notFound(err, "schedule"))
	}
	sc.WorkerAssignments = []models.WorkerAssignment{}
	if err := s.db.SelectContext(ctx, &sc.WorkerAssignments, `SELECT worker_id, hours_assigned FROM schedule_workers WHERE schedule_id = ? ORDER BY position`, id); err != nil {
		return models.Schedule{}, fmt.Errorf("get schedule workers: %w", err)
	}
	return sc, nil
}

// CreateSchedule inserts a schedule and its worker hours in one transaction.
func (s *Store) CreateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `INSERT INTO schedules(project_setup_id, start_date, end_date, notes) VALUES(?, ?, ?, ?)`,
		sc.ProjectSetupID, sc.StartDate, sc.EndDate, sc.Notes)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Schedule{}, fmt.Errorf("schedule id: %w", err)
	}
	if err := replaceAssignments(ctx, tx, id, sc.WorkerAssignments); err != nil {
		return models.Schedule{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Schedule{}, fmt.Errorf("commit schedule: %w", err)
	}

	s.logger.Info("schedule created", "id", id, "project_setup", sc.ProjectSetupID, "workers", len(sc.WorkerAssignments))
	return s.GetSchedule(ctx, id)
}

// UpdateSchedule overwrites a schedule with the full record, replacing the
// worker hours.
func (s *Store) UpdateSchedule(ctx context.Context, sc models.Schedule) (models.Schedule, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("begin: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx, `UPDATE schedules SET project_setup_id = ?, start_date = ?, end_date = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		sc.ProjectSetupID, sc.StartDate, sc.EndDate, sc.Notes, sc.ID)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("update schedule: %w", err)
	}
	if err := checkAffected(res, "schedule"); err != nil {
		return models.Schedule{}, err
	}
	if err := replaceAssignments(ctx, tx, sc.ID, sc.WorkerAssignments); err != nil {
		return models.Schedule{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Schedule{}, fmt.Errorf("commit schedule: %w", err)
	}
	return s.GetSchedule(ctx, sc.ID)
}

// DeleteSchedule removes a schedule together with its tasks.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return checkAffected(res, "schedule")
}

func replaceAssignments(ctx context.Context, tx *sqlx.Tx, scheduleID int64, assignments []models.WorkerAssignment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_workers WHERE schedule_id = ?`, scheduleID); err != nil {
		return fmt.Errorf("clear schedule workers: %w", err)
	}
	for i, a := range assignments {
		_, err := tx.ExecContext(ctx, `INSERT INTO schedule_workers(schedule_id, worker_id, hours_assigned, position) VALUES(?, ?, ?, ?)`,
			scheduleID, a.WorkerID, a.HoursAssigned, i)
		if err != nil {
			return fmt.Errorf("insert schedule worker %d: %w", a.WorkerID, err)
		}
	}
	return nil
}

// GetJob returns the read model of a schedule: its dates, its project setup
// and the scheduled workers with their hours.
func (s *Store) GetJob(ctx context.Context, id int64) (models.Job, error) {
	sc, err := s.GetSchedule(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	setup, err := s.GetProjectSetup(ctx, sc.ProjectSetupID)
	if err != nil {
		return models.Job{}, err
	}

	workers := []models.ScheduledWorker{}
	err = s.db.SelectContext(ctx, &workers, `SELECT w.id, w.name, w.email, w.job_title, w.status, w.weekly_hours, w.hourly_rate, sw.hours_assigned
        FROM schedule_workers sw JOIN workers w ON w.id = sw.worker_id
        WHERE sw.schedule_id = ? ORDER BY sw.position`, id)
	if err != nil {
		return models.Job{}, fmt.Errorf("list job workers: %w", err)
	}

	return models.Job{
		ID:           sc.ID,
		StartDate:    sc.StartDate,
		EndDate:      sc.EndDate,
		Notes:        sc.Notes,
		Workers:      workers,
		ProjectSetup: setup,
	}, nil
}
