package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"jobsched/internal/models"
)

type setupRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	Stages    string    `db:"stages"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r setupRow) model() (models.ProjectSetup, error) {
	p := models.ProjectSetup{ID: r.ID, Name: r.Name, Color: r.Color, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	if err := json.Unmarshal([]byte(r.Stages), &p.Stages); err != nil {
		return models.ProjectSetup{}, fmt.Errorf("decode stages of project setup %d: %w", r.ID, err)
	}
	return p, nil
}

const setupColumns = `id, name, color, stages, created_at, updated_at`

// ListProjectSetups retrieves all project setups ordered by creation date.
func (s *Store) ListProjectSetups(ctx context.Context) ([]models.ProjectSetup, error) {
	var rows []setupRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+setupColumns+` FROM project_setups ORDER BY created_at ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list project setups: %w", err)
	}

	setups := make([]models.ProjectSetup, 0, len(rows))
	for _, r := range rows {
		p, err := r.model()
		if err != nil {
			return nil, err
		}
		setups = append(setups, p)
	}
	return setups, nil
}

// CreateProjectSetup persists a new project setup with optional color and stages.
func (s *Store) CreateProjectSetup(ctx context.Context, name, color string, stages []models.Stage) (models.ProjectSetup, error) {
	if strings.TrimSpace(name) == "" {
		return models.ProjectSetup{}, fmt.Errorf("project name must not be empty")
	}
	if color == "" {
		color = randomPaletteColor()
	}
	encoded, err := encodeStages(stages)
	if err != nil {
		return models.ProjectSetup{}, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO project_setups(name, color, stages) VALUES(?, ?, ?)`, strings.TrimSpace(name), color, encoded)
	if err != nil {
		return models.ProjectSetup{}, fmt.Errorf("insert project setup: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ProjectSetup{}, fmt.Errorf("project setup id: %w", err)
	}
	return s.GetProjectSetup(ctx, id)
}

// GetProjectSetup fetches a single project setup by id.
func (s *Store) GetProjectSetup(ctx context.Context, id int64) (models.ProjectSetup, error) {
	var r setupRow
	err := s.db.GetContext(ctx, &r, `SELECT `+setupColumns+` FROM project_setups WHERE id = ?`, id)
	if err != nil {
		return models.ProjectSetup{}, fmt.Errorf("get project setup: %w", notFound(err, "project setup"))
	}
	return r.model()
}

// UpdateProjectSetup renames a project setup and optionally changes its color and stages.
func (s *Store) UpdateProjectSetup(ctx context.Context, id int64, name, color string, stages []models.Stage) (models.ProjectSetup, error) {
	if strings.TrimSpace(name) == "" {
		return models.ProjectSetup{}, fmt.Errorf("project name must not be empty")
	}
	if color == "" {
		color = randomPaletteColor()
	}
	encoded, err := encodeStages(stages)
	if err != nil {
		return models.ProjectSetup{}, err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE project_setups SET name = ?, color = ?, stages = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, strings.TrimSpace(name), color, encoded, id)
	if err != nil {
		return models.ProjectSetup{}, fmt.Errorf("update project setup: %w", err)
	}
	if err := checkAffected(res, "project setup"); err != nil {
		return models.ProjectSetup{}, err
	}
	return s.GetProjectSetup(ctx, id)
}

// DeleteProjectSetup removes a project setup along with its schedules and tasks.
func (s *Store) DeleteProjectSetup(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project_setups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project setup: %w", err)
	}
	return checkAffected(res, "project setup")
}

func encodeStages(stages []models.Stage) (string, error) {
	clean := make([]models.Stage, 0, len(stages))
	for _, st := range stages {
		if v := strings.TrimSpace(string(st)); v != "" {
			clean = append(clean, models.Stage(v))
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode stages: %w", err)
	}
	return string(b), nil
}

func randomPaletteColor() string {
	palette := []string{
		"#2563eb", // blue-600
		"#7c3aed", // violet-600
		"#dc2626", // red-600
		"#059669", // green-600
		"#ea580c", // orange-600
		"#d97706", // amber-600
		"#0ea5e9", // sky-500
	}
	return palette[rand.Intn(len(palette))]
}
