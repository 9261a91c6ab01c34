package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsched/internal/models"
)

const (
	workerA int64 = 1
	workerB int64 = 2
	workerC int64 = 3
)

func TestSelectWorkersReconciles(t *testing.T) {
	start := Assignments{{WorkerID: workerA, HoursAssigned: 5}, {WorkerID: workerB, HoursAssigned: 3}}

	got := start.SelectWorkers([]int64{workerB, workerC})
	assert.Equal(t, Assignments{{WorkerID: workerB, HoursAssigned: 3}, {WorkerID: workerC, HoursAssigned: 0}}, got)

	assert.Len(t, start, 2, "receiver must not change")
	assert.Equal(t, float64(5), start[0].HoursAssigned)
}

func TestSelectWorkersOrderAndDuplicates(t *testing.T) {
	start := Assignments{{WorkerID: workerA, HoursAssigned: 5}, {WorkerID: workerB, HoursAssigned: 3}}

	got := start.SelectWorkers([]int64{workerC, workerA, workerC})
	assert.Equal(t, []int64{workerC, workerA}, got.WorkerIDs())
	hours, ok := got.Hours(workerA)
	assert.True(t, ok)
	assert.Equal(t, float64(5), hours)

	assert.Empty(t, start.SelectWorkers(nil))
}

func TestSetHours(t *testing.T) {
	a := Assignments{{WorkerID: workerA}, {WorkerID: workerB, HoursAssigned: 2}}

	a = a.SetHours(workerA, 7.5)
	assert.Equal(t, 7.5, a[0].HoursAssigned)
	assert.Equal(t, float64(2), a[1].HoursAssigned)

	same := a.SetHours(workerC, 9)
	assert.Equal(t, a, same)
	assert.Equal(t, 9.5, a.Total())
}

func TestSetHoursText(t *testing.T) {
	a := Assignments{{WorkerID: workerA, HoursAssigned: 4}}

	got, err := a.SetHoursText(workerA, " 12.25 ")
	require.NoError(t, err)
	assert.Equal(t, 12.25, got[0].HoursAssigned)

	got, err = a.SetHoursText(workerA, "")
	require.NoError(t, err)
	assert.Equal(t, float64(0), got[0].HoursAssigned)

	got, err = a.SetHoursText(workerA, "ten")
	assert.Error(t, err)
	assert.Equal(t, float64(4), got[0].HoursAssigned)
}

func TestEditDraftSeedsPersistedHours(t *testing.T) {
	persisted := models.Schedule{
		ID:             9,
		ProjectSetupID: 4,
		StartDate:      models.MustDate("2024-01-01"),
		EndDate:        models.MustDate("2024-01-05"),
		WorkerAssignments: []models.WorkerAssignment{
			{WorkerID: workerA, HoursAssigned: 10},
			{WorkerID: workerB, HoursAssigned: 20},
		},
	}

	d := EditDraft(persisted)
	assert.Equal(t, Assignments{{WorkerID: workerA, HoursAssigned: 10}, {WorkerID: workerB, HoursAssigned: 20}}, d.Assignments)

	d.SelectWorkers([]int64{workerA, workerB})
	assert.Equal(t, Assignments{{WorkerID: workerA, HoursAssigned: 10}, {WorkerID: workerB, HoursAssigned: 20}}, d.Assignments)
}

func TestSeed(t *testing.T) {
	got := Seed([]int64{workerA, workerB}, map[int64]float64{workerA: 10, workerB: 20, workerC: 30})
	assert.Equal(t, Assignments{{WorkerID: workerA, HoursAssigned: 10}, {WorkerID: workerB, HoursAssigned: 20}}, got)
}

func TestEditJob(t *testing.T) {
	job := models.Job{
		ID:           3,
		StartDate:    models.MustDate("2024-02-01"),
		EndDate:      models.MustDate("2024-02-02"),
		ProjectSetup: models.ProjectSetup{ID: 8},
		Workers: []models.ScheduledWorker{
			{Worker: models.Worker{ID: workerB}, HoursAssigned: 6},
		},
	}

	d := EditJob(job)
	assert.Equal(t, int64(3), d.ID)
	assert.Equal(t, int64(8), d.ProjectSetupID)
	assert.Equal(t, Assignments{{WorkerID: workerB, HoursAssigned: 6}}, d.Assignments)
}

func validDraft() *Draft {
	d := NewDraft()
	d.ProjectSetupID = 1
	d.StartDate = models.MustDate("2024-01-01")
	d.EndDate = models.MustDate("2024-01-02")
	d.SelectWorkers([]int64{workerA})
	return d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Draft)
		want   string
	}{
		{"missing project", func(d *Draft) { d.ProjectSetupID = 0 }, "project is required"},
		{"missing start", func(d *Draft) { d.StartDate = models.Date{} }, "start date is required"},
		{"missing end", func(d *Draft) { d.EndDate = models.Date{} }, "end date is required"},
		{"end before start", func(d *Draft) { d.EndDate = models.MustDate("2023-12-31") }, "end date must not be before start date"},
		{"no workers", func(d *Draft) { d.SelectWorkers(nil) }, "at least one worker must be assigned"},
		{"duplicate worker", func(d *Draft) { d.Assignments = append(d.Assignments, d.Assignments[0]) }, "worker 1 is assigned twice"},
	}

	require.NoError(t, validDraft().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(d)

			err := d.Validate()
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Problems, tt.want)
		})
	}
}

func TestValidateSameDay(t *testing.T) {
	d := validDraft()
	d.EndDate = d.StartDate
	assert.NoError(t, d.Validate())
}

type recordingSubmitter struct {
	created []models.Schedule
	updated []models.Schedule
}

func (r *recordingSubmitter) CreateSchedule(_ context.Context, s models.Schedule) (models.Schedule, error) {
	r.created = append(r.created, s)
	s.ID = 100
	return s, nil
}

func (r *recordingSubmitter) UpdateSchedule(_ context.Context, s models.Schedule) (models.Schedule, error) {
	r.updated = append(r.updated, s)
	return s, nil
}

func TestSubmitRejectsInvalidBeforeCalling(t *testing.T) {
	sub := &recordingSubmitter{}
	d := validDraft()
	d.StartDate = models.MustDate("2024-02-01")

	_, err := d.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, sub.created)
	assert.Empty(t, sub.updated)
}

func TestSubmitCreatesOrUpdates(t *testing.T) {
	sub := &recordingSubmitter{}

	created, err := validDraft().Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)
	require.Len(t, sub.created, 1)
	assert.Equal(t, []models.WorkerAssignment{{WorkerID: workerA}}, sub.created[0].WorkerAssignments)

	d := EditDraft(created)
	d.SetHours(workerA, 8)
	_, err = d.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Len(t, sub.updated, 1)
	assert.Equal(t, float64(8), sub.updated[0].WorkerAssignments[0].HoursAssigned)
}

func TestSubmittedKeepsEntriesAsSent(t *testing.T) {
	sent := models.Schedule{
		ProjectSetupID: 4,
		StartDate:      models.MustDate("2024-01-01"),
		EndDate:        models.MustDate("2024-01-02"),
		WorkerAssignments: []models.WorkerAssignment{
			{WorkerID: workerA, HoursAssigned: 3},
			{WorkerID: workerA, HoursAssigned: 5},
		},
	}

	d := Submitted(sent)
	assert.Len(t, d.Assignments, 2)

	err := d.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"worker 1 is assigned twice"}, verr.Problems)

	d.Assignments[0].HoursAssigned = 9
	assert.Equal(t, float64(3), sent.WorkerAssignments[0].HoursAssigned)

	assert.Len(t, EditDraft(sent).Assignments, 1, "editing merges duplicates")
}
