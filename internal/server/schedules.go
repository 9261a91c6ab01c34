package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsched/internal/models"
	"jobsched/internal/schedule"
)

// draftResponse is the edit form state of a schedule.
type draftResponse struct {
	ID             int64                `json:"id"`
	ProjectSetupID int64                `json:"projectSetupId"`
	StartDate      models.Date          `json:"startDate"`
	EndDate        models.Date          `json:"endDate"`
	Notes          string               `json:"notes"`
	WorkerIDs      schedule.Assignments `json:"workerIds"`
	TotalHours     float64              `json:"totalHours"`
}

func (s *Server) handleListSchedules(c *gin.Context) {
	schedules, err := s.store.ListSchedules(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"schedules": schedules})
}

func (s *Server) handleGetSchedule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sched, err := s.store.GetSchedule(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, sched)
}

// handleScheduleDraft returns the edit state of a job seeded with the
// persisted hours.
func (s *Server) handleScheduleDraft(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	job, err := s.records.GetJob(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusBadGateway, err)
		return
	}

	d := schedule.EditJob(job)
	respondSuccess(c, http.StatusOK, draftResponse{
		ID:             d.ID,
		ProjectSetupID: d.ProjectSetupID,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		Notes:          d.Notes,
		WorkerIDs:      d.Assignments,
		TotalHours:     d.Assignments.Total(),
	})
}

// handleCreateSchedule validates and stores a new schedule.
func (s *Server) handleCreateSchedule(c *gin.Context) {
	var req models.Schedule
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	req.ID = 0

	sched, err := schedule.Submitted(req).Submit(c.Request.Context(), s.records)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, sched)
}

// handleUpdateSchedule validates and overwrites an existing schedule.
func (s *Server) handleUpdateSchedule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.Schedule
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	req.ID = id

	sched, err := schedule.Submitted(req).Submit(c.Request.Context(), s.records)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, sched)
}

func (s *Server) handleDeleteSchedule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteSchedule(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
