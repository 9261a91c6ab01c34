package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobsched/internal/board"
	"jobsched/internal/daterange"
	"jobsched/internal/models"
)

// handleGetJob returns a schedule as {startDate, endDate, workers, projectSetup}.
func (s *Server) handleGetJob(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	job, err := s.records.GetJob(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, http.StatusBadGateway, err)
		return
	}
	respondSuccess(c, http.StatusOK, job)
}

// handleJobBoard serves every derived view of a job for the manager.
func (s *Server) handleJobBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := s.boardRequest(c, id)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, s.boards.Load(c.Request.Context(), req))
}

// handleMyBoard serves the views of a job restricted to the caller's tasks.
func (s *Server) handleMyBoard(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Query("job"), 10, 64)
	if err != nil || jobID <= 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("job query parameter is required"))
		return
	}
	req, err := s.boardRequest(c, jobID)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	req.Viewer = currentUser(c).Email
	respondSuccess(c, http.StatusOK, s.boards.Load(c.Request.Context(), req))
}

func (s *Server) handleWhoAmI(c *gin.Context) {
	respondSuccess(c, http.StatusOK, currentUser(c))
}

// boardRequest reads ?date=YYYY-MM-DD and ?stages=a,b. Without a date the
// board is computed for the current instant in the configured time zone.
func (s *Server) boardRequest(c *gin.Context, jobID int64) (board.Request, error) {
	req := board.Request{JobID: jobID, Now: s.now().In(s.loc)}
	if raw := c.Query("date"); raw != "" {
		day, err := daterange.ParseDate(raw, s.loc)
		if err != nil {
			return board.Request{}, err
		}
		// Noon keeps the reference instant inside the day.
		req.Now = day.Add(12 * time.Hour)
	}
	if raw := c.Query("stages"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if st := strings.TrimSpace(part); st != "" {
				req.Stages = append(req.Stages, models.Stage(st))
			}
		}
	}
	return req, nil
}
