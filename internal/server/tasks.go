package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobsched/internal/models"
)

type commentRequest struct {
	Author  string             `json:"author"`
	Content string             `json:"content"`
	File    *models.Attachment `json:"file"`
}

// handleListTasks fetches the kanban tasks of a job.
func (s *Server) handleListTasks(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Query("job"), 10, 64)
	if err != nil || jobID <= 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("job query parameter is required"))
		return
	}

	tasks, err := s.records.ListJobTasks(c.Request.Context(), jobID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateTask inserts a new task into a job's board.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req models.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.JobID <= 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("job is required"))
		return
	}
	if _, err := s.records.GetJob(c.Request.Context(), req.JobID); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.records.CreateTask(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleUpdateTask replaces a task with the submitted record.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	req.ID = id

	task, err := s.records.UpdateTask(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.records.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleAddComment appends a comment to a task.
func (s *Server) handleAddComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	// An authenticated caller is always the author.
	if id, err := s.identify(c); err == nil {
		req.Author = id.Email
	}

	comment, err := s.records.AddComment(c.Request.Context(), id, models.Comment{
		Author:     req.Author,
		Content:    req.Content,
		Attachment: req.File,
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, comment)
}
