package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsched/internal/models"
)

type projectSetupRequest struct {
	Name   string         `json:"name"`
	Color  string         `json:"color"`
	Stages []models.Stage `json:"stages"`
}

// handleListProjectSetups returns all available project setups.
func (s *Server) handleListProjectSetups(c *gin.Context) {
	setups, err := s.store.ListProjectSetups(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"projectSetups": setups})
}

// handleCreateProjectSetup creates a new project setup.
func (s *Server) handleCreateProjectSetup(c *gin.Context) {
	var req projectSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	setup, err := s.store.CreateProjectSetup(c.Request.Context(), req.Name, req.Color, req.Stages)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"projectSetup": setup})
}

// handleUpdateProjectSetup renames, recolors or restages a project setup.
func (s *Server) handleUpdateProjectSetup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req projectSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	setup, err := s.store.UpdateProjectSetup(c.Request.Context(), id, req.Name, req.Color, req.Stages)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"projectSetup": setup})
}

// handleDeleteProjectSetup removes a project setup and all related jobs.
func (s *Server) handleDeleteProjectSetup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteProjectSetup(c.Request.Context(), id); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
