package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsched/internal/models"
)

func (s *Server) handleListWorkers(c *gin.Context) {
	workers, err := s.store.ListWorkers(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"workers": workers})
}

func (s *Server) handleCreateWorker(c *gin.Context) {
	var req models.Worker
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	worker, err := s.store.CreateWorker(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"worker": worker})
}
