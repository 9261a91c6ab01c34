package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jobsched/internal/board"
	"jobsched/internal/models"
	"jobsched/internal/schedule"
	"jobsched/internal/storage/sqlite"
)

// Records is the system of record for jobs, their kanban tasks and schedule
// submissions. The local store and the upstream client both satisfy it.
type Records interface {
	board.Source
	schedule.Submitter
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, t models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	AddComment(ctx context.Context, taskID int64, c models.Comment) (models.Comment, error)
}

// Options wires the server to its collaborators.
type Options struct {
	// Store holds the local catalog: project setups, workers and the
	// schedule listing.
	Store *sqlite.Store
	// Records serves jobs, tasks and schedule submits. Defaults to Store.
	Records     Records
	Logger      *slog.Logger
	StaticDir   string
	Location    *time.Location
	JWTSecret   string
	CORSOrigins []string
	// Now is the clock used when a request does not name a date.
	Now func() time.Time
}

// Server provides HTTP handlers for the job scheduling backend.
type Server struct {
	engine    *gin.Engine
	store     *sqlite.Store
	records   Records
	boards    *board.Loader
	logger    *slog.Logger
	staticDir string
	loc       *time.Location
	jwtSecret string
	now       func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var records Records = opts.Store
	if opts.Records != nil {
		records = opts.Records
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))
	router.Use(corsMiddleware(opts.CORSOrigins))

	srv := &Server{
		engine:    router,
		store:     opts.Store,
		records:   records,
		boards:    board.NewLoader(records, logger),
		logger:    logger,
		staticDir: opts.StaticDir,
		loc:       loc,
		jwtSecret: opts.JWTSecret,
		now:       now,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", identityHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		setups := api.Group("/project-setups")
		{
			setups.GET("", s.handleListProjectSetups)
			setups.POST("", s.handleCreateProjectSetup)
			setups.PUT(":id", s.handleUpdateProjectSetup)
			setups.DELETE(":id", s.handleDeleteProjectSetup)
		}

		workers := api.Group("/workers")
		{
			workers.GET("", s.handleListWorkers)
			workers.POST("", s.handleCreateWorker)
		}

		jobs := api.Group("/jobs")
		{
			jobs.GET(":id", s.handleGetJob)
			jobs.GET(":id/board", s.handleJobBoard)
		}

		tasks := api.Group("/kanban-tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.DELETE(":id", s.handleDeleteTask)
			tasks.POST(":id/comments", s.handleAddComment)
		}

		scheduling := api.Group("/job-scheduling")
		{
			scheduling.GET("", s.handleListSchedules)
			scheduling.POST("", s.handleCreateSchedule)
			scheduling.GET(":id", s.handleGetSchedule)
			scheduling.GET(":id/draft", s.handleScheduleDraft)
			scheduling.PUT(":id", s.handleUpdateSchedule)
			scheduling.DELETE(":id", s.handleDeleteSchedule)
		}

		me := api.Group("/me", s.requireIdentity())
		{
			me.GET("", s.handleWhoAmI)
			me.GET("/board", s.handleMyBoard)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrValidation),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrInvalidPriority),
		errors.Is(err, models.ErrEmptyTitle),
		errors.Is(err, models.ErrInvalidDates):
		return http.StatusBadRequest
	}
	return fallback
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	status = statusFor(err, status)
	s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", err.Error()))

	body := gin.H{"error": err.Error()}
	var verr *schedule.ValidationError
	if errors.As(err, &verr) {
		body["problems"] = verr.Problems
	}
	c.JSON(status, body)
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
