package server

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// Hashed build output never changes under the same name.
	assetCacheControl = "public, max-age=31536000, immutable"
	// index.html must be revalidated so a new build is picked up.
	indexCacheControl = "no-cache"
)

// rootFiles are served from the top of the frontend build when present.
var rootFiles = []string{"favicon.ico", "robots.txt", "manifest.webmanifest"}

// mountStatic serves the compiled dashboard from the configured directory.
// Client routes such as /jobs/4/kanban or /me resolve to index.html; missing
// files and unknown API paths are 404s.
func (s *Server) mountStatic() {
	indexPath, ok := s.dashboardIndex()
	if !ok {
		s.engine.NoRoute(notFoundJSON)
		return
	}

	serveIndex := func(c *gin.Context) {
		c.Header("Cache-Control", indexCacheControl)
		c.File(indexPath)
	}
	s.engine.GET("/", serveIndex)
	s.engine.NoRoute(func(c *gin.Context) {
		if !isClientRoute(c.Request) {
			notFoundJSON(c)
			return
		}
		serveIndex(c)
	})

	assetsDir := filepath.Join(s.staticDir, "assets")
	if info, err := os.Stat(assetsDir); err == nil && info.IsDir() {
		assets := s.engine.Group("/assets", func(c *gin.Context) {
			c.Header("Cache-Control", assetCacheControl)
			c.Next()
		})
		assets.StaticFS("/", gin.Dir(assetsDir, false))
	}

	for _, name := range rootFiles {
		p := filepath.Join(s.staticDir, name)
		if _, err := os.Stat(p); err == nil {
			s.engine.StaticFile("/"+name, p)
		}
	}
	s.logger.Info("serving dashboard", slog.String("dir", s.staticDir))
}

func (s *Server) dashboardIndex() (string, bool) {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return "", false
	}
	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", slog.String("path", s.staticDir))
		return "", false
	}
	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", slog.String("path", indexPath))
		return "", false
	}
	return indexPath, true
}

// isClientRoute reports whether r is a page navigation the dashboard router
// handles: a GET or HEAD outside /api for a path without a file extension.
func isClientRoute(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	p := r.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		return false
	}
	return path.Ext(p) == ""
}

func notFoundJSON(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
}
