package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobsched/internal/backend"
	"jobsched/internal/config"
	"jobsched/internal/logging"
	"jobsched/internal/server"
	"jobsched/internal/storage/sqlite"
)

var (
	serveAddr    string
	serveDB      string
	serveStatic  string
	serveBackend string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the dashboard",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides JOBSCHED_ADDR)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Path to sqlite database file (overrides JOBSCHED_DB_PATH)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "Directory with built frontend (overrides JOBSCHED_STATIC_DIR)")
	serveCmd.Flags().StringVar(&serveBackend, "backend", "", "Upstream API feeding board views (overrides JOBSCHED_BACKEND_URL)")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command, overrides map[string]*string) (config.Config, error) {
	var files []string
	if rootEnvFile != "" {
		files = append(files, rootEnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	for name, value := range overrides {
		if !cmd.Flags().Changed(name) {
			continue
		}
		switch name {
		case "addr":
			cfg.Addr = *value
		case "db":
			cfg.DBPath = *value
		case "static":
			cfg.StaticDir = *value
		case "backend":
			cfg.BackendURL = *value
		}
	}
	return cfg, nil
}

// recordsFor picks the upstream API as the system of record for jobs, tasks
// and schedule submits when one is configured, and the local store otherwise.
func recordsFor(cfg config.Config, loc *time.Location, store *sqlite.Store, logger *slog.Logger) server.Records {
	if cfg.BackendURL == "" {
		return store
	}
	logger.Info("jobs and tasks served by upstream", slog.String("url", cfg.BackendURL))
	return backend.New(backend.Options{
		BaseURL:  cfg.BackendURL,
		Token:    cfg.BackendToken,
		Timeout:  cfg.BackendTimeout,
		Location: loc,
		Logger:   logger,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]*string{
		"addr":    &serveAddr,
		"db":      &serveDB,
		"static":  &serveStatic,
		"backend": &serveBackend,
	})
	if err != nil {
		return err
	}

	logger, closer := logging.New(cfg.Log, os.Stdout)
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Info("jobsched starting", slog.String("db", cfg.DBPath), slog.String("tz", cfg.TimeZone))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	srv := server.New(server.Options{
		Store:       store,
		Records:     recordsFor(cfg, loc, store, logger),
		Logger:      logger,
		StaticDir:   cfg.StaticDir,
		Location:    loc,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("JOBSCHED_JWT_SECRET not set; trusting the identity header")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}
