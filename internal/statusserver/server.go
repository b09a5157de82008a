// Package statusserver exposes watcher state over HTTP.
package statusserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/models"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/version"
)

// JobSource lists in-memory jobs. watcher.Watcher satisfies it.
type JobSource interface {
	Jobs() []models.RecordingJob
}

type Server struct {
	echo   *echo.Echo
	jobs   JobSource
	store  store.Store
	logger logger.Logger
}

func New(jobs JobSource, st store.Store, log logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, jobs: jobs, store: st, logger: log}
	e.GET("/health", s.health)
	e.GET("/jobs", s.listJobs)
	e.GET("/history", s.history)
	return s
}

// Handler returns the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Status server listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) listJobs(c echo.Context) error {
	jobs := s.jobs.Jobs()
	if status := c.QueryParam("status"); status != "" {
		filtered := make([]models.RecordingJob, 0, len(jobs))
		for _, j := range jobs {
			if string(j.Status) == status {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}
	return c.JSON(http.StatusOK, jobs)
}

func (s *Server) history(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	recs, err := s.store.List(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, recs)
}
