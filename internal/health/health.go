// Package health serves the liveness endpoint next to the bot.
package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/m3rciful/vacancybot/core/logger"
)

const checkTimeout = 2 * time.Second

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// Response is the /healthz body.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Server is the health HTTP listener.
type Server struct {
	e      *echo.Echo
	addr   string
	checks map[string]Check
}

// New builds the server. Checks run on every request; an empty addr means
// Start does nothing.
func New(addr string, checks map[string]Check) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{e: e, addr: addr, checks: checks}
	e.GET("/healthz", s.healthz)
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: "ok"}
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string)
			}
			resp.Status = "fail"
			resp.Checks[name] = err.Error()
		}
	}
	if resp.Status != "ok" {
		logger.Warn(ctx, logger.CompHealth, "health.check",
			slog.String("status", "fail"),
			slog.Any("checks", resp.Checks),
		)
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// Start listens in the background until Shutdown.
func (s *Server) Start(ctx context.Context) {
	if s.addr == "" {
		return
	}
	go func() {
		err := s.e.Start(s.addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, logger.CompHealth, "health.listen",
				slog.String("status", "fail"),
				slog.String("addr", s.addr),
				logger.Err(err),
			)
		}
	}()
	logger.Info(ctx, logger.CompHealth, "health.listen",
		slog.String("status", "ok"),
		slog.String("addr", s.addr),
	)
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.addr == "" {
		return nil
	}
	return s.e.Shutdown(ctx)
}
