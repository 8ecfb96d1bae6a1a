// Package server exposes the roadmap operations over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexanderramin/roadmapper/internal/intelligence"
	"github.com/alexanderramin/roadmapper/internal/metrics"
)

// DefaultAddr matches the port the web front end expects.
const DefaultAddr = ":5001"

// HealthChecker reports whether the completion backend can be reached.
// *llm.CompletionClient satisfies it.
type HealthChecker interface {
	Available(ctx context.Context) bool
}

// Config carries the dependencies of the HTTP layer.
type Config struct {
	Service intelligence.RoadmapService
	Health  HealthChecker
	Logger  *slog.Logger

	// Metrics and Gatherer are optional. /metrics is only mounted when
	// Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// MaxUploadMB bounds the request body, resume uploads included.
	MaxUploadMB int
}

// Server wraps the fiber app serving the roadmap API.
type Server struct {
	app     *fiber.App
	service intelligence.RoadmapService
	health  HealthChecker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New builds the app and registers every route.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}

	s := &Server{
		service: cfg.Service,
		health:  cfg.Health,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "roadmapper",
		BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	s.app.Use(s.logRequests)

	s.app.Post("/generate-roadmap", s.generateRoadmap)
	s.app.Post("/refine-roadmap", s.refineRoadmap)
	s.app.Post("/continue-roadmap", s.continueRoadmap)
	s.app.Post("/upload-resume", s.uploadResume)
	s.app.Get("/healthz", s.healthz)
	if cfg.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(metrics.HandlerFor(cfg.Gatherer)))
	}

	return s
}

// App exposes the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		return s.app.ShutdownWithTimeout(10 * time.Second)
	}
}

// logRequests logs one line per request and feeds the request metrics.
// Handler errors are rendered here so the logged status is the final one.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}

	status := c.Response().StatusCode()
	elapsed := time.Since(start)
	route := c.Route().Path
	if s.metrics != nil {
		s.metrics.RecordRequest(route, status, elapsed)
	}

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.UserContext(), level, "http request",
		"method", c.Method(),
		"path", c.Path(),
		"route", route,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestID(c),
	)
	return nil
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
