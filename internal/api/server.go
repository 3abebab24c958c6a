// Package api exposes the dosing engine over HTTP.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/engine"
	"github.com/dosepilot/dosepilot/internal/metrics"
	"github.com/dosepilot/dosepilot/internal/store"
)

// Server handles the HTTP API
type Server struct {
	app     *fiber.App
	config  *config.Config
	store   *store.Store
	engine  *engine.Engine
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates a new API server
func New(cfg *config.Config, st *store.Store, eng *engine.Engine, m *metrics.Metrics, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:     app,
		config:  cfg,
		store:   st,
		engine:  eng,
		metrics: m,
		logger:  log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Middleware
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Server.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	s.app.Use(s.requestIDMiddleware())
	s.app.Use(s.metricsMiddleware())

	// Health check and Prometheus scrape endpoint
	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/login", s.handleLogin)

	// Protected routes
	protected := api.Use(s.authMiddleware())

	// Profile
	protected.Get("/profile", s.handleGetProfile)
	protected.Put("/profile", s.handlePutProfile)

	// Catalog
	protected.Get("/supplements", s.handleListSupplements)
	protected.Get("/supplements/:id", s.handleGetSupplement)

	// Mixes
	protected.Get("/mixes", s.handleListMixes)
	protected.Get("/mixes/available", s.handleAvailableMixes)
	protected.Post("/mixes/:id/calculate", s.handleCalculateMix)

	// Recommendations
	protected.Post("/recommendations", s.handleRecommendation)

	// Check-ins
	protected.Post("/checkins", s.handleCreateCheckIn)
	protected.Get("/checkins/today", s.handleTodayCheckIn)

	// Health data
	protected.Post("/health-data", s.handleCreateHealthData)
	protected.Post("/health-data/sync", s.handleSyncWearable)
	protected.Get("/baseline", s.handleGetBaseline)

	// Dispense ledger
	protected.Post("/dispense", s.handleDispense)
	protected.Get("/dispense/today", s.handleDispenseToday)

	// Cycling
	protected.Get("/cycles", s.handleCycles)
}

// Start starts the server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

// App returns the underlying fiber app, used by handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"timestamp": time.Now().Unix(),
	})
}
