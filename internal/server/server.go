package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/internal/server/handlers"
	"github.com/vzahanych/weather-history-app/internal/server/middlewares"
	"github.com/vzahanych/weather-history-app/internal/service"
	"github.com/vzahanych/weather-history-app/pkg/telemetry"
)

// MetricsSink accepts the recorder that counts fetch outcomes.
// *service.WeatherAPIService satisfies it.
type MetricsSink interface {
	SetMetricsRecorder(metrics service.MetricsRecorder)
}

type Server struct {
	cfg       config.ServerConfig
	engine    *gin.Engine
	server    *http.Server
	submitter handlers.HistorySubmitter
	logger    *zap.Logger
	tele      *telemetry.Telemetry
}

func NewServer(cfg config.ServerConfig, submitter handlers.HistorySubmitter, sink MetricsSink, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	metrics := middlewares.NewMetricsMiddleware()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, "/health", "/health/live", "/health/ready", "/metrics"))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(metrics.Handler())

	s := &Server{
		cfg:       cfg,
		engine:    engine,
		submitter: submitter,
		logger:    logger,
		tele:      tele,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}

	metricsHandler := handlers.NewMetricsHandler(logger, metrics)
	if sink != nil {
		sink.SetMetricsRecorder(metricsHandler)
	}

	s.setupRoutes(metricsHandler)

	return s
}

func (s *Server) setupRoutes(metricsHandler *handlers.MetricsHandler) {
	history := handlers.NewHistoryHandler(s.submitter, s.logger)
	var ready handlers.ReadinessCheck
	if r, ok := s.submitter.(interface{ Ready() error }); ok {
		ready = r.Ready
	}
	health := handlers.NewHealthHandler(s.logger, ready)

	// Business endpoints
	s.engine.GET("/history", history.GetHistory)
	s.engine.GET("/validate", history.ValidateDate)

	// Health endpoints (Kubernetes friendly)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
