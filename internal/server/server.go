package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/vzahanych/nimbus/internal/config"
	"github.com/vzahanych/nimbus/internal/dispatcher"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/server/handlers"
	"github.com/vzahanych/nimbus/internal/server/middlewares"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP surface exposes.
type Deps struct {
	Lookups handlers.Lookup
	Weather dispatcher.WeatherResolver
	Metrics *observability.Metrics
	Clock   clockwork.Clock
}

type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

func NewServer(cfg config.ServerConfig, deps Deps, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middlewares.RequestID())
	engine.Use(middlewares.Logging(logger))
	engine.Use(middlewares.Recovery(logger))
	engine.Use(middlewares.Tracing(logger, tele))
	engine.Use(middlewares.Metrics(deps.Metrics))

	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
	}
	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRoutes(deps Deps) {
	weatherHandler := handlers.NewWeatherHandler(deps.Lookups, deps.Weather, s.logger)
	s.engine.GET("/weather", weatherHandler.GetWeather)
	s.engine.GET("/weather/coordinates", weatherHandler.GetWeatherByCoordinates)

	health := handlers.NewHealthHandler(deps.Clock)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	s.engine.GET("/metrics", handlers.NewMetricsHandler(deps.Metrics))
}

// Handler exposes the routed engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
