package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/haskel/studycost/internal/config"
	"github.com/haskel/studycost/internal/dataset"
	"github.com/haskel/studycost/internal/estimate"
	"github.com/haskel/studycost/internal/metrics"
	"github.com/haskel/studycost/internal/monitor"
	"github.com/haskel/studycost/internal/server/middleware"
	"github.com/haskel/studycost/internal/session"
)

// Deps are the components a server serves. Estimator and Sessions are
// required; the rest may be nil.
type Deps struct {
	Estimator  *estimate.Estimator
	Sessions   session.Store
	Dataset    *dataset.Dataset
	Aggregator *monitor.Aggregator
	Metrics    *metrics.Metrics
	// Reload re-reads the config and model. Exposed as POST /debug/reload.
	Reload func(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	deps       Deps
	config     atomic.Pointer[config.Config]
	logger     *slog.Logger
	version    string
	authConfig *middleware.AuthConfig
	bodySchema *gojsonschema.Schema
	pages      *pages
}

func New(cfg *config.Config, deps Deps, logger *slog.Logger, version string) (*Server, error) {
	bodySchema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(deps.Estimator.Schema().JSONSchema()))
	if err != nil {
		return nil, err
	}

	pages, err := newPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		deps:       deps,
		logger:     logger,
		version:    version,
		authConfig: middleware.NewAuthConfig(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password),
		bodySchema: bodySchema,
		pages:      pages,
	}
	s.config.Store(cfg)

	mux := s.setupRoutes(cfg)

	chain := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.SecurityHeaders(),
		middleware.Logging(logger),
	}
	if deps.Metrics != nil {
		chain = append(chain, middleware.Instrument(deps.Metrics))
	}
	chain = append(chain,
		middleware.MaxBody(cfg.Server.MaxBodyBytes),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:           cfg.Server.RateLimit.Enabled,
			RequestsPerSecond: cfg.Server.RateLimit.RequestsPerSecond,
			Burst:             cfg.Server.RateLimit.Burst,
		}),
		middleware.Auth(s.authConfig, "/health", "/ready"),
	)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Chain(mux, chain...),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// ReloadConfig applies the settings that can change at runtime.
// Host, port, schema and session backend changes require a restart.
func (s *Server) ReloadConfig(cfg *config.Config) {
	s.authConfig.Update(cfg.Auth.Enabled, cfg.Auth.User, cfg.Auth.Password)
	s.config.Store(cfg)

	s.logger.Info("configuration reloaded",
		"auth_enabled", cfg.Auth.Enabled,
	)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("server starting",
		"addr", s.httpServer.Addr,
		"version", s.version,
	)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
