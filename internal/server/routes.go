package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/haskel/studycost/internal/config"
	"github.com/haskel/studycost/internal/server/middleware"
)

func (s *Server) setupRoutes(cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /status", s.handleStatus)

	if cfg.Metrics.Enabled && s.deps.Metrics != nil {
		mux.Handle("GET "+cfg.Metrics.Path, s.deps.Metrics.Handler())
	}

	mux.HandleFunc("GET /v1/schema", s.handleSchema)
	mux.HandleFunc("GET /v1/model", s.handleModel)
	mux.HandleFunc("POST /v1/estimate", s.handleEstimate)

	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/estimate", s.handleSessionEstimate)
	mux.HandleFunc("GET /v1/sessions/{id}/charts", s.handleSessionCharts)

	mux.HandleFunc("GET /v1/eda/summary", s.handleEDASummary)
	mux.HandleFunc("GET /v1/eda/charts", s.handleEDACharts)

	mux.HandleFunc("GET /ui", s.handleUI)
	mux.HandleFunc("POST /ui", s.handleUISubmit)

	s.setupDebugRoutes(mux, cfg)

	return mux
}

// setupDebugRoutes configures debug and profiling endpoints with authentication.
func (s *Server) setupDebugRoutes(mux *http.ServeMux, cfg *config.Config) {
	profilingEnabled := cfg.Server.Profiling.Enabled
	debugEnabled := cfg.Debug.Enabled

	if !profilingEnabled && !debugEnabled {
		return
	}

	debugAuth := middleware.DebugAuth(cfg.Debug.Auth.Token, s.authConfig)

	if profilingEnabled {
		s.logger.Info("profiling endpoints enabled at /debug/pprof/ (auth required)")
		mux.Handle("GET /debug/pprof/{$}", debugAuth(http.HandlerFunc(pprof.Index)))
		mux.Handle("GET /debug/pprof/cmdline", debugAuth(http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("GET /debug/pprof/profile", debugAuth(http.HandlerFunc(pprof.Profile)))
		mux.Handle("GET /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("POST /debug/pprof/symbol", debugAuth(http.HandlerFunc(pprof.Symbol)))
		mux.Handle("GET /debug/pprof/trace", debugAuth(http.HandlerFunc(pprof.Trace)))
		// Named profiles: heap, goroutine, allocs, block, mutex, threadcreate
		mux.Handle("GET /debug/pprof/{name}", debugAuth(http.HandlerFunc(pprof.Index)))
	}

	if debugEnabled {
		s.logger.Warn("debug mode enabled - debug endpoints require authentication")
		mux.Handle("GET /debug/config", debugAuth(http.HandlerFunc(s.handleDebugConfig)))
		mux.Handle("POST /debug/reload", debugAuth(http.HandlerFunc(s.handleDebugReload)))
	}
}
