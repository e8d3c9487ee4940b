// Package api is the network front end: a chi router exposing the JSON-RPC endpoint,
// its metadata, a health check and the Prometheus metrics.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/matiasleandrokruk/wccmcp/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/wccmcp/internal/api/middleware"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/resource"
	"github.com/matiasleandrokruk/wccmcp/internal/domain/tool"
)

// RouterConfig carries everything NewRouter wires.
type RouterConfig struct {
	// Path is the JSON-RPC endpoint, e.g. "/mcp".
	Path string
	// JWTSecret enables bearer auth on Path when non-empty.
	JWTSecret  string
	Dispatcher *tool.Dispatcher
	Resources  *resource.Catalog
	// Gatherer backs GET /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Path == "" {
		cfg.Path = "/mcp"
	}
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check is unauthenticated
	r.With(apmiddleware.RequestLogger(cfg.Logger)).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// ===== MCP ENDPOINT (bearer auth when a secret is configured) =====

	mcpHandler := handlers.NewMCPHandler(cfg.Dispatcher, cfg.Resources, cfg.Path, cfg.Logger)
	r.Group(func(r chi.Router) {
		r.Use(apmiddleware.RequestLogger(cfg.Logger))
		r.Use(apmiddleware.Auth(cfg.JWTSecret))
		r.Post(cfg.Path, mcpHandler.Handle)
		r.Get(cfg.Path, mcpHandler.Describe)
	})

	return r
}
