package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/internal/interfaces/http/handlers"
	"github.com/turtacn/chemsafe/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree. Nil handlers leave their routes unmounted.
type RouterConfig struct {
	ChemicalHandler *handlers.ChemicalHandler
	AdminHandler    *handlers.AdminHandler
	HealthHandler   *handlers.HealthHandler

	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	Recorder       middleware.HTTPRecorder

	Logger  logging.Logger
	Logging middleware.LoggingConfig
}

// NewRouter constructs the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Recorder != nil {
		r.Use(middleware.Metrics(cfg.Recorder))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerChemicalRoutes(api, cfg.ChemicalHandler)
		registerAdminRoutes(api, cfg.AdminHandler)
	})

	return r
}

// registerChemicalRoutes mounts the lookup endpoints.
func registerChemicalRoutes(r chi.Router, h *handlers.ChemicalHandler) {
	if h == nil {
		return
	}
	r.Route("/chemicals/{name}", func(cr chi.Router) {
		cr.Get("/", h.Get)
		cr.Get("/sections", h.Sections)
		cr.Get("/procedures", h.Procedures)
	})
	r.Get("/aliases/{name}", h.Aliases)
}

// registerAdminRoutes mounts the operational endpoints.
func registerAdminRoutes(r chi.Router, h *handlers.AdminHandler) {
	if h == nil {
		return
	}
	r.Get("/status", h.Status)
	r.Route("/admin", func(ar chi.Router) {
		ar.Post("/reload", h.Reload)
		ar.Get("/status", h.Status)
	})
}
