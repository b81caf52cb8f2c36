package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hackgods/provider-booking/internal/metrics"
)

type RouterConfig struct {
	Bookings  BookingService
	Providers ProviderDirectory
	Checks    []DependencyCheck
	Metrics   *metrics.Collector
	Logger    zerolog.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	useMiddleware(r, cfg)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/now", serverTimeHandler(cfg.Bookings))

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", bookAppointmentHandler(cfg.Bookings, cfg.Logger))
			r.Get("/{id}", getAppointmentHandler(cfg.Bookings, cfg.Logger))
			r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Bookings, cfg.Logger))
		})

		r.Route("/providers", func(r chi.Router) {
			r.Post("/", createProviderHandler(cfg.Providers, cfg.Logger))
			r.Get("/", listProvidersHandler(cfg.Providers, cfg.Logger))
			r.Put("/{providerID}/active", setProviderActiveHandler(cfg.Providers, cfg.Logger))
			r.Get("/{providerID}/schedule", providerScheduleHandler(cfg.Bookings, cfg.Logger))
		})
	})

	return r
}

// useMiddleware installs the shared chain. Recoverer sits innermost so a
// recovered panic still reaches the access log and request metrics as a 500.
func useMiddleware(r chi.Router, cfg RouterConfig) {
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}
	r.Use(middleware.Recoverer)
}
