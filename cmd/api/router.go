package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/lead-roulette/internal/infra/http/handlers"
	"github.com/xavierca1/lead-roulette/internal/infra/http/middleware"
)

type routes struct {
	Health     *handlers.HealthHandler
	Attendance *handlers.AttendanceHandler
	Leads      *handlers.LeadHandler
	Captures   *handlers.CaptureHandler
	Webhooks   *handlers.WebhookHandler
	Stores     *handlers.StoreHandler

	JWTSecret    []byte
	IngestAPIKey string
	IngestLimit  *middleware.IPRateLimiter
	CORSOrigins  []string
	Metrics      http.Handler
}

func newRouter(rt routes, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rt.Metrics == nil {
		rt.Metrics = promhttp.Handler()
	}
	r.Handle("/metrics", rt.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.Health.Handle)

		// webhooks das campanhas: limite por IP + chave de API
		r.With(rt.IngestLimit.Limit, middleware.APIKey(rt.IngestAPIKey)).
			Post("/webhooks/leads", rt.Webhooks.IngestLead)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(rt.JWTSecret))

			r.Get("/users/me", rt.Stores.Me)
			r.Get("/stores", rt.Stores.List)

			r.Post("/attendance/checkin", rt.Attendance.Checkin)
			r.Delete("/attendance/checkout", rt.Attendance.Checkout)
			r.Get("/attendance/status", rt.Attendance.Status)

			r.Get("/leads/waiting", rt.Leads.Waiting)
			r.Get("/leads/assigned", rt.Leads.Assigned)

			r.Get("/captures/my", rt.Captures.My)
			r.Get("/captures/stats", rt.Captures.Stats)
			r.Post("/captures/{leadId}", rt.Captures.Capture)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/admin/dashboard", rt.Stores.Dashboard)
				r.Post("/webhooks/create-test-lead", rt.Webhooks.CreateTestLead)
			})
		})
	})
	return r
}
