/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. AccessLog:  One structured logrus entry per request
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the dashboard

ROUTE GROUPS:
  /api/health                 Liveness
  /api/schedule, /commission,
  /api/compensation, /forecast  Stateless entry points
  /api/orgs/{org}/*           Stored organization data and projections
  /api/admin/*                Manual forecast refresh
  /api/scenarios/*            Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// DefaultCORSOrigins are the dashboard dev servers.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured. Empty origins
// fall back to DefaultCORSOrigins.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(AccessLog(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Stateless entry points
		r.Post("/schedule/current", h.CurrentPeriod)
		r.Post("/commission/resolve", h.ResolveCommission)
		r.Post("/compensation", h.ComputeCompensation)
		r.Post("/forecast", h.ProjectInline)

		// Organization routes
		r.Route("/orgs/{org}", func(r chi.Router) {
			r.Get("/schedule", h.GetSchedule)
			r.Put("/schedule", h.PutSchedule)
			r.Get("/schedule/current", h.GetCurrentPeriod)

			r.Get("/forecast", h.GetForecast)
			r.Get("/forecast/runs", h.ListForecastRuns)
			r.Get("/tiers", h.GetTierDistribution)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.SaveEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Delete("/{id}", h.DeleteEmployee)
			})

			r.Route("/levels", func(r chi.Router) {
				r.Get("/", h.ListLevels)
				r.Post("/", h.SaveLevel)
				r.Delete("/{slug}", h.DeleteLevel)
			})

			r.Get("/assignments", h.ListAssignments)
			r.Post("/assignments", h.AssignLevel)

			r.Route("/overrides", func(r chi.Router) {
				r.Get("/", h.ListOverrides)
				r.Post("/", h.CreateOverride)
				r.Delete("/{id}", h.DeleteOverride)
			})

			r.Get("/sales", h.ListSales)
			r.Post("/sales", h.RecordSales)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/forecast/refresh", h.RefreshForecasts)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// AccessLog writes one structured entry per request.
func AccessLog(log *logrus.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
			})
			switch {
			case status >= 500:
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Info("request handled")
			}
		})
	}
}
