/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Recoverer:     Panic recovery (500 instead of crash)
  2. RealIP:        Client address from proxy headers (trusted proxy only)
  3. RequestID:     X-Request-ID, generated when absent
  4. RequestLogger: zap access log
  5. CORS:          Cross-origin requests for the editing frontend
  6. RateLimit:     Token bucket per client IP (optional)

ROUTE GROUPS:
  /api/calculate          Ad-hoc calculation of a plan document
  /api/balances/*         Statutory fund sizes
  /api/plans/*            Saved plans, their runs and exports
  /api/export/{format}    Ad-hoc export of a plan document
  /api/holidays/*         Custom holidays and ICS import
  /api/scenarios/*        Demo scenarios
  /health                 Liveness and store check

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Request ID, access log, rate limit
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions carries the middleware settings from config.
type RouterOptions struct {
	AllowedOrigins []string
	Limiter        *RateLimiter // nil disables rate limiting

	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that sets those headers.
	TrustProxy bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(opts.Limiter.Middleware)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
		r.Get("/balances/statutory", h.StatutoryBalances)
		r.Post("/export/{format}", h.ExportCalculation)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)
			r.Get("/{id}", h.GetPlan)
			r.Put("/{id}", h.UpdatePlan)
			r.Delete("/{id}", h.DeletePlan)
			r.Post("/{id}/calculate", h.CalculatePlan)
			r.Get("/{id}/runs", h.ListRuns)
			r.Get("/{id}/export.{format}", h.ExportPlan)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Post("/import", h.ImportHolidays)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// Health reports whether the store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.fail(w, r, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
