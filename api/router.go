/*
router.go - HTTP router and middleware configuration

Mirrors the teacher engine's server.go: chi for routing, a small fixed
middleware stack, and route groups that match spec.md §6.2/§6.3 one-to-one.
Authentication is optional at the router level (NewAuthenticator.Middleware
only *populates* the caller, it never rejects) — individual routes opt into
RequireCaller/RequireAdmin per spec.md's "RBAC is a thin allow-list check"
scope note.
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/vilakshan/pli-leaderboard/metrics"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Authenticator  *Authenticator
	AllowedOrigins []string
	Metrics        *metrics.Registry
	// LeaderboardRPS bounds sustained request rate on the public
	// /leaderboard/* routes (read-mostly, many dashboard clients hitting
	// them on a poll interval); 0 disables the limiter.
	LeaderboardRPS float64
}

// rateLimit enforces a single shared token bucket across all callers of
// the wrapped routes — a per-process limiter, not per-client, since the
// public leaderboard has no per-caller identity to key on.
func rateLimit(rps float64) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// instrument records HTTPRequestDuration per route pattern, method, and
// status once chi has resolved the matched pattern for the request.
func instrument(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			reg.HTTPRequestDuration.WithLabelValues(pattern, r.Method, strconv.Itoa(ww.Status())).
				Observe(time.Since(start).Seconds())
		})
	}
}

// NewRouter builds the leaderboard read API and admin config API on one
// chi.Mux, wired to h.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	if opts.Authenticator != nil {
		r.Use(opts.Authenticator.Middleware)
	}
	if opts.Metrics != nil {
		r.Use(instrument(opts.Metrics))
	}

	r.Route("/leaderboard", func(r chi.Router) {
		if opts.LeaderboardRPS > 0 {
			r.Use(rateLimit(opts.LeaderboardRPS))
		}
		r.Get("/", h.ListLeaderboard)
		r.Get("/me", RequireCaller(h.GetMe))
		r.Get("/me/breakdown", RequireCaller(h.GetMeBreakdown))
		r.Get("/user/{id}", RequireAdmin(h.GetUser))
		r.Get("/user/{id}/breakdown", RequireAdmin(h.GetUserBreakdown))
		r.Get("/team-view", RequireAdmin(h.GetTeamView))
		r.Get("/team-view/members", RequireAdmin(h.GetTeamViewMembers))
		r.Get("/breakdown", RequireAdmin(h.GetBreakdownExport))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Route("/scorer/{module}", func(r chi.Router) {
			r.Get("/", RequireAdmin(h.GetScorerConfig))
			r.Put("/", RequireAdmin(h.PutScorerConfig))
			r.Post("/reset", RequireAdmin(h.ResetScorerConfig))
			r.Post("/reaggregate", RequireAdmin(h.Reaggregate))
			r.Get("/audit", RequireAdmin(h.GetScorerAudit))
		})
		r.Route("/adjustments", func(r chi.Router) {
			r.Post("/", RequireAdmin(h.CreateAdjustment))
			r.Post("/{id}/status", RequireAdmin(h.SetAdjustmentStatus))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
