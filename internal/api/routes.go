package api

import (
	"net/http"

	"github.com/onnwee/skatespot/internal/middleware"
)

// Middleware is a standard net/http middleware.
type Middleware = func(http.Handler) http.Handler

// RouterConfig wires handlers and the per-route middleware into the mux.
type RouterConfig struct {
	Auth         *AuthHandlers
	Parks        *ParkHandlers
	Reviews      *ReviewHandlers
	ClientConfig *ClientConfigHandlers
	Health       *HealthHandlers

	// Guard is the session guard applied to every data-bearing route.
	Guard Middleware

	// AuthLimiter is the tighter rate limit applied to /register and /login.
	// Optional.
	AuthLimiter Middleware

	// MetricsHandler serves GET /metrics. Optional.
	MetricsHandler http.Handler
}

// NewRouter builds the route table. Every data route goes through cfg.Guard;
// only the auth endpoints and the operational endpoints are open.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.AuthLimiter != nil {
			return cfg.AuthLimiter(h)
		}
		return h
	}

	guarded := func(h http.HandlerFunc) http.Handler {
		return cfg.Guard(h)
	}

	// Auth endpoints (open, but rate limited harder than the rest)
	mux.Handle("POST /register", limited(cfg.Auth.Register))
	mux.Handle("POST /login", limited(cfg.Auth.Login))
	mux.Handle("POST /logout", http.HandlerFunc(cfg.Auth.Logout))

	// Data endpoints (guarded, without exception)
	mux.Handle("GET /parks", guarded(cfg.Parks.ListParks))
	mux.Handle("GET /parks/saved", guarded(cfg.Parks.ListSaved))
	mux.Handle("POST /parks/saved", guarded(cfg.Parks.SavePark))
	mux.Handle("DELETE /parks/saved/{place_id}", guarded(cfg.Parks.UnsavePark))
	mux.Handle("GET /reviews", guarded(cfg.Reviews.ListReviews))
	mux.Handle("GET /config", guarded(cfg.ClientConfig.GetClientConfig))

	// Operational endpoints (open)
	mux.HandleFunc("GET /health", cfg.Health.Health)
	mux.HandleFunc("GET /ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	// Everything else is a structured 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
	})

	return mux
}
