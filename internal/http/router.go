package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/taskdesk/internal/auth"
	"github.com/redmonkez12/taskdesk/internal/config"
	"github.com/redmonkez12/taskdesk/internal/httputil"
	"github.com/redmonkez12/taskdesk/internal/logging"
	"github.com/redmonkez12/taskdesk/internal/profile"
	"github.com/redmonkez12/taskdesk/internal/ratelimit"
	"github.com/redmonkez12/taskdesk/internal/task"
)

// Handlers groups the domain handlers mounted under /api.
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Tasks          *task.Handler
	Profile        *profile.Handler
	// Database backs /api/health.
	Database Pinger
}

// NewRouter creates and configures the HTTP router.
// A nil limiter disables rate limiting regardless of configuration.
func NewRouter(cfg *config.Config, h Handlers, limiter *ratelimit.Limiter, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.CleanPath)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))
	r.Use(BodyLimit(cfg.Server.MaxBodyBytes))

	// Set before any Route call so sub-routers inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, fmt.Sprintf("route not found: %s %s", r.Method, r.URL.Path), httputil.CodeRouteNotFound, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondErrorWithCode(w, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path), httputil.CodeMethodNotAllowed, http.StatusMethodNotAllowed)
	})

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	rateLimited := cfg.RateLimit.Enabled && limiter != nil
	if !rateLimited {
		logger.Warn("rate limiting disabled")
	}

	r.Route("/api", func(r chi.Router) {
		if rateLimited {
			r.Use(ratelimit.Middleware(limiter, ratelimit.Policy{
				Name:   "api",
				Limit:  cfg.RateLimit.APIRequests,
				Window: cfg.RateLimit.Window,
			}))
		}

		r.Method(http.MethodGet, "/health", &healthHandler{db: h.Database, env: cfg.Server.Env, startedAt: time.Now()})

		r.Route("/auth", func(r chi.Router) {
			if rateLimited {
				r.Use(ratelimit.Middleware(limiter, ratelimit.Policy{
					Name:    "auth",
					Limit:   cfg.RateLimit.AuthRequests,
					Window:  cfg.RateLimit.Window,
					Message: "too many authentication attempts, please try again later",
				}))
			}

			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.With(h.AuthMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware.RequireAuth)
			r.Route("/tasks", h.Tasks.Routes)
			r.Route("/users", h.Profile.Routes)
		})
	})

	return r
}
