package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"authgate/internal/auth"
	"authgate/internal/config"
	"authgate/internal/metrics"
	"authgate/internal/users"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, directory users.Directory, provider identityProvider, tokens *auth.TokenCodec, collector *metrics.Collector, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))
	r.Use(newMetricsMiddleware(collector))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	oauthHandler := NewOAuthHandler(provider, directory, tokens, collector, cfg, logger)
	userHandler := NewUserHandler()

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/logout", oauthHandler.Logout)
			r.Route("/google", func(r chi.Router) {
				r.Get("/login", oauthHandler.Login)
				r.Get("/callback", oauthHandler.Callback)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(newAuthMiddleware(tokens, directory, logger))
			r.Get("/users/me", userHandler.Me)
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
