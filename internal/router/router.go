package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"companion-backend/internal/handlers"
	"companion-backend/internal/middleware"
)

// New wires the HTTP surface. limiter may be nil to disable rate limiting.
func New(
	relayHandler *handlers.RelayHandler,
	statusHandler *handlers.StatusHandler,
	limiter *middleware.RateLimiter,
	allowedOrigins []string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/health", handlers.Health)
	r.Get("/status", statusHandler.Status)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/generate", relayHandler.Generate)
		})
	})

	return r
}
