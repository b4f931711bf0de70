package http

import (
	"net/http"

	"github.com/atinyakov/cyberchat/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler of the backend proxy.
//
// Routes:
//
//	GET  /api/                  → Root
//	POST /api/keys/detect       → keyHandler.Detect
//	POST /api/keys/validate     → keyHandler.Validate (rate limited)
//	POST /api/chat/completions  → chatHandler.Complete (rate limited)
//	POST /api/status            → statusHandler.Create (only with a database)
//	GET  /api/status            → statusHandler.List (only with a database)
//
// Middleware chain (applied in order):
//  1. Recoverer: turns panics into 500
//  2. WithRequestLogging(logger)
//  3. CORS: any origin
//  4. AllowContentType("application/json"): rejects non-JSON bodies
func NewRouter(
	keyHandler *KeyHandler,
	chatHandler *ChatHandler,
	statusHandler *StatusHandler,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.CORS)
	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", Root)
		r.Post("/keys/detect", keyHandler.Detect)

		// Calls that reach a paid upstream provider
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(middleware.RateLimit(limiter, logger))
			}
			r.Post("/keys/validate", keyHandler.Validate)
			r.Post("/chat/completions", chatHandler.Complete)
		})

		if statusHandler != nil {
			r.Post("/status", statusHandler.Create)
			r.Get("/status", statusHandler.List)
		}
	})

	return r
}
