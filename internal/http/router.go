package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"compare-ai/internal/handlers"
	"compare-ai/internal/service"
)

// requestTimeout bounds one chat request: a retrieval, two completions and
// an optional translation.
const requestTimeout = 2 * time.Minute

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService   service.ChatService
	HealthHandler http.Handler
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	chatHandler := handlers.NewChatHandler(deps.ChatService)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(requestTimeout)).Method(http.MethodPost, "/chat", chatHandler)
		if deps.HealthHandler != nil {
			r.Method(http.MethodGet, "/health", deps.HealthHandler)
		}
	})

	return r
}
