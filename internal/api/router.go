package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memyaml/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/deck", h.Deck)
	r.Get("/stats", h.Stats)

	r.Get("/cards/next", h.NextCard)
	r.Get("/cards/{id}", h.GetCard)
	r.Post("/cards/{id}/review", h.ReviewCard)
	r.Post("/cards/{id}/ignore", h.IgnoreCard)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
