package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/deckservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// cardID extracts the card identity from the URL. Encoded colons
// (name%3Acontent) are accepted.
func cardID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Deck handles GET /api/deck.
func (h *Handler) Deck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Deck(r.Context()))
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// NextCard handles GET /api/cards/next. It answers 204 when no card is due.
func (h *Handler) NextCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.Next(r.Context())
	if errors.Is(err, apperr.ErrNoCardsDue) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, "next card", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// GetCard handles GET /api/cards/{id} and returns the revealed card.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.Card(r.Context(), cardID(r))
	if err != nil {
		writeError(w, "get card", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// ReviewCard handles POST /api/cards/{id}/review.
func (h *Handler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Outcome == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("outcome is required"))
		return
	}
	res, err := h.svc.Review(r.Context(), cardID(r), req.Outcome)
	if err != nil {
		writeError(w, "review card", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// IgnoreCard handles POST /api/cards/{id}/ignore.
func (h *Handler) IgnoreCard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ignore(r.Context(), cardID(r)); err != nil {
		writeError(w, "ignore card", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
