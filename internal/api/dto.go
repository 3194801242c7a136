package api

import "github.com/starford/memyaml/internal/deckservice"

// ReviewRequest is the request body for recording a review.
type ReviewRequest struct {
	Outcome string `json:"outcome" example:"Good"`
}

// Response types, aliased from the domain layer.
type (
	DeckInfo     = deckservice.DeckInfo
	CardView     = deckservice.CardView
	ReviewResult = deckservice.ReviewResult
	Stats        = deckservice.Stats
)
