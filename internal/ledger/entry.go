// Package ledger holds the per-card memory state of a deck and reconciles it
// against the current card files.
package ledger

import (
	"math"
	"time"

	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/models"
)

// MemoryState is the scheduling state of a card that has been reviewed at
// least once.
type MemoryState struct {
	LastReviewed time.Time // UTC
	Interval     float64   // days until due
	Stability    float64
	Difficulty   float64
}

// maxDueSeconds is the largest offset time.Duration can hold, in whole seconds.
const maxDueSeconds = math.MaxInt64 / int64(time.Second)

// Due returns the instant the card becomes due. The interval is truncated to
// whole seconds; offsets beyond time.Duration's range saturate.
func (s *MemoryState) Due() time.Time {
	secs := s.Interval * 24 * 60 * 60
	switch {
	case math.IsNaN(secs) || secs <= 0:
		return s.LastReviewed
	case secs >= float64(maxDueSeconds):
		return s.LastReviewed.Add(time.Duration(maxDueSeconds) * time.Second)
	}
	return s.LastReviewed.Add(time.Duration(int64(secs)) * time.Second)
}

// Entry is the ledger record of one card. State is nil until the first review.
type Entry struct {
	ID      identity.Identity
	State   *MemoryState
	Ignored bool
}

// NewEntry returns a fresh entry for a card that has never been reviewed.
func NewEntry(c models.Card) Entry {
	return Entry{ID: identity.Of(c)}
}

// Reviewed reports whether the card has a memory state.
func (e Entry) Reviewed() bool {
	return e.State != nil
}

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	if e.State != nil {
		s := *e.State
		e.State = &s
	}
	return e
}
