package history

import (
	"context"
	"time"

	"github.com/starford/memyaml/internal/identity"
)

// Kinds of logged actions.
const (
	KindReview = "review"
	KindIgnore = "ignore"
)

// Review is one row of the log.
type Review struct {
	ID         int64
	Kind       string
	Card       identity.Identity
	Title      string // card name as written in the card file
	Outcome    string // empty for ignores
	Interval   float64
	Stability  float64
	Difficulty float64
	ReviewedAt time.Time
}

// Stats summarises the log.
type Stats struct {
	Reviews        int            `json:"reviews"`
	ReviewsSince   int            `json:"reviews_since"`
	Ignores        int            `json:"ignores"`
	ByOutcome      map[string]int `json:"by_outcome"`
	LastReviewedAt *time.Time     `json:"last_reviewed_at,omitempty"`
}

// Recorder appends actions to the log. Session code depends on this
// rather than on *DB.
type Recorder interface {
	Record(ctx context.Context, r Review) error
}

var _ Recorder = (*DB)(nil)
