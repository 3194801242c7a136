// Package scheduler decides when a card is due and computes its memory state
// after a review.
package scheduler

import (
	"fmt"
	"time"

	"github.com/starford/memyaml/internal/fsrs"
	"github.com/starford/memyaml/internal/ledger"
)

// Model predicts the candidate next states of a card, one per grade. prior
// is nil for a card that has never been reviewed.
type Model interface {
	NextStates(prior *fsrs.Memory, retention float64, elapsedDays int) (fsrs.NextStates, error)
}

// Scheduler applies a Model to ledger entries.
type Scheduler struct {
	model Model
	loc   *time.Location
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the time zone used to count elapsed days.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New returns a Scheduler using model. A nil model means the default FSRS
// weights.
func New(model Model, opts ...Option) *Scheduler {
	if model == nil {
		model = fsrs.Default()
	}
	s := &Scheduler{model: model, loc: time.Local}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IsDue reports whether e should be shown at now. A card that was never
// reviewed is always due.
func IsDue(e ledger.Entry, now time.Time) bool {
	if e.State == nil {
		return true
	}
	return !now.Before(e.State.Due())
}

// Advance returns the memory state of e after a review with the given
// outcome at now. e itself is not modified.
func (s *Scheduler) Advance(e ledger.Entry, outcome Outcome, retention float64, now time.Time) (ledger.MemoryState, error) {
	if !outcome.IsValid() {
		return ledger.MemoryState{}, fmt.Errorf("scheduler: advance: %w: %d", ErrInvalidOutcome, int(outcome))
	}

	var (
		prior   *fsrs.Memory
		elapsed int
	)
	if e.State != nil {
		prior = &fsrs.Memory{Stability: e.State.Stability, Difficulty: e.State.Difficulty}
		elapsed = s.ElapsedDays(e.State.LastReviewed, now)
	}

	next, err := s.model.NextStates(prior, retention, elapsed)
	if err != nil {
		return ledger.MemoryState{}, fmt.Errorf("scheduler: advance %s: %w", e.ID, err)
	}
	item, err := next.For(outcome.Grade())
	if err != nil {
		return ledger.MemoryState{}, fmt.Errorf("scheduler: advance %s: %w", e.ID, err)
	}

	return ledger.MemoryState{
		LastReviewed: now.UTC(),
		Interval:     item.Interval,
		Stability:    item.Memory.Stability,
		Difficulty:   item.Memory.Difficulty,
	}, nil
}

// ElapsedDays counts whole days, truncated toward zero, from lastReviewed to
// now. The stored timestamp has no zone, so its wall clock is read in the
// scheduler's location before subtracting.
func (s *Scheduler) ElapsedDays(lastReviewed, now time.Time) int {
	lr := lastReviewed.UTC()
	prev := time.Date(lr.Year(), lr.Month(), lr.Day(), lr.Hour(), lr.Minute(), lr.Second(), lr.Nanosecond(), s.loc)
	return int(now.Sub(prev) / (24 * time.Hour))
}
