package session

import (
	"log/slog"
	"math/rand/v2"

	"github.com/starford/memyaml/internal/history"
	"github.com/starford/memyaml/internal/scheduler"
)

// Option configures a Session.
type Option func(*Session)

// WithScheduler replaces the default FSRS scheduler.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(sess *Session) {
		if s != nil {
			sess.sched = s
		}
	}
}

// WithRand sets the source used to pick among due cards.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithHistory appends every review and ignore to rec. Failures are logged,
// not returned.
func WithHistory(rec history.Recorder) Option {
	return func(s *Session) { s.history = rec }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}
