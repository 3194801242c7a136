// Package session owns one deck for the duration of a run: its cards, its
// ledger, and every mutation of them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/history"
	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/ledger"
	"github.com/starford/memyaml/internal/models"
	"github.com/starford/memyaml/internal/scheduler"
	"github.com/starford/memyaml/internal/storage"
)

// Session is not safe for concurrent use. Callers sharing one across
// goroutines must serialise access.
type Session struct {
	store    storage.Provider
	deckFile string
	deck     *models.Deck
	cards    map[identity.Identity]models.Card
	ledger   *ledger.Ledger

	sched   *scheduler.Scheduler
	rng     *rand.Rand
	history history.Recorder
	logger  *slog.Logger
}

// Open loads the deck in store, reconciles its ledger against the current
// cards and writes the result back.
func Open(ctx context.Context, store storage.Provider, opts ...Option) (*Session, error) {
	s := &Session{
		store:  store,
		sched:  scheduler.New(nil),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}

	src, err := loadSource(store)
	if err != nil {
		return nil, err
	}
	old, err := ledger.Load(store)
	if err != nil {
		return nil, fmt.Errorf("session: open: %w", err)
	}

	s.apply(src, ledger.Reconcile(old, src.cards))
	if err := s.persist(); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "session: deck opened",
		slog.String("deck", s.deck.Name),
		slog.String("file", s.deckFile),
		slog.Int("cards", s.ledger.Len()),
		slog.Int("dropped", len(old)-countKept(old, s.ledger)),
	)
	return s, nil
}

// Change describes what a Reload did to the ledger.
type Change struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}

// Reload re-reads the deck and card files and reconciles them against the
// in-memory ledger. On error the session keeps its previous state.
func (s *Session) Reload(ctx context.Context) (Change, error) {
	src, err := loadSource(s.store)
	if err != nil {
		return Change{}, err
	}
	old := s.ledger.Entries()
	next := ledger.Reconcile(old, src.cards)

	kept := 0
	for _, e := range next {
		if _, ok := s.ledger.Get(e.ID); ok {
			kept++
		}
	}
	ch := Change{Added: len(next) - kept, Removed: len(old) - kept, Total: len(next)}

	prevDeck, prevFile, prevCards, prevEntries := s.deck, s.deckFile, s.cards, old
	s.apply(src, next)
	if err := s.persist(); err != nil {
		s.deck, s.deckFile, s.cards = prevDeck, prevFile, prevCards
		s.ledger.Replace(prevEntries)
		return Change{}, err
	}
	s.logger.InfoContext(ctx, "session: deck reloaded",
		slog.Int("added", ch.Added), slog.Int("removed", ch.Removed), slog.Int("total", ch.Total))
	return ch, nil
}

func (s *Session) apply(src *deckSource, entries []ledger.Entry) {
	s.deckFile = src.file
	s.deck = src.deck
	s.cards = cardMap(src.cards)
	if s.ledger == nil {
		s.ledger = ledger.New(entries)
	} else {
		s.ledger.Replace(entries)
	}
}

func (s *Session) persist() error {
	if err := ledger.Save(s.store, s.ledger.Entries()); err != nil {
		return fmt.Errorf("session: persist: %w", err)
	}
	return nil
}

// Deck returns a copy of the deck metadata.
func (s *Session) Deck() models.Deck {
	d := *s.deck
	d.CardFiles = append([]string(nil), s.deck.CardFiles...)
	if s.deck.FSRSOption != nil {
		opt := *s.deck.FSRSOption
		if opt.Retention != nil {
			r := *opt.Retention
			opt.Retention = &r
		}
		d.FSRSOption = &opt
	}
	return d
}

// Root returns the deck directory.
func (s *Session) Root() string {
	return s.store.Root()
}

// Card returns the card with the given identity.
func (s *Session) Card(id identity.Identity) (models.Card, bool) {
	c, ok := s.cards[id]
	return c, ok
}

// Entry returns the ledger entry for id.
func (s *Session) Entry(id identity.Identity) (ledger.Entry, bool) {
	return s.ledger.Get(id)
}

// Entries returns a snapshot of the ledger.
func (s *Session) Entries() []ledger.Entry {
	return s.ledger.Entries()
}

// PickDue returns a uniformly random entry among those that are due and not
// ignored. ok is false when there is none.
func (s *Session) PickDue(now time.Time) (e ledger.Entry, ok bool) {
	due := s.ledger.Filter(func(e ledger.Entry) bool {
		return !e.Ignored && scheduler.IsDue(e, now)
	})
	if len(due) == 0 {
		return ledger.Entry{}, false
	}
	return due[s.rng.IntN(len(due))], true
}

// Next is PickDue plus the card for the picked entry. It returns
// apperr.ErrNoCardsDue when nothing is due.
func (s *Session) Next(now time.Time) (ledger.Entry, models.Card, error) {
	e, ok := s.PickDue(now)
	if !ok {
		return ledger.Entry{}, models.Card{}, apperr.ErrNoCardsDue
	}
	c, ok := s.Card(e.ID)
	if !ok {
		return ledger.Entry{}, models.Card{}, fmt.Errorf("session: next %s: %w", e.ID, apperr.ErrUnknownCard)
	}
	return e, c, nil
}

// RecordOutcome schedules the card after a review and persists the ledger.
// If the scheduler or the write fails nothing is changed.
func (s *Session) RecordOutcome(ctx context.Context, id identity.Identity, outcome scheduler.Outcome, now time.Time) (ledger.Entry, error) {
	e, ok := s.ledger.Get(id)
	if !ok {
		return ledger.Entry{}, fmt.Errorf("session: record outcome %s: %w", id, apperr.ErrUnknownCard)
	}
	state, err := s.sched.Advance(e, outcome, s.deck.Retention(), now)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("session: record outcome: %w", err)
	}
	prev := e.Clone()
	e.State = &state
	if err := s.commit(prev, e); err != nil {
		return ledger.Entry{}, err
	}

	s.logger.DebugContext(ctx, "session: review recorded",
		slog.String("card", id.String()),
		slog.String("outcome", outcome.String()),
		slog.Float64("interval", state.Interval),
	)
	s.record(ctx, history.Review{
		Kind:       history.KindReview,
		Card:       id,
		Title:      s.title(id),
		Outcome:    outcome.String(),
		Interval:   state.Interval,
		Stability:  state.Stability,
		Difficulty: state.Difficulty,
		ReviewedAt: state.LastReviewed,
	})
	return e, nil
}

// Ignore excludes the card from future picks and persists the ledger. If the
// write fails the card stays eligible.
func (s *Session) Ignore(ctx context.Context, id identity.Identity) error {
	e, ok := s.ledger.Get(id)
	if !ok {
		return fmt.Errorf("session: ignore %s: %w", id, apperr.ErrUnknownCard)
	}
	prev := e.Clone()
	e.Ignored = true
	if err := s.commit(prev, e); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "session: card ignored", slog.String("card", id.String()))
	s.record(ctx, history.Review{Kind: history.KindIgnore, Card: id, Title: s.title(id)})
	return nil
}

// commit stores next and persists the ledger, putting prev back when the
// write fails.
func (s *Session) commit(prev, next ledger.Entry) error {
	if err := s.ledger.Update(next); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		if rerr := s.ledger.Update(prev); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}

func (s *Session) title(id identity.Identity) string {
	c, _ := s.Card(id)
	return c.Name
}

func (s *Session) record(ctx context.Context, r history.Review) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, r); err != nil {
		s.logger.WarnContext(ctx, "session: history write failed",
			slog.String("card", r.Card.String()), slog.Any("error", err))
	}
}

func countKept(old []ledger.Entry, l *ledger.Ledger) int {
	n := 0
	seen := make(map[identity.Identity]struct{}, len(old))
	for _, e := range old {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if _, ok := l.Get(e.ID); ok {
			n++
		}
	}
	return n
}
