// Package deckservice serialises access to a review session for the HTTP,
// MCP and watcher front ends, and fans out change events.
package deckservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/history"
	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/ledger"
	"github.com/starford/memyaml/internal/models"
	"github.com/starford/memyaml/internal/scheduler"
	"github.com/starford/memyaml/internal/session"
	"github.com/starford/memyaml/internal/sse"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	Publish(event sse.Event)
	PublishCardEvent(typ string, card sse.CardEvent)
}

// HistoryStats reads aggregate review history. *history.DB implements it.
type HistoryStats interface {
	Stats(ctx context.Context, since time.Time) (history.Stats, error)
}

// DeckInfo describes the open deck.
type DeckInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Root        string   `json:"root"`
	Algorithm   string   `json:"algorithm"`
	Retention   float64  `json:"retention"`
	CardFiles   []string `json:"card_files"`
}

// CardView is a card as shown to a client. Content and Tags are only set
// once the card is revealed.
type CardView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Glance   string     `json:"glance,omitempty"`
	Content  string     `json:"content,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	Reviewed bool       `json:"reviewed"`
	Ignored  bool       `json:"ignored"`
	Due      *time.Time `json:"due,omitempty"`
}

// ReviewResult is returned after recording an outcome.
type ReviewResult struct {
	Card     CardView  `json:"card"`
	Outcome  string    `json:"outcome"`
	Interval float64   `json:"interval_days"`
	NextDue  time.Time `json:"next_due"`
}

// Stats combines the ledger summary with review history.
type Stats struct {
	session.Summary
	History *history.Stats `json:"history,omitempty"`
}

// Service wraps a session with a mutex. All methods are safe for concurrent use.
type Service struct {
	mu   sync.Mutex
	sess *session.Session

	events  Publisher
	history HistoryStats
	clock   func() time.Time
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends card and reload events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithHistory adds history counts to Stats.
func WithHistory(h HistoryStats) Option {
	return func(s *Service) { s.history = h }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service over sess. The caller keeps no other reference to sess.
func New(sess *session.Session, opts ...Option) *Service {
	s := &Service{sess: sess, clock: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Deck returns the deck metadata.
func (s *Service) Deck(_ context.Context) DeckInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.sess.Deck()
	return DeckInfo{
		Name:        d.Name,
		Description: d.Description,
		Root:        s.sess.Root(),
		Algorithm:   string(d.Algorithm),
		Retention:   d.Retention(),
		CardFiles:   nonNilSlice(d.CardFiles),
	}
}

// Next picks a random due card and returns its question side.
// It returns apperr.ErrNoCardsDue when nothing is due.
func (s *Service) Next(_ context.Context) (*CardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, c, err := s.sess.Next(s.clock())
	if err != nil {
		return nil, err
	}
	v := view(e, c, false)
	return &v, nil
}

// Card returns the full card, answer included.
func (s *Service) Card(_ context.Context, rawID string) (*CardView, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, c, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	v := view(e, c, true)
	return &v, nil
}

// Review records outcome for the card and persists the ledger.
func (s *Service) Review(ctx context.Context, rawID, rawOutcome string) (*ReviewResult, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	outcome, err := scheduler.ParseOutcome(rawOutcome)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}

	s.mu.Lock()
	e, err := s.sess.RecordOutcome(ctx, id, outcome, s.clock())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	c, _ := s.sess.Card(id)
	s.mu.Unlock()

	res := &ReviewResult{
		Card:     view(e, c, true),
		Outcome:  outcome.String(),
		Interval: e.State.Interval,
		NextDue:  e.State.Due(),
	}
	s.publishCard(sse.TypeCardReviewed, res.Card, res.Outcome)
	return res, nil
}

// Ignore excludes the card from future reviews.
func (s *Service) Ignore(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if err := s.sess.Ignore(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	c, _ := s.sess.Card(id)
	s.mu.Unlock()

	s.publishCard(sse.TypeCardIgnored, CardView{ID: id.String(), Name: c.Name}, "")
	return nil
}

// Stats returns the ledger summary and, when configured, history counts
// since local midnight.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.clock()
	s.mu.Lock()
	st := &Stats{Summary: s.sess.Summary(now)}
	s.mu.Unlock()

	if s.history != nil {
		y, m, d := now.Date()
		h, err := s.history.Stats(ctx, time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
		if err != nil {
			return nil, err
		}
		st.History = &h
	}
	return st, nil
}

// Reload re-reads the deck files. Its signature matches watcher.ReloadFunc.
// Failures are logged; the session keeps its previous cards.
func (s *Service) Reload(ctx context.Context, changed []string) {
	s.mu.Lock()
	ch, err := s.sess.Reload(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logger.WarnContext(ctx, "deckservice: reload failed",
			slog.Any("changed", changed), slog.String("error", err.Error()))
		return
	}
	if s.events != nil {
		s.events.Publish(sse.Event{Type: sse.TypeDeckReloaded, Data: ch})
	}
}

func (s *Service) lookup(id identity.Identity) (ledger.Entry, models.Card, error) {
	e, ok := s.sess.Entry(id)
	if !ok {
		return ledger.Entry{}, models.Card{}, fmt.Errorf("deckservice: %s: %w", id, apperr.ErrUnknownCard)
	}
	c, ok := s.sess.Card(id)
	if !ok {
		return ledger.Entry{}, models.Card{}, fmt.Errorf("deckservice: %s: %w", id, apperr.ErrUnknownCard)
	}
	return e, c, nil
}

func (s *Service) publishCard(typ string, v CardView, outcome string) {
	if s.events == nil {
		return
	}
	s.events.PublishCardEvent(typ, sse.CardEvent{ID: v.ID, Name: v.Name, Outcome: outcome})
}

func parseID(raw string) (identity.Identity, error) {
	id, err := identity.Parse(raw)
	if err != nil {
		return identity.Identity{}, errors.Join(apperr.ErrInvalidInput, err)
	}
	return id, nil
}

func view(e ledger.Entry, c models.Card, revealed bool) CardView {
	v := CardView{
		ID:       e.ID.String(),
		Name:     c.Name,
		Glance:   c.Glance,
		Reviewed: e.Reviewed(),
		Ignored:  e.Ignored,
	}
	if e.State != nil {
		due := e.State.Due()
		v.Due = &due
	}
	if revealed {
		v.Content = c.Content
		v.Tags = c.Tags
	}
	return v
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
