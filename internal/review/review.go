// Package review runs the line-based terminal review loop.
package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/ledger"
	"github.com/starford/memyaml/internal/models"
	"github.com/starford/memyaml/internal/scheduler"
)

// Prompts and messages written to the terminal.
const (
	HintQuestion = "(q: quit | r: reveal | i: ignore)"
	HintAnswer   = "(q: quit | a: easy, s: good, d: hard, f: again | i: ignore)"
	MsgDone      = "All cards are done!"
	MsgIgnored   = "Card ignored"
)

// Deck is the part of a session the loop drives.
type Deck interface {
	Next(now time.Time) (ledger.Entry, models.Card, error)
	RecordOutcome(ctx context.Context, id identity.Identity, outcome scheduler.Outcome, now time.Time) (ledger.Entry, error)
	Ignore(ctx context.Context, id identity.Identity) error
}

// Loop reads commands from in and writes cards to out.
type Loop struct {
	deck  Deck
	in    *bufio.Scanner
	out   io.Writer
	clock func() time.Time
}

// New returns a Loop over deck. clock defaults to time.Now when nil.
func New(deck Deck, in io.Reader, out io.Writer, clock func() time.Time) *Loop {
	if clock == nil {
		clock = time.Now
	}
	return &Loop{deck: deck, in: bufio.NewScanner(in), out: out, clock: clock}
}

type step int

const (
	stepNext step = iota
	stepQuit
)

// Run shows due cards until none are left, the user quits, or input ends.
// Every answer is persisted before the next card is shown, so quitting
// never loses progress.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, card, err := l.deck.Next(l.clock())
		if errors.Is(err, apperr.ErrNoCardsDue) {
			l.println(MsgDone)
			return nil
		}
		if err != nil {
			return err
		}

		st, err := l.card(ctx, e.ID, card)
		if err != nil {
			return fmt.Errorf("review: %w", err)
		}
		if st == stepQuit {
			return nil
		}
	}
}

func (l *Loop) card(ctx context.Context, id identity.Identity, card models.Card) (step, error) {
	fmt.Fprintf(l.out, "\n%s\n%s\n", HintQuestion, front(card))

	for {
		cmd, ok := l.read()
		if !ok {
			return stepQuit, l.in.Err()
		}
		switch cmd {
		case "q":
			return stepQuit, nil
		case "i":
			return stepNext, l.ignore(ctx, id)
		case "r":
			return l.answer(ctx, id, card)
		}
	}
}

func (l *Loop) answer(ctx context.Context, id identity.Identity, card models.Card) (step, error) {
	fmt.Fprintf(l.out, "\n%s\n%s\n", HintAnswer, full(card))

	for {
		cmd, ok := l.read()
		if !ok {
			return stepQuit, l.in.Err()
		}
		switch cmd {
		case "q":
			return stepQuit, nil
		case "i":
			return stepNext, l.ignore(ctx, id)
		}
		outcome, ok := scheduler.OutcomeForKey(cmd)
		if !ok {
			continue
		}
		if _, err := l.deck.RecordOutcome(ctx, id, outcome, l.clock()); err != nil {
			return stepQuit, err
		}
		l.println("Card marked as " + strings.ToLower(outcome.String()))
		return stepNext, nil
	}
}

func (l *Loop) ignore(ctx context.Context, id identity.Identity) error {
	if err := l.deck.Ignore(ctx, id); err != nil {
		return err
	}
	l.println(MsgIgnored)
	return nil
}

// read returns the next trimmed input line. ok is false at end of input or
// on a read error; l.in.Err tells the two apart.
func (l *Loop) read() (string, bool) {
	if !l.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(l.in.Text()), true
}

func (l *Loop) println(s string) {
	fmt.Fprintln(l.out, s)
}

// front is the question side: name and glance.
func front(c models.Card) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('\n')
	if c.Glance != "" {
		fmt.Fprintf(&b, "glance: %s\n", c.Glance)
	}
	return b.String()
}

// full adds the content and tags to the front.
func full(c models.Card) string {
	var b strings.Builder
	b.WriteString(front(c))
	b.WriteString(c.Content)
	b.WriteByte('\n')
	if len(c.Tags) > 0 {
		fmt.Fprintf(&b, "tags: %s\n", strings.Join(c.Tags, ", "))
	}
	return b.String()
}
