package session

import (
	"time"

	"github.com/starford/memyaml/internal/scheduler"
)

// Summary counts the ledger entries by study status.
type Summary struct {
	Deck      string     `json:"deck"`
	Total     int        `json:"total"`
	Unseen    int        `json:"unseen"`
	Due       int        `json:"due"`
	Scheduled int        `json:"scheduled"`
	Ignored   int        `json:"ignored"`
	NextDue   *time.Time `json:"next_due,omitempty"`
}

// Summary reports the state of the deck at now. Due includes unseen cards;
// NextDue is the earliest due time among scheduled cards.
func (s *Session) Summary(now time.Time) Summary {
	sum := Summary{Deck: s.deck.Name, Total: s.ledger.Len()}
	for _, e := range s.ledger.Entries() {
		switch {
		case e.Ignored:
			sum.Ignored++
			continue
		case e.State == nil:
			sum.Unseen++
		}
		if scheduler.IsDue(e, now) {
			sum.Due++
			continue
		}
		sum.Scheduled++
		if due := e.State.Due(); sum.NextDue == nil || due.Before(*sum.NextDue) {
			sum.NextDue = &due
		}
	}
	return sum
}
