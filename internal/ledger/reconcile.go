package ledger

import (
	"slices"

	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/models"
)

// Reconcile computes the ledger for the current card set:
//   - entries whose identity is still present are carried over unchanged
//   - entries whose identity disappeared are dropped with their progress
//   - cards with a new identity get a fresh, unreviewed entry
//
// Duplicate identities, in old or in cards, keep their first occurrence.
// The result is sorted by identity.
func Reconcile(old []Entry, cards []models.Card) []Entry {
	current := make(map[identity.Identity]struct{}, len(cards))
	for _, c := range cards {
		current[identity.Of(c)] = struct{}{}
	}

	out := make([]Entry, 0, len(current))
	seen := make(map[identity.Identity]struct{}, len(current))
	for _, e := range old {
		if _, ok := current[e.ID]; !ok {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e.Clone())
	}
	for _, c := range cards {
		id := identity.Of(c)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Entry{ID: id})
	}

	Sort(out)
	return out
}

// Sort orders entries by name hash, then content hash. Equal identities
// keep their relative order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.ID.Compare(b.ID)
	})
}
