package ledger

import (
	"fmt"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/identity"
)

// Ledger is the in-memory, sorted set of entries owned by one session.
type Ledger struct {
	entries []Entry
	pos     map[identity.Identity]int
}

// New builds a ledger from entries that are already reconciled.
func New(entries []Entry) *Ledger {
	l := &Ledger{}
	l.Replace(entries)
	return l
}

// Replace swaps the whole entry set, keeping the first of any duplicates.
func (l *Ledger) Replace(entries []Entry) {
	l.entries = make([]Entry, 0, len(entries))
	l.pos = make(map[identity.Identity]int, len(entries))
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	Sort(sorted)
	for _, e := range sorted {
		if _, dup := l.pos[e.ID]; dup {
			continue
		}
		l.pos[e.ID] = len(l.entries)
		l.entries = append(l.entries, e.Clone())
	}
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id identity.Identity) (Entry, bool) {
	i, ok := l.pos[id]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i].Clone(), true
}

// Update stores e over the existing entry with the same identity.
func (l *Ledger) Update(e Entry) error {
	i, ok := l.pos[e.ID]
	if !ok {
		return fmt.Errorf("ledger: update %s: %w", e.ID, apperr.ErrUnknownCard)
	}
	l.entries[i] = e.Clone()
	return nil
}

// Entries returns a copy of all entries in ledger order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Clone()
	}
	return out
}

// Filter returns copies of the entries for which keep returns true.
func (l *Ledger) Filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}
