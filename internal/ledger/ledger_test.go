package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/models"
)

func TestLedger_GetUpdate(t *testing.T) {
	l := New(Reconcile(nil, []models.Card{card("a", "1"), card("b", "2")}))
	id := identity.Compute("a", "1")

	e, ok := l.Get(id)
	if !ok {
		t.Fatal("entry not found")
	}
	e.Ignored = true
	if stored, _ := l.Get(id); stored.Ignored {
		t.Fatal("Get should return a copy")
	}
	if err := l.Update(e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if stored, _ := l.Get(id); !stored.Ignored {
		t.Error("update not stored")
	}
}

func TestLedger_UpdateUnknown(t *testing.T) {
	l := New(nil)
	err := l.Update(Entry{ID: identity.Compute("x", "y")})
	if !errors.Is(err, apperr.ErrUnknownCard) {
		t.Errorf("expected ErrUnknownCard, got %v", err)
	}
}

func TestLedger_ReplaceSortsAndDedups(t *testing.T) {
	a := identity.Compute("name_1", "content_1")
	c := identity.Compute("name_3", "content_3")
	l := New([]Entry{{ID: a, Ignored: true}, {ID: c}, {ID: a}})
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
	got := l.Entries()
	if got[0].ID != c || got[1].ID != a {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if !got[1].Ignored {
		t.Error("first duplicate should win")
	}
}

func TestLedger_Filter(t *testing.T) {
	entries := Reconcile(nil, []models.Card{card("a", "1"), card("b", "2"), card("c", "3")})
	entries[1].Ignored = true
	l := New(entries)
	kept := l.Filter(func(e Entry) bool { return !e.Ignored })
	if len(kept) != 2 {
		t.Errorf("len = %d, want 2", len(kept))
	}
}

func TestDue(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		interval float64
		want     time.Time
	}{
		{"fraction truncated to seconds", 1.5 + 0.4/86400, last.Add(36 * time.Hour)},
		{"zero", 0, last},
		{"negative", -2, last},
		{"nan", math.NaN(), last},
		{"past duration range", 200000, last.Add(time.Duration(math.MaxInt64/int64(time.Second)) * time.Second)},
	}
	for _, tc := range cases {
		s := MemoryState{LastReviewed: last, Interval: tc.interval}
		if got := s.Due(); !got.Equal(tc.want) {
			t.Errorf("%s: Due = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDue_LongIntervalsStayAhead(t *testing.T) {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, days := range []float64{36500, 106751, 155557, 288626, 1e12} {
		s := MemoryState{LastReviewed: last, Interval: days}
		if !s.Due().After(last.AddDate(99, 0, 0)) {
			t.Errorf("interval %v: Due = %v is not far ahead", days, s.Due())
		}
	}
}
