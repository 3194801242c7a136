package ledger

import (
	"testing"
	"time"

	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/models"
)

func card(name, content string) models.Card {
	return models.Card{Name: name, Content: content}
}

func reviewedState() *MemoryState {
	return &MemoryState{
		LastReviewed: time.Unix(0, 0).UTC(),
		Interval:     0.3,
		Stability:    0.4,
		Difficulty:   0.5,
	}
}

func TestReconcile_KeepsDropsAndAdds(t *testing.T) {
	a := identity.Compute("name_1", "content_1")
	b := identity.Compute("name_2", "content_2")
	c := identity.Compute("name_3", "content_3")

	old := []Entry{
		{ID: b},
		{ID: a, State: reviewedState()},
	}
	got := Reconcile(old, []models.Card{card("name_1", "content_1"), card("name_3", "content_3")})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// name_3 hashes to 132c985a..., name_1 to 65c5dc60...
	if got[0].ID != c || got[1].ID != a {
		t.Fatalf("order = [%s %s], want [%s %s]", got[0].ID, got[1].ID, c, a)
	}
	if got[0].State != nil || got[0].Ignored {
		t.Errorf("new entry should be fresh: %+v", got[0])
	}
	if got[1].State == nil {
		t.Fatal("state of kept card was lost")
	}
	if *got[1].State != *reviewedState() {
		t.Errorf("state = %+v, want %+v", *got[1].State, *reviewedState())
	}
	for _, e := range got {
		if e.ID == b {
			t.Error("removed card still in ledger")
		}
	}
}

func TestReconcile_CarriesIgnoredFlag(t *testing.T) {
	a := identity.Compute("q", "a")
	got := Reconcile([]Entry{{ID: a, Ignored: true}}, []models.Card{card("q", "a")})
	if len(got) != 1 || !got[0].Ignored {
		t.Errorf("ignored flag not carried: %+v", got)
	}
}

func TestReconcile_EditedCardStartsOver(t *testing.T) {
	old := Reconcile(nil, []models.Card{card("q", "old answer")})
	old[0].State = reviewedState()

	got := Reconcile(old, []models.Card{card("q", "new answer")})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].State != nil {
		t.Error("edited card should have no memory state")
	}
	if got[0].ID != identity.Compute("q", "new answer") {
		t.Error("edited card should carry its new identity")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	cards := []models.Card{card("x", "1"), card("y", "2"), card("z", "3")}
	first := Reconcile(nil, cards)
	first[1].State = reviewedState()
	first[2].Ignored = true

	second := Reconcile(first, cards)
	if len(second) != len(first) {
		t.Fatalf("len = %d, want %d", len(second), len(first))
	}
	for i := range first {
		if !entriesEqual(first[i], second[i]) {
			t.Errorf("entry %d changed: %+v -> %+v", i, first[i], second[i])
		}
	}
}

func TestReconcile_EmptyOld(t *testing.T) {
	got := Reconcile(nil, []models.Card{card("a", "1"), card("b", "2")})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, e := range got {
		if e.State != nil || e.Ignored {
			t.Errorf("expected fresh entry, got %+v", e)
		}
	}
	if !got[0].ID.Less(got[1].ID) {
		t.Error("entries not sorted")
	}
}

func TestReconcile_EmptyCards(t *testing.T) {
	old := Reconcile(nil, []models.Card{card("a", "1")})
	if got := Reconcile(old, nil); len(got) != 0 {
		t.Errorf("expected empty ledger, got %+v", got)
	}
}

func TestReconcile_DuplicatesFirstWins(t *testing.T) {
	id := identity.Compute("dup", "same")
	first := Entry{ID: id, State: reviewedState()}
	second := Entry{ID: id, Ignored: true}

	got := Reconcile([]Entry{first, second}, []models.Card{card("dup", "same"), card("dup", "same")})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].State == nil || got[0].Ignored {
		t.Errorf("expected the first old entry to win, got %+v", got[0])
	}
}

func TestReconcile_DoesNotAliasOldState(t *testing.T) {
	old := []Entry{{ID: identity.Compute("a", "1"), State: reviewedState()}}
	got := Reconcile(old, []models.Card{card("a", "1")})
	got[0].State.Interval = 99
	if old[0].State.Interval == 99 {
		t.Error("reconciled entry shares state with the old ledger")
	}
}

func TestReconcile_SameNameOrderedByContent(t *testing.T) {
	got := Reconcile(nil, []models.Card{card("n", "b"), card("n", "a"), card("n", "c")})
	for i := 1; i < len(got); i++ {
		if got[i-1].ID.Name != got[i].ID.Name {
			t.Fatal("expected one shared name hash")
		}
		if !got[i-1].ID.Less(got[i].ID) {
			t.Errorf("entries %d and %d out of order", i-1, i)
		}
	}
}

func entriesEqual(a, b Entry) bool {
	if a.ID != b.ID || a.Ignored != b.Ignored {
		return false
	}
	if (a.State == nil) != (b.State == nil) {
		return false
	}
	if a.State == nil {
		return true
	}
	return a.State.LastReviewed.Equal(b.State.LastReviewed) &&
		a.State.Interval == b.State.Interval &&
		a.State.Stability == b.State.Stability &&
		a.State.Difficulty == b.State.Difficulty
}
