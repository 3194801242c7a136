package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/session"
	"github.com/starford/memyaml/internal/testutil"
)

func TestInit_OpensAsDeck(t *testing.T) {
	dir, store := testutil.TestDeck(t, nil)
	if err := Init(store, ""); err != nil {
		t.Fatalf("Init: %v", err)
	}

	deck, err := os.ReadFile(filepath.Join(dir, DeckFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(deck), "name: Hello Mem YAML") || !strings.Contains(string(deck), "  - cards_1.yml") {
		t.Errorf("deck.yaml =\n%s", deck)
	}

	s, err := session.Open(context.Background(), store)
	if err != nil {
		t.Fatalf("scaffolded deck does not open: %v", err)
	}
	if n := len(s.Entries()); n != 2 {
		t.Errorf("scaffolded deck has %d cards, want 2", n)
	}
}

func TestInit_CustomName(t *testing.T) {
	_, store := testutil.TestDeck(t, nil)
	if err := Init(store, "Kanji: N5"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s, err := session.Open(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if s.Deck().Name != "Kanji: N5" {
		t.Errorf("name = %q", s.Deck().Name)
	}
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	cases := map[string]map[string]string{
		"deck file":     {"Deck.yml": "name: mine\ncard_files: []\n"},
		"card file":     {"cards_1.yml": "- name: keep\n  content: me\n"},
		"existing deck": {"deck.yaml": testutil.DeckYAML, "cards_1.yml": testutil.CardsYAML},
	}
	for name, files := range cases {
		dir, store := testutil.TestDeck(t, files)
		if err := Init(store, ""); !errors.Is(err, apperr.ErrAlreadyExists) {
			t.Errorf("%s: expected ErrAlreadyExists, got %v", name, err)
		}
		for f, want := range files {
			got, _ := os.ReadFile(filepath.Join(dir, f))
			if string(got) != want {
				t.Errorf("%s: %s was modified", name, f)
			}
		}
	}
}
