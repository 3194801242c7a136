package parser

import (
	"strings"
	"testing"

	"github.com/starford/memyaml/internal/models"
)

func TestParseDeck_YAML(t *testing.T) {
	input := []byte("name: Hello\ndescription: demo\ncard_files:\n  - cards_1.yml\n  - cards_2.yml\nfsrs_option:\n  retention: 0.9\n")
	d, err := ParseDeck(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Hello" || d.Description != "demo" {
		t.Errorf("deck = %+v", d)
	}
	if len(d.CardFiles) != 2 || d.CardFiles[1] != "cards_2.yml" {
		t.Errorf("card files = %v", d.CardFiles)
	}
	if d.Algorithm != models.AlgorithmFSRS {
		t.Errorf("algorithm = %q, want default fsrs", d.Algorithm)
	}
	if d.Retention() != 0.9 {
		t.Errorf("retention = %v, want 0.9", d.Retention())
	}
}

func TestParseDeck_JSON(t *testing.T) {
	input := []byte(`{"name": "J", "card_files": ["a.yml"], "algorithm": "fsrs"}`)
	d, err := ParseDeck(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "J" || d.CardFiles[0] != "a.yml" {
		t.Errorf("deck = %+v", d)
	}
	if d.Retention() != models.DefaultRetention {
		t.Errorf("retention = %v, want default", d.Retention())
	}
}

func TestParseDeck_RetentionWithoutValueUsesDefault(t *testing.T) {
	d, err := ParseDeck([]byte("name: x\ncard_files: []\nfsrs_option: {}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Retention() != models.DefaultRetention {
		t.Errorf("retention = %v", d.Retention())
	}
}

func TestParseDeck_ZeroRetentionRejected(t *testing.T) {
	input := []byte("name: x\ncard_files: [a.yml]\nfsrs_option:\n  retention: 0\n")
	d, err := ParseDeck(input)
	if err == nil {
		t.Fatalf("expected error, got deck with retention %v", d.Retention())
	}
	if !strings.Contains(err.Error(), "retention") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestParseDeck_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing name":       "card_files: [a.yml]\n",
		"missing card_files": "name: x\n",
		"empty file name":    "name: x\ncard_files: ['']\n",
		"unknown algorithm":  "name: x\ncard_files: [a.yml]\nalgorithm: sm2\n",
		"retention too high": "name: x\ncard_files: [a.yml]\nfsrs_option:\n  retention: 1.0\n",
		"retention negative": "name: x\ncard_files: [a.yml]\nfsrs_option:\n  retention: -0.5\n",
		"retention zero":     "name: x\ncard_files: [a.yml]\nfsrs_option:\n  retention: 0\n",
		"not yaml":           "name: [unterminated\n",
	}
	for name, input := range cases {
		if _, err := ParseDeck([]byte(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseCards(t *testing.T) {
	input := []byte(`- name: こんにちわ
  content: Hello
  tags:
    - greeting
    - sentence
- name: せかい
  glance: noun
  content: World
`)
	cards, err := ParseCards(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("len = %d, want 2", len(cards))
	}
	if cards[0].Name != "こんにちわ" || cards[0].Content != "Hello" || len(cards[0].Tags) != 2 {
		t.Errorf("card 0 = %+v", cards[0])
	}
	if cards[1].Glance != "noun" || cards[1].Tags != nil {
		t.Errorf("card 1 = %+v", cards[1])
	}
}

func TestParseCards_Empty(t *testing.T) {
	cards, err := ParseCards([]byte("\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("expected no cards, got %v", cards)
	}
}

func TestParseCards_MissingContent(t *testing.T) {
	_, err := ParseCards([]byte("- name: a\n- name: b\n  content: c\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "card 0") {
		t.Errorf("error should name the card index: %v", err)
	}
}

func TestParseCards_NotAList(t *testing.T) {
	if _, err := ParseCards([]byte("name: a\ncontent: b\n")); err == nil {
		t.Error("expected error for a mapping instead of a list")
	}
}
