// Package testutil provides shared test helpers for setting up decks and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/memyaml/internal/history"
	"github.com/starford/memyaml/internal/storage"
)

// DeckYAML is a small deck whose cards live in cards_1.yml.
const DeckYAML = `name: Test deck
description: fixtures
card_files:
  - cards_1.yml
fsrs_option:
  retention: 0.9
`

// CardsYAML holds three cards for DeckYAML.
const CardsYAML = `- name: こんにちわ
  content: Hello
  tags: [greeting]
- name: せかい
  glance: noun
  content: World
- name: ありがとう
  content: Thank you
`

// TestDB creates a temporary history database that is automatically cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "memyaml-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDeck creates a temporary deck directory holding files (name → content)
// and returns it with a storage.Provider rooted there.
func TestDeck(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// DefaultDeck is TestDeck with DeckYAML and CardsYAML.
func DefaultDeck(t *testing.T) (string, storage.Provider) {
	t.Helper()
	return TestDeck(t, map[string]string{
		"deck.yaml":   DeckYAML,
		"cards_1.yml": CardsYAML,
	})
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
