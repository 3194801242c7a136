// Package scaffold writes a starter deck into an empty directory.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/models"
	"github.com/starford/memyaml/internal/session"
	"github.com/starford/memyaml/internal/storage"
)

// Starter deck contents.
const (
	DefaultName        = "Hello Mem YAML"
	DefaultDescription = "A minimal example of a Deck metadata file"
	DeckFile           = "deck.yaml"
	CardsFile          = "cards_1.yml"
)

const starterCards = `- name: こんにちわ
  content: Hello
  tags:
    - greeting
    - sentence
- name: せかい
  glance: noun
  content: World
`

// Init writes deck.yaml and cards_1.yml. name overrides the deck name when
// not empty. It returns apperr.ErrAlreadyExists if either file, or any other
// deck metadata file, is already present.
func Init(store storage.Provider, name string) error {
	if _, err := session.FindDeckFile(store); err == nil {
		return fmt.Errorf("scaffold: deck metadata in %s: %w", store.Root(), apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrDeckNotFound) {
		return fmt.Errorf("scaffold: %w", err)
	}
	exists, err := store.Exists(CardsFile)
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	if exists {
		return fmt.Errorf("scaffold: %s: %w", CardsFile, apperr.ErrAlreadyExists)
	}

	if name == "" {
		name = DefaultName
	}
	deck, err := encodeDeck(models.Deck{
		Name:        name,
		Description: DefaultDescription,
		CardFiles:   []string{CardsFile},
	})
	if err != nil {
		return err
	}

	// Cards first: a deck file pointing at a missing card file would not open.
	if err := store.Write(CardsFile, []byte(starterCards)); err != nil {
		return fmt.Errorf("scaffold: write %s: %w", CardsFile, err)
	}
	if err := store.Write(DeckFile, deck); err != nil {
		return fmt.Errorf("scaffold: write %s: %w", DeckFile, err)
	}
	return nil
}

func encodeDeck(d models.Deck) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("scaffold: encode deck: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("scaffold: encode deck: %w", err)
	}
	return buf.Bytes(), nil
}
