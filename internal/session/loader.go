package session

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/memyaml/internal/apperr"
	"github.com/starford/memyaml/internal/identity"
	"github.com/starford/memyaml/internal/models"
	"github.com/starford/memyaml/internal/parser"
	"github.com/starford/memyaml/internal/storage"
)

// DeckFileNames are the accepted deck metadata file names, in lookup order.
// Matching is case-insensitive.
var DeckFileNames = []string{"deck.yaml", "deck.yml", "deck.json"}

// FindDeckFile returns the path of the deck metadata file in the deck root.
func FindDeckFile(store storage.Provider) (string, error) {
	files, err := store.List(".")
	if err != nil {
		return "", fmt.Errorf("session: find deck file: %w", err)
	}
	for _, want := range DeckFileNames {
		for _, f := range files {
			if strings.EqualFold(path.Base(f.Path), want) {
				return f.Path, nil
			}
		}
	}
	return "", fmt.Errorf("session: %s: %w", store.Root(), apperr.ErrDeckNotFound)
}

// deckSource is the parsed content of a deck directory.
type deckSource struct {
	file  string
	deck  *models.Deck
	cards []models.Card
}

func loadSource(store storage.Provider) (*deckSource, error) {
	file, err := FindDeckFile(store)
	if err != nil {
		return nil, err
	}
	data, err := store.Read(file)
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", file, err)
	}
	deck, err := parser.ParseDeck(data)
	if err != nil {
		return nil, fmt.Errorf("session: %s: %w", file, err)
	}

	src := &deckSource{file: file, deck: deck}
	for _, cf := range deck.CardFiles {
		data, err := store.Read(cf)
		if err != nil {
			return nil, fmt.Errorf("session: read card file %s: %w", cf, err)
		}
		cards, err := parser.ParseCards(data)
		if err != nil {
			return nil, fmt.Errorf("session: %s: %w", cf, err)
		}
		src.cards = append(src.cards, cards...)
	}
	return src, nil
}

// cardMap indexes cards by identity, keeping the first of any duplicates.
func cardMap(cards []models.Card) map[identity.Identity]models.Card {
	m := make(map[identity.Identity]models.Card, len(cards))
	for _, c := range cards {
		id := identity.Of(c)
		if _, dup := m[id]; !dup {
			m[id] = c
		}
	}
	return m
}
