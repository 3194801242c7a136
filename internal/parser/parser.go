// Package parser decodes deck metadata and card files.
package parser

import (
	"bytes"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/memyaml/internal/models"
)

// ParseDeck decodes deck metadata. JSON input is accepted because it is
// valid YAML.
func ParseDeck(data []byte) (*models.Deck, error) {
	var deck models.Deck
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("parser: deck: %w", err)
	}
	if deck.Algorithm == "" {
		deck.Algorithm = models.AlgorithmFSRS
	}
	if err := validateDeck(&deck); err != nil {
		return nil, fmt.Errorf("parser: deck: %w", err)
	}
	return &deck, nil
}

// ParseCards decodes a card file: a YAML list of cards. An empty file is an
// empty list.
func ParseCards(data []byte) ([]models.Card, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var cards []models.Card
	if err := yaml.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parser: cards: %w", err)
	}
	for i := range cards {
		if err := validateCard(&cards[i]); err != nil {
			return nil, fmt.Errorf("parser: card %d: %w", i, err)
		}
	}
	return cards, nil
}

func validateDeck(d *models.Deck) error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.CardFiles, validation.NotNil, validation.Each(validation.Required)),
		validation.Field(&d.Algorithm, validation.In(models.AlgorithmFSRS)),
	); err != nil {
		return err
	}
	if d.FSRSOption == nil {
		return nil
	}
	opt := d.FSRSOption
	// ozzo's threshold rules treat 0 as empty and skip it, so the open
	// interval is checked by hand. A nil retention means the default.
	return validation.ValidateStruct(opt,
		validation.Field(&opt.Retention, validation.By(openUnitInterval)),
	)
}

var errRetentionRange = validation.NewError("validation_retention_range", "must be greater than 0 and less than 1")

func openUnitInterval(value any) error {
	r, ok := value.(*float64)
	if !ok || r == nil {
		return nil
	}
	if !(*r > 0 && *r < 1) {
		return errRetentionRange
	}
	return nil
}

func validateCard(c *models.Card) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Content, validation.Required),
	)
}
