// Package models defines the deck and card records read from a deck directory.
package models

// Card is one flashcard as written in a card file.
type Card struct {
	Name    string   `yaml:"name" json:"name"`
	Glance  string   `yaml:"glance,omitempty" json:"glance,omitempty"`
	Content string   `yaml:"content" json:"content"`
	Tags    []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Algorithm selects the memory model used to schedule a deck.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmFSRS Algorithm = "fsrs"
)

// DefaultRetention is the target recall probability used when a deck does
// not set fsrs_option.retention.
const DefaultRetention = 0.75

// Deck is the deck metadata file (deck.yaml, deck.yml or deck.json).
type Deck struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	CardFiles   []string    `yaml:"card_files" json:"card_files"`
	Algorithm   Algorithm   `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	FSRSOption  *FSRSOption `yaml:"fsrs_option,omitempty" json:"fsrs_option,omitempty"`
}

// FSRSOption holds per-deck scheduling options. A nil Retention means the
// field was absent.
type FSRSOption struct {
	Retention *float64 `yaml:"retention,omitempty" json:"retention,omitempty"`
}

// Retention returns the deck's target retention, falling back to
// DefaultRetention when none is set.
func (d *Deck) Retention() float64 {
	if d.FSRSOption == nil || d.FSRSOption.Retention == nil {
		return DefaultRetention
	}
	return *d.FSRSOption.Retention
}
