// Package apperr holds the sentinel errors shared by the session, API and CLI layers.
package apperr

import "errors"

var (
	// ErrDeckNotFound means the directory has no deck.yaml, deck.yml or deck.json.
	ErrDeckNotFound = errors.New("deck metadata file not found")
	// ErrNoCardsDue means every card is either ignored or scheduled in the future.
	ErrNoCardsDue = errors.New("no cards due for review")
	// ErrUnknownCard means an identity is not in the session ledger.
	ErrUnknownCard = errors.New("unknown card")
	// ErrAlreadyExists is returned when scaffolding would overwrite a deck.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput covers malformed card ids and outcome names from callers.
	ErrInvalidInput = errors.New("invalid input")
)
