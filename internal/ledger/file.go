package ledger

import (
	"errors"
	"fmt"
	"os"

	"github.com/starford/memyaml/internal/storage"
)

// FileName is the ledger file inside the deck directory.
const FileName = "deck.lock"

// Load reads the ledger file. A missing file is an empty ledger, not an error.
func Load(store storage.Provider) ([]Entry, error) {
	data, err := store.Read(FileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: load: %w", err)
	}
	return Decode(data)
}

// Save replaces the ledger file with a snapshot of entries.
func Save(store storage.Provider, entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := store.Write(FileName, data); err != nil {
		return fmt.Errorf("ledger: save: %w", err)
	}
	return nil
}
