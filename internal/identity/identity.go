// Package identity derives content-addressed card identities.
//
// A card has no explicit ID field. Its identity is a pair of UUIDv5 values:
// one hashed from the card name, one hashed from the card content under the
// name hash as namespace. Editing either field therefore produces a new
// identity and the card starts over with no review history.
package identity

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/memyaml/internal/models"
)

// Identity identifies a card across re-reads of the deck files.
type Identity struct {
	Name    uuid.UUID
	Content uuid.UUID
}

// Of returns the identity of a card.
func Of(c models.Card) Identity {
	return Compute(c.Name, c.Content)
}

// Compute returns the identity of a (name, content) pair.
func Compute(name, content string) Identity {
	n := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
	return Identity{
		Name:    n,
		Content: uuid.NewSHA1(n, []byte(content)),
	}
}

// Compare orders identities by name hash, then content hash.
func (id Identity) Compare(other Identity) int {
	if c := bytes.Compare(id.Name[:], other.Name[:]); c != 0 {
		return c
	}
	return bytes.Compare(id.Content[:], other.Content[:])
}

// Less reports whether id sorts before other.
func (id Identity) Less(other Identity) bool {
	return id.Compare(other) < 0
}

// String returns "<name-uuid>:<content-uuid>".
func (id Identity) String() string {
	return id.Name.String() + ":" + id.Content.String()
}

// Parse reads the form produced by String.
func Parse(s string) (Identity, error) {
	name, content, ok := strings.Cut(s, ":")
	if !ok {
		return Identity{}, fmt.Errorf("identity: missing separator in %q", s)
	}
	n, err := uuid.Parse(name)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: name: %w", err)
	}
	c, err := uuid.Parse(content)
	if err != nil {
		return Identity{}, fmt.Errorf("identity: content: %w", err)
	}
	return Identity{Name: n, Content: c}, nil
}
