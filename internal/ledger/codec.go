package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/memyaml/internal/identity"
)

// ErrCorrupt is returned when a ledger file cannot be decoded. A corrupt
// ledger is never replaced silently.
var ErrCorrupt = errors.New("ledger: corrupt ledger file")

// timeLayout is a naive UTC timestamp, the format older ledger files use.
const timeLayout = "2006-01-02T15:04:05.999999999"

type entryJSON struct {
	Name         uuid.UUID `json:"name"`
	Content      uuid.UUID `json:"content"`
	LastReviewed *string   `json:"last_reviewed,omitempty"`
	Interval     *float64  `json:"interval,omitempty"`
	Stability    *float64  `json:"stability,omitempty"`
	Difficulty   *float64  `json:"difficulty,omitempty"`
	Ignored      bool      `json:"ignored"`
}

// MarshalJSON writes the entry with its memory state flattened into it.
func (e Entry) MarshalJSON() ([]byte, error) {
	j := entryJSON{
		Name:    e.ID.Name,
		Content: e.ID.Content,
		Ignored: e.Ignored,
	}
	if s := e.State; s != nil {
		ts := s.LastReviewed.UTC().Format(timeLayout)
		interval, stability, difficulty := s.Interval, s.Stability, s.Difficulty
		j.LastReviewed = &ts
		j.Interval = &interval
		j.Stability = &stability
		j.Difficulty = &difficulty
	}
	return json.Marshal(j)
}

// UnmarshalJSON reads an entry. The scheduling fields must be all present or
// all absent.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var j entryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Name == uuid.Nil || j.Content == uuid.Nil {
		return errors.New("entry: missing name or content hash")
	}
	out := Entry{
		ID:      identity.Identity{Name: j.Name, Content: j.Content},
		Ignored: j.Ignored,
	}
	present := 0
	for _, ok := range []bool{j.LastReviewed != nil, j.Interval != nil, j.Stability != nil, j.Difficulty != nil} {
		if ok {
			present++
		}
	}
	switch present {
	case 0:
	case 4:
		ts, err := parseTime(*j.LastReviewed)
		if err != nil {
			return err
		}
		out.State = &MemoryState{
			LastReviewed: ts,
			Interval:     *j.Interval,
			Stability:    *j.Stability,
			Difficulty:   *j.Difficulty,
		}
	default:
		return fmt.Errorf("entry %s: partial memory state", out.ID)
	}
	*e = out
	return nil
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.ParseInLocation(timeLayout, s, time.UTC); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("last_reviewed %q: %w", s, err)
	}
	return ts.UTC(), nil
}

// Encode renders entries as the pretty-printed JSON ledger file.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ledger: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a ledger file. An empty file is an empty ledger.
func Decode(data []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return entries, nil
}
