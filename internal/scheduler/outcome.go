package scheduler

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/memyaml/internal/fsrs"
)

// ErrInvalidOutcome is returned when an outcome name or key is not recognised.
var ErrInvalidOutcome = errors.New("scheduler: invalid outcome")

// Outcome is the user's self-assessed recall quality for one review.
type Outcome int

const (
	Again Outcome = iota + 1 // not recalled
	Hard
	Good
	Easy
)

var (
	outcomeNames  = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}
	outcomeByName = map[string]Outcome{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
	// Terminal keys, left to right on a QWERTY home row.
	outcomeByKey = map[string]Outcome{
		"a": Easy,
		"s": Good,
		"d": Hard,
		"f": Again,
	}
)

var (
	_ fmt.Stringer             = Outcome(0)
	_ json.Marshaler           = Outcome(0)
	_ json.Unmarshaler         = (*Outcome)(nil)
	_ encoding.TextMarshaler   = Outcome(0)
	_ encoding.TextUnmarshaler = (*Outcome)(nil)
)

func (o Outcome) String() string {
	if o.IsValid() {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// IsValid reports whether o is one of Again, Hard, Good, Easy.
func (o Outcome) IsValid() bool {
	return o >= Again && o <= Easy
}

// Grade maps the outcome onto the prediction model's grade scale.
func (o Outcome) Grade() fsrs.Grade {
	switch o {
	case Again:
		return fsrs.Again
	case Hard:
		return fsrs.Hard
	case Good:
		return fsrs.Good
	case Easy:
		return fsrs.Easy
	}
	return 0
}

// ParseOutcome accepts an outcome name in any case ("good", "Good").
func ParseOutcome(s string) (Outcome, error) {
	o, ok := outcomeByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	return o, nil
}

// OutcomeForKey maps a review-loop key (a, s, d, f) to its outcome.
func OutcomeForKey(key string) (Outcome, bool) {
	o, ok := outcomeByKey[key]
	return o, ok
}

func (o Outcome) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, int(o))
	}
	return []byte(outcomeNames[o]), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	v, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// MarshalJSON writes the outcome as its name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	text, err := o.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON expects a JSON string.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOutcome, data)
	}
	return o.UnmarshalText([]byte(s))
}
