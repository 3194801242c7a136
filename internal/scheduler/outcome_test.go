package scheduler

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/starford/memyaml/internal/fsrs"
)

func TestParseOutcome(t *testing.T) {
	for in, want := range map[string]Outcome{"Good": Good, "easy": Easy, " HARD ": Hard, "again": Again} {
		got, err := ParseOutcome(in)
		if err != nil || got != want {
			t.Errorf("ParseOutcome(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseOutcome("perfect"); !errors.Is(err, ErrInvalidOutcome) {
		t.Errorf("expected ErrInvalidOutcome, got %v", err)
	}
}

func TestOutcomeForKey(t *testing.T) {
	for key, want := range map[string]Outcome{"a": Easy, "s": Good, "d": Hard, "f": Again} {
		if got, ok := OutcomeForKey(key); !ok || got != want {
			t.Errorf("key %q = %v, want %v", key, got, want)
		}
	}
	for _, key := range []string{"r", "q", "i", "A", ""} {
		if _, ok := OutcomeForKey(key); ok {
			t.Errorf("key %q should not map to an outcome", key)
		}
	}
}

func TestOutcomeJSON(t *testing.T) {
	var body struct {
		Outcome Outcome `json:"outcome"`
	}
	if err := json.Unmarshal([]byte(`{"outcome":"Easy"}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Outcome != Easy {
		t.Errorf("outcome = %v, want Easy", body.Outcome)
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"outcome":"Easy"}` {
		t.Errorf("marshal = %s", data)
	}

	if err := json.Unmarshal([]byte(`{"outcome":3}`), &body); !errors.Is(err, ErrInvalidOutcome) {
		t.Errorf("numeric outcome: expected ErrInvalidOutcome, got %v", err)
	}
	if _, err := json.Marshal(Outcome(0)); err == nil {
		t.Error("expected error marshalling the zero outcome")
	}
}

func TestOutcomeGrade(t *testing.T) {
	want := map[Outcome]fsrs.Grade{Again: fsrs.Again, Hard: fsrs.Hard, Good: fsrs.Good, Easy: fsrs.Easy}
	for o, g := range want {
		if o.Grade() != g {
			t.Errorf("%s.Grade() = %d, want %d", o, o.Grade(), g)
		}
	}
	if Outcome(7).String() != "Outcome(7)" {
		t.Errorf("String of invalid outcome = %q", Outcome(7).String())
	}
}
