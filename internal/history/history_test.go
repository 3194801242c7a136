package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/memyaml/internal/identity"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "memyaml-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM reviews`).Scan(&count); err != nil {
		t.Fatalf("reviews table missing: %v", err)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	id := identity.Compute("こんにちわ", "Hello")
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := db.Record(ctx, Review{Card: id, Title: "こんにちわ", Outcome: "Good", Interval: 2.5, Stability: 2.5, Difficulty: 5.1, ReviewedAt: at}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := db.Record(ctx, Review{Kind: KindIgnore, Card: id, Title: "こんにちわ", ReviewedAt: at.Add(time.Minute)}); err != nil {
		t.Fatalf("Record ignore: %v", err)
	}

	got, err := db.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Kind != KindIgnore || got[1].Kind != KindReview {
		t.Errorf("kinds = %s, %s; want newest first", got[0].Kind, got[1].Kind)
	}
	r := got[1]
	if r.Card != id || r.Title != "こんにちわ" || r.Outcome != "Good" || r.Interval != 2.5 {
		t.Errorf("row = %+v", r)
	}
	if !r.ReviewedAt.Equal(at) {
		t.Errorf("reviewed_at = %v, want %v", r.ReviewedAt, at)
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	id := identity.Compute("q", "a")
	day := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	for i, o := range []string{"Good", "Good", "Again", "Easy"} {
		at := day.Add(time.Duration(i-2) * time.Hour) // two before midnight, two after
		if err := db.Record(ctx, Review{Card: id, Outcome: o, ReviewedAt: at}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	_ = db.Record(ctx, Review{Kind: KindIgnore, Card: id, ReviewedAt: day})

	st, err := db.Stats(ctx, day)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Reviews != 4 {
		t.Errorf("reviews = %d, want 4", st.Reviews)
	}
	if st.ReviewsSince != 2 {
		t.Errorf("reviews since = %d, want 2", st.ReviewsSince)
	}
	if st.Ignores != 1 {
		t.Errorf("ignores = %d, want 1", st.Ignores)
	}
	if st.ByOutcome["Good"] != 2 || st.ByOutcome["Again"] != 1 || st.ByOutcome["Easy"] != 1 {
		t.Errorf("by outcome = %v", st.ByOutcome)
	}
	if st.LastReviewedAt == nil || !st.LastReviewedAt.Equal(day.Add(time.Hour)) {
		t.Errorf("last reviewed = %v, want %v", st.LastReviewedAt, day.Add(time.Hour))
	}
}

func TestStats_Empty(t *testing.T) {
	db := testDB(t)
	st, err := db.Stats(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Reviews != 0 || st.LastReviewedAt != nil {
		t.Errorf("stats = %+v, want empty", st)
	}
}
