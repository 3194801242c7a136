package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/memyaml/internal/identity"
)

// Record appends r to the log. A zero ReviewedAt is stamped with the current time.
func (db *DB) Record(ctx context.Context, r Review) error {
	if r.Kind == "" {
		r.Kind = KindReview
	}
	if r.ReviewedAt.IsZero() {
		r.ReviewedAt = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO reviews (kind, card_name, card_content, title, outcome, interval, stability, difficulty, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Kind, r.Card.Name.String(), r.Card.Content.String(), r.Title, r.Outcome,
		r.Interval, r.Stability, r.Difficulty, r.ReviewedAt.UTC())
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Stats counts the logged actions. ReviewsSince counts reviews at or after since.
func (db *DB) Stats(ctx context.Context, since time.Time) (Stats, error) {
	st := Stats{ByOutcome: map[string]int{}}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT outcome, count(*) FROM reviews WHERE kind = ? GROUP BY outcome`, KindReview)
	if err != nil {
		return st, fmt.Errorf("history: stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return st, fmt.Errorf("history: stats scan: %w", err)
		}
		st.ByOutcome[outcome] = n
		st.Reviews += n
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("history: stats: %w", err)
	}

	if err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM reviews WHERE kind = ? AND reviewed_at >= ?`, KindReview, since.UTC(),
	).Scan(&st.ReviewsSince); err != nil {
		return st, fmt.Errorf("history: stats since: %w", err)
	}
	if err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM reviews WHERE kind = ?`, KindIgnore,
	).Scan(&st.Ignores); err != nil {
		return st, fmt.Errorf("history: stats ignores: %w", err)
	}

	var last time.Time
	err = db.conn.QueryRowContext(ctx,
		`SELECT reviewed_at FROM reviews WHERE kind = ? ORDER BY reviewed_at DESC LIMIT 1`, KindReview,
	).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return st, fmt.Errorf("history: last review: %w", err)
	default:
		last = last.UTC()
		st.LastReviewedAt = &last
	}
	return st, nil
}

// Recent returns up to limit rows, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, card_name, card_content, title, outcome, interval, stability, difficulty, reviewed_at
		FROM reviews ORDER BY reviewed_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var (
			r             Review
			name, content string
		)
		if err := rows.Scan(&r.ID, &r.Kind, &name, &content, &r.Title, &r.Outcome,
			&r.Interval, &r.Stability, &r.Difficulty, &r.ReviewedAt); err != nil {
			return nil, fmt.Errorf("history: recent scan: %w", err)
		}
		if r.Card, err = parseIdentity(name, content); err != nil {
			return nil, fmt.Errorf("history: recent row %d: %w", r.ID, err)
		}
		r.ReviewedAt = r.ReviewedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseIdentity(name, content string) (identity.Identity, error) {
	n, err := uuid.Parse(name)
	if err != nil {
		return identity.Identity{}, err
	}
	c, err := uuid.Parse(content)
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{Name: n, Content: c}, nil
}
