// Package journal persists purchase submissions and operator decisions to
// Postgres for reporting. The bot runs fine without it; a nil *Repo is never
// handed to callers — the app simply wires no journal when the database is
// not configured.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repo is a thin sqlx repository over the purchases table.
type Repo struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// RecordSubmission inserts a pending purchase row.
func (r *Repo) RecordSubmission(ctx context.Context, userID int64, plan string, amount int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO purchases (user_id, plan, amount, status, submitted_at)
		 VALUES ($1, $2, $3, 'pending', now())`,
		userID, plan, amount,
	)
	if err != nil {
		return fmt.Errorf("journal: record submission: %w", err)
	}
	return nil
}

// RecordDecision settles the user's most recent pending row.
func (r *Repo) RecordDecision(ctx context.Context, userID int64, decision string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET status = $2, decided_at = now()
		 WHERE id = (
		   SELECT id FROM purchases
		   WHERE user_id = $1 AND status = 'pending'
		   ORDER BY submitted_at DESC LIMIT 1
		 )`,
		userID, decision,
	)
	if err != nil {
		return fmt.Errorf("journal: record decision: %w", err)
	}
	return nil
}

// PendingRow is one undecided submission.
type PendingRow struct {
	UserID      int64     `db:"user_id"`
	Plan        string    `db:"plan"`
	Amount      int       `db:"amount"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// Pending lists submissions still waiting for a decision, oldest first.
func (r *Repo) Pending(ctx context.Context) ([]PendingRow, error) {
	var rows []PendingRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id, plan, amount, submitted_at
		 FROM purchases WHERE status = 'pending'
		 ORDER BY submitted_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: pending: %w", err)
	}
	return rows, nil
}

// Stats aggregates submissions by outcome.
type Stats struct {
	Pending  int `db:"pending"`
	Approved int `db:"approved"`
	Rejected int `db:"rejected"`
	Revenue  int `db:"revenue"`
}

// Stats returns lifetime counters, with revenue summed over approved rows.
func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.db.GetContext(ctx, &s,
		`SELECT
		   count(*) FILTER (WHERE status = 'pending')  AS pending,
		   count(*) FILTER (WHERE status = 'approved') AS approved,
		   count(*) FILTER (WHERE status = 'rejected') AS rejected,
		   coalesce(sum(amount) FILTER (WHERE status = 'approved'), 0) AS revenue
		 FROM purchases`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("journal: stats: %w", err)
	}
	return s, nil
}
