package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Operator   string    `json:"operator"`
	Producer   string    `json:"producer"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Repo struct{ DB *pgxpool.Pool }

// Insert stores e once; a replayed event id is a no-op reported as false.
func (r *Repo) Insert(ctx context.Context, e Entry) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO recheck_audit(event_id, user_id, operator, producer, occurred_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.UserID, e.Operator, e.Producer, e.OccurredAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// ListByUser returns the newest entries first.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `SELECT event_id, user_id, operator, producer, occurred_at
	                              FROM recheck_audit WHERE user_id=$1
	                              ORDER BY occurred_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EventID, &e.UserID, &e.Operator, &e.Producer, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
