package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the slice of pgxpool.Pool the queue needs. Declared locally so
// tests can substitute a fake without a database.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const upsertEntrySQL = `
INSERT INTO notification_schedule
    (user_id, type, title, body, data, priority, kind, frequency, scheduled_for, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id, type, scheduled_for) DO UPDATE SET
    title      = EXCLUDED.title,
    body       = EXCLUDED.body,
    data       = EXCLUDED.data,
    priority   = EXCLUDED.priority,
    kind       = EXCLUDED.kind,
    frequency  = EXCLUDED.frequency,
    created_at = EXCLUDED.created_at`

// PGQueue persists deferred entries in Postgres with an upsert keyed by
// (user_id, type, scheduled_for). Writes use last-write-wins semantics; no
// transaction is needed for a single-row upsert.
type PGQueue struct {
	db execer
}

// NewPGQueue creates a queue backed by the given pgx pool (or anything
// exposing its Exec method).
func NewPGQueue(db execer) *PGQueue {
	return &PGQueue{db: db}
}

// Upsert stores the entry, overwriting a previous entry for the same slot.
func (q *PGQueue) Upsert(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		return errors.Join(ErrQueueWrite, err)
	}

	if _, err := q.db.Exec(ctx, upsertEntrySQL,
		e.UserID, e.Type, e.Title, e.Body, data,
		string(e.Priority), string(e.Kind), string(e.Frequency),
		e.ScheduledFor.UTC(), e.CreatedAt.UTC(),
	); err != nil {
		return errors.Join(ErrQueueWrite, err)
	}
	return nil
}
