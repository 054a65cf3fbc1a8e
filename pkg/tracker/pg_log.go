package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const insertDeliverySQL = `
INSERT INTO notification_deliveries
    (notification_id, user_id, type, title, body, channels, status, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (notification_id) DO UPDATE SET
    channels    = EXCLUDED.channels,
    status      = EXCLUDED.status,
    recorded_at = EXCLUDED.recorded_at`

// PGLog writes delivery records to Postgres. One row per notification ID;
// re-recording the same notification overwrites the outcome (last write
// wins), which is acceptable for a non-safety-critical logging sink.
type PGLog struct {
	db execer
}

// NewPGLog creates a log backed by the given pgx pool.
func NewPGLog(db execer) *PGLog {
	return &PGLog{db: db}
}

// Record inserts the delivery record.
func (l *PGLog) Record(ctx context.Context, d Delivery) error {
	if d.RecordedAt.IsZero() {
		d.RecordedAt = time.Now()
	}

	channels, err := json.Marshal(d.Channels)
	if err != nil {
		return errors.Join(ErrLogWrite, err)
	}

	if _, err := l.db.Exec(ctx, insertDeliverySQL,
		d.NotificationID, d.UserID, d.Type, d.Title, d.Body,
		channels, string(d.Status), d.RecordedAt.UTC(),
	); err != nil {
		return errors.Join(ErrLogWrite, err)
	}
	return nil
}
