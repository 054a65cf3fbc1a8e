package schedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/schedule"
)

func TestMemoryQueueUpsertDedup(t *testing.T) {
	t.Parallel()

	q := schedule.NewMemoryQueue()
	ctx := context.Background()
	boundary := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)

	first := schedule.Entry{
		UserID:       "u1",
		Type:         "post_liked",
		Title:        "first",
		Kind:         schedule.KindDigest,
		Frequency:    schedule.FrequencyDaily,
		ScheduledFor: boundary,
	}
	require.NoError(t, q.Upsert(ctx, first))

	second := first
	second.Title = "second"
	require.NoError(t, q.Upsert(ctx, second))

	entries := q.Entries()
	require.Len(t, entries, 1, "same dedup key overwrites")
	assert.Equal(t, "second", entries[0].Title)
	assert.False(t, entries[0].CreatedAt.IsZero())

	// A different boundary occupies its own slot.
	third := first
	third.ScheduledFor = boundary.Add(24 * time.Hour)
	require.NoError(t, q.Upsert(ctx, third))
	assert.Len(t, q.Entries(), 2)
}

type fakeExecer struct {
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestPGQueueUpsert(t *testing.T) {
	t.Parallel()

	db := &fakeExecer{}
	q := schedule.NewPGQueue(db)

	entry := schedule.Entry{
		UserID:       "u1",
		Type:         "system_update",
		Title:        "Maintenance",
		Body:         "Scheduled downtime",
		Priority:     notification.PriorityNormal,
		Kind:         schedule.KindQuietHours,
		ScheduledFor: time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, q.Upsert(context.Background(), entry))

	assert.Contains(t, db.sql, "ON CONFLICT (user_id, type, scheduled_for)")
	require.Len(t, db.args, 10)
	assert.Equal(t, "u1", db.args[0])
	assert.Equal(t, "quiet_hours", db.args[6])
}

func TestPGQueueUpsertError(t *testing.T) {
	t.Parallel()

	db := &fakeExecer{err: errors.New("connection refused")}
	q := schedule.NewPGQueue(db)

	err := q.Upsert(context.Background(), schedule.Entry{UserID: "u1", Type: "x"})
	assert.ErrorIs(t, err, schedule.ErrQueueWrite)
}
