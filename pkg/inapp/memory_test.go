package inapp_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/inapp"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create requires id and user", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		err := store.Create(ctx, inapp.Message{UserID: "u1"})
		require.ErrorIs(t, err, inapp.ErrInvalidMessage)
		err = store.Create(ctx, inapp.Message{ID: "n1"})
		require.ErrorIs(t, err, inapp.ErrInvalidMessage)
	})

	t.Run("list is newest first", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		base := time.Now()
		for i, id := range []string{"n1", "n2", "n3"} {
			require.NoError(t, store.Create(ctx, inapp.Message{
				ID:        id,
				UserID:    "u1",
				Title:     "t-" + id,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		msgs, err := store.List(ctx, "u1", inapp.ListOptions{})
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "n3", msgs[0].ID)
		assert.Equal(t, "n1", msgs[2].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		base := time.Now()
		for i := range 5 {
			require.NoError(t, store.Create(ctx, inapp.Message{
				ID:        string(rune('a' + i)),
				UserID:    "u1",
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}))
		}

		msgs, err := store.List(ctx, "u1", inapp.ListOptions{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "d", msgs[0].ID)
		assert.Equal(t, "c", msgs[1].ID)

		msgs, err = store.List(ctx, "u1", inapp.ListOptions{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("mark read and unread count", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		for _, id := range []string{"n1", "n2", "n3"} {
			require.NoError(t, store.Create(ctx, inapp.Message{ID: id, UserID: "u1"}))
		}

		count, err := store.CountUnread(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.NoError(t, store.MarkRead(ctx, "u1", "n1", "n3"))

		count, err = store.CountUnread(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		unread, err := store.List(ctx, "u1", inapp.ListOptions{OnlyUnread: true})
		require.NoError(t, err)
		require.Len(t, unread, 1)
		assert.Equal(t, "n2", unread[0].ID)
		assert.Nil(t, unread[0].ReadAt)
	})

	t.Run("mark all read", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		for _, id := range []string{"n1", "n2"} {
			require.NoError(t, store.Create(ctx, inapp.Message{ID: id, UserID: "u1"}))
		}

		require.NoError(t, store.MarkAllRead(ctx, "u1"))

		count, err := store.CountUnread(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		for _, id := range []string{"n1", "n2"} {
			require.NoError(t, store.Create(ctx, inapp.Message{ID: id, UserID: "u1"}))
		}

		require.NoError(t, store.Delete(ctx, "u1", "n1"))

		msgs, err := store.List(ctx, "u1", inapp.ListOptions{})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "n2", msgs[0].ID)
	})

	t.Run("users are isolated", func(t *testing.T) {
		t.Parallel()

		store := inapp.NewMemoryStore()
		require.NoError(t, store.Create(ctx, inapp.Message{ID: "n1", UserID: "u1"}))
		require.NoError(t, store.Create(ctx, inapp.Message{ID: "n2", UserID: "u2"}))

		msgs, err := store.List(ctx, "u1", inapp.ListOptions{})
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "n1", msgs[0].ID)
	})
}
