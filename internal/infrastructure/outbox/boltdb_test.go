package outbox_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/simhub/backend/internal/infrastructure/outbox"
)

func newTestStore(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnqueueOrdersOldestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	assert.NoError(t, store.Enqueue(outbox.Message{
		ID: "late", OrderCode: "OD0000000002", EnqueuedAt: base.Add(time.Minute),
	}))
	assert.NoError(t, store.Enqueue(outbox.Message{
		ID: "early", OrderCode: "OD0000000001", EnqueuedAt: base,
	}))

	batch, err := store.GetBatch(10)
	assert.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.Equal(t, "early", batch[0].ID)
	assert.Equal(t, "late", batch[1].ID)
}

func TestRequeueNeverDropsTheMessage(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	assert.NoError(t, store.Enqueue(outbox.Message{ID: "failing", EnqueuedAt: base}))
	assert.NoError(t, store.Enqueue(outbox.Message{ID: "waiting", EnqueuedAt: base.Add(time.Minute)}))

	batch, err := store.GetBatch(10)
	assert.NoError(t, err)
	assert.Equal(t, "failing", batch[0].ID)

	failed := batch[0]
	failed.Attempts++
	assert.NoError(t, store.Requeue(failed))

	t.Run("queue size is unchanged", func(t *testing.T) {
		size, err := store.Size()
		assert.NoError(t, err)
		assert.Equal(t, 2, size)
	})

	t.Run("message moved to the back with its attempt count", func(t *testing.T) {
		batch, err := store.GetBatch(10)
		assert.NoError(t, err)
		assert.Len(t, batch, 2)
		assert.Equal(t, "waiting", batch[0].ID)
		assert.Equal(t, "failing", batch[1].ID)
		assert.Equal(t, 1, batch[1].Attempts)
	})
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Enqueue(outbox.Message{ID: "done"}))
	batch, err := store.GetBatch(1)
	assert.NoError(t, err)
	assert.Len(t, batch, 1)

	assert.NoError(t, store.Remove(batch[0]))

	size, err := store.Size()
	assert.NoError(t, err)
	assert.Zero(t, size)
}
