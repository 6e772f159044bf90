package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/chainpilot/chainpilot/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "conv-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePutGet(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	session := &models.Session{
		UserID:    "user-1",
		LastPlan:  testutil.CreateTestPlan(),
		UpdatedAt: time.Now().UTC(),
	}

	require.NoError(t, store.Put(ctx, "conv-1", session))

	got, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestMemoryStoreReplacesWholeRecord(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "conv-1", &models.Session{
		UserID:          "user-1",
		LastWorkflowID:  "wf-1",
		LastExecutionID: "exec-1",
	}))
	require.NoError(t, store.Put(ctx, "conv-1", &models.Session{UserID: "user-1"}))

	got, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, got.LastWorkflowID, "a put replaces the record, it does not merge")
	assert.Empty(t, got.LastExecutionID)
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "conv-1", &models.Session{UserID: "user-1"}))

	first, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)

	first.LastWorkflowID = "mutated"

	second, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, second.LastWorkflowID, "callers must not mutate stored state through the returned pointer")
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				_ = store.Put(ctx, "conv-1", &models.Session{UserID: "user-1"})
				_, _ = store.Get(ctx, "conv-1")
			}
		}()
	}

	wg.Wait()

	require.NoError(t, store.Close())
}
