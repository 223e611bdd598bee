package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_DecideLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.AddPending(ctx, testRequest(42)))

	// Upsert keeps a single pending row per user
	updated := testRequest(42)
	updated.Username = "renamed"
	require.NoError(t, store.AddPending(ctx, updated))

	pending, err := store.GetPending(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "renamed", pending.Username)

	req, acted, err := store.Approve(ctx, 42)
	require.NoError(t, err)
	assert.True(t, acted)
	assert.Equal(t, int64(42), req.UserID)

	approved, err := store.IsApproved(ctx, 42)
	require.NoError(t, err)
	assert.True(t, approved)

	// Decided request is gone: further decisions are no-ops
	_, acted, err = store.Approve(ctx, 42)
	require.NoError(t, err)
	assert.False(t, acted)

	_, acted, err = store.Reject(ctx, 42)
	require.NoError(t, err)
	assert.False(t, acted)
}

func TestSQLiteStore_RejectLeavesNoRights(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.AddPending(ctx, testRequest(9)))

	_, acted, err := store.Reject(ctx, 9)
	require.NoError(t, err)
	assert.True(t, acted)

	approved, err := store.IsApproved(ctx, 9)
	require.NoError(t, err)
	assert.False(t, approved)

	pending, err := store.GetPending(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, pending)
}
