package memory

import (
	"context"
	"testing"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestKV_LoadSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := New()

	_, err := kv.Load(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, kv.Save(ctx, "k", "v1"))
	require.NoError(t, kv.Save(ctx, "k", "v2"))

	got, err := kv.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", got)

	require.ErrorIs(t, kv.Save(ctx, "", "x"), storage.ErrEmptyKey)
	require.NoError(t, kv.Close())
}

func TestKV_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, New().Save(ctx, "k", "v"), context.Canceled)
}
