package fileblob

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftcommittee/node/transport"
)

func TestPutGetDelete(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "blobs"))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k1", []byte("hi")))
	data, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), data)

	require.NoError(t, store.Delete(ctx, "k1"))
	_, err = store.Get(ctx, "k1")
	require.ErrorIs(t, err, transport.ErrNotFound)
}

func TestHealthCheck(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, store.HealthCheck(context.Background()))
}
