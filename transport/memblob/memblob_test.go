package memblob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftcommittee/node/transport"
)

func TestPutGetDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k1", []byte("hi")))
	data, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), data)

	require.NoError(t, store.Delete(ctx, "k1"))
	_, err = store.Get(ctx, "k1")
	require.ErrorIs(t, err, transport.ErrNotFound)
}

func TestHealthCheckAlwaysOk(t *testing.T) {
	require.NoError(t, New().HealthCheck(context.Background()))
}
