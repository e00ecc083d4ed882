package membus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishFansOutToListeners(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Listen(ctx, "tag-a")
	require.NoError(t, err)

	id, err := bus.Publish(ctx, []byte("hello"), "tag-a")
	require.NoError(t, err)

	select {
	case msg := <-ch:
		require.Equal(t, []byte("hello"), msg.Data)
		require.Equal(t, id, msg.MessageId)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestFetchByMessageId(t *testing.T) {
	bus := New()
	ctx := context.Background()

	id, err := bus.Publish(ctx, []byte("payload"), "tag-b")
	require.NoError(t, err)

	data, err := bus.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	_, err = bus.Fetch(ctx, "unknown-id")
	require.Error(t, err)
}

func TestListenOnDifferentTagDoesNotReceive(t *testing.T) {
	bus := New()
	ctx := context.Background()

	ch, err := bus.Listen(ctx, "tag-x")
	require.NoError(t, err)

	_, err = bus.Publish(ctx, []byte("noise"), "tag-y")
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("unexpected message delivered to unrelated tag")
	case <-time.After(50 * time.Millisecond):
	}
}
