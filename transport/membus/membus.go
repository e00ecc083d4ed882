// Package membus implements the transport.Publisher/Listener/MessageFetcher
// interfaces in memory: tag-keyed fan-out channels, used by the FSM relays
// in tests and single-process demos, and the default for local CLI
// commands that don't configure a real bulletin board.
package membus

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/driftcommittee/node/log"
	"github.com/driftcommittee/node/transport"
)

var logger = log.DefaultLogger().Named("transport")

type entry struct {
	messageId string
	data      []byte
}

// Bus is an in-memory, process-wide bulletin board: publishing under a
// tag fans the message out to every active listener on that tag, and
// every published message stays retrievable by id for Fetch.
type Bus struct {
	mu        sync.Mutex
	listeners map[string][]chan transport.Message
	byId      map[string]entry
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		listeners: make(map[string][]chan transport.Message),
		byId:      make(map[string]entry),
	}
}

// Publish fans data out to every current listener on tag and records it
// under a freshly generated message id.
func (b *Bus) Publish(_ context.Context, data []byte, tag string) (string, error) {
	id := uuid.NewString()

	b.mu.Lock()
	b.byId[id] = entry{messageId: id, data: data}
	subscribers := append([]chan transport.Message(nil), b.listeners[tag]...)
	b.mu.Unlock()

	msg := transport.Message{Data: data, MessageId: id}
	for _, ch := range subscribers {
		ch <- msg
	}
	logger.Debugw("published message", "tag", tag, "message_id", id, "subscribers", len(subscribers))
	return id, nil
}

// Listen returns a channel fed by every future Publish call on tag. The
// channel is buffered to absorb bursts; the caller should drain it
// promptly.
func (b *Bus) Listen(ctx context.Context, tag string) (<-chan transport.Message, error) {
	ch := make(chan transport.Message, 256)

	b.mu.Lock()
	b.listeners[tag] = append(b.listeners[tag], ch)
	b.mu.Unlock()

	logger.Debugw("listener subscribed", "tag", tag)

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.listeners[tag]
		for i, c := range subs {
			if c == ch {
				b.listeners[tag] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
		logger.Debugw("listener unsubscribed", "tag", tag)
	}()

	return ch, nil
}

// Fetch looks a previously-published message up by id.
func (b *Bus) Fetch(_ context.Context, messageId string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.byId[messageId]
	if !ok {
		logger.Warnw("fetch found no message", "message_id", messageId)
		return nil, transport.ErrNotFound
	}
	return e.data, nil
}
