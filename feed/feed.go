// Package feed implements the per-session inbound message queue that sits
// in front of every FSM instance: it filters by session id and lets the FSM
// delay messages it isn't ready for, replaying them in order the next time
// it asks.
package feed

import (
	"errors"
	"fmt"

	"github.com/driftcommittee/node/log"
)

// ErrChannelClosed is returned by Next when the underlying channel has been
// closed prematurely; more messages were still expected.
var ErrChannelClosed = errors.New("feed: channel closed prematurely")

// ErrNoNewMessages is returned by Next when a message arrived on the
// channel but belonged to a different session; the caller should retry.
var ErrNoNewMessages = errors.New("feed: no new messages")

// MessageWrapper pairs a message with the session id of the FSM instance
// that produced (or should consume) it.
type MessageWrapper[M any] struct {
	SessionID string
	Message   M
}

func (w MessageWrapper[M]) String() string {
	id := w.SessionID
	if len(id) > 10 {
		id = id[:10]
	}
	return fmt.Sprintf("broadcasting session_id %s: %v", id, w.Message)
}

// Feed combines a small FIFO replay queue with a channel of inbound
// MessageWrapper values, filtered to a single session id.
type Feed[M any] struct {
	queue    []M
	receiver <-chan MessageWrapper[M]
	filterID string
	delayed  []M
	logger   log.Logger
}

// New builds a Feed reading from receiver, delivering only messages whose
// session id equals filterID.
func New[M any](receiver <-chan MessageWrapper[M], filterID string) *Feed[M] {
	return &Feed[M]{
		receiver: receiver,
		filterID: filterID,
		logger:   log.DefaultLogger().Named("feed").With("session", truncate(filterID, 10)),
	}
}

// Next returns the next message for this feed's session, draining the
// replay queue before reading the channel. ErrNoNewMessages is returned
// (not delivered) when a channel message belongs to another session;
// ErrChannelClosed when the channel is closed.
func (f *Feed[M]) Next() (M, error) {
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		return m, nil
	}

	wrapped, ok := <-f.receiver
	if !ok {
		var zero M
		return zero, ErrChannelClosed
	}
	if wrapped.SessionID != f.filterID {
		f.logger.Debugw("dropping message for another session", "other_session", truncate(wrapped.SessionID, 10))
		var zero M
		return zero, ErrNoNewMessages
	}
	return wrapped.Message, nil
}

// Delay pushes message onto the delayed buffer, to be replayed on the next
// Refresh.
func (f *Feed[M]) Delay(message M) {
	f.logger.Debugw("delaying message", "delayed_count", len(f.delayed)+1)
	f.delayed = append(f.delayed, message)
}

// Refresh moves the delayed buffer onto the front of the replay queue in
// reverse push order, so the earliest-delayed message is drawn first.
func (f *Feed[M]) Refresh() {
	if len(f.delayed) > 0 {
		f.logger.Debugw("replaying delayed messages", "count", len(f.delayed))
	}
	for i := len(f.delayed) - 1; i >= 0; i-- {
		f.queue = append([]M{f.delayed[i]}, f.queue...)
	}
	f.delayed = f.delayed[:0]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
