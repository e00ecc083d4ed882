package fsm

import (
	"testing"

	"github.com/driftcommittee/node/feed"
	"github.com/stretchr/testify/require"
)

// countingState advances to terminal once it has delivered n "ping" messages.
type countingState struct {
	got  int
	want int
}

func (s *countingState) String() string { return "counting" }

func (s *countingState) Initialize() []string { return []string{"ping"} }

func (s *countingState) Deliver(m string) DeliveryStatus[string] {
	if m != "ping" {
		return Unexpected[string](m)
	}
	s.got++
	return Delivered[string]()
}

func (s *countingState) Advance() (Transition[string], error) {
	if s.got >= s.want {
		return TerminalTransition[string]("done"), nil
	}
	return Same[string](), nil
}

func TestStateMachineRunsToTerminal(t *testing.T) {
	in := make(chan feed.MessageWrapper[string], 4)
	out := make(chan feed.MessageWrapper[string], 4)
	f := feed.New[string](in, "s1")

	for i := 0; i < 2; i++ {
		in <- feed.MessageWrapper[string]{SessionID: "s1", Message: "ping"}
	}

	sm := New[string](&countingState{want: 2}, "s1", f, out, "fsm:test")
	result, err := sm.Run()
	require.NoError(t, err)
	require.Equal(t, "done", result)

	// the state's own Initialize emission is observed on the output channel.
	emitted := <-out
	require.Equal(t, "s1", emitted.SessionID)
	require.Equal(t, "ping", emitted.Message)
}

// unexpectedThenOK delays the first message and accepts the second kind.
type unexpectedThenOK struct {
	deliveredGood bool
}

func (s *unexpectedThenOK) String() string { return "unexpected-then-ok" }
func (s *unexpectedThenOK) Initialize() []string { return nil }

func (s *unexpectedThenOK) Deliver(m string) DeliveryStatus[string] {
	if m == "good" {
		s.deliveredGood = true
		return Delivered[string]()
	}
	return Unexpected[string](m)
}

func (s *unexpectedThenOK) Advance() (Transition[string], error) {
	if s.deliveredGood {
		return TerminalTransition[string]("ok"), nil
	}
	return Same[string](), nil
}

func TestStateMachineDelaysUnexpectedMessages(t *testing.T) {
	in := make(chan feed.MessageWrapper[string], 4)
	out := make(chan feed.MessageWrapper[string], 4)
	f := feed.New[string](in, "s1")

	in <- feed.MessageWrapper[string]{SessionID: "s1", Message: "bad"}
	in <- feed.MessageWrapper[string]{SessionID: "s1", Message: "good"}

	sm := New[string](&unexpectedThenOK{}, "s1", f, out, "fsm:test")
	result, err := sm.Run()
	require.NoError(t, err)
	require.Equal(t, "ok", result)
}
