// Package fsm is the generic finite-state-machine runtime that drives every
// multi-party protocol instance (DKG, signing): initialize, feed messages
// one at a time, and query transition guards between deliveries.
package fsm

import (
	"fmt"

	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/log"
)

// DeliveryStatus is the outcome of delivering one message to a State.
type DeliveryStatus[M any] struct {
	kind      deliveryKind
	unexpect  M
	err       error
}

type deliveryKind int

const (
	delivered deliveryKind = iota
	unexpected
	deliveryError
)

// Delivered reports that the message was absorbed into the state.
func Delivered[M any]() DeliveryStatus[M] {
	return DeliveryStatus[M]{kind: delivered}
}

// Unexpected reports that the state could not use the message yet; the FSM
// runner delays it for replay after the next Refresh.
func Unexpected[M any](m M) DeliveryStatus[M] {
	return DeliveryStatus[M]{kind: unexpected, unexpect: m}
}

// DeliveryError reports a fatal error for the session.
func DeliveryError[M any](err error) DeliveryStatus[M] {
	return DeliveryStatus[M]{kind: deliveryError, err: err}
}

// StateMachineTypes bundles the message and terminal-state types shared by
// every state in one protocol's FSM.
type StateMachineTypes interface {
	// marker interface; implementations declare Message/TerminalStates via
	// the generic parameters of State/Transition.
}

// State is one node in a protocol's state graph.
type State[T any] interface {
	fmt.Stringer
	// Initialize returns messages to broadcast once, on entry to this state.
	Initialize() []T
	// Deliver consumes one inbound message.
	Deliver(message T) DeliveryStatus[T]
	// Advance evaluates the transition guards without consuming input.
	Advance() (Transition[T], error)
}

// TransitionKind discriminates Transition's variants.
type TransitionKind int

const (
	TransitionSame TransitionKind = iota
	TransitionNext
	TransitionTerminal
)

// Transition is the result of querying a state's Advance method.
type Transition[T any] struct {
	Kind     TransitionKind
	Next     State[T]
	Terminal any
}

// Same keeps the current state.
func Same[T any]() Transition[T] {
	return Transition[T]{Kind: TransitionSame}
}

// NextState moves the FSM to a new state.
func NextState[T any](s State[T]) Transition[T] {
	return Transition[T]{Kind: TransitionNext, Next: s}
}

// TerminalTransition ends the FSM run with the given terminal value.
func TerminalTransition[T any](terminal any) Transition[T] {
	return Transition[T]{Kind: TransitionTerminal, Terminal: terminal}
}

// StateMachine drives a sequence of State[T] values to a terminal state,
// relaying MessageWrapper[T] in and out over channels.
type StateMachine[T any] struct {
	sessionID string
	state     State[T]
	output    chan<- feed.MessageWrapper[T]
	input     *feed.Feed[T]
	logger    log.Logger
}

// New builds a StateMachine starting at initial, reading from input and
// writing to output, scoped to sessionID. loggerName identifies which
// protocol is driving this run (e.g. "fsm:dkg", "fsm:sign") so log output
// from concurrent DKG and signing sessions can be told apart.
func New[T any](initial State[T], sessionID string, input *feed.Feed[T], output chan<- feed.MessageWrapper[T], loggerName string) *StateMachine[T] {
	return &StateMachine[T]{
		sessionID: sessionID,
		state:     initial,
		output:    output,
		input:     input,
		logger:    log.DefaultLogger().Named(loggerName).With("session", truncate(sessionID, 10)),
	}
}

// Run drives the state machine to completion, returning its terminal value.
func (sm *StateMachine[T]) Run() (any, error) {
outer:
	for {
		for _, message := range sm.state.Initialize() {
			sm.output <- feed.MessageWrapper[T]{SessionID: sm.sessionID, Message: message}
		}

		sm.input.Refresh()
		sm.logger.Debugw("initializing state", "state", sm.state.String())

		for {
			transition, err := sm.state.Advance()
			if err != nil {
				return nil, fmt.Errorf("[%s] failed transition: %w", truncate(sm.sessionID, 10), err)
			}

			switch transition.Kind {
			case TransitionSame:
				next, err := sm.input.Next()
				if err != nil {
					// spurious wake (no new message, or wrong session); retry.
					continue
				}
				status := sm.state.Deliver(next)
				switch status.kind {
				case delivered:
					// absorbed.
				case unexpected:
					sm.logger.Warnw("delaying unexpected message", "message", fmt.Sprintf("%v", status.unexpect))
					sm.input.Delay(status.unexpect)
				case deliveryError:
					return nil, fmt.Errorf("[%s][%s] %w", truncate(sm.sessionID, 10), sm.state.String(), status.err)
				}
			case TransitionNext:
				sm.logger.Debugw("transitioning state", "from", sm.state.String(), "to", transition.Next.String())
				sm.state = transition.Next
				continue outer
			case TransitionTerminal:
				sm.logger.Debugw("completed")
				return transition.Terminal, nil
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
