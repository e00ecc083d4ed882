// Package signfsm implements the distributed-signing state machine: a
// single Initializing state that collects partial signatures within a
// bounded window and finalizes into a group signature with a bad/absent
// signer audit trail.
package signfsm

import "github.com/driftcommittee/node/cryptodkg"

// MessageKind discriminates Message's variants.
type MessageKind int

const (
	MsgPartialSignature MessageKind = iota
	MsgWaitingDone
)

// Message is the tagged union the sign FSM exchanges: a partial signature
// or the internal collection-window timeout sentinel.
type Message struct {
	Kind    MessageKind
	Partial *cryptodkg.PartialSig
}

func (m Message) String() string {
	if m.Kind == MsgWaitingDone {
		return "WaitingDone"
	}
	return "PartialSignature"
}

// TerminalKind discriminates Terminal's variants.
type TerminalKind int

const (
	Completed TerminalKind = iota
	Failed
)

// Terminal is the sign FSM's terminal value.
type Terminal struct {
	Kind                    TerminalKind
	Signature               []byte
	ProcessedPartialOwners  []cryptodkg.Point
	BadSigners              []cryptodkg.Point
}
