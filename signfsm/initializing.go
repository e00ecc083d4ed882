package signfsm

import (
	"time"

	clock "github.com/jonboulle/clockwork"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/fsm"
)

type waitingPhase int

const (
	waiting waitingPhase = iota
	done
)

// Initializing is the sole state of the signing protocol: it covers the
// whole partial-signature collection and finalization sequence.
type Initializing struct {
	dss                    *cryptodkg.Dss
	sessionID              string
	partialSignature       *cryptodkg.PartialSig
	processedPartialOwners []cryptodkg.Point
	badSigners             []cryptodkg.Point
	phase                  waitingPhase
	selfFeedback           chan<- feed.MessageWrapper[Message]
	sleepTime              time.Duration
	clock                  clock.Clock
}

// NewInitializing builds the sign FSM's only state. selfFeedback is the
// FSM's own inbound channel: the collection-window timer writes its
// WaitingDone sentinel there, never into the outbound broadcast.
func NewInitializing(dss *cryptodkg.Dss, sessionID string, selfFeedback chan<- feed.MessageWrapper[Message], sleepTime time.Duration) (*Initializing, error) {
	partial, err := dss.PartialSig()
	if err != nil {
		return nil, err
	}
	return &Initializing{
		dss:                    dss,
		sessionID:              sessionID,
		partialSignature:       partial,
		processedPartialOwners: []cryptodkg.Point{dss.Participants[dss.OwnIndex]},
		selfFeedback:           selfFeedback,
		sleepTime:              sleepTime,
		clock:                  clock.NewRealClock(),
	}, nil
}

// SetClock overrides the collection-window clock, for tests that need to
// advance time deterministically instead of sleeping for real.
func (s *Initializing) SetClock(c clock.Clock) { s.clock = c }

func (s *Initializing) String() string { return "initializing signature" }

func (s *Initializing) Initialize() []Message {
	sessionID := s.sessionID
	feedback := s.selfFeedback
	s.clock.AfterFunc(s.sleepTime, func() {
		feedback <- feed.MessageWrapper[Message]{SessionID: sessionID, Message: Message{Kind: MsgWaitingDone}}
	})

	return []Message{{Kind: MsgPartialSignature, Partial: s.partialSignature}}
}

func (s *Initializing) Deliver(message Message) fsm.DeliveryStatus[Message] {
	switch message.Kind {
	case MsgPartialSignature:
		if message.Partial.Partial.I == s.dss.OwnIndex {
			// Own partial echoed back; NewInitializing already counted it.
			return fsm.Delivered[Message]()
		}
		owner := s.dss.Participants[message.Partial.Partial.I]
		err := s.dss.ProcessPartialSig(message.Partial)
		switch cryptodkg.ClassifyPartialSigError(err) {
		case cryptodkg.OutcomeAccepted:
			s.processedPartialOwners = append(s.processedPartialOwners, owner)
			return fsm.Delivered[Message]()
		case cryptodkg.OutcomeBad:
			s.badSigners = append(s.badSigners, owner)
			s.processedPartialOwners = append(s.processedPartialOwners, owner)
			return fsm.Delivered[Message]()
		default:
			return fsm.DeliveryError[Message](err)
		}
	case MsgWaitingDone:
		s.phase = done
		return fsm.Delivered[Message]()
	default:
		return fsm.Unexpected(message)
	}
}

func (s *Initializing) Advance() (fsm.Transition[Message], error) {
	switch s.phase {
	case waiting:
		if len(s.processedPartialOwners) == len(s.dss.Participants) {
			return s.finalize()
		}
		return fsm.Same[Message](), nil
	default: // done
		if s.dss.EnoughPartialSig() {
			return s.finalize()
		}
		return fsm.TerminalTransition[Message](Terminal{Kind: Failed}), nil
	}
}

func (s *Initializing) finalize() (fsm.Transition[Message], error) {
	signature, err := s.dss.Signature()
	if err != nil {
		return fsm.TerminalTransition[Message](Terminal{Kind: Failed}), nil
	}
	return fsm.TerminalTransition[Message](Terminal{
		Kind:                   Completed,
		Signature:              signature,
		ProcessedPartialOwners: s.processedPartialOwners,
		BadSigners:             s.badSigners,
	}), nil
}
