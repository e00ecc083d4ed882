package dkgfsm

import (
	"fmt"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// ProcessingJustifications emits this node's own justifications and waits
// for certification: every participant must be qualified.
type ProcessingJustifications struct {
	dkg               *cryptodkg.Dkg
	ownJustifications []*cryptodkg.Justification
	didUrls           []string
}

// NewProcessingJustifications builds the state from the justifications
// accumulated while processing responses.
func NewProcessingJustifications(dkg *cryptodkg.Dkg, ownJustifications []*cryptodkg.Justification, didUrls []string) *ProcessingJustifications {
	return &ProcessingJustifications{dkg: dkg, ownJustifications: ownJustifications, didUrls: didUrls}
}

func (s *ProcessingJustifications) String() string {
	return fmt.Sprintf("processing justifications (own: %d)", len(s.ownJustifications))
}

func (s *ProcessingJustifications) Initialize() []Message {
	messages := make([]Message, 0, len(s.ownJustifications))
	for _, j := range s.ownJustifications {
		messages = append(messages, Message{Kind: MsgJustification, Justification: j})
	}
	return messages
}

func (s *ProcessingJustifications) Deliver(message Message) fsm.DeliveryStatus[Message] {
	if message.Kind != MsgJustification {
		return fsm.Unexpected(message)
	}
	if err := s.dkg.ProcessJustification(message.Justification); err != nil {
		return fsm.DeliveryError[Message](err)
	}
	return fsm.Delivered[Message]()
}

func (s *ProcessingJustifications) Advance() (fsm.Transition[Message], error) {
	if !s.dkg.Certified() {
		return fsm.Transition[Message]{}, fmt.Errorf("dkgfsm: dkg not certified")
	}
	qual := s.dkg.QUAL()
	if len(qual) != len(s.dkg.Participants) {
		return fsm.Transition[Message]{}, fmt.Errorf("dkgfsm: only %d nodes are qualified out of %d", len(qual), len(s.dkg.Participants))
	}

	secretCommits, err := s.dkg.SecretCommits()
	if err != nil {
		return fsm.Transition[Message]{}, err
	}
	next := NewProcessingSecretCommits(s.dkg, secretCommits, s.didUrls)
	return fsm.NextState[Message](next), nil
}
