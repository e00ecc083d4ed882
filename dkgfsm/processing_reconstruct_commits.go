package dkgfsm

import (
	"fmt"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// ProcessingReconstructCommits is the final DKG state: it broadcasts
// whatever reconstruct commits accumulated from complaints and waits
// until the distributed key share can be assembled.
type ProcessingReconstructCommits struct {
	dkg                 *cryptodkg.Dkg
	reconstructCommits  []*cryptodkg.ReconstructCommits
	didUrls             []string
}

// NewProcessingReconstructCommits builds the state.
func NewProcessingReconstructCommits(dkg *cryptodkg.Dkg, reconstructCommits []*cryptodkg.ReconstructCommits) *ProcessingReconstructCommits {
	return &ProcessingReconstructCommits{dkg: dkg, reconstructCommits: reconstructCommits}
}

// WithDidUrls attaches the accumulated DID list to carry into the terminal
// state.
func (s *ProcessingReconstructCommits) WithDidUrls(didUrls []string) *ProcessingReconstructCommits {
	s.didUrls = didUrls
	return s
}

func (s *ProcessingReconstructCommits) String() string {
	return fmt.Sprintf("processing reconstruct commits (own: %d)", len(s.reconstructCommits))
}

func (s *ProcessingReconstructCommits) Initialize() []Message {
	messages := make([]Message, 0, len(s.reconstructCommits))
	for _, rc := range s.reconstructCommits {
		messages = append(messages, Message{Kind: MsgReconstructCommits, ReconstructCommits: rc})
	}
	return messages
}

func (s *ProcessingReconstructCommits) Deliver(message Message) fsm.DeliveryStatus[Message] {
	if message.Kind != MsgReconstructCommits {
		return fsm.Unexpected(message)
	}
	if err := s.dkg.ProcessReconstructCommits(message.ReconstructCommits); err != nil {
		return fsm.DeliveryError[Message](err)
	}
	return fsm.Delivered[Message]()
}

func (s *ProcessingReconstructCommits) Advance() (fsm.Transition[Message], error) {
	if _, err := s.dkg.DistKeyShare(); err != nil {
		return fsm.Same[Message](), nil
	}
	return fsm.TerminalTransition[Message](Terminal{
		Kind:    Completed,
		Dkg:     s.dkg,
		DidUrls: s.didUrls,
	}), nil
}
