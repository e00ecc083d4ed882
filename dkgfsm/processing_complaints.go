package dkgfsm

import (
	"fmt"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// ProcessingComplaints broadcasts this node's own complaints (if any) and
// processes inbound complaints, gathering the reconstruct commits they
// yield. Advance moves on unconditionally, so only complaints delivered
// before the runtime first calls Advance are processed; the next state's
// guard handles the clean case.
type ProcessingComplaints struct {
	dkg                *cryptodkg.Dkg
	complaints         []*cryptodkg.ComplaintCommits
	reconstructCommits []*cryptodkg.ReconstructCommits
	didUrls            []string
}

// NewProcessingComplaints builds the state from the complaints accumulated
// while processing secret commits.
func NewProcessingComplaints(dkg *cryptodkg.Dkg, complaints []*cryptodkg.ComplaintCommits, didUrls []string) (*ProcessingComplaints, error) {
	return &ProcessingComplaints{dkg: dkg, complaints: complaints, didUrls: didUrls}, nil
}

func (s *ProcessingComplaints) String() string {
	return fmt.Sprintf("processing complaints (own: %d)", len(s.complaints))
}

func (s *ProcessingComplaints) Initialize() []Message {
	messages := make([]Message, 0, len(s.complaints))
	for _, c := range s.complaints {
		messages = append(messages, Message{Kind: MsgComplaintCommits, ComplaintCommits: c})
	}
	return messages
}

func (s *ProcessingComplaints) Deliver(message Message) fsm.DeliveryStatus[Message] {
	if message.Kind != MsgComplaintCommits {
		return fsm.Unexpected(message)
	}
	rc, err := s.dkg.ProcessComplaintCommits(message.ComplaintCommits)
	if err != nil {
		return fsm.DeliveryError[Message](err)
	}
	s.reconstructCommits = append(s.reconstructCommits, rc)
	return fsm.Delivered[Message]()
}

func (s *ProcessingComplaints) Advance() (fsm.Transition[Message], error) {
	next := NewProcessingReconstructCommits(s.dkg, s.reconstructCommits).WithDidUrls(s.didUrls)
	return fsm.NextState[Message](next), nil
}
