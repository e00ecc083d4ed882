package dkgfsm

import (
	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// ProcessingSecretCommits broadcasts this node's secret commits and
// collects every other node's, gathering whatever complaints they yield.
type ProcessingSecretCommits struct {
	dkg                *cryptodkg.Dkg
	secretCommits      *cryptodkg.SecretCommits
	optionalComplaints []*cryptodkg.ComplaintCommits
	didUrls            []string
}

// NewProcessingSecretCommits builds the state from the certified dkg and
// this node's own secret commits.
func NewProcessingSecretCommits(dkg *cryptodkg.Dkg, secretCommits *cryptodkg.SecretCommits, didUrls []string) *ProcessingSecretCommits {
	return &ProcessingSecretCommits{dkg: dkg, secretCommits: secretCommits, didUrls: didUrls}
}

func (s *ProcessingSecretCommits) String() string { return "processing secret commits" }

func (s *ProcessingSecretCommits) Initialize() []Message {
	return []Message{{
		Kind:                MsgSecretCommits,
		SecretCommitsSource: s.dkg.Public,
		SecretCommits:       s.secretCommits,
	}}
}

func (s *ProcessingSecretCommits) Deliver(message Message) fsm.DeliveryStatus[Message] {
	if message.Kind != MsgSecretCommits {
		return fsm.Unexpected(message)
	}
	if message.SecretCommitsSource.Equal(s.dkg.Public) {
		return fsm.Delivered[Message]()
	}

	complaint, err := s.dkg.ProcessSecretCommits(message.SecretCommits)
	if err != nil {
		return fsm.DeliveryError[Message](err)
	}
	s.optionalComplaints = append(s.optionalComplaints, complaint)
	return fsm.Delivered[Message]()
}

func (s *ProcessingSecretCommits) Advance() (fsm.Transition[Message], error) {
	numOtherNodes := len(s.dkg.Participants) - 1
	if len(s.optionalComplaints) != numOtherNodes {
		return fsm.Same[Message](), nil
	}

	var complaints []*cryptodkg.ComplaintCommits
	for _, c := range s.optionalComplaints {
		if c != nil {
			complaints = append(complaints, c)
		}
	}
	next, err := NewProcessingComplaints(s.dkg, complaints, s.didUrls)
	if err != nil {
		return fsm.Transition[Message]{}, err
	}
	return fsm.NextState[Message](next), nil
}
