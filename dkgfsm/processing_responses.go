package dkgfsm

import (
	"fmt"
	"strings"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// ProcessingResponses broadcasts this node's responses (one per deal it
// received) and collects every other node's responses until the full
// (n-1)^2 cross-product has been observed.
type ProcessingResponses struct {
	dkg           *cryptodkg.Dkg
	ownResponses  []*cryptodkg.Response
	justifications []*cryptodkg.Justification
	observed      int
	didUrls       []string
}

// NewProcessingResponses builds the state from the responses produced in
// ProcessingDeals.
func NewProcessingResponses(dkg *cryptodkg.Dkg, ownResponses []*cryptodkg.Response, didUrls []string) *ProcessingResponses {
	return &ProcessingResponses{dkg: dkg, ownResponses: ownResponses, didUrls: didUrls}
}

func (s *ProcessingResponses) String() string {
	return fmt.Sprintf("processing responses (own: %d)", len(s.ownResponses))
}

func (s *ProcessingResponses) Initialize() []Message {
	messages := make([]Message, 0, len(s.ownResponses))
	for _, resp := range s.ownResponses {
		messages = append(messages, Message{Kind: MsgResponse, ResponseSource: s.dkg.Public, Response: resp})
	}
	return messages
}

func (s *ProcessingResponses) Deliver(message Message) fsm.DeliveryStatus[Message] {
	if message.Kind != MsgResponse {
		return fsm.Unexpected(message)
	}
	if message.ResponseSource.Equal(s.dkg.Public) {
		// self-echo; not a real observation.
		return fsm.Delivered[Message]()
	}

	justification, err := s.dkg.ProcessResponse(message.Response)
	if err != nil {
		if isDuplicateResponseError(err) {
			s.observed++
			return fsm.Delivered[Message]()
		}
		return fsm.DeliveryError[Message](err)
	}
	if justification != nil {
		s.justifications = append(s.justifications, justification)
	}
	s.observed++
	return fsm.Delivered[Message]()
}

func (s *ProcessingResponses) Advance() (fsm.Transition[Message], error) {
	n := len(s.dkg.Participants)
	if s.observed == (n-1)*(n-1) {
		next := NewProcessingJustifications(s.dkg, s.justifications, s.didUrls)
		return fsm.NextState[Message](next), nil
	}
	return fsm.Same[Message](), nil
}

// isDuplicateResponseError matches the benign "already existing response
// from same origin" outcome the Rabin DKG implementation returns when a
// response is redelivered; it must be swallowed as
// Delivered rather than treated as fatal.
func isDuplicateResponseError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already existing response")
}
