package dkgfsm

import (
	"fmt"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// ProcessingDeals broadcasts one deal per other participant and waits for
// every other participant's response.
type ProcessingDeals struct {
	deals     map[int]*cryptodkg.Deal
	dkg       *cryptodkg.Dkg
	responses []*cryptodkg.Response
	didUrls   []string
}

// NewProcessingDeals computes the local deals and builds the state.
func NewProcessingDeals(dkg *cryptodkg.Dkg, didUrls []string) (*ProcessingDeals, error) {
	deals, err := dkg.Deals()
	if err != nil {
		return nil, err
	}
	return &ProcessingDeals{deals: deals, dkg: dkg, didUrls: didUrls}, nil
}

func (s *ProcessingDeals) String() string {
	return fmt.Sprintf("processing deals (own: %d)", len(s.deals))
}

func (s *ProcessingDeals) Initialize() []Message {
	messages := make([]Message, 0, len(s.deals))
	for i, deal := range s.deals {
		messages = append(messages, Message{
			Kind:            MsgDeal,
			DealDestination: s.dkg.Participants[i],
			Deal:            deal,
		})
	}
	return messages
}

func (s *ProcessingDeals) Deliver(message Message) fsm.DeliveryStatus[Message] {
	if message.Kind != MsgDeal {
		return fsm.Unexpected(message)
	}
	if !message.DealDestination.Equal(s.dkg.Public) {
		// deal meant for another node; pass through.
		return fsm.Delivered[Message]()
	}
	resp, err := s.dkg.ProcessDeal(message.Deal)
	if err != nil {
		return fsm.DeliveryError[Message](err)
	}
	s.responses = append(s.responses, resp)
	return fsm.Delivered[Message]()
}

func (s *ProcessingDeals) Advance() (fsm.Transition[Message], error) {
	if len(s.responses) == len(s.dkg.Participants)-1 {
		next := NewProcessingResponses(s.dkg, s.responses, s.didUrls)
		return fsm.NextState[Message](next), nil
	}
	return fsm.Same[Message](), nil
}
