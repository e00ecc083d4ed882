package dkgfsm

import (
	"fmt"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/fsm"
)

// Initializing gathers one public key (or DID-resolved public key) per
// participant before constructing the shared Dkg context.
type Initializing struct {
	private         cryptodkg.Scalar
	public          cryptodkg.Point
	didURL          string
	hasDID          bool
	numParticipants int
	publicKeys      []cryptodkg.Point
	didURLs         []string
	resolver        DidResolver
}

// NewInitializing builds the first DKG state. If didURL is non-empty the
// node addresses itself and its peers by DID; otherwise by raw public key.
func NewInitializing(private cryptodkg.Scalar, public cryptodkg.Point, didURL string, numParticipants int, resolver DidResolver) *Initializing {
	s := &Initializing{
		private:         private,
		public:          public,
		didURL:          didURL,
		hasDID:          didURL != "",
		numParticipants: numParticipants,
		resolver:        resolver,
	}
	s.publicKeys = append(s.publicKeys, public)
	if s.hasDID {
		s.didURLs = append(s.didURLs, didURL)
	}
	return s
}

func (s *Initializing) String() string {
	return fmt.Sprintf("initializing (nodes: %d)", s.numParticipants)
}

func (s *Initializing) Initialize() []Message {
	if s.hasDID {
		return []Message{{Kind: MsgDidURL, DidURL: s.didURL}}
	}
	return []Message{{Kind: MsgPublicKey, PublicKey: s.public}}
}

func (s *Initializing) Deliver(message Message) fsm.DeliveryStatus[Message] {
	switch message.Kind {
	case MsgPublicKey:
		// The node's own key is seeded by NewInitializing; its echo is skipped.
		if !s.hasDID && !message.PublicKey.Equal(s.public) {
			s.publicKeys = append(s.publicKeys, message.PublicKey)
		}
		return fsm.Delivered[Message]()
	case MsgDidURL:
		if message.DidURL == s.didURL {
			return fsm.Delivered[Message]()
		}
		s.didURLs = append(s.didURLs, message.DidURL)
		point, err := s.resolver.Resolve(message.DidURL)
		if err != nil {
			return fsm.DeliveryError[Message](err)
		}
		s.publicKeys = append(s.publicKeys, point)
		return fsm.Delivered[Message]()
	default:
		return fsm.Unexpected(message)
	}
}

func (s *Initializing) Advance() (fsm.Transition[Message], error) {
	if len(s.publicKeys) != s.numParticipants && len(s.didURLs) != s.numParticipants {
		return fsm.Same[Message](), nil
	}

	sorted := cryptodkg.SortParticipants(s.publicKeys)
	dkg, err := cryptodkg.NewDkg(s.private, sorted)
	if err != nil {
		return fsm.Transition[Message]{}, err
	}

	next, err := NewProcessingDeals(dkg, s.didURLs)
	if err != nil {
		return fsm.Transition[Message]{}, err
	}
	return fsm.NextState[Message](next), nil
}
