package dkgfsm

import (
	"fmt"

	"github.com/driftcommittee/node/cryptodkg"
)

// MessageKind discriminates Message's variants.
type MessageKind int

const (
	MsgPublicKey MessageKind = iota
	MsgDidURL
	MsgDeal
	MsgResponse
	MsgJustification
	MsgSecretCommits
	MsgComplaintCommits
	MsgReconstructCommits
)

// Message is the tagged union of every wire message the DKG FSM exchanges.
type Message struct {
	Kind MessageKind

	PublicKey cryptodkg.Point
	DidURL    string

	DealDestination cryptodkg.Point
	Deal            *cryptodkg.Deal

	ResponseSource cryptodkg.Point
	Response       *cryptodkg.Response

	Justification *cryptodkg.Justification

	SecretCommitsSource cryptodkg.Point
	SecretCommits       *cryptodkg.SecretCommits

	ComplaintCommits *cryptodkg.ComplaintCommits

	ReconstructCommits *cryptodkg.ReconstructCommits
}

func (m Message) String() string {
	switch m.Kind {
	case MsgPublicKey:
		return "PublicKey"
	case MsgDidURL:
		return "DIDUrl(" + m.DidURL + ")"
	case MsgDeal:
		return "Deal"
	case MsgResponse:
		return "Response"
	case MsgJustification:
		return "Justification"
	case MsgSecretCommits:
		return "SecretCommits"
	case MsgComplaintCommits:
		return "ComplaintCommits"
	case MsgReconstructCommits:
		return "ReconstructCommits"
	default:
		return fmt.Sprintf("Unknown(%d)", m.Kind)
	}
}
