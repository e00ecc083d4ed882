package cryptodkg

import (
	"strings"

	"go.dedis.ch/kyber/v3/sign/dss"
)

// PartialSig is one participant's contribution to a threshold signature.
type PartialSig = dss.PartialSig

// Dss is one node's view of a distributed Schnorr signing session for a
// single message. It never reconstructs the group private key: every
// operation works on partial signatures and the node's own share.
type Dss struct {
	inner        *dss.DSS
	Participants []Point
	OwnIndex     int
}

// NewDss builds a signing session over msg for the sorted participant set,
// using share as both the long-term and per-session secret sharing (the
// DSS construction the committee uses signs with the committee's single
// completed DKG share, matching the grounded original's `new_dss(..., dks,
// dks, ...)` call).
func NewDss(ownIndex int, secret Scalar, participants []Point, share *DistKeyShare, msg []byte, threshold int) (*Dss, error) {
	inner, err := dss.NewDSS(Suite, secret, participants, share, share, msg, threshold)
	if err != nil {
		return nil, err
	}
	return &Dss{inner: inner, Participants: participants, OwnIndex: ownIndex}, nil
}

// PartialSig computes this node's own partial signature.
func (d *Dss) PartialSig() (*PartialSig, error) {
	return d.inner.PartialSig()
}

// ProcessPartialSig processes one partial signature, foreign or own.
func (d *Dss) ProcessPartialSig(ps *PartialSig) error {
	return d.inner.ProcessPartialSig(ps)
}

// EnoughPartialSig reports whether the threshold of partial signatures has
// been reached.
func (d *Dss) EnoughPartialSig() bool {
	return d.inner.EnoughPartialSig()
}

// Signature attempts to assemble the full group signature from the
// partial signatures processed so far.
func (d *Dss) Signature() ([]byte, error) {
	return d.inner.Signature()
}

// PartialSigOutcome classifies the result of processing one partial
// signature: a rejected partial
// signature still counts as "processed", it just also becomes "bad".
type PartialSigOutcome int

const (
	OutcomeAccepted PartialSigOutcome = iota
	OutcomeBad
	OutcomeFatal
)

// ClassifyPartialSigError maps the error returned by ProcessPartialSig to
// a structured outcome. go.dedis.ch/kyber/v3/sign/dss has no exported
// sentinel errors for these cases, so the three known message classes are
// matched once, here, instead of scattered across callers.
func ClassifyPartialSigError(err error) PartialSigOutcome {
	if err == nil {
		return OutcomeAccepted
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "index out of bounds"):
		return OutcomeBad
	case strings.Contains(msg, "session id do not match"):
		return OutcomeBad
	case strings.Contains(msg, "partial signature not valid"):
		return OutcomeBad
	default:
		return OutcomeFatal
	}
}
