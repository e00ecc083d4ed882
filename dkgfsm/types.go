// Package dkgfsm implements the seven-state Rabin DKG protocol machine:
// Initializing, ProcessingDeals, ProcessingResponses,
// ProcessingJustifications, ProcessingSecretCommits, ProcessingComplaints,
// ProcessingReconstructCommits, each carrying the evolving cryptodkg.Dkg
// handle and the node's DID list forward to the next state.
package dkgfsm

import "github.com/driftcommittee/node/cryptodkg"

// DidResolver resolves a DID to the kyber point it binds. Implemented by
// the transport adapter's DID registry; dkgfsm never assumes a concrete
// backend.
type DidResolver interface {
	Resolve(did string) (cryptodkg.Point, error)
}

// TerminalKind discriminates Terminal's variants. The protocol has exactly
// one successful terminal shape; failure surfaces as a run error instead
// (a session that cannot certify is fatal, not retryable).
type TerminalKind int

const (
	Completed TerminalKind = iota
)

// Terminal is the DKG FSM's terminal value.
type Terminal struct {
	Kind    TerminalKind
	Dkg     *cryptodkg.Dkg
	DidUrls []string
}
