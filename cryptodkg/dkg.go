// Package cryptodkg wraps go.dedis.ch/kyber/v3's Rabin DKG and distributed
// Schnorr signature (DSS) packages behind the black-box surface the FSM
// states consume: deals, responses, justifications, secret/reconstruct
// commits on the DKG side; partial signatures on the DSS side. Curve
// arithmetic itself is never reimplemented here.
package cryptodkg

import (
	"sort"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	dkgrabin "go.dedis.ch/kyber/v3/share/dkg/rabin"
)

// Suite is the Ed25519 curve suite every committee uses, matching the
// Rabin-DKG/DSS black box contract (group, hash, randomness source).
var Suite = edwards25519.NewBlakeSHA256Ed25519()

type (
	Point              = kyber.Point
	Scalar             = kyber.Scalar
	Deal               = dkgrabin.Deal
	Response           = dkgrabin.Response
	Justification      = dkgrabin.Justification
	SecretCommits      = dkgrabin.SecretCommits
	ComplaintCommits   = dkgrabin.ComplaintCommits
	ReconstructCommits = dkgrabin.ReconstructCommits
	DistKeyShare       = dkgrabin.DistKeyShare
)

// Threshold implements the committee's fixed n/2+1 rule.
func Threshold(n int) int {
	return n/2 + 1
}

// SortParticipants returns participants sorted by canonical Point string;
// every honest node must compute this ordering identically since it
// determines DKG/DSS indices (property 1).
func SortParticipants(participants []Point) []Point {
	sorted := make([]Point, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	return sorted
}

// Dkg is one node's view of a Rabin DKG session.
type Dkg struct {
	gen          *dkgrabin.DistKeyGenerator
	Participants []Point
	Threshold    int
	Public       Point
}

// NewDkg creates a DKG context for the sorted participant set, threshold
// n/2+1. participants must already be sorted (SortParticipants).
func NewDkg(private Scalar, participants []Point) (*Dkg, error) {
	t := Threshold(len(participants))
	gen, err := dkgrabin.NewDistKeyGenerator(Suite, private, participants, t)
	if err != nil {
		return nil, err
	}
	public := Suite.Point().Mul(private, nil)
	return &Dkg{gen: gen, Participants: participants, Threshold: t, Public: public}, nil
}

// Deals returns the deals to send to every other participant, keyed by
// their index in the sorted participant list.
func (d *Dkg) Deals() (map[int]*Deal, error) {
	return d.gen.Deals()
}

// ProcessDeal processes a deal addressed to this node, yielding the
// Response to broadcast.
func (d *Dkg) ProcessDeal(deal *Deal) (*Response, error) {
	return d.gen.ProcessDeal(deal)
}

// ProcessResponse processes one foreign response, possibly yielding a
// Justification that must be broadcast.
func (d *Dkg) ProcessResponse(resp *Response) (*Justification, error) {
	return d.gen.ProcessResponse(resp)
}

// ProcessJustification processes one foreign justification.
func (d *Dkg) ProcessJustification(j *Justification) error {
	return d.gen.ProcessJustification(j)
}

// Certified reports whether this node's DKG run is certified.
func (d *Dkg) Certified() bool {
	return d.gen.Certified()
}

// QUAL returns the indices of the qualified participant set.
func (d *Dkg) QUAL() []int {
	return d.gen.QUAL()
}

// SecretCommits computes this node's secret commitments to broadcast.
func (d *Dkg) SecretCommits() (*SecretCommits, error) {
	return d.gen.SecretCommits()
}

// ProcessSecretCommits processes one foreign secret-commits message,
// possibly yielding a ComplaintCommits.
func (d *Dkg) ProcessSecretCommits(sc *SecretCommits) (*ComplaintCommits, error) {
	return d.gen.ProcessSecretCommits(sc)
}

// ProcessComplaintCommits processes one foreign complaint, yielding the
// ReconstructCommits to broadcast.
func (d *Dkg) ProcessComplaintCommits(cc *ComplaintCommits) (*ReconstructCommits, error) {
	return d.gen.ProcessComplaintCommits(cc)
}

// ProcessReconstructCommits processes one foreign reconstruct-commits
// message.
func (d *Dkg) ProcessReconstructCommits(rc *ReconstructCommits) error {
	return d.gen.ProcessReconstructCommits(rc)
}

// DistKeyShare returns this node's completed distributed key share. It
// only succeeds once the DKG protocol has reached a stable state.
func (d *Dkg) DistKeyShare() (*DistKeyShare, error) {
	return d.gen.DistKeyShare()
}

// GroupPublicKey returns the committee's group public key: the constant
// term of the public commitment polynomial every node computes identically.
func GroupPublicKey(share *DistKeyShare) Point {
	return share.Commits[0]
}
