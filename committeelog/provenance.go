package committeelog

import (
	"encoding/hex"
	"fmt"
	"sort"

	canonicaljson "github.com/gibson042/canonicaljson-go"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/key"
)

// NodeSignatureLog is one node's individually-signed record of a signing
// session: who it believes was absent or dishonest, signed with its own
// long-term key so the record is independently auditable.
type NodeSignatureLog struct {
	SessionId    string   `json:"session_id"`
	SenderDid    string   `json:"sender_did"`
	AbsentNodes  []string `json:"absent_nodes"`
	BadSigners   []string `json:"bad_signers"`
	SignatureHex *string  `json:"signature_hex"`
}

func (l *NodeSignatureLog) canonical() ([]byte, error) {
	cp := *l
	cp.SignatureHex = nil
	return canonicaljson.Marshal(cp)
}

// Sign EdDSA-signs the log's canonical bytes with signer (the node's own
// long-term key), attaching the resulting hex signature.
func (l *NodeSignatureLog) Sign(signer func([]byte) ([]byte, error)) error {
	canonical, err := l.canonical()
	if err != nil {
		return err
	}
	sig, err := signer(canonical)
	if err != nil {
		return fmt.Errorf("committeelog: sign provenance log: %w", err)
	}
	hexSig := hex.EncodeToString(sig)
	l.SignatureHex = &hexSig
	return nil
}

// Verify resolves sender_did to a public key and checks the signature
// against the canonicalized log with signature_hex cleared.
func (l *NodeSignatureLog) Verify(resolver DidResolver) error {
	if l.SignatureHex == nil {
		return ErrUnsigned
	}
	sig, err := hex.DecodeString(*l.SignatureHex)
	if err != nil {
		return fmt.Errorf("committeelog: decode provenance signature_hex: %w", err)
	}
	pub, err := resolver.Resolve(l.SenderDid)
	if err != nil {
		return fmt.Errorf("committeelog: resolve sender_did: %w", err)
	}
	canonical, err := l.canonical()
	if err != nil {
		return err
	}
	return key.Verify(pub, canonical, sig)
}

// ErrDidNotFound is returned by ResolveDidByPoint when no entry in
// allDids binds the given point; it indicates inconsistent committee
// membership and is fatal to log assembly (spec's ProvenanceMismatch).
type ErrDidNotFound struct {
	Point cryptodkg.Point
}

func (e *ErrDidNotFound) Error() string {
	return fmt.Sprintf("committeelog: no DID bound to point %s", e.Point.String())
}

// ResolveDidByPoint does a linear search over allDids, resolving each and
// comparing its bound point to target.
func ResolveDidByPoint(resolver DidResolver, allDids []string, target cryptodkg.Point) (string, error) {
	for _, did := range allDids {
		pub, err := resolver.Resolve(did)
		if err != nil {
			continue
		}
		if pub.Equal(target) {
			return did, nil
		}
	}
	return "", &ErrDidNotFound{Point: target}
}

// WorkingNodes computes processed_partial_owners minus bad_signers, each
// resolved to a DID, per spec's leader-by-minimum rule.
func WorkingNodes(resolver DidResolver, allDids []string, processedPartialOwners, badSigners []cryptodkg.Point) ([]string, error) {
	bad := make(map[string]bool, len(badSigners))
	for _, p := range badSigners {
		did, err := ResolveDidByPoint(resolver, allDids, p)
		if err != nil {
			return nil, err
		}
		bad[did] = true
	}

	var working []string
	for _, p := range processedPartialOwners {
		did, err := ResolveDidByPoint(resolver, allDids, p)
		if err != nil {
			return nil, err
		}
		if !bad[did] {
			working = append(working, did)
		}
	}
	sort.Strings(working)
	return working, nil
}

// AbsentNodes computes allDids minus the resolved processed partial
// owners.
func AbsentNodes(resolver DidResolver, allDids []string, processedPartialOwners []cryptodkg.Point) ([]string, error) {
	present := make(map[string]bool, len(processedPartialOwners))
	for _, p := range processedPartialOwners {
		did, err := ResolveDidByPoint(resolver, allDids, p)
		if err != nil {
			return nil, err
		}
		present[did] = true
	}
	var absent []string
	for _, did := range allDids {
		if !present[did] {
			absent = append(absent, did)
		}
	}
	return absent, nil
}

// IsLeader reports whether ownDid is the lexicographically smallest
// working-node DID, the node responsible for publishing (spec's
// leader-by-minimum rule, property 6).
func IsLeader(ownDid string, workingNodes []string) bool {
	if len(workingNodes) == 0 {
		return false
	}
	sorted := make([]string, len(workingNodes))
	copy(sorted, workingNodes)
	sort.Strings(sorted)
	return sorted[0] == ownDid
}
