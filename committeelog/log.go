// Package committeelog assembles, signs, and verifies the two artifacts a
// committee publishes per request: the group-signed CommitteeLog and each
// node's individually-signed provenance log.
package committeelog

import (
	"encoding/hex"
	"errors"
	"fmt"

	canonicaljson "github.com/gibson042/canonicaljson-go"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/key"
	"github.com/driftcommittee/node/uri"
)

// Result discriminates a CommitteeLog's outcome.
type Result string

const (
	Success Result = "Success"
	Failure Result = "Failure"
)

// CommitteeLog is the group-signed artifact published in response to one
// request.
type CommitteeLog struct {
	CommitteeDid string        `json:"committee_did"`
	RequestId    string        `json:"request_id"`
	Result       Result        `json:"result"`
	OutputUri    *uri.OutputUri `json:"output_uri"`
	Data         *string       `json:"data"`
	SignatureHex *string       `json:"signature_hex"`
}

type committeeLogWire struct {
	CommitteeDid string  `json:"committee_did"`
	RequestId    string  `json:"request_id"`
	Result       Result  `json:"result"`
	OutputUri    *string `json:"output_uri"`
	Data         *string `json:"data"`
	SignatureHex *string `json:"signature_hex"`
}

func (l *CommitteeLog) toWire() committeeLogWire {
	var out *string
	if l.OutputUri != nil {
		s := l.OutputUri.String()
		out = &s
	}
	return committeeLogWire{
		CommitteeDid: l.CommitteeDid,
		RequestId:    l.RequestId,
		Result:       l.Result,
		OutputUri:    out,
		Data:         l.Data,
		SignatureHex: l.SignatureHex,
	}
}

// MarshalJSON implements json.Marshaler.
func (l *CommitteeLog) MarshalJSON() ([]byte, error) {
	return canonicaljson.Marshal(l.toWire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *CommitteeLog) UnmarshalJSON(data []byte) error {
	var w committeeLogWire
	if err := canonicaljson.Unmarshal(data, &w); err != nil {
		return err
	}
	l.CommitteeDid = w.CommitteeDid
	l.RequestId = w.RequestId
	l.Result = w.Result
	l.Data = w.Data
	l.SignatureHex = w.SignatureHex
	if w.OutputUri != nil {
		parsed, err := uri.ParseOutputUri(*w.OutputUri)
		if err != nil {
			return fmt.Errorf("committeelog: decode output_uri: %w", err)
		}
		l.OutputUri = &parsed
	}
	return nil
}

// CanonicalBytes returns the JCS-canonical bytes of the log with
// signature_hex forced to null, the exact payload that gets signed and
// verified (spec's verification rule).
func (l *CommitteeLog) CanonicalBytes() ([]byte, error) {
	cp := *l
	cp.SignatureHex = nil
	return canonicaljson.Marshal(cp.toWire())
}

// DidResolver looks up the Point bound to a DID, used both to resolve a
// committee's verifying key and, in reverse, to find a DID for a Point.
type DidResolver interface {
	Resolve(did string) (cryptodkg.Point, error)
}

// Sign attaches sig's hex encoding as signature_hex, turning the log into
// the committee-signed artifact. It does not compute or check sig.
func (l *CommitteeLog) Sign(sig []byte) {
	hexSig := hex.EncodeToString(sig)
	l.SignatureHex = &hexSig
}

// ErrUnsigned is returned by Verify when the log carries no signature.
var ErrUnsigned = errors.New("committeelog: log has no signature_hex")

// Verify re-canonicalizes the log with signature_hex cleared and checks
// the hex-decoded signature against the committee key resolved from
// committee_did.
func (l *CommitteeLog) Verify(resolver DidResolver) error {
	if l.SignatureHex == nil {
		return ErrUnsigned
	}
	sig, err := hex.DecodeString(*l.SignatureHex)
	if err != nil {
		return fmt.Errorf("committeelog: decode signature_hex: %w", err)
	}
	pub, err := resolver.Resolve(l.CommitteeDid)
	if err != nil {
		return fmt.Errorf("committeelog: resolve committee_did: %w", err)
	}
	canonical, err := l.CanonicalBytes()
	if err != nil {
		return err
	}
	return key.Verify(pub, canonical, sig)
}
