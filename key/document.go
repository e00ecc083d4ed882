package key

import (
	"encoding/hex"
	"fmt"

	canonicaljson "github.com/gibson042/canonicaljson-go"

	"github.com/driftcommittee/node/cryptodkg"
)

// Document is a self-describing DID document: a bound public key plus,
// for a committee document, the sorted list of member DIDs. It is signed
// by its own owner (a node's long-term key for a self-DID, or the group
// key for the committee DID) before publication.
type Document struct {
	PublicKey  cryptodkg.Point
	MemberDIDs []string
	Signature  []byte
}

// wireDocument is Document's JSON/JCS shape: the signature field is
// cleared before canonicalizing for signing or verification.
type wireDocument struct {
	PublicKeyHex string   `json:"public_key"`
	MemberDIDs   []string `json:"member_dids,omitempty"`
	SignatureHex *string  `json:"signature_hex"`
}

// NewDocument binds pub and, for a committee document, the sorted member
// DID list, leaving the signature empty until Sign is called.
func NewDocument(pub cryptodkg.Point, memberDIDs []string) *Document {
	return &Document{PublicKey: pub, MemberDIDs: memberDIDs}
}

func (d *Document) toWire(withSignature bool) (wireDocument, error) {
	pubBytes, err := d.PublicKey.MarshalBinary()
	if err != nil {
		return wireDocument{}, fmt.Errorf("key: marshal document public key: %w", err)
	}
	w := wireDocument{
		PublicKeyHex: hex.EncodeToString(pubBytes),
		MemberDIDs:   d.MemberDIDs,
	}
	if withSignature && len(d.Signature) > 0 {
		sig := hex.EncodeToString(d.Signature)
		w.SignatureHex = &sig
	}
	return w, nil
}

// CanonicalBytes returns the JCS-canonical encoding of the document with
// its signature cleared: the exact bytes that get signed and verified.
func (d *Document) CanonicalBytes() ([]byte, error) {
	w, err := d.toWire(false)
	if err != nil {
		return nil, err
	}
	return canonicaljson.Marshal(w)
}

// Sign computes the document's signature over its canonical bytes using
// signer, attaching the result to Signature.
func (d *Document) Sign(signer func([]byte) ([]byte, error)) error {
	canonical, err := d.CanonicalBytes()
	if err != nil {
		return err
	}
	sig, err := signer(canonical)
	if err != nil {
		return fmt.Errorf("key: sign document: %w", err)
	}
	d.Signature = sig
	return nil
}

// VerifySignature checks the document's signature against its own bound
// public key (a self-signed document) or an external verifying key, such
// as the committee's group key for a committee document signed by DSS.
func (d *Document) VerifySignature(verifyingKey cryptodkg.Point) error {
	canonical, err := d.CanonicalBytes()
	if err != nil {
		return err
	}
	return Verify(verifyingKey, canonical, d.Signature)
}

// MarshalJSON implements json.Marshaler, including the signature when set.
func (d *Document) MarshalJSON() ([]byte, error) {
	w, err := d.toWire(true)
	if err != nil {
		return nil, err
	}
	return canonicaljson.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w wireDocument
	if err := canonicaljson.Unmarshal(data, &w); err != nil {
		return err
	}
	pubBytes, err := hex.DecodeString(w.PublicKeyHex)
	if err != nil {
		return fmt.Errorf("key: decode document public key: %w", err)
	}
	pub := cryptodkg.Suite.Point()
	if err := pub.UnmarshalBinary(pubBytes); err != nil {
		return fmt.Errorf("key: unmarshal document public key: %w", err)
	}
	d.PublicKey = pub
	d.MemberDIDs = w.MemberDIDs
	if w.SignatureHex != nil {
		sig, err := hex.DecodeString(*w.SignatureHex)
		if err != nil {
			return fmt.Errorf("key: decode document signature: %w", err)
		}
		d.Signature = sig
	}
	return nil
}
