// Package key holds the node's long-term identity, its self-signed DID
// document, and the JSON persistence of both alongside the completed
// committee state.
package key

import (
	"go.dedis.ch/kyber/v3/sign/eddsa"

	"github.com/driftcommittee/node/cryptodkg"
)

// KeyPair is the node's long-term Ed25519 identity, created once on first
// run and never rotated.
type KeyPair struct {
	inner *eddsa.EdDSA
}

// NewKeyPair generates a fresh long-term key pair.
func NewKeyPair() *KeyPair {
	return &KeyPair{inner: eddsa.NewEdDSA(nil)}
}

// Private returns the long-term secret scalar.
func (k *KeyPair) Private() cryptodkg.Scalar { return k.inner.Secret }

// Public returns the long-term public point.
func (k *KeyPair) Public() cryptodkg.Point { return k.inner.Public }

// Sign produces an EdDSA signature over msg with the long-term key.
func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	return k.inner.Sign(msg)
}

// Verify checks an EdDSA signature over msg against public.
func Verify(public cryptodkg.Point, msg, sig []byte) error {
	return eddsa.Verify(public, msg, sig)
}

// MarshalBinary encodes the key pair as the seed||public material eddsa
// uses internally, suitable for persistence.
func (k *KeyPair) MarshalBinary() ([]byte, error) {
	return k.inner.MarshalBinary()
}

// KeyPairFromBinary decodes a key pair persisted by MarshalBinary.
func KeyPairFromBinary(buf []byte) (*KeyPair, error) {
	e := &eddsa.EdDSA{}
	if err := e.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return &KeyPair{inner: e}, nil
}
