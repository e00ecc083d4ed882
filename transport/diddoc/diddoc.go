// Package diddoc implements the DID registry interface in memory:
// documents are held in a map keyed by DID string, giving the
// orchestrator and the DKG Initializing state's DidUrl path something
// real to exercise end-to-end in tests without an actual DID ledger.
package diddoc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/key"
)

// Registry is an in-memory DID document store.
type Registry struct {
	mu        sync.RWMutex
	documents map[string]*key.Document
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{documents: make(map[string]*key.Document)}
}

// NewDocument binds pub and, for a committee document, the sorted member
// DID list. The document is unsigned until Sign is called.
func (r *Registry) NewDocument(pub cryptodkg.Point, memberDids []string) *key.Document {
	return key.NewDocument(pub, memberDids)
}

// Sign attaches a signature over doc's canonical bytes using signer.
func (r *Registry) Sign(doc *key.Document, signer func([]byte) ([]byte, error)) error {
	return doc.Sign(signer)
}

// Publish assigns doc a deterministic DID (derived from its canonical
// bytes) and stores it, returning the assigned DID.
func (r *Registry) Publish(doc *key.Document) (string, error) {
	canonical, err := doc.CanonicalBytes()
	if err != nil {
		return "", fmt.Errorf("diddoc: canonicalize document: %w", err)
	}
	sum := sha256.Sum256(canonical)
	did := "did:committee:" + hex.EncodeToString(sum[:16])

	r.mu.Lock()
	r.documents[did] = doc
	r.mu.Unlock()
	return did, nil
}

// ErrDidNotFound is returned by Resolve for an unknown DID.
type ErrDidNotFound struct{ Did string }

func (e *ErrDidNotFound) Error() string { return fmt.Sprintf("diddoc: unknown did %q", e.Did) }

// ResolveDocument returns the full document bound to did.
func (r *Registry) ResolveDocument(did string) (*key.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[did]
	if !ok {
		return nil, &ErrDidNotFound{Did: did}
	}
	return doc, nil
}

// Resolve implements the dkgfsm/committeelog DidResolver interface,
// extracting the bound public key.
func (r *Registry) Resolve(did string) (cryptodkg.Point, error) {
	doc, err := r.ResolveDocument(did)
	if err != nil {
		return nil, err
	}
	return doc.PublicKey, nil
}
