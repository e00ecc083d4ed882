package diddoc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftcommittee/node/key"
)

func TestNewDocumentSignPublishResolve(t *testing.T) {
	registry := New()
	owner := key.NewKeyPair()

	doc := registry.NewDocument(owner.Public(), nil)
	require.NoError(t, registry.Sign(doc, owner.Sign))

	did, err := registry.Publish(doc)
	require.NoError(t, err)
	require.NotEmpty(t, did)

	resolved, err := registry.Resolve(did)
	require.NoError(t, err)
	require.True(t, owner.Public().Equal(resolved))

	fullDoc, err := registry.ResolveDocument(did)
	require.NoError(t, err)
	require.NoError(t, fullDoc.VerifySignature(owner.Public()))
}

func TestResolveUnknownDidFails(t *testing.T) {
	registry := New()
	_, err := registry.Resolve("did:committee:nonexistent")
	require.Error(t, err)
}

func TestPublishIsDeterministicForIdenticalDocuments(t *testing.T) {
	registry := New()
	owner := key.NewKeyPair()

	docA := registry.NewDocument(owner.Public(), []string{"did:x"})
	require.NoError(t, registry.Sign(docA, owner.Sign))
	didA, err := registry.Publish(docA)
	require.NoError(t, err)

	docB := registry.NewDocument(owner.Public(), []string{"did:x"})
	require.NoError(t, registry.Sign(docB, owner.Sign))
	didB, err := registry.Publish(docB)
	require.NoError(t, err)

	require.Equal(t, didA, didB)
}
