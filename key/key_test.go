package key

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyPairSignVerifyRoundTrip(t *testing.T) {
	pair := NewKeyPair()
	msg := []byte("attest this")
	sig, err := pair.Sign(msg)
	require.NoError(t, err)
	require.NoError(t, Verify(pair.Public(), msg, sig))

	sig[0] ^= 0xff
	require.Error(t, Verify(pair.Public(), msg, sig))
}

func TestKeyPairBinaryRoundTrip(t *testing.T) {
	pair := NewKeyPair()
	buf, err := pair.MarshalBinary()
	require.NoError(t, err)

	restored, err := KeyPairFromBinary(buf)
	require.NoError(t, err)
	require.True(t, pair.Public().Equal(restored.Public()))
}

func TestDocumentSignVerifyRoundTrip(t *testing.T) {
	pair := NewKeyPair()
	doc := NewDocument(pair.Public(), []string{"did:example:a", "did:example:b"})
	require.NoError(t, doc.Sign(pair.Sign))
	require.NoError(t, doc.VerifySignature(pair.Public()))

	doc.MemberDIDs = append(doc.MemberDIDs, "did:example:c")
	require.Error(t, doc.VerifySignature(pair.Public()))
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	pair := NewKeyPair()
	doc := NewDocument(pair.Public(), []string{"did:example:a"})
	require.NoError(t, doc.Sign(pair.Sign))

	raw, err := doc.MarshalJSON()
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, decoded.UnmarshalJSON(raw))
	require.True(t, pair.Public().Equal(decoded.PublicKey))
	require.Equal(t, doc.MemberDIDs, decoded.MemberDIDs)
	require.NoError(t, decoded.VerifySignature(pair.Public()))
}

func TestSaveDataLoadMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-state.json")
	data, err := Load(path)
	require.NoError(t, err)
	require.Nil(t, data.NodeState)
	require.Nil(t, data.CommitteeState)
}

func TestLoadOrCreateKeyPairPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node-state.json")
	data, err := Load(path)
	require.NoError(t, err)

	pair, err := LoadOrCreateKeyPair(path, data)
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NodeState)

	restoredPair, err := LoadOrCreateKeyPair(path, reloaded)
	require.NoError(t, err)
	require.True(t, pair.Public().Equal(restoredPair.Public()))
}
