package committeelog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/key"
	"github.com/driftcommittee/node/uri"
)

type mapResolver map[string]cryptodkg.Point

func (m mapResolver) Resolve(did string) (cryptodkg.Point, error) {
	p, ok := m[did]
	if !ok {
		return nil, fmt.Errorf("unknown did %s", did)
	}
	return p, nil
}

func TestCommitteeLogVerificationRoundTrip(t *testing.T) {
	committeeKey := key.NewKeyPair()
	resolver := mapResolver{"did:example:committee": committeeKey.Public()}

	out, err := uri.ParseOutputUri("none")
	require.NoError(t, err)
	data := "hi"
	log := &CommitteeLog{
		CommitteeDid: "did:example:committee",
		RequestId:    "req-1",
		Result:       Success,
		OutputUri:    &out,
		Data:         &data,
	}

	canonical, err := log.CanonicalBytes()
	require.NoError(t, err)
	sig, err := committeeKey.Sign(canonical)
	require.NoError(t, err)
	log.Sign(sig)

	require.NoError(t, log.Verify(resolver))

	mutated := *log
	mutatedData := "tampered"
	mutated.Data = &mutatedData
	require.Error(t, mutated.Verify(resolver))
}

func TestCommitteeLogUnsignedVerifyFails(t *testing.T) {
	log := &CommitteeLog{CommitteeDid: "did:example:committee", RequestId: "r", Result: Failure}
	require.ErrorIs(t, log.Verify(mapResolver{}), ErrUnsigned)
}

func TestCanonicalSerializationDeterministic(t *testing.T) {
	out, err := uri.ParseOutputUri("iota:index:tag1")
	require.NoError(t, err)
	data := "payload"
	log := &CommitteeLog{CommitteeDid: "did:x", RequestId: "r1", Result: Success, OutputUri: &out, Data: &data}

	a, err := log.CanonicalBytes()
	require.NoError(t, err)
	b, err := log.CanonicalBytes()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestWorkingNodesAndLeader(t *testing.T) {
	alice := key.NewKeyPair()
	bob := key.NewKeyPair()
	carol := key.NewKeyPair()
	resolver := mapResolver{
		"did:z:alice": alice.Public(),
		"did:a:bob":   bob.Public(),
		"did:m:carol": carol.Public(),
	}
	allDids := []string{"did:z:alice", "did:a:bob", "did:m:carol"}

	processed := []cryptodkg.Point{alice.Public(), bob.Public(), carol.Public()}
	bad := []cryptodkg.Point{carol.Public()}

	working, err := WorkingNodes(resolver, allDids, processed, bad)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"did:z:alice", "did:a:bob"}, working)
	require.True(t, IsLeader("did:a:bob", working))
	require.False(t, IsLeader("did:z:alice", working))

	absent, err := AbsentNodes(resolver, allDids, []cryptodkg.Point{alice.Public()})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"did:a:bob", "did:m:carol"}, absent)
}

func TestNodeSignatureLogRoundTrip(t *testing.T) {
	node := key.NewKeyPair()
	resolver := mapResolver{"did:example:node": node.Public()}

	log := &NodeSignatureLog{
		SessionId:   "session-1",
		SenderDid:   "did:example:node",
		AbsentNodes: []string{"did:example:absent"},
		BadSigners:  nil,
	}
	require.NoError(t, log.Sign(node.Sign))
	require.NoError(t, log.Verify(resolver))

	log.AbsentNodes = append(log.AbsentNodes, "did:example:extra")
	require.Error(t, log.Verify(resolver))
}
