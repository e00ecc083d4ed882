package signfsm

import (
	"testing"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/stretchr/testify/require"
)

// certifiedShares runs a full three-node DKG to completion and returns the
// sorted participants plus each node's resulting DistKeyShare, the setup a
// real Dss session needs.
func certifiedShares(t *testing.T) ([]cryptodkg.Scalar, []cryptodkg.Point, []*cryptodkg.DistKeyShare) {
	t.Helper()
	const n = 3
	privates := make([]cryptodkg.Scalar, n)
	publics := make([]cryptodkg.Point, n)
	for i := range privates {
		privates[i] = cryptodkg.Suite.Scalar().Pick(cryptodkg.Suite.RandomStream())
		publics[i] = cryptodkg.Suite.Point().Mul(privates[i], nil)
	}
	sorted := cryptodkg.SortParticipants(publics)

	dkgs := make([]*cryptodkg.Dkg, n)
	for i, priv := range privates {
		d, err := cryptodkg.NewDkg(priv, sorted)
		require.NoError(t, err)
		dkgs[i] = d
	}

	dealsByNode := make([]map[int]*cryptodkg.Deal, n)
	for i, d := range dkgs {
		deals, err := d.Deals()
		require.NoError(t, err)
		dealsByNode[i] = deals
	}

	var responses []*cryptodkg.Response
	for from, deals := range dealsByNode {
		for to, deal := range deals {
			if to == from {
				continue
			}
			resp, err := dkgs[to].ProcessDeal(deal)
			require.NoError(t, err)
			responses = append(responses, resp)
		}
	}

	for i, d := range dkgs {
		for _, resp := range responses {
			if int(resp.Response.Index) == i {
				continue
			}
			just, err := d.ProcessResponse(resp)
			require.NoError(t, err)
			if just != nil {
				require.NoError(t, d.ProcessJustification(just))
			}
		}
	}

	shares := make([]*cryptodkg.DistKeyShare, n)
	for i, d := range dkgs {
		require.True(t, d.Certified())
		share, err := d.DistKeyShare()
		require.NoError(t, err)
		shares[i] = share
	}

	return privates, sorted, shares
}

func TestEncodeDecodeMessageRoundTripsPartialSignature(t *testing.T) {
	privates, sorted, shares := certifiedShares(t)
	threshold := cryptodkg.Threshold(len(sorted))

	dss0, err := cryptodkg.NewDss(0, privates[0], sorted, shares[0], []byte("hello"), threshold)
	require.NoError(t, err)
	partial, err := dss0.PartialSig()
	require.NoError(t, err)

	wrapped := feed.MessageWrapper[Message]{
		SessionID: "sign:session",
		Message:   Message{Kind: MsgPartialSignature, Partial: partial},
	}

	data, err := EncodeMessage(wrapped)
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, "sign:session", got.SessionID)
	require.Equal(t, MsgPartialSignature, got.Message.Kind)
	require.NotNil(t, got.Message.Partial)

	dss1, err := cryptodkg.NewDss(1, privates[1], sorted, shares[1], []byte("hello"), threshold)
	require.NoError(t, err)
	require.NoError(t, dss1.ProcessPartialSig(got.Message.Partial))
}

func TestEncodeDecodeMessageRoundTripsWaitingDone(t *testing.T) {
	wrapped := feed.MessageWrapper[Message]{
		SessionID: "sign:session",
		Message:   Message{Kind: MsgWaitingDone},
	}

	data, err := EncodeMessage(wrapped)
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, MsgWaitingDone, got.Message.Kind)
	require.Nil(t, got.Message.Partial)
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	_, err := DecodeMessage([]byte("not a gob stream"))
	require.Error(t, err)
}
