package dkgfsm

import (
	"testing"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/stretchr/testify/require"
)

func threeParticipants(t *testing.T) ([]cryptodkg.Scalar, []cryptodkg.Point) {
	t.Helper()
	privates := make([]cryptodkg.Scalar, 3)
	publics := make([]cryptodkg.Point, 3)
	for i := range privates {
		privates[i] = cryptodkg.Suite.Scalar().Pick(cryptodkg.Suite.RandomStream())
		publics[i] = cryptodkg.Suite.Point().Mul(privates[i], nil)
	}
	return privates, publics
}

func TestEncodeDecodeMessageRoundTripsPublicKey(t *testing.T) {
	_, publics := threeParticipants(t)
	wrapped := feed.MessageWrapper[Message]{
		SessionID: "session",
		Message:   Message{Kind: MsgPublicKey, PublicKey: publics[0], DidURL: "did:example:node0"},
	}

	data, err := EncodeMessage(wrapped)
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, "session", got.SessionID)
	require.Equal(t, MsgPublicKey, got.Message.Kind)
	require.Equal(t, "did:example:node0", got.Message.DidURL)
	require.True(t, publics[0].Equal(got.Message.PublicKey))
}

func TestEncodeDecodeMessageRoundTripsDeal(t *testing.T) {
	privates, publics := threeParticipants(t)

	dkg0, err := cryptodkg.NewDkg(privates[0], publics)
	require.NoError(t, err)
	deals, err := dkg0.Deals()
	require.NoError(t, err)
	deal := deals[1]
	require.NotNil(t, deal)

	wrapped := feed.MessageWrapper[Message]{
		SessionID: "dkg:session",
		Message: Message{
			Kind:            MsgDeal,
			DealDestination: publics[1],
			Deal:            deal,
		},
	}

	data, err := EncodeMessage(wrapped)
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, MsgDeal, got.Message.Kind)
	require.NotNil(t, got.Message.Deal)
	require.True(t, publics[1].Equal(got.Message.DealDestination))

	dkg1, err := cryptodkg.NewDkg(privates[1], publics)
	require.NoError(t, err)
	_, err = dkg1.ProcessDeal(got.Message.Deal)
	require.NoError(t, err)
}

func TestEncodeDecodeMessageRoundTripsResponse(t *testing.T) {
	privates, publics := threeParticipants(t)

	dkg0, err := cryptodkg.NewDkg(privates[0], publics)
	require.NoError(t, err)
	deals, err := dkg0.Deals()
	require.NoError(t, err)

	dkg1, err := cryptodkg.NewDkg(privates[1], publics)
	require.NoError(t, err)
	resp, err := dkg1.ProcessDeal(deals[1])
	require.NoError(t, err)
	require.NotNil(t, resp)

	wrapped := feed.MessageWrapper[Message]{
		SessionID: "dkg:session",
		Message: Message{
			Kind:           MsgResponse,
			ResponseSource: publics[1],
			Response:       resp,
		},
	}

	data, err := EncodeMessage(wrapped)
	require.NoError(t, err)

	got, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, MsgResponse, got.Message.Kind)
	require.NotNil(t, got.Message.Response)
	require.Equal(t, resp.Index, got.Message.Response.Index)
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	_, err := DecodeMessage([]byte("not a gob stream"))
	require.Error(t, err)
}
