package cryptodkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistKeyShareMarshalRoundTrip(t *testing.T) {
	const n = 3
	privates, publics := genParticipants(t, n)
	sorted := SortParticipants(publics)

	dkgs := make([]*Dkg, n)
	for i, priv := range privates {
		d, err := NewDkg(priv, sorted)
		require.NoError(t, err)
		dkgs[i] = d
	}

	dealsByNode := make([]map[int]*Deal, n)
	for i, d := range dkgs {
		deals, err := d.Deals()
		require.NoError(t, err)
		dealsByNode[i] = deals
	}

	var responses []*Response
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

	share, err := dkgs[0].DistKeyShare()
	require.NoError(t, err)

	encoded, err := MarshalDistKeyShare(share)
	require.NoError(t, err)

	decoded, err := UnmarshalDistKeyShare(encoded)
	require.NoError(t, err)
	require.Equal(t, share.Share.I, decoded.Share.I)
	require.True(t, share.Share.V.Equal(decoded.Share.V))
	require.Len(t, decoded.Commits, len(share.Commits))
	for i := range share.Commits {
		require.True(t, share.Commits[i].Equal(decoded.Commits[i]))
	}
}
