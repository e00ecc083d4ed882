package cryptodkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func genParticipants(t *testing.T, n int) ([]Scalar, []Point) {
	t.Helper()
	privates := make([]Scalar, n)
	publics := make([]Point, n)
	for i := 0; i < n; i++ {
		privates[i] = Suite.Scalar().Pick(Suite.RandomStream())
		publics[i] = Suite.Point().Mul(privates[i], nil)
	}
	return privates, publics
}

func TestDkgAndDssEndToEnd(t *testing.T) {
	const n = 3
	privates, publics := genParticipants(t, n)
	sorted := SortParticipants(publics)
	threshold := Threshold(n)
	require.Equal(t, 2, threshold)

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

	shares := make([]*DistKeyShare, n)
	for i, d := range dkgs {
		require.True(t, d.Certified())
		share, err := d.DistKeyShare()
		require.NoError(t, err)
		shares[i] = share
	}

	msg := []byte("hello")
	dsss := make([]*Dss, n)
	for i := range dkgs {
		d, err := NewDss(i, privates[i], sorted, shares[i], msg, threshold)
		require.NoError(t, err)
		dsss[i] = d
	}

	partials := make([]*PartialSig, n)
	for i, d := range dsss {
		ps, err := d.PartialSig()
		require.NoError(t, err)
		partials[i] = ps
	}

	for _, d := range dsss {
		for _, ps := range partials {
			require.NoError(t, d.ProcessPartialSig(ps))
		}
	}

	for _, d := range dsss {
		require.True(t, d.EnoughPartialSig())
		sig, err := d.Signature()
		require.NoError(t, err)
		require.NotEmpty(t, sig)
	}
}

func TestClassifyPartialSigError(t *testing.T) {
	require.Equal(t, OutcomeAccepted, ClassifyPartialSigError(nil))
}
