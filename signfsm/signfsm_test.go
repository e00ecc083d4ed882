package signfsm

import (
	"sync"
	"testing"
	"time"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/fsm"
	"github.com/stretchr/testify/require"
)

// buildDsss runs a full n-node DKG in-process and returns one Dss per node,
// all sharing the same completed group key, grounding scenarios S1-S2.
func buildDsss(t *testing.T, n int, msg []byte) ([]*cryptodkg.Dss, []cryptodkg.Point, int) {
	t.Helper()
	privates := make([]cryptodkg.Scalar, n)
	publics := make([]cryptodkg.Point, n)
	for i := range privates {
		privates[i] = cryptodkg.Suite.Scalar().Pick(cryptodkg.Suite.RandomStream())
		publics[i] = cryptodkg.Suite.Point().Mul(privates[i], nil)
	}
	sorted := cryptodkg.SortParticipants(publics)
	threshold := cryptodkg.Threshold(n)

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

	dsss := make([]*cryptodkg.Dss, n)
	for i, d := range dkgs {
		require.True(t, d.Certified())
		share, err := d.DistKeyShare()
		require.NoError(t, err)
		dss, err := cryptodkg.NewDss(i, privates[i], sorted, share, msg, threshold)
		require.NoError(t, err)
		dsss[i] = dss
	}

	return dsss, sorted, threshold
}

// runSignNode drives one node's sign FSM against a shared in-memory
// broadcast bus, identical in shape to dkgfsm's node-relay test harness.
func runSignNode(dss *cryptodkg.Dss, sessionID string, sleepTime time.Duration, bus []chan feed.MessageWrapper[Message], idx int, wg *sync.WaitGroup, results []*Terminal, errs []error) {
	defer wg.Done()

	in := make(chan feed.MessageWrapper[Message], 256)
	out := make(chan feed.MessageWrapper[Message], 256)

	go func() {
		for m := range out {
			for _, ch := range bus {
				ch <- m
			}
		}
	}()
	go func() {
		for m := range bus[idx] {
			in <- m
		}
	}()

	initial, err := NewInitializing(dss, sessionID, in, sleepTime)
	if err != nil {
		errs[idx] = err
		return
	}
	f := feed.New[Message](in, sessionID)
	sm := fsm.New[Message](initial, sessionID, f, out, "fsm:sign")

	result, err := sm.Run()
	if err != nil {
		errs[idx] = err
		return
	}
	terminal := result.(Terminal)
	results[idx] = &terminal
}

func TestSignFsmThreeNodeHappyPath(t *testing.T) {
	const n = 3
	dsss, _, _ := buildDsss(t, n, []byte("attest this"))

	bus := make([]chan feed.MessageWrapper[Message], n)
	for i := range bus {
		bus[i] = make(chan feed.MessageWrapper[Message], 4096)
	}

	results := make([]*Terminal, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go runSignNode(dsss[i], "sign-session", 2*time.Second, bus, i, &wg, results, errs)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		require.Equal(t, Completed, results[i].Kind)
		require.Empty(t, results[i].BadSigners)
		require.Len(t, results[i].ProcessedPartialOwners, n)
		require.NotEmpty(t, results[i].Signature)
	}
}

// TestSignFsmAbsentSigner grounds S2: only threshold-many of the three
// nodes participate; the short collection window expires and the survivors
// still finish, short one owner from processed_partial_owners.
func TestSignFsmAbsentSigner(t *testing.T) {
	const n = 3
	dsss, _, threshold := buildDsss(t, n, []byte("attest this"))
	require.Equal(t, 2, threshold)

	bus := make([]chan feed.MessageWrapper[Message], n)
	for i := range bus {
		bus[i] = make(chan feed.MessageWrapper[Message], 4096)
	}

	results := make([]*Terminal, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go runSignNode(dsss[i], "sign-session-absent", 50*time.Millisecond, bus, i, &wg, results, errs)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		require.Equal(t, Completed, results[i].Kind)
		require.Len(t, results[i].ProcessedPartialOwners, 2)
		require.NotEmpty(t, results[i].Signature)
	}
}
