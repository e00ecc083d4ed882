package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/dkgfsm"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/fsm"
	"github.com/driftcommittee/node/key"
	"github.com/driftcommittee/node/metrics"
)

// DkgInit is the governor instruction a node waits for before it has any
// committee state: the full membership list by DID, accepted verbatim
// (the original schema's "network" selector is the transport's concern,
// never inspected here).
type DkgInit struct {
	Nodes []string `json:"nodes"`
}

// runDkgPhase waits for a DkgInit instruction naming this node, runs the
// DKG FSM against the listed peers addressed by DID, and persists the
// resulting distributed key share.
func (o *Orchestrator) runDkgPhase(ctx context.Context) error {
	nodes, err := o.awaitDkgInit(ctx)
	if err != nil {
		return fmt.Errorf("await dkg init: %w", err)
	}

	sortedNodes := append([]string(nil), nodes...)
	sort.Strings(sortedNodes)
	sessionID := "dkg:" + strings.Join(sortedNodes, ",")

	dkgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	dkgIn := make(chan feed.MessageWrapper[dkgfsm.Message], 4096)
	dkgOut := make(chan feed.MessageWrapper[dkgfsm.Message], 4096)

	g, gctx := errgroup.WithContext(dkgCtx)
	g.Go(func() error { return relayDkgListen(gctx, o.cfg.Bus, peerTags(nodes, o.selfDid), dkgIn) })
	g.Go(func() error { return relayDkgBroadcast(gctx, o.cfg.Bus, o.selfDid, dkgOut) })

	started := time.Now()
	var terminal dkgfsm.Terminal
	g.Go(func() error {
		defer cancel()
		initial := dkgfsm.NewInitializing(o.keyPair.Private(), o.keyPair.Public(), o.selfDid, len(nodes), o.cfg.DidRegistry)
		f := feed.New[dkgfsm.Message](dkgIn, sessionID)
		sm := fsm.New[dkgfsm.Message](initial, sessionID, f, dkgOut, "fsm:dkg")
		result, err := sm.Run()
		if err != nil {
			return fmt.Errorf("run dkg fsm: %w", err)
		}
		terminal = result.(dkgfsm.Terminal)
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.DkgPhaseDuration.WithLabelValues("failed").Observe(time.Since(started).Seconds())
		return err
	}
	metrics.DkgPhaseDuration.WithLabelValues("completed").Observe(time.Since(started).Seconds())

	share, err := terminal.Dkg.DistKeyShare()
	if err != nil {
		return fmt.Errorf("dkg completed without a usable share: %w", err)
	}
	shareBytes, err := cryptodkg.MarshalDistKeyShare(share)
	if err != nil {
		return fmt.Errorf("marshal dist key share: %w", err)
	}

	o.state.CommitteeState = &key.CommitteeState{
		DistKeyShareBytes: shareBytes,
		DidUrls:           terminal.DidUrls,
	}
	if err := key.Save(o.cfg.StatePath, o.state); err != nil {
		return fmt.Errorf("persist committee state: %w", err)
	}
	o.logger.Infow("dkg completed", "nodes", terminal.DidUrls)
	return nil
}

// awaitDkgInit listens on the governor tag until a DkgInit naming this
// node's own DID arrives; any instruction excluding it is logged and
// skipped, and any message that fails to parse as a DkgInit is dropped.
func (o *Orchestrator) awaitDkgInit(ctx context.Context) ([]string, error) {
	ch, err := o.cfg.Bus.Listen(ctx, o.cfg.GovernorTag)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: listen on governor tag: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil, fmt.Errorf("orchestrator: governor channel closed before dkg init arrived")
			}
			var init DkgInit
			if err := json.Unmarshal(msg.Data, &init); err != nil {
				o.logger.Warnw("dropping malformed governor instruction", "error", err)
				continue
			}
			if !containsDid(init.Nodes, o.selfDid) {
				o.logger.Debugw("governor instruction excludes this node", "nodes", init.Nodes)
				continue
			}
			return init.Nodes, nil
		}
	}
}

func containsDid(dids []string, target string) bool {
	for _, d := range dids {
		if d == target {
			return true
		}
	}
	return false
}
