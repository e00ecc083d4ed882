// Package orchestrator drives one node through its full lifecycle: load or
// create its long-term identity, run the DKG protocol if no committee state
// is persisted yet, publish the committee's DID document if not already
// published, then serve the steady-state request loop. It also owns the
// two relay pairs (DKG, scoped to one DKG run; Sign, long-lived) that bridge the FSM packages'
// channel-based protocol to a real tagged pub/sub transport.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/driftcommittee/node/committeelog"
	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/handler"
	"github.com/driftcommittee/node/key"
	"github.com/driftcommittee/node/log"
	"github.com/driftcommittee/node/signfsm"
	"github.com/driftcommittee/node/transport"
)

// Bus bundles the publish/subscribe/fetch operations the orchestrator's
// relays and request loop need from the transport adapter.
type Bus interface {
	transport.Publisher
	transport.Listener
	transport.MessageFetcher
}

// DidRegistry bundles the DID-registry operations the orchestrator needs
// to create, sign, publish, and resolve both self and committee documents.
type DidRegistry interface {
	committeelog.DidResolver
	NewDocument(pub cryptodkg.Point, memberDids []string) *key.Document
	Sign(doc *key.Document, signer func([]byte) ([]byte, error)) error
	Publish(doc *key.Document) (string, error)
}

// Config is everything an Orchestrator needs injected: the transport
// backends plus the tags and timings the `node` command exposes as
// flags.
type Config struct {
	StatePath          string
	GovernorTag        string
	Bus                Bus
	BlobStore          transport.BlobStore
	DidRegistry        DidRegistry
	SignatureSleepTime time.Duration
}

// Orchestrator drives one node through its three lifecycle phases: DKG,
// committee DID publication, and the steady-state request loop.
type Orchestrator struct {
	cfg     Config
	keyPair *key.KeyPair
	state   *key.SaveData
	selfDid string
	logger  log.Logger

	// signChannel/signOutput are shared across every Sign FSM instance
	// this node ever runs — the committee-did signing and every
	// subsequent per-request signing alike — demuxed by session id the
	// same way handler.Handler's tests already exercise.
	signChannel chan feed.MessageWrapper[signfsm.Message]
	signOutput  chan feed.MessageWrapper[signfsm.Message]

	closed atomic.Bool
	cancel context.CancelFunc
}

// New loads or creates the node's persisted state and long-term identity,
// publishes its self-DID document if not already known, and returns a
// ready-to-Run Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	state, err := key.Load(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load state: %w", err)
	}
	kp, err := key.LoadOrCreateKeyPair(cfg.StatePath, state)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load key pair: %w", err)
	}

	o := &Orchestrator{
		cfg:         cfg,
		keyPair:     kp,
		state:       state,
		logger:      log.DefaultLogger().Named("orchestrator"),
		signChannel: make(chan feed.MessageWrapper[signfsm.Message], 4096),
		signOutput:  make(chan feed.MessageWrapper[signfsm.Message], 4096),
	}
	if err := o.ensureSelfDid(); err != nil {
		return nil, err
	}
	return o, nil
}

// ensureSelfDid publishes (or re-publishes) the node's self-signed DID
// document. diddoc's registry assigns a DID deterministically from the
// document's canonical bytes, so a restart that re-publishes an unchanged
// document is a no-op that simply recovers the same DID string.
func (o *Orchestrator) ensureSelfDid() error {
	doc := o.state.NodeState.DidDocument
	if doc == nil {
		doc = o.cfg.DidRegistry.NewDocument(o.keyPair.Public(), nil)
		if err := o.cfg.DidRegistry.Sign(doc, o.keyPair.Sign); err != nil {
			return fmt.Errorf("orchestrator: sign self did document: %w", err)
		}
		o.state.NodeState.DidDocument = doc
	}

	did, err := o.cfg.DidRegistry.Publish(doc)
	if err != nil {
		return fmt.Errorf("orchestrator: publish self did document: %w", err)
	}
	o.selfDid = did

	return key.Save(o.cfg.StatePath, o.state)
}

// SelfDid returns the node's own published DID, available once New has
// returned.
func (o *Orchestrator) SelfDid() string { return o.selfDid }

// Run drives the node through whichever phases its persisted state hasn't
// reached yet, then serves the request loop until ctx is canceled or
// Shutdown is called.
func (o *Orchestrator) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	defer cancel()

	if o.state.CommitteeState == nil {
		if err := o.runDkgPhase(runCtx); err != nil {
			return fmt.Errorf("orchestrator: dkg phase: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return o.relaySignListen(gctx) })
	g.Go(func() error { return o.relaySignBroadcast(gctx) })
	g.Go(func() error {
		if o.state.CommitteeState.CommitteeDid == "" {
			if err := o.runCommitteeDidPhase(); err != nil {
				return fmt.Errorf("orchestrator: committee did phase: %w", err)
			}
		}
		h, err := o.buildHandler()
		if err != nil {
			return err
		}
		return o.runRequestLoop(gctx, h)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Shutdown unwinds every relay and the request loop: it flips the closed
// flag (mirroring the original's is_closed check between accepts/sends)
// and cancels the run context so blocked channel reads unwind immediately
// rather than waiting for their next poll.
func (o *Orchestrator) Shutdown() {
	o.closed.Store(true)
	if o.cancel != nil {
		o.cancel()
	}
}

func (o *Orchestrator) buildHandler() (*handler.Handler, error) {
	cs := o.state.CommitteeState
	if cs == nil {
		return nil, errors.New("orchestrator: no committee state to build a handler from")
	}
	share, err := cryptodkg.UnmarshalDistKeyShare(cs.DistKeyShareBytes)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: unmarshal dist key share: %w", err)
	}
	participants, err := o.resolveParticipants(cs.DidUrls)
	if err != nil {
		return nil, err
	}
	threshold := cryptodkg.Threshold(len(participants))

	h, err := handler.New(
		participants, threshold, share, o.keyPair.Private(), o.keyPair.Public(),
		cs.CommitteeDid, cs.DidUrls, o.cfg.DidRegistry,
		o.cfg.BlobStore, o.cfg.Bus,
		o.signChannel, o.signOutput, o.cfg.SignatureSleepTime,
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build handler: %w", err)
	}
	return h, nil
}

// resolveParticipants resolves every DID to its bound point and returns
// them in the canonical sorted order the DKG/DSS index space uses. The
// persisted did_urls order is arrival order, not index order, so it is
// never used directly for index-sensitive operations.
func (o *Orchestrator) resolveParticipants(dids []string) ([]cryptodkg.Point, error) {
	points := make([]cryptodkg.Point, len(dids))
	var resolveErrs *multierror.Error
	for i, did := range dids {
		pub, err := o.cfg.DidRegistry.Resolve(did)
		if err != nil {
			resolveErrs = multierror.Append(resolveErrs, fmt.Errorf("resolve participant %q: %w", did, err))
			continue
		}
		points[i] = pub
	}
	if err := resolveErrs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return cryptodkg.SortParticipants(points), nil
}

func indexOfPoint(points []cryptodkg.Point, target cryptodkg.Point) int {
	for i, p := range points {
		if p.Equal(target) {
			return i
		}
	}
	return -1
}

// peerTags returns every DID in all except self — the set of tags a relay
// subscribes to, since a node only listens for its peers and never its
// own broadcast.
func peerTags(all []string, self string) []string {
	peers := make([]string, 0, len(all))
	for _, did := range all {
		if did != self {
			peers = append(peers, did)
		}
	}
	return peers
}
