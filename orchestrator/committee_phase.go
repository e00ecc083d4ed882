package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/driftcommittee/node/committeelog"
	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/fsm"
	"github.com/driftcommittee/node/key"
	"github.com/driftcommittee/node/signfsm"
)

// runCommitteeDidPhase builds the unsigned committee DID document binding
// the group public key and sorted membership, signs its canonical bytes
// via a dedicated Sign FSM session over the already-running sign relay
// pair, and publishes it. Every node publishes rather than gating on the
// leader-by-min-DID rule used for per-request logs: diddoc's Publish is
// content-addressed and idempotent for an identical document, so there is
// no duplicate-publication cost to avoid here, unlike a committee log
// publish which mints a fresh transport message id on every call.
func (o *Orchestrator) runCommitteeDidPhase() error {
	cs := o.state.CommitteeState
	share, err := cryptodkg.UnmarshalDistKeyShare(cs.DistKeyShareBytes)
	if err != nil {
		return fmt.Errorf("unmarshal dist key share: %w", err)
	}

	participants, err := o.resolveParticipants(cs.DidUrls)
	if err != nil {
		return err
	}
	threshold := cryptodkg.Threshold(len(participants))
	groupPublic := cryptodkg.GroupPublicKey(share)

	sortedDids := append([]string(nil), cs.DidUrls...)
	sort.Strings(sortedDids)

	doc := o.cfg.DidRegistry.NewDocument(groupPublic, sortedDids)
	canonical, err := doc.CanonicalBytes()
	if err != nil {
		return fmt.Errorf("canonicalize committee document: %w", err)
	}

	ownIndex := indexOfPoint(participants, o.keyPair.Public())
	if ownIndex < 0 {
		return errors.New("own key not found among committee participants")
	}

	sessionID := "committee-did:" + strings.Join(sortedDids, ",")
	dss, err := cryptodkg.NewDss(ownIndex, o.keyPair.Private(), participants, share, canonical, threshold)
	if err != nil {
		return fmt.Errorf("build committee did dss: %w", err)
	}
	initial, err := signfsm.NewInitializing(dss, sessionID, o.signChannel, o.cfg.SignatureSleepTime)
	if err != nil {
		return fmt.Errorf("start committee did sign fsm: %w", err)
	}

	f := feed.New[signfsm.Message](o.signChannel, sessionID)
	sm := fsm.New[signfsm.Message](initial, sessionID, f, o.signOutput, "fsm:sign")
	result, err := sm.Run()
	if err != nil {
		return fmt.Errorf("run committee did sign fsm: %w", err)
	}
	terminal := result.(signfsm.Terminal)
	if terminal.Kind != signfsm.Completed {
		return errors.New("committee did signing failed to reach a quorum")
	}

	if err := doc.Sign(func([]byte) ([]byte, error) { return terminal.Signature, nil }); err != nil {
		return fmt.Errorf("attach committee did signature: %w", err)
	}

	did, err := o.cfg.DidRegistry.Publish(doc)
	if err != nil {
		return fmt.Errorf("publish committee did document: %w", err)
	}

	cs.CommitteeDid = did
	if err := key.Save(o.cfg.StatePath, o.state); err != nil {
		return fmt.Errorf("persist committee did: %w", err)
	}

	// WorkingNodes/IsLeader is exercised here too, purely for the log
	// line below — the publish itself isn't gated on it (see doc above).
	if workingNodes, err := committeelog.WorkingNodes(o.cfg.DidRegistry, cs.DidUrls, terminal.ProcessedPartialOwners, terminal.BadSigners); err == nil {
		o.logger.Infow("committee did published", "did", did, "leader", committeelog.IsLeader(o.selfDid, workingNodes))
	} else {
		o.logger.Infow("committee did published", "did", did)
	}
	return nil
}
