package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/driftcommittee/node/dkgfsm"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/signfsm"
	"github.com/driftcommittee/node/transport"
)

// relayListen subscribes to one tag per peer (spec's "one task per
// subscribed tag"), decodes every inbound message with decode, and
// forwards it into out. A message that fails to decode is dropped rather
// than treated as fatal: the transport's at-least-once delivery means a
// stray or corrupt payload shouldn't take the whole relay down.
func relayListen[M any](ctx context.Context, bus transport.Listener, tags []string, decode func([]byte) (feed.MessageWrapper[M], error), out chan<- feed.MessageWrapper[M]) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, tag := range tags {
		tag := tag
		g.Go(func() error {
			ch, err := bus.Listen(gctx, tag)
			if err != nil {
				return fmt.Errorf("orchestrator: listen on %q: %w", tag, err)
			}
			for {
				select {
				case <-gctx.Done():
					return nil
				case msg, ok := <-ch:
					if !ok {
						return nil
					}
					wrapped, err := decode(msg.Data)
					if err != nil {
						continue
					}
					select {
					case out <- wrapped:
					case <-gctx.Done():
						return nil
					}
				}
			}
		})
	}
	return g.Wait()
}

// relayBroadcast reads every outbound wrapped message the local FSM
// produces and publishes it on the transport under ownTag, the node's own
// tag that its peers subscribe to.
func relayBroadcast[M any](ctx context.Context, bus transport.Publisher, ownTag string, encode func(feed.MessageWrapper[M]) ([]byte, error), in <-chan feed.MessageWrapper[M]) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-in:
			if !ok {
				return nil
			}
			data, err := encode(m)
			if err != nil {
				return fmt.Errorf("orchestrator: encode outbound message: %w", err)
			}
			if _, err := bus.Publish(ctx, data, ownTag); err != nil {
				return fmt.Errorf("orchestrator: publish outbound message: %w", err)
			}
		}
	}
}

// relaySignListen and relaySignBroadcast are the long-lived Sign relay
// pair: started once after the DKG phase completes and kept running for
// the rest of the node's life, shared by the committee-did signing and
// every subsequent per-request signing.
func (o *Orchestrator) relaySignListen(ctx context.Context) error {
	tags := peerTags(o.state.CommitteeState.DidUrls, o.selfDid)
	return relayListen(ctx, o.cfg.Bus, tags, signfsm.DecodeMessage, o.signChannel)
}

func (o *Orchestrator) relaySignBroadcast(ctx context.Context) error {
	return relayBroadcast(ctx, o.cfg.Bus, o.selfDid, signfsm.EncodeMessage, o.signOutput)
}

// relayDkgListen and relayDkgBroadcast are scoped to one DKG run: torn
// down as soon as the FSM reaches its terminal state since no further DKG
// traffic is expected afterward.
func relayDkgListen(ctx context.Context, bus transport.Listener, peers []string, in chan<- feed.MessageWrapper[dkgfsm.Message]) error {
	return relayListen(ctx, bus, peers, dkgfsm.DecodeMessage, in)
}

func relayDkgBroadcast(ctx context.Context, bus transport.Publisher, ownTag string, out <-chan feed.MessageWrapper[dkgfsm.Message]) error {
	return relayBroadcast(ctx, bus, ownTag, dkgfsm.EncodeMessage, out)
}
