package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/driftcommittee/node/committeelog"
	"github.com/driftcommittee/node/handler"
	"github.com/driftcommittee/node/metrics"
	"github.com/driftcommittee/node/transport"
)

// runRequestLoop listens on the committee's own tag for inbound requests
// and serves each one concurrently, for as long as ctx stays alive.
func (o *Orchestrator) runRequestLoop(ctx context.Context, h *handler.Handler) error {
	ch, err := o.cfg.Bus.Listen(ctx, h.CommitteeDid)
	if err != nil {
		return fmt.Errorf("orchestrator: listen on committee tag: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for {
		select {
		case <-gctx.Done():
			return g.Wait()
		case msg, ok := <-ch:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				o.serveRequest(gctx, msg, h)
				return nil
			})
		}
	}
}

// serveRequest decodes a single inbound message as a GenericRequest,
// dropping it with a warning on parse failure, then dispatches it to the
// handler using the transport-assigned message id as the session id
// every listener derives identically. Only the working-node leader
// publishes the resulting signed log, since Bus.Publish mints a fresh
// message id on every call and every other node publishing the same
// log would just be noise on the committee tag.
func (o *Orchestrator) serveRequest(ctx context.Context, msg transport.Message, h *handler.Handler) {
	var req handler.GenericRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		o.logger.Warnw("dropping malformed request", "error", err)
		metrics.RequestsTotal.WithLabelValues("malformed").Inc()
		return
	}

	logEntry, workingNodes, err := h.HandleRequest(ctx, req, msg.MessageId)
	if err != nil {
		o.logger.Warnw("request handling failed", "session", msg.MessageId, "error", err)
		metrics.RequestsTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.RequestsTotal.WithLabelValues(string(logEntry.Result)).Inc()

	if !committeelog.IsLeader(o.selfDid, workingNodes) {
		return
	}

	payload, err := json.Marshal(logEntry)
	if err != nil {
		o.logger.Warnw("marshal committee log failed", "session", msg.MessageId, "error", err)
		return
	}
	if _, err := o.cfg.Bus.Publish(ctx, payload, h.CommitteeDid); err != nil {
		o.logger.Warnw("publish committee log failed", "session", msg.MessageId, "error", err)
	}
}
