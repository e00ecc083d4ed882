// Package handler implements the request/response cycle a committee
// serves per inbound GenericRequest: resolve the input data, optionally
// store it, run the signing FSM over the resulting committee log, and
// hand the caller the signed log plus the set of nodes that actually
// participated.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/driftcommittee/node/committeelog"
	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
	"github.com/driftcommittee/node/fsm"
	"github.com/driftcommittee/node/log"
	"github.com/driftcommittee/node/metrics"
	"github.com/driftcommittee/node/signfsm"
	"github.com/driftcommittee/node/transport"
	"github.com/driftcommittee/node/uri"
)

// GenericRequest is the wire format of an inbound request.
type GenericRequest struct {
	InputUri   string `json:"input_uri"`
	Execution  string `json:"execution"`
	Signature  bool   `json:"signature"`
	OutputUri  string `json:"output_uri"`
	StorageUri string `json:"storage_uri"`
}

// ErrBadInput reports a malformed request: an unparseable URI, an
// unsupported payload, or text expected where non-UTF-8 bytes arrived.
type ErrBadInput struct{ Cause error }

func (e *ErrBadInput) Error() string { return fmt.Sprintf("handler: bad input: %v", e.Cause) }
func (e *ErrBadInput) Unwrap() error { return e.Cause }

// Handler owns everything one node needs to answer requests: the data
// sources, the completed distributed key share and its own index into
// the sorted participant set, and the shared sign-FSM channel pair.
//
// It depends only on the completed DistKeyShare and participant
// metadata rather than a live *cryptodkg.Dkg, since after a restart the
// orchestrator has nothing but the persisted share to rebuild from —
// there is no DKG generator to resume.
type Handler struct {
	BlobStore      transport.BlobStore
	MessageFetcher transport.MessageFetcher
	HTTPClient     *http.Client

	Participants []cryptodkg.Point
	Threshold    int
	Share        *cryptodkg.DistKeyShare
	Secret       cryptodkg.Scalar
	OwnIndex     int
	CommitteeDid string
	AllDids      []string
	DidResolver  committeelog.DidResolver

	// SignChannel is the shared, session-id-filtered channel every Sign
	// FSM instance reads its feed from and also writes its own
	// WaitingDone timeout sentinel into.
	SignChannel chan feed.MessageWrapper[signfsm.Message]
	SignOutput  chan<- feed.MessageWrapper[signfsm.Message]
	SleepTime   time.Duration

	logger log.Logger
}

// New builds a Handler, deriving OwnIndex from ownPublic's position among
// the sorted participants.
func New(participants []cryptodkg.Point, threshold int, share *cryptodkg.DistKeyShare, secret cryptodkg.Scalar, ownPublic cryptodkg.Point, committeeDid string, allDids []string, resolver committeelog.DidResolver, blobStore transport.BlobStore, fetcher transport.MessageFetcher, signChannel chan feed.MessageWrapper[signfsm.Message], signOutput chan<- feed.MessageWrapper[signfsm.Message], sleepTime time.Duration) (*Handler, error) {
	ownIndex := -1
	for i, p := range participants {
		if p.Equal(ownPublic) {
			ownIndex = i
			break
		}
	}
	if ownIndex < 0 {
		return nil, errors.New("handler: own public key not found among participants")
	}
	return &Handler{
		BlobStore:      blobStore,
		MessageFetcher: fetcher,
		HTTPClient:     http.DefaultClient,
		Participants:   participants,
		Threshold:      threshold,
		Share:          share,
		Secret:         secret,
		OwnIndex:       ownIndex,
		CommitteeDid:   committeeDid,
		AllDids:        allDids,
		DidResolver:    resolver,
		SignChannel:    signChannel,
		SignOutput:     signOutput,
		SleepTime:      sleepTime,
		logger:         log.DefaultLogger().Named("handler"),
	}, nil
}

// HandleRequest is the full request dispatch: resolve input, apply the
// storage branch, sign the resulting log, and return it with the set of
// working-node DIDs for the caller's leader-publish decision.
func (h *Handler) HandleRequest(ctx context.Context, req GenericRequest, sessionID string) (*committeelog.CommitteeLog, []string, error) {
	outputUri, err := uri.ParseOutputUri(req.OutputUri)
	if err != nil {
		return nil, nil, &ErrBadInput{Cause: err}
	}

	logEntry := &committeelog.CommitteeLog{
		CommitteeDid: h.CommitteeDid,
		RequestId:    sessionID,
		Result:       committeelog.Failure,
		OutputUri:    &outputUri,
	}

	data, err := h.getData(ctx, req.InputUri)
	if err != nil {
		var badInput *ErrBadInput
		if errors.As(err, &badInput) {
			return nil, nil, err
		}
		h.logger.Warnw("get_data failed", "session", sessionID, "error", err)
		return h.signAndFinish(logEntry, sessionID)
	}

	storageUri, err := uri.ParseStorageUri(req.StorageUri)
	if err != nil {
		return nil, nil, &ErrBadInput{Cause: err}
	}

	switch storageUri.Kind {
	case uri.StorageLocal:
		if err := h.BlobStore.Put(ctx, storageUri.Key, data); err == nil {
			logEntry.Result = committeelog.Success
		} else {
			h.logger.Warnw("blob store put failed", "session", sessionID, "error", err)
		}
	default:
		if !utf8.Valid(data) {
			return nil, nil, &ErrBadInput{Cause: fmt.Errorf("input data is not valid utf-8")}
		}
		text := string(data)
		logEntry.Result = committeelog.Success
		logEntry.Data = &text
	}

	return h.signAndFinish(logEntry, sessionID)
}

// getData is the URI-scheme-driven fetcher backing every InputUri
// variant.
func (h *Handler) getData(ctx context.Context, inputUri string) ([]byte, error) {
	parsed, err := uri.ParseInputUri(inputUri)
	if err != nil {
		return nil, &ErrBadInput{Cause: err}
	}

	switch parsed.Kind {
	case uri.InputIota:
		data, err := h.MessageFetcher.Fetch(ctx, parsed.IotaID)
		if err != nil {
			return nil, &transport.ErrTransport{Cause: err}
		}
		return data, nil
	case uri.InputLocal:
		data, err := h.BlobStore.Get(ctx, parsed.Key)
		if err != nil {
			return nil, &transport.ErrStorageIO{Cause: err}
		}
		return data, nil
	case uri.InputLiteral:
		return []byte(parsed.Literal), nil
	case uri.InputURL:
		return h.getDataFromURL(ctx, parsed.URL.String())
	default:
		return nil, &ErrBadInput{Cause: fmt.Errorf("unsupported input uri kind")}
	}
}

func (h *Handler) getDataFromURL(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ErrBadInput{Cause: err}
	}
	resp, err := h.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &transport.ErrTransport{Cause: err}
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// signAndFinish canonicalizes logEntry, runs the sign FSM over the
// canonical bytes, and assembles the final signed log plus provenance.
func (h *Handler) signAndFinish(logEntry *committeelog.CommitteeLog, sessionID string) (*committeelog.CommitteeLog, []string, error) {
	canonical, err := logEntry.CanonicalBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("handler: canonicalize committee log: %w", err)
	}

	terminal, err := h.runSignFsm(canonical, sessionID)
	if err != nil {
		metrics.SigningSessionsTotal.WithLabelValues("error").Inc()
		return nil, nil, fmt.Errorf("handler: sign fsm: %w", err)
	}
	if terminal.Kind != signfsm.Completed {
		metrics.SigningSessionsTotal.WithLabelValues("failed").Inc()
		return nil, nil, errors.New("handler: signing session failed to reach a quorum")
	}
	metrics.SigningSessionsTotal.WithLabelValues("completed").Inc()

	logEntry.Sign(terminal.Signature)

	workingNodes, err := committeelog.WorkingNodes(h.DidResolver, h.AllDids, terminal.ProcessedPartialOwners, terminal.BadSigners)
	if err != nil {
		return nil, nil, fmt.Errorf("handler: compute working nodes: %w", err)
	}
	return logEntry, workingNodes, nil
}

func (h *Handler) runSignFsm(message []byte, sessionID string) (signfsm.Terminal, error) {
	dss, err := cryptodkg.NewDss(h.OwnIndex, h.Secret, h.Participants, h.Share, message, h.Threshold)
	if err != nil {
		return signfsm.Terminal{}, err
	}
	initial, err := signfsm.NewInitializing(dss, sessionID, h.SignChannel, h.SleepTime)
	if err != nil {
		return signfsm.Terminal{}, err
	}

	f := feed.New[signfsm.Message](h.SignChannel, sessionID)
	sm := fsm.New[signfsm.Message](initial, sessionID, f, h.SignOutput, "fsm:sign")
	result, err := sm.Run()
	if err != nil {
		return signfsm.Terminal{}, err
	}
	return result.(signfsm.Terminal), nil
}
