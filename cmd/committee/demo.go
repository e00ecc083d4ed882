// Command committee hosts the node's CLI surface: a urfave/cli/v2
// application exposing the six orchestrator-level subcommands a
// committee deployment needs.
//
// This build has no control-plane RPC server, so there is no real
// "remote node" for --node-url to dial: every command here
// runs against one shared, process-local in-memory transport, blob
// store, and DID registry (the same demo backends the orchestrator's own
// tests use). --node-url is still accepted and parsed for wire-format
// completeness with the rest of the flag surface, but it is not wired to an
// HTTP client; a real deployment would run one `node` process per
// committee member and have the other commands dial each member's
// control API over it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/driftcommittee/node/key"
	"github.com/driftcommittee/node/transport"
	"github.com/driftcommittee/node/transport/diddoc"
	"github.com/driftcommittee/node/transport/fileblob"
	"github.com/driftcommittee/node/transport/memblob"
	"github.com/driftcommittee/node/transport/membus"
	"github.com/driftcommittee/node/transport/s3blob"
)

// defaultStatePath resolves node-state.json under COMMITTEE_STATE_DIR (or
// the working directory if unset).
func defaultStatePath() string {
	dir := os.Getenv("COMMITTEE_STATE_DIR")
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, key.DefaultFileName)
}

var (
	demoOnce     sync.Once
	demoBus      *membus.Bus
	demoRegistry *diddoc.Registry
)

// sharedDemoTransport returns the process-wide bus and DID registry every
// command shares, so a `node` started earlier in this process and a
// `send`/`request`/`verify` invoked later see the same tags and DIDs.
func sharedDemoTransport() (*membus.Bus, *diddoc.Registry) {
	demoOnce.Do(func() {
		demoBus = membus.New()
		demoRegistry = diddoc.New()
	})
	return demoBus, demoRegistry
}

// buildBlobStore constructs the blob store named by --storage, using
// --storage-endpoint as its backend-specific location.
func buildBlobStore(kind, endpoint string) (transport.BlobStore, error) {
	switch kind {
	case "", "memory":
		return memblob.New(), nil
	case "file":
		if endpoint == "" {
			return nil, fmt.Errorf("committee: --storage-endpoint is required for the file backend")
		}
		return fileblob.New(endpoint), nil
	case "s3":
		bucket, region, found := strings.Cut(endpoint, ",")
		if !found {
			region = "us-east-1"
		}
		if bucket == "" {
			return nil, fmt.Errorf("committee: --storage-endpoint must name a bucket for the s3 backend")
		}
		return s3blob.New(bucket, region)
	default:
		return nil, fmt.Errorf("committee: unknown storage backend %q", kind)
	}
}
