package key

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/driftcommittee/node/fs"
)

// DefaultFileName is the persisted state's default file name within its
// state directory.
const DefaultFileName = "node-state.json"

// NodeState holds the node's long-term identity and, once created, its
// self-signed DID document.
type NodeState struct {
	PrivateKeyBytes []byte    `json:"private_key"`
	PublicKeyBytes  []byte    `json:"public_key"`
	DidDocument     *Document `json:"did_document,omitempty"`
}

// CommitteeState holds everything the node keeps from a completed DKG
// run: its own distributed key share, the committee's DID list, and the
// committee DID once published.
type CommitteeState struct {
	DistKeyShareBytes []byte   `json:"dist_key"`
	DidUrls           []string `json:"did_urls"`
	CommitteeDid      string   `json:"committee_did,omitempty"`
}

// SaveData is the single JSON file persisted across restarts: the node's
// long-term identity plus whatever committee state it has reached.
// Nothing in-flight (partial DKG/sign sessions) is ever written here.
type SaveData struct {
	NodeState      *NodeState      `json:"node_state,omitempty"`
	CommitteeState *CommitteeState `json:"committee_state,omitempty"`
}

// Load reads SaveData from path. A missing file is not an error: it
// returns an empty SaveData, matching the orchestrator's "create on first
// run" startup phase.
func Load(path string) (*SaveData, error) {
	exists, err := fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("key: stat state file: %w", err)
	}
	if !exists {
		return &SaveData{}, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("key: read state file: %w", err)
	}
	var data SaveData
	if err := json.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("key: decode state file: %w", err)
	}
	return &data, nil
}

// Save rewrites path with the full contents of data; persistence is
// always a full-file rewrite, never an incremental patch.
func Save(path string, data *SaveData) error {
	if dir := filepath.Dir(path); dir != "." {
		fs.CreateSecureFolder(dir)
	}
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("key: encode state file: %w", err)
	}
	fd, err := fs.CreateSecureFile(path)
	if err != nil {
		return fmt.Errorf("key: create state file: %w", err)
	}
	defer fd.Close()
	if _, err := fd.Write(buf); err != nil {
		return fmt.Errorf("key: write state file: %w", err)
	}
	return nil
}

// LoadOrCreateKeyPair loads the node's long-term identity from data, or
// generates and persists a fresh one on first run.
func LoadOrCreateKeyPair(path string, data *SaveData) (*KeyPair, error) {
	if data.NodeState != nil && len(data.NodeState.PrivateKeyBytes) > 0 {
		return KeyPairFromBinary(data.NodeState.PrivateKeyBytes)
	}

	pair := NewKeyPair()
	priv, err := pair.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("key: marshal new key pair: %w", err)
	}
	pub, err := pair.Public().MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("key: marshal new public key: %w", err)
	}
	data.NodeState = &NodeState{PrivateKeyBytes: priv, PublicKeyBytes: pub}
	if err := Save(path, data); err != nil {
		return nil, err
	}
	return pair, nil
}

// ErrNoCommitteeState is returned when a committee-dependent operation is
// attempted before the DKG phase has completed and persisted.
var ErrNoCommitteeState = errors.New("key: no committee state persisted")
