package cryptodkg

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.dedis.ch/kyber/v3/share"
)

type distKeyShareWire struct {
	Commits []string `json:"commits"`
	ShareV  string   `json:"share_v"`
	ShareI  int      `json:"share_i"`
}

// MarshalDistKeyShare encodes a completed distributed key share for
// persistence: the public commitment polynomial plus this node's private
// share, each point/scalar hex-encoded via the curve's binary marshaling.
func MarshalDistKeyShare(dks *DistKeyShare) ([]byte, error) {
	w := distKeyShareWire{
		Commits: make([]string, len(dks.Commits)),
		ShareI:  dks.Share.I,
	}
	for i, c := range dks.Commits {
		buf, err := c.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("cryptodkg: marshal commit %d: %w", i, err)
		}
		w.Commits[i] = hex.EncodeToString(buf)
	}
	vBuf, err := dks.Share.V.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("cryptodkg: marshal share value: %w", err)
	}
	w.ShareV = hex.EncodeToString(vBuf)
	return json.Marshal(w)
}

// UnmarshalDistKeyShare decodes a share persisted by MarshalDistKeyShare.
func UnmarshalDistKeyShare(data []byte) (*DistKeyShare, error) {
	var w distKeyShareWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("cryptodkg: unmarshal dist key share: %w", err)
	}
	commits := make([]Point, len(w.Commits))
	for i, c := range w.Commits {
		buf, err := hex.DecodeString(c)
		if err != nil {
			return nil, fmt.Errorf("cryptodkg: decode commit %d: %w", i, err)
		}
		p := Suite.Point()
		if err := p.UnmarshalBinary(buf); err != nil {
			return nil, fmt.Errorf("cryptodkg: unmarshal commit %d: %w", i, err)
		}
		commits[i] = p
	}
	vBuf, err := hex.DecodeString(w.ShareV)
	if err != nil {
		return nil, fmt.Errorf("cryptodkg: decode share value: %w", err)
	}
	v := Suite.Scalar()
	if err := v.UnmarshalBinary(vBuf); err != nil {
		return nil, fmt.Errorf("cryptodkg: unmarshal share value: %w", err)
	}
	return &DistKeyShare{
		Commits: commits,
		Share:   &share.PriShare{V: v, I: w.ShareI},
	}, nil
}
