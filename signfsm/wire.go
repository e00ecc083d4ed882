package signfsm

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
)

var registerGobOnce sync.Once

// registerGobTypes mirrors dkgfsm's registration: the partial signature's
// share carries a kyber.Scalar, decoded via the same BinaryMarshaler
// fallback gob uses for any registered interface implementation.
func registerGobTypes() {
	registerGobOnce.Do(func() {
		gob.Register(cryptodkg.Suite.Point())
		gob.Register(cryptodkg.Suite.Scalar())
	})
}

// EncodeMessage serializes one wrapped sign message for a real transport's
// Publisher.
func EncodeMessage(m feed.MessageWrapper[Message]) ([]byte, error) {
	registerGobTypes()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("signfsm: encode message: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeMessage deserializes one wrapped sign message received from a
// transport Listener.
func DecodeMessage(data []byte) (feed.MessageWrapper[Message], error) {
	registerGobTypes()
	var m feed.MessageWrapper[Message]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return feed.MessageWrapper[Message]{}, fmt.Errorf("signfsm: decode message: %w", err)
	}
	return m, nil
}
