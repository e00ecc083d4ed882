package dkgfsm

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/driftcommittee/node/cryptodkg"
	"github.com/driftcommittee/node/feed"
)

var registerGobOnce sync.Once

// registerGobTypes teaches gob the concrete point/scalar implementation
// behind the cryptodkg.Point/cryptodkg.Scalar interfaces, so it can decode
// the interface-typed fields nested in Message and the dkgrabin/vss types
// it carries. Gob falls back to each value's MarshalBinary/UnmarshalBinary
// for any field that implements encoding.BinaryMarshaler, which kyber's
// point and scalar types do — no hand-authored wire struct is needed for
// fields whose concrete internal shape this repo never inspects directly.
func registerGobTypes() {
	registerGobOnce.Do(func() {
		gob.Register(cryptodkg.Suite.Point())
		gob.Register(cryptodkg.Suite.Scalar())
	})
}

// EncodeMessage serializes one wrapped DKG message for a real transport's
// Publisher.
func EncodeMessage(m feed.MessageWrapper[Message]) ([]byte, error) {
	registerGobTypes()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("dkgfsm: encode message: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeMessage deserializes one wrapped DKG message received from a
// transport Listener.
func DecodeMessage(data []byte) (feed.MessageWrapper[Message], error) {
	registerGobTypes()
	var m feed.MessageWrapper[Message]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return feed.MessageWrapper[Message]{}, fmt.Errorf("dkgfsm: decode message: %w", err)
	}
	return m, nil
}
