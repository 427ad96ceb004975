package opstore

import (
	"bytes"
	"encoding/gob"
)

// encodePayload gob-encodes an operation payload.
//
// The value is boxed as an interface so replay can decode it without knowing
// the concrete type at compile time; callers register their payload types
// with gob.Register. A nil payload encodes to nil.
func encodePayload(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	iv := v
	if err := gob.NewEncoder(&buf).Encode(&iv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodePayload reverses encodePayload.
func decodePayload(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var iv any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&iv); err != nil {
		return nil, err
	}
	return iv, nil
}
