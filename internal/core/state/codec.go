package state

import (
	"fmt"

	"github.com/ugorji/go/codec"
)

// msgpackHandle is the shared encoding configuration for state records.
// Canonical mode keeps map encodings deterministic so identical records
// always produce identical bytes.
var msgpackHandle = func() *codec.MsgpackHandle {
	h := new(codec.MsgpackHandle)
	h.Canonical = true
	h.WriteExt = true
	return h
}()

// Marshal encodes a state record as msgpack.
func Marshal(v any) ([]byte, error) {
	var out []byte
	enc := codec.NewEncoderBytes(&out, msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode state record: %w", err)
	}
	return out, nil
}

// Unmarshal decodes a msgpack state record.
func Unmarshal(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, msgpackHandle)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode state record: %w", err)
	}
	return nil
}

// presenceMarker is the value stored for set-membership entries (operators,
// whitelist, nonces, approvals, verified assets).
var presenceMarker = []byte{0x01}

// PutMarker stores a set-membership entry.
func PutMarker(v View, key []byte) error {
	return v.Put(key, presenceMarker)
}
