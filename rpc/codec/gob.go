// Package codec registers a gob-based message codec with gRPC, standing
// in for the generated-protobuf wire format: the judge's message types
// (rpc/river) are plain Go structs, not protoc output, so the codec
// that (de)serializes them is encoding/gob instead of proto.Marshal.
package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the codec name gRPC negotiates over the wire (the "grpc-encoding"
// / content-subtype value).
const Name = "gob"

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// gobCodec implements google.golang.org/grpc/encoding.Codec using
// encoding/gob. Every message river RPCs send or receive must be a
// concrete, gob-encodable struct (no interfaces, no unexported fields
// relied upon).
type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("gob unmarshal: %w", err)
	}
	return nil
}

func (gobCodec) Name() string {
	return Name
}
