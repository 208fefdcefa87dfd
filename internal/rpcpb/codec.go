package rpcpb

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// codecName is registered as a gRPC content-subtype distinct from the
// standard "proto" codec, so this package can ride on google.golang.org/grpc's
// real transport, framing, and streaming without requiring a protoc-generated
// descriptor/reflection layer for its messages (see DESIGN.md's rpcpb entry).
const codecName = "chorddht-gob"

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// gobCodec marshals the plain structs in this package with encoding/gob.
// It implements grpc/encoding.Codec.
type gobCodec struct{}

func (gobCodec) Name() string { return codecName }

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// CodecName is exported so server and client setup code can request this
// codec explicitly via grpc.ForceServerCodec / grpc.CallContentSubtype.
const CodecName = codecName
