package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// CodecName is the gRPC content subtype served by the custodian service.
const CodecName = "pbstruct"

// StructCodec carries messages on the wire as a protobuf google.protobuf.Struct.
// Field names follow the messages' json tags.
type StructCodec struct{}

func (StructCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc marshal: %w", err)
	}

	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("rpc marshal %T: %w", v, err)
	}
	return proto.Marshal(s)
}

func (StructCodec) Unmarshal(data []byte, v any) error {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return fmt.Errorf("rpc unmarshal: %w", err)
	}

	b, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("rpc unmarshal: %w", err)
	}
	return json.Unmarshal(b, v)
}

func (StructCodec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(StructCodec{})
}
