package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Proto implements Codec using Protocol Buffers serialization.
//
// Values that implement proto.Message are marshaled directly. Anything else
// is carried as a google.protobuf.Struct built from the value's JSON shape,
// so canonical events can cross a protobuf pipeline without generated types.
type Proto struct{}

// Encode serializes the payload to Protocol Buffer bytes.
func (Proto) Encode(v any) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		return proto.Marshal(msg)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("payload is not a struct-shaped value: %w", err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode payload as struct: %w", err)
	}
	return proto.Marshal(s)
}

// Decode deserializes Protocol Buffer bytes into the target.
func (Proto) Decode(data []byte, v any) error {
	if msg, ok := v.(proto.Message); ok {
		return proto.Unmarshal(data, msg)
	}

	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode payload struct: %w", err)
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("decode payload struct: %w", err)
	}
	return json.Unmarshal(raw, v)
}

// ContentType returns the MIME type for Protocol Buffers.
func (Proto) ContentType() string {
	return "application/protobuf"
}

// Compile-time check.
var _ Codec = Proto{}

func init() {
	Register(Proto{})
}
