// Package pb encodes game payloads as protobuf Struct messages, the wire format of
// the gRPC game service.
package pb

import (
	"encoding/json"
	"fmt"

	"github.com/beka-birhanu/vinom-mines/service/i"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ i.GameEncoder = &Protobuf{}

// Protobuf converts JSON-tagged Go values to and from structpb.Struct.
type Protobuf struct{}

// Encode implements i.GameEncoder.
func (p *Protobuf) Encode(v any) (*structpb.Struct, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("encode %T: not an object: %w", v, err)
	}
	return structpb.NewStruct(fields)
}

// Decode implements i.GameEncoder.
func (p *Protobuf) Decode(s *structpb.Struct, v any) error {
	payload, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
