package i

import "google.golang.org/protobuf/types/known/structpb"

// GameEncoder converts game payloads to and from their protobuf wire form.
type GameEncoder interface {
	Encode(v any) (*structpb.Struct, error)
	Decode(s *structpb.Struct, v any) error
}
