package wire

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content subtype under which the codec is registered.
// It replaces the default proto codec, so clients that set no content subtype
// and clients asking for application/grpc+proto both reach it.
const CodecName = "proto"

// Codec marshals Message values with their own encoding and falls back to
// proto for standard messages such as emptypb.Empty.
type Codec struct{}

var _ encoding.Codec = Codec{}

func init() {
	encoding.RegisterCodec(Codec{})
}

func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case Message:
		return m.MarshalWire()
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("wire: cannot marshal %T", v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case Message:
		return m.UnmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("wire: cannot unmarshal into %T", v)
}

func (Codec) Name() string { return CodecName }
