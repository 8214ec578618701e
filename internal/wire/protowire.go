// Package wire defines the RPC messages and services of the media catalog and
// their protobuf wire encoding.
//
// Messages are encoded field by field with encoding/protowire, following the
// field numbers of api/media/v1/media.proto. Optional scalars use explicit
// presence: a nil pointer is not written, a non-nil pointer is written even
// when it holds the zero value. Durations and dates travel as the well-known
// google.protobuf.Duration and google.protobuf.Timestamp messages.
package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var errWireType = errors.New("wire: unexpected wire type")

type encoder struct {
	b []byte
}

func (e *encoder) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

func (e *encoder) optString(num protowire.Number, v *string) {
	if v == nil {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, *v)
}

func (e *encoder) int32(num protowire.Number, v int32) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(v)))
}

func (e *encoder) optInt32(num protowire.Number, v *int32) {
	if v == nil {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(*v)))
}

func (e *encoder) optDouble(num protowire.Number, v *float64) {
	if v == nil {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, math.Float64bits(*v))
}

func (e *encoder) message(num protowire.Number, m proto.Message) error {
	raw, err := proto.Marshal(m)
	if err != nil {
		return fmt.Errorf("wire: field %d: %w", num, err)
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, raw)
	return nil
}

func (e *encoder) duration(num protowire.Number, v *durationpb.Duration) error {
	if v == nil {
		return nil
	}
	return e.message(num, v)
}

func (e *encoder) timestamp(num protowire.Number, v *timestamppb.Timestamp) error {
	if v == nil {
		return nil
	}
	return e.message(num, v)
}

// fieldFunc consumes the value of one field and returns the bytes used. A zero
// count with a nil error marks the field as unknown; it is skipped.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func decode(b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return fmt.Errorf("wire: field %d: %w", num, err)
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if typ != protowire.BytesType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeOptString(typ protowire.Type, b []byte, dst **string) (int, error) {
	var v string
	n, err := consumeString(typ, b, &v)
	if err != nil {
		return 0, err
	}
	*dst = &v
	return n, nil
}

func consumeInt32(typ protowire.Type, b []byte, dst *int32) (int, error) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = int32(int64(v))
	return n, nil
}

func consumeOptInt32(typ protowire.Type, b []byte, dst **int32) (int, error) {
	var v int32
	n, err := consumeInt32(typ, b, &v)
	if err != nil {
		return 0, err
	}
	*dst = &v
	return n, nil
}

func consumeOptDouble(typ protowire.Type, b []byte, dst **float64) (int, error) {
	if typ != protowire.Fixed64Type {
		return 0, errWireType
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	f := math.Float64frombits(v)
	*dst = &f
	return n, nil
}

func consumeMessage(typ protowire.Type, b []byte, m proto.Message) (int, error) {
	if typ != protowire.BytesType {
		return 0, errWireType
	}
	raw, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if err := proto.Unmarshal(raw, m); err != nil {
		return 0, err
	}
	return n, nil
}

func consumeDuration(typ protowire.Type, b []byte, dst **durationpb.Duration) (int, error) {
	d := new(durationpb.Duration)
	n, err := consumeMessage(typ, b, d)
	if err != nil {
		return 0, err
	}
	*dst = d
	return n, nil
}

func consumeTimestamp(typ protowire.Type, b []byte, dst **timestamppb.Timestamp) (int, error) {
	ts := new(timestamppb.Timestamp)
	n, err := consumeMessage(typ, b, ts)
	if err != nil {
		return 0, err
	}
	*dst = ts
	return n, nil
}
