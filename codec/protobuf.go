package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Protobuf serializes proto messages. ctor must return a fresh message.
type Protobuf[T proto.Message] struct {
	new func() T
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// RegistryProto stores registry ids as google.protobuf.UInt64Value, for
// deployments whose other services read the same keys with protobuf.
func RegistryProto() Codec[uint64] {
	return Mapped[uint64, *wrapperspb.UInt64Value]{
		Inner: NewProtobuf(func() *wrapperspb.UInt64Value { return &wrapperspb.UInt64Value{} }),
		To:    wrapperspb.UInt64,
		From:  func(m *wrapperspb.UInt64Value) uint64 { return m.GetValue() },
	}
}
