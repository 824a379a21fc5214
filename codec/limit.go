package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned by Limited when a cached payload exceeds MaxBytes.
var ErrTooLarge = errors.New("codec: payload too large")

// Limited refuses to decode payloads above MaxBytes (0 => unlimited). A
// refused payload is a decode error, so the entry self-heals and is re-read
// from the source.
type Limited[V any] struct {
	Inner    Codec[V]
	MaxBytes int
}

func (l Limited[V]) Encode(v V) ([]byte, error) { return l.Inner.Encode(v) }

func (l Limited[V]) Decode(b []byte) (V, error) {
	if l.MaxBytes > 0 && len(b) > l.MaxBytes {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(b), l.MaxBytes)
	}
	return l.Inner.Decode(b)
}
