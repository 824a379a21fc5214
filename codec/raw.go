package codec

import (
	"fmt"
	"strconv"
)

// Bytes is an identity codec for []byte values.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String stores Go strings as their UTF-8 bytes without validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }

// Uint64 stores an unsigned integer as its base-10 string, the scalar form
// used for registry ids. Zero is a regular value ("0"), which is what makes
// negative caching of unregistered contracts possible.
type Uint64 struct{}

func (Uint64) Encode(v uint64) ([]byte, error) {
	return strconv.AppendUint(nil, v, 10), nil
}

func (Uint64) Decode(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("codec: empty uint64 payload")
	}
	v, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("codec: uint64 payload: %w", err)
	}
	return v, nil
}
