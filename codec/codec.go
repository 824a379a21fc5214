// Package codec converts cached values to and from the bytes a provider stores.
//
// Scalars (registry ids) use Uint64 or the protobuf wrapper codec; structured
// records (ledger rows) use Msgpack, CBOR or JSON.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
