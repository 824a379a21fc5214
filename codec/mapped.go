package codec

// Mapped adapts a Codec[W] into a Codec[V] through a pair of conversions.
type Mapped[V, W any] struct {
	Inner Codec[W]
	To    func(V) W
	From  func(W) V
}

func (m Mapped[V, W]) Encode(v V) ([]byte, error) { return m.Inner.Encode(m.To(v)) }
func (m Mapped[V, W]) Decode(b []byte) (V, error) {
	w, err := m.Inner.Decode(b)
	if err != nil {
		var zero V
		return zero, err
	}
	return m.From(w), nil
}
