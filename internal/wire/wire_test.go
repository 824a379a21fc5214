package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func mustDecode(t *testing.T, kind byte, b []byte) (uint64, []byte) {
	t.Helper()
	gen, p, err := Decode(kind, b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return gen, p
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		kind    byte
		gen     uint64
		payload []byte
	}{
		{KindScalar, 0, nil},
		{KindScalar, 42, []byte("0")},
		{KindRecord, math.MaxUint64, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.kind, tc.gen, tc.payload)
		gen, p := mustDecode(t, tc.kind, enc)
		if gen != tc.gen {
			t.Fatalf("gen mismatch: got %d want %d", gen, tc.gen)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(KindScalar, 7, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, _, err := Decode(KindScalar, enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestRejectsWrongKind(t *testing.T) {
	enc := Encode(KindRecord, 1, []byte("row"))
	if _, _, err := Decode(KindScalar, enc); !errors.Is(err, ErrKind) {
		t.Fatalf("expected ErrKind, got %v", err)
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(KindScalar, 1, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(KindScalar, badMagic); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on bad magic, got %v", err)
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(KindScalar, badVer); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on bad version, got %v", err)
	}

	// vlen is at offset 14..17 (4 magic +1 ver +1 kind +8 gen)
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[14:18], uint32(len("abc")+1))
	if _, _, err := Decode(KindScalar, tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	trunc := enc[:len(enc)-1]
	if _, _, err := Decode(KindScalar, trunc); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}

	if _, _, err := Decode(KindScalar, []byte("0")); err == nil {
		t.Fatalf("expected error on a raw foreign value")
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc := Encode(KindRecord, 1, []byte("Z"))
	_, p := mustDecode(t, KindRecord, enc)
	p[0] = 'Q'
	_, p2 := mustDecode(t, KindRecord, enc)
	if p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
