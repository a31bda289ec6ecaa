package tp

import "testing"

func TestString(t *testing.T) {
	for _, tc := range []struct {
		t Type
		q string
	}{
		{IntT(16, 32), "i16x32"},
		{UIntT(8, 64), "u8x64"},
		{IntT(48, 64), "i48x64"},
		{IntT(32, 1), "i32"},
		{Bool(16), "u1x16"},
	} {
		if q := tc.t.String(); q != tc.q {
			t.Errorf("%#v -> %v, wanted %v", tc.t, q, tc.q)
		}
	}
}

func TestCanRepresent(t *testing.T) {
	if !IntT(8, 1).CanRepresent(-128) || IntT(8, 1).CanRepresent(128) {
		t.Errorf("i8 range")
	}
	if !UIntT(8, 1).CanRepresent(255) || UIntT(8, 1).CanRepresent(-1) {
		t.Errorf("u8 range")
	}
	if !IntT(48, 1).CanRepresent(1 << 40) {
		t.Errorf("i48 range")
	}
}

func TestWith(t *testing.T) {
	x := IntT(16, 64)

	if q := x.WithLanes(32); q.Lanes != 32 || q.Bits != 16 {
		t.Errorf("with lanes: %v", q)
	}
	if q := x.WithBits(32).WithCode(UInt); q != UIntT(32, 64) {
		t.Errorf("with bits and code: %v", q)
	}
	if !x.Element().IsScalar() {
		t.Errorf("element: %v", x.Element())
	}
}
