package domain

import "testing"

func mustSpace(t *testing.T, bits, succListSize int) Space {
	t.Helper()
	sp, err := NewSpace(bits, succListSize)
	if err != nil {
		t.Fatalf("NewSpace(%d, %d) failed: %v", bits, succListSize, err)
	}
	return sp
}

func TestBetweenHalfOpenArc(t *testing.T) {
	sp := mustSpace(t, 8, 4)

	tests := []struct {
		name   string
		x, a, b uint64
		want   bool
	}{
		{"linear arc, inside", 5, 1, 10, true},
		{"linear arc, equals upper bound (inclusive)", 10, 1, 10, true},
		{"linear arc, equals lower bound (exclusive)", 1, 1, 10, false},
		{"linear arc, outside", 20, 1, 10, false},
		{"wrap arc, inside low side", 250, 240, 10, true},
		{"wrap arc, inside high side", 5, 240, 10, true},
		{"wrap arc, outside", 100, 240, 10, false},
		{"full ring when a == b", 42, 7, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := sp.FromUint64(tt.x)
			a := sp.FromUint64(tt.a)
			b := sp.FromUint64(tt.b)
			if got := x.Between(a, b); got != tt.want {
				t.Errorf("Between(%d, %d, %d] = %v, want %v", tt.x, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestIsBetweenExhaustive enumerates every (x, lo, hi) triple over an
// 4-bit ring and checks IsBetween against a brute-force walk of the arc,
// for all four combinations of endpoint inclusivity. This is property P1
// from spec.md §8, made tractable by using a small bit-width ring.
func TestIsBetweenExhaustive(t *testing.T) {
	sp := mustSpace(t, 4, 4) // 16 positions keeps the O(n^3 * 4) enumeration fast
	n := 1 << sp.Bits

	bruteForce := func(x, lo, hi int, loInclusive, hiInclusive bool) bool {
		if lo == hi {
			if x == lo {
				return loInclusive || hiInclusive
			}
			return true
		}
		for i := (lo + 1) % n; ; i = (i + 1) % n {
			if i == hi {
				break
			}
			if i == x {
				return true
			}
		}
		if loInclusive && x == lo {
			return true
		}
		if hiInclusive && x == hi {
			return true
		}
		return false
	}

	for lo := 0; lo < n; lo++ {
		for hi := 0; hi < n; hi++ {
			for _, loInc := range []bool{false, true} {
				for _, hiInc := range []bool{false, true} {
					for x := 0; x < n; x++ {
						want := bruteForce(x, lo, hi, loInc, hiInc)
						got := IsBetween(sp.FromUint64(uint64(x)), sp.FromUint64(uint64(lo)), sp.FromUint64(uint64(hi)), loInc, hiInc)
						if got != want {
							t.Fatalf("IsBetween(%d, %d, %d, loInc=%v, hiInc=%v) = %v, want %v", x, lo, hi, loInc, hiInc, got, want)
						}
					}
				}
			}
		}
	}
}

func TestFingerStart(t *testing.T) {
	sp := mustSpace(t, 8, 4)
	self := sp.FromUint64(10)

	tests := []struct {
		i    int
		want uint64
	}{
		{0, 11},  // 10 + 2^0
		{1, 12},  // 10 + 2^1
		{2, 14},  // 10 + 2^2
		{7, 138 % 256},
	}
	for _, tt := range tests {
		got, err := sp.FingerStart(self, tt.i)
		if err != nil {
			t.Fatalf("FingerStart(%d) failed: %v", tt.i, err)
		}
		want := sp.FromUint64(tt.want)
		if !got.Equal(want) {
			t.Errorf("FingerStart(%d) = %s, want %s", tt.i, got.ToHexString(false), want.ToHexString(false))
		}
	}
}

func TestAddModWraps(t *testing.T) {
	sp := mustSpace(t, 8, 4)
	a := sp.FromUint64(250)
	b := sp.FromUint64(10)
	got, err := sp.AddMod(a, b)
	if err != nil {
		t.Fatalf("AddMod failed: %v", err)
	}
	want := sp.FromUint64(4) // (250+10) mod 256
	if !got.Equal(want) {
		t.Errorf("AddMod(250, 10) = %s, want %s", got.ToHexString(false), want.ToHexString(false))
	}
}

func TestHexRoundTrip(t *testing.T) {
	sp := mustSpace(t, 16, 4)
	id := sp.FromUint64(0xBEEF)
	hexStr := id.ToHexString(false)
	back, err := sp.FromHexString(hexStr)
	if err != nil {
		t.Fatalf("FromHexString(%q) failed: %v", hexStr, err)
	}
	if !back.Equal(id) {
		t.Errorf("round trip mismatch: got %s, want %s", back.ToHexString(false), id.ToHexString(false))
	}
}

func TestIsValidIDRejectsOutOfRangeBits(t *testing.T) {
	sp := mustSpace(t, 4, 4) // 4 bits packed into 1 byte, top 4 bits unused
	bad := ID{0xF0}          // only the unused high bits set
	if err := sp.IsValidID(bad); err == nil {
		t.Errorf("expected IsValidID to reject %v in a 4-bit space", bad)
	}
	good := ID{0x0F}
	if err := sp.IsValidID(good); err != nil {
		t.Errorf("expected IsValidID to accept %v in a 4-bit space: %v", good, err)
	}
}
