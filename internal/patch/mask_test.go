package patch

import "testing"

func TestBitIndexRoundTrip(t *testing.T) {
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			idx := BitIndex(row, col)
			if idx < 0 || idx >= BoardCells {
				t.Fatalf("BitIndex(%d,%d)=%d out of range", row, col, idx)
			}
		}
	}
}

func TestMaskSetClearIsSet(t *testing.T) {
	var m Mask
	m = m.Set(0).Set(63).Set(64).Set(80)
	for _, idx := range []int{0, 63, 64, 80} {
		if !m.IsSet(idx) {
			t.Errorf("expected bit %d set", idx)
		}
	}
	m = m.Clear(64)
	if m.IsSet(64) {
		t.Errorf("expected bit 64 cleared")
	}
	if !m.IsSet(80) {
		t.Errorf("clearing bit 64 should not affect bit 80")
	}
}

func TestMaskFull81PopCount(t *testing.T) {
	if Full81.PopCount() != BoardCells {
		t.Fatalf("Full81 popcount = %d, want %d", Full81.PopCount(), BoardCells)
	}
	if Full81.Normalize() != Full81 {
		t.Fatalf("Full81 should already be normalized")
	}
}

func TestMaskOverlapsAndAndNot(t *testing.T) {
	a := Bit(5).Set(6)
	b := Bit(6).Set(7)
	if !a.Overlaps(b) {
		t.Fatalf("expected overlap on bit 6")
	}
	c := a.AndNot(b)
	if c.IsSet(6) || !c.IsSet(5) {
		t.Fatalf("AndNot did not remove the shared bit")
	}
}

func TestMaskShiftLeft(t *testing.T) {
	m := Bit(0)
	shifted := m.ShiftLeft(80)
	if !shifted.IsSet(80) {
		t.Fatalf("expected bit 80 set after shifting bit 0 left by 80")
	}
	if shifted.PopCount() != 1 {
		t.Fatalf("shift should preserve a single set bit")
	}

	overflow := Bit(80).ShiftLeft(1)
	if overflow.PopCount() != 0 {
		t.Fatalf("shifting bit 80 left by 1 must fall outside the 81-bit universe")
	}
}

func TestMaskBitsRoundTrip(t *testing.T) {
	var m Mask
	want := []int{0, 1, 63, 64, 80}
	for _, b := range want {
		m = m.Set(b)
	}
	got := m.Bits()
	if len(got) != len(want) {
		t.Fatalf("Bits() returned %d entries, want %d", len(got), len(want))
	}
	for i, b := range want {
		if got[i] != b {
			t.Errorf("Bits()[%d] = %d, want %d", i, got[i], b)
		}
	}
}
