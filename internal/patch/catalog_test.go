package patch

import "testing"

func TestCatalogHasThirtyThreeRegularPatches(t *testing.T) {
	cat := Get()
	ids := cat.RegularIDs()
	if len(ids) != NumRegular {
		t.Fatalf("got %d regular ids, want %d", len(ids), NumRegular)
	}
	for _, id := range ids {
		if _, ok := cat.Patch(id); !ok {
			t.Errorf("catalog missing patch %d listed in RegularIDs", id)
		}
	}
}

func TestTransformationsStayInBounds(t *testing.T) {
	cat := Get()
	for _, id := range cat.RegularIDs() {
		p, _ := cat.Patch(id)
		for i, tr := range cat.Transformations(id) {
			if tr.Row < 0 || tr.Col < 0 {
				t.Fatalf("patch %d transformation %d has negative row/col", id, i)
			}
			rows, cols := p.Rows(), p.Cols()
			if tr.Rotation == Rotate90 || tr.Rotation == Rotate270 {
				rows, cols = cols, rows
			}
			if tr.Row+rows > BoardSize || tr.Col+cols > BoardSize {
				t.Fatalf("patch %d transformation %d escapes the board", id, i)
			}
			if tr.Mask.PopCount() != p.Area() {
				t.Errorf("patch %d transformation %d mask has %d bits, want area %d", id, i, tr.Mask.PopCount(), p.Area())
			}
		}
	}
}

func TestTransformationsAreDeduplicatedBySymmetry(t *testing.T) {
	cat := Get()
	for _, id := range cat.RegularIDs() {
		seen := make(map[Mask]bool)
		for _, tr := range cat.Transformations(id) {
			if seen[tr.Mask] {
				t.Fatalf("patch %d has duplicate mask at row=%d col=%d rot=%d flip=%v", id, tr.Row, tr.Col, tr.Rotation, tr.Flipped)
			}
			seen[tr.Mask] = true
		}
	}
}

func TestTransformationTieBreakOrder(t *testing.T) {
	cat := Get()
	for _, id := range cat.RegularIDs() {
		ts := cat.Transformations(id)
		for i := 1; i < len(ts); i++ {
			a, b := ts[i-1], ts[i]
			less := a.Row < b.Row ||
				(a.Row == b.Row && a.Col < b.Col) ||
				(a.Row == b.Row && a.Col == b.Col && a.Rotation < b.Rotation) ||
				(a.Row == b.Row && a.Col == b.Col && a.Rotation == b.Rotation && !a.Flipped && b.Flipped)
			equal := a.Row == b.Row && a.Col == b.Col && a.Rotation == b.Rotation && a.Flipped == b.Flipped
			if !less && !equal {
				t.Fatalf("patch %d transformations out of tie-break order at index %d", id, i)
			}
		}
	}
}

func TestInitialOrderIsDeterministicAndIsAPermutation(t *testing.T) {
	cat := Get()
	a := cat.InitialOrder(42)
	b := cat.InitialOrder(42)
	if len(a) != NumRegular || len(b) != NumRegular {
		t.Fatalf("expected %d ids, got %d and %d", NumRegular, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different order at index %d: %d vs %d", i, a[i], b[i])
		}
	}
	seen := make(map[ID]bool)
	for _, id := range a {
		if seen[id] {
			t.Fatalf("InitialOrder repeated id %d", id)
		}
		seen[id] = true
	}

	c := cat.InitialOrder(1)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical order")
	}
}
