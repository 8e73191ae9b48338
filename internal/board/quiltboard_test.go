package board

import (
	"testing"

	"github.com/nzeitz/patchwork/internal/patch"
)

func TestQuiltBoardPlaceUnplaceRestoresState(t *testing.T) {
	var q QuiltBoard
	before := q
	mask := patch.Bit(10).Set(11).Set(20)
	q.Place(mask, 2)
	if q.ButtonIncome != 2 {
		t.Fatalf("button income = %d, want 2", q.ButtonIncome)
	}
	q.Unplace(mask, 2)
	if q != before {
		t.Fatalf("place/unplace did not restore the board")
	}
}

func TestQuiltBoardIsFull(t *testing.T) {
	var q QuiltBoard
	if q.IsFull() {
		t.Fatalf("empty board reports full")
	}
	q.Tiles = patch.Full81
	if !q.IsFull() {
		t.Fatalf("fully covered board does not report full")
	}
	if q.Tiles.PopCount() != patch.BoardCells {
		t.Fatalf("is_full should coincide with popcount == 81")
	}
}

func TestQuiltBoardCanPlaceRejectsOverlap(t *testing.T) {
	var q QuiltBoard
	q.Place(patch.Bit(5), 0)
	if q.CanPlace(patch.Bit(5).Set(6)) {
		t.Fatalf("expected overlap rejection")
	}
	if !q.CanPlace(patch.Bit(6).Set(7)) {
		t.Fatalf("expected disjoint mask to be placeable")
	}
}

func TestSevenBySevenConditionHoldsForEveryTemplate(t *testing.T) {
	var q QuiltBoard
	q.Tiles = sevenBySevenTemplates[0]
	if !q.IsSpecialTileConditionReached() {
		t.Fatalf("expected condition reached for the first 7x7 template")
	}
	for _, tmpl := range sevenBySevenTemplates {
		var r QuiltBoard
		r.Tiles = tmpl
		if !r.IsSpecialTileConditionReached() {
			t.Fatalf("template %v should itself satisfy the condition", tmpl)
		}
	}
}

func TestValidActionsForSpecialPatchCountsEmptyCells(t *testing.T) {
	var q QuiltBoard
	q.Place(patch.Bit(0).Set(1).Set(2), 0)
	actions, err := q.ValidActionsForSpecialPatch()
	if err != nil {
		t.Fatalf("valid actions: %v", err)
	}
	if len(actions) != patch.BoardCells-3 {
		t.Fatalf("got %d actions, want %d", len(actions), patch.BoardCells-3)
	}
}
