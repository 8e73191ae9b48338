package board

import "github.com/nzeitz/patchwork/internal/patch"

// QuiltBoard is a player's 9x9 personal board: an occupancy mask plus the
// running button income earned from every patch placed so far.
type QuiltBoard struct {
	Tiles        patch.Mask
	ButtonIncome int
}

// IsFull reports whether every one of the 81 cells is occupied.
func (q *QuiltBoard) IsFull() bool {
	return q.Tiles.Equal(patch.Full81)
}

// CanPlace reports whether mask can be placed without overlapping an
// occupied cell.
func (q *QuiltBoard) CanPlace(mask patch.Mask) bool {
	return !q.Tiles.Overlaps(mask)
}

// Place sets every bit in mask and adds incomeDelta to the running button
// income. The caller must have already verified CanPlace(mask).
func (q *QuiltBoard) Place(mask patch.Mask, incomeDelta int) {
	q.Tiles = q.Tiles.Or(mask)
	q.ButtonIncome += incomeDelta
}

// Unplace is the exact inverse of Place, given the same mask and delta.
// The caller must guarantee mask was the last mask placed (or at least
// that no other placement has touched the same cells since).
func (q *QuiltBoard) Unplace(mask patch.Mask, incomeDelta int) {
	q.Tiles = q.Tiles.AndNot(mask)
	q.ButtonIncome -= incomeDelta
}

// EmptyCells returns the number of unoccupied cells.
func (q *QuiltBoard) EmptyCells() int {
	return patch.BoardCells - q.Tiles.PopCount()
}

// sevenBySevenTemplates holds the nine 7x7 occupancy templates (one per
// top-left anchor of a 7x7 window on the 9x9 board), built once.
var sevenBySevenTemplates = buildSevenBySevenTemplates()

func buildSevenBySevenTemplates() [9]patch.Mask {
	const window = 7
	var templates [9]patch.Mask
	i := 0
	for row := 0; row+window <= patch.BoardSize; row++ {
		for col := 0; col+window <= patch.BoardSize; col++ {
			var m patch.Mask
			for r := 0; r < window; r++ {
				for c := 0; c < window; c++ {
					m = m.Set(patch.BitIndex(row+r, col+c))
				}
			}
			templates[i] = m
			i++
		}
	}
	return templates
}

// IsSpecialTileConditionReached reports whether any 7x7 subgrid of the
// board is fully covered, via nine shifted-and-masked comparisons against
// the fixed 7x7 templates.
func (q *QuiltBoard) IsSpecialTileConditionReached() bool {
	for _, t := range sevenBySevenTemplates {
		if q.Tiles.And(t).Equal(t) {
			return true
		}
	}
	return false
}

// ValidActionsForPatch returns one PatchPlacement ActionId per legal
// transformation of the patch at the given queue slot. The caller is
// expected to have already applied the two fast-path checks from the
// design (button cost vs. balance, and patch area vs. empty cells) before
// calling this, since both are O(1) and this call is not.
func (q *QuiltBoard) ValidActionsForPatch(patchID patch.ID, slot int) ([]ActionId, error) {
	transforms := patch.Get().Transformations(patchID)
	out := make([]ActionId, 0, len(transforms))
	for i, t := range transforms {
		if !q.CanPlace(t.Mask) {
			continue
		}
		id, err := EncodeAction(Action{Kind: KindPatchPlacement, PatchID: patchID, PatchSlot: slot, TransformationIndex: i})
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// ValidActionsForSpecialPatch returns one SpecialPatchPlacement ActionId
// per empty cell.
func (q *QuiltBoard) ValidActionsForSpecialPatch() ([]ActionId, error) {
	empty := patch.Full81.AndNot(q.Tiles)
	bits := empty.Bits()
	out := make([]ActionId, 0, len(bits))
	for _, cell := range bits {
		id, err := EncodeAction(Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: cell})
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
