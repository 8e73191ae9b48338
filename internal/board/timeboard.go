package board

// TimeBoardSize is the number of cells on the shared time track.
const TimeBoardSize = 54

// CellFlag is a bit in a time-board cell's marker bitset.
type CellFlag uint8

const (
	FlagPlayer1 CellFlag = 1 << iota
	FlagPlayer2
	FlagButtonIncome
	FlagSpecialPatch
)

// TimeBoard is the 54-cell shared track. Button-income and special-patch
// marker positions mirror the physical game's track layout: income fires
// every sixth cell starting at 5, special patches sit at the five cells
// between income markers starting at 26.
type TimeBoard struct {
	Cells [TimeBoardSize]CellFlag
}

var buttonIncomePositions = []int{5, 11, 17, 23, 29, 35, 41, 47, 53}
var specialPatchPositions = [...]int{26, 32, 38, 44, 50}

// NewTimeBoard returns a track with both players at position 0 and the
// standard marker layout.
func NewTimeBoard() TimeBoard {
	var tb TimeBoard
	for _, p := range buttonIncomePositions {
		tb.Cells[p] |= FlagButtonIncome
	}
	for _, p := range specialPatchPositions {
		tb.Cells[p] |= FlagSpecialPatch
	}
	tb.Cells[0] |= FlagPlayer1 | FlagPlayer2
	return tb
}

// SetPresence sets the given player's presence flag at pos.
func (tb *TimeBoard) SetPresence(playerOne bool, pos int) {
	if playerOne {
		tb.Cells[pos] |= FlagPlayer1
	} else {
		tb.Cells[pos] |= FlagPlayer2
	}
}

// ClearPresence clears the given player's presence flag at pos.
func (tb *TimeBoard) ClearPresence(playerOne bool, pos int) {
	if playerOne {
		tb.Cells[pos] &^= FlagPlayer1
	} else {
		tb.Cells[pos] &^= FlagPlayer2
	}
}

// Advance moves a player's presence from `from` to min(to, last cell),
// clamping at the final cell, and reports every marker crossed strictly
// between the old and new position (inclusive of the new position).
// Special-patch markers are cleared as they're crossed, since each is a
// single-use token claimed by whichever player reaches it first.
func (tb *TimeBoard) Advance(playerOne bool, from, to int) (newPos int, buttonIncomeCrossings int, specialPatchCrossings []int) {
	newPos = to
	if newPos > TimeBoardSize-1 {
		newPos = TimeBoardSize - 1
	}

	tb.ClearPresence(playerOne, from)
	for p := from + 1; p <= newPos; p++ {
		if tb.Cells[p]&FlagButtonIncome != 0 {
			buttonIncomeCrossings++
		}
		if tb.Cells[p]&FlagSpecialPatch != 0 {
			specialPatchCrossings = append(specialPatchCrossings, p)
			tb.Cells[p] &^= FlagSpecialPatch
		}
	}
	tb.SetPresence(playerOne, newPos)
	return newPos, buttonIncomeCrossings, specialPatchCrossings
}

// Retreat is the exact inverse of Advance, used by undo. It restores
// presence to `from` and re-arms every special-patch marker that was
// cleared during the forward Advance call (the caller supplies the list
// returned by Advance).
func (tb *TimeBoard) Retreat(playerOne bool, from, to int, clearedSpecialPatches []int) {
	tb.ClearPresence(playerOne, to)
	tb.SetPresence(playerOne, from)
	for _, p := range clearedSpecialPatches {
		tb.Cells[p] |= FlagSpecialPatch
	}
}
