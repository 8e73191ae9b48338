package board

// PlayerState is one player's half of the game: their position on the
// shared time track (duplicated here for O(1) access without consulting
// the time board), their button balance, and their quilt board.
type PlayerState struct {
	Position      int
	ButtonBalance int
	Quilt         QuiltBoard
}

// NewPlayerState returns the starting state: position 0, five buttons, an
// empty quilt board.
func NewPlayerState() PlayerState {
	return PlayerState{Position: 0, ButtonBalance: 5}
}

// Clone returns a deep copy. QuiltBoard's only reference-like field is
// Tiles, which is a value type, so a plain struct copy suffices.
func (p PlayerState) Clone() PlayerState {
	return p
}

// Score returns this player's raw score ignoring the 7x7 bonus:
// button_balance - 2 * empty_cells. The caller adds the bonus separately,
// since whether it applies depends on state-level status flags.
func (p *PlayerState) Score() int {
	return p.ButtonBalance - 2*p.Quilt.EmptyCells()
}
