package board

import (
	"fmt"

	"github.com/nzeitz/patchwork/internal/patch"
)

// TurnType distinguishes a normal turn from the interstitial state where a
// player must place a just-earned special patch before play continues.
type TurnType uint8

const (
	Normal TurnType = iota
	SpecialPatchPlacement
)

// StatusFlags holds the state fields that aren't per-player: whose turn
// it is, who (if anyone) holds the 7x7 bonus, and who (if anyone) was
// first to reach the final time-board cell.
type StatusFlags struct {
	CurrentPlayerIsOne bool
	SpecialTileHolder  int // 0 = none, else 1 or 2
	FirstToGoal        int // 0 = none, else 1 or 2
}

// State is the full Patchwork game-state tuple: the patch queue, the turn
// type, the status flags, the shared time board, and both players' own
// state. It contains no reference types other than fixed-size arrays, so
// a plain value copy is already a complete, independent clone.
type State struct {
	Patches        PatchQueue
	TurnType       TurnType
	Flags          StatusFlags
	TimeBoard      TimeBoard
	Player1        PlayerState
	Player2        PlayerState
	PendingSpecial int // special-patch placements still owed before turn type returns to Normal
}

// NewInitialState builds the starting position: both players at position
// 0 with five buttons and an empty board, player 1 to move, and a
// seeded shuffle of the 33 regular patches.
func NewInitialState(seed uint64) State {
	return State{
		Patches:   NewPatchQueue(seed),
		TurnType:  Normal,
		Flags:     StatusFlags{CurrentPlayerIsOne: true},
		TimeBoard: NewTimeBoard(),
		Player1:   NewPlayerState(),
		Player2:   NewPlayerState(),
	}
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	return s
}

func (s *State) current() *PlayerState {
	if s.Flags.CurrentPlayerIsOne {
		return &s.Player1
	}
	return &s.Player2
}

func (s *State) other() *PlayerState {
	if s.Flags.CurrentPlayerIsOne {
		return &s.Player2
	}
	return &s.Player1
}

func (s *State) playerPtr(isOne bool) *PlayerState {
	if isOne {
		return &s.Player1
	}
	return &s.Player2
}

func moverNumber(isOne bool) int {
	if isOne {
		return 1
	}
	return 2
}

// resolveNextPlayer applies the standard Patchwork precedence rule: the
// player furthest behind on the time track moves next; if tied, the
// player who did not just move goes.
func (s *State) resolveNextPlayer(justMovedWasOne bool) {
	switch {
	case s.Player1.Position < s.Player2.Position:
		s.Flags.CurrentPlayerIsOne = true
	case s.Player2.Position < s.Player1.Position:
		s.Flags.CurrentPlayerIsOne = false
	default:
		s.Flags.CurrentPlayerIsOne = !justMovedWasOne
	}
}

// IsTerminated reports whether both players have reached the final cell.
func (s *State) IsTerminated() bool {
	return s.Player1.Position >= TimeBoardSize-1 && s.Player2.Position >= TimeBoardSize-1
}

// Score returns the given player's score: button balance, plus 7 if they
// hold the 7x7 bonus, minus 2 per empty quilt-board cell.
func (s *State) Score(playerOne bool) int {
	p := s.playerPtr(playerOne)
	score := p.ButtonBalance - 2*p.Quilt.EmptyCells()
	if s.Flags.SpecialTileHolder == moverNumber(playerOne) {
		score += 7
	}
	return score
}

// Winner returns the winning player (1 or 2) and whether the game is a
// draw. Ties are broken by who first reached the final cell; if that is
// also unset (a true simultaneous tie, which the base rules don't
// otherwise produce), the game is declared a draw.
func (s *State) Winner() (player int, draw bool) {
	s1, s2 := s.Score(true), s.Score(false)
	switch {
	case s1 > s2:
		return 1, false
	case s2 > s1:
		return 2, false
	case s.Flags.FirstToGoal != 0:
		return s.Flags.FirstToGoal, false
	default:
		return 0, true
	}
}

// LegalActions enumerates every ActionId legal in the current state. Fast
// path checks (button cost, remaining area) are applied here before the
// more expensive per-transformation scan, per the design's cost model.
func (s *State) LegalActions() ([]ActionId, error) {
	if s.TurnType == SpecialPatchPlacement {
		return s.current().Quilt.ValidActionsForSpecialPatch()
	}

	cur := s.current()
	startID, err := EncodeAction(Action{Kind: KindWalking, StartingIndex: cur.Position})
	if err != nil {
		return nil, err
	}
	actions := []ActionId{startID}

	cat := patch.Get()
	for slot := 0; slot < s.Patches.NumPlayableSlots(); slot++ {
		id, _ := s.Patches.At(slot)
		p, ok := cat.Patch(id)
		if !ok {
			return nil, fmt.Errorf("board: queue slot %d holds unknown patch %d: %w", slot, id, ErrDecodeRange)
		}
		if p.ButtonCost > cur.ButtonBalance {
			continue
		}
		if p.Area() > cur.Quilt.EmptyCells() {
			continue
		}
		acts, err := cur.Quilt.ValidActionsForPatch(id, slot)
		if err != nil {
			return nil, err
		}
		actions = append(actions, acts...)
	}
	return actions, nil
}

// UndoInfo captures exactly what Apply touched, so Undo can reverse it
// without recomputation. Fixed-size arrays for the rare multi-marker
// crossing case keep Apply/Undo allocation-free.
type UndoInfo struct {
	OldFlags          StatusFlags
	OldTurnType       TurnType
	OldPendingSpecial int

	MoverWasOne      bool
	MoverOldPosition int
	MoverNewPosition int
	StepButtons      int
	IncomeButtons    int

	clearedSpecial [len(specialPatchPositions)]int
	numCleared     int

	PlacedMask       patch.Mask
	QuiltIncomeDelta int
	ButtonCostPaid   int

	PatchSlot int
	PatchID   patch.ID
}

// Apply performs one of the five action kinds, returning the information
// needed to reverse it. It never mutates shared state beyond the
// receiver: callers that need rollback hold their own State value.
func (s *State) Apply(a Action) (UndoInfo, error) {
	switch a.Kind {
	case KindWalking:
		return s.applyWalking(a)
	case KindPatchPlacement:
		return s.applyPatchPlacement(a)
	case KindSpecialPatchPlacement:
		return s.applySpecialPatchPlacement(a)
	case KindPhantom:
		return s.applyPhantom(), nil
	case KindNull:
		return UndoInfo{}, fmt.Errorf("board: apply Null: %w", ErrInvalidAction)
	default:
		return UndoInfo{}, fmt.Errorf("board: apply unknown kind %d: %w", a.Kind, ErrInvalidAction)
	}
}

func (s *State) baseUndo() UndoInfo {
	return UndoInfo{
		OldFlags:          s.Flags,
		OldTurnType:       s.TurnType,
		OldPendingSpecial: s.PendingSpecial,
		MoverWasOne:       s.Flags.CurrentPlayerIsOne,
	}
}

func (s *State) applyWalking(a Action) (UndoInfo, error) {
	if s.TurnType != Normal {
		return UndoInfo{}, fmt.Errorf("board: walking requires Normal turn type: %w", ErrWrongTurnType)
	}
	cur := s.current()
	if cur.Position != a.StartingIndex {
		return UndoInfo{}, fmt.Errorf("board: walking start %d does not match current position %d: %w",
			a.StartingIndex, cur.Position, ErrInvalidAction)
	}

	undo := s.baseUndo()
	undo.MoverOldPosition = cur.Position

	target := s.other().Position + 1
	newPos, incomeCrossings, specialCrossings := s.TimeBoard.Advance(s.Flags.CurrentPlayerIsOne, cur.Position, target)

	steps := newPos - cur.Position
	undo.MoverNewPosition = newPos
	undo.StepButtons = steps
	cur.Position = newPos
	cur.ButtonBalance += steps

	incomeAward := incomeCrossings * cur.Quilt.ButtonIncome
	undo.IncomeButtons = incomeAward
	cur.ButtonBalance += incomeAward

	undo.numCleared = copy(undo.clearedSpecial[:], specialCrossings)
	s.resolveMarkersAndTurn(undo.MoverWasOne, newPos, specialCrossings)

	return undo, nil
}

func (s *State) applyPatchPlacement(a Action) (UndoInfo, error) {
	if s.TurnType != Normal {
		return UndoInfo{}, fmt.Errorf("board: patch placement requires Normal turn type: %w", ErrWrongTurnType)
	}
	id, ok := s.Patches.At(a.PatchSlot)
	if !ok || id != a.PatchID {
		return UndoInfo{}, fmt.Errorf("board: queue slot %d does not hold patch %d: %w", a.PatchSlot, a.PatchID, ErrInvalidAction)
	}
	cat := patch.Get()
	p, ok := cat.Patch(a.PatchID)
	if !ok {
		return UndoInfo{}, fmt.Errorf("board: unknown patch %d: %w", a.PatchID, ErrDecodeRange)
	}
	t, ok := cat.Transformation(a.PatchID, a.TransformationIndex)
	if !ok {
		return UndoInfo{}, fmt.Errorf("board: unknown transformation %d for patch %d: %w", a.TransformationIndex, a.PatchID, ErrDecodeRange)
	}

	cur := s.current()
	if p.ButtonCost > cur.ButtonBalance {
		return UndoInfo{}, fmt.Errorf("board: insufficient buttons for patch %d: %w", a.PatchID, ErrInvalidAction)
	}
	if !cur.Quilt.CanPlace(t.Mask) {
		return UndoInfo{}, fmt.Errorf("board: transformation %d of patch %d overlaps: %w", a.TransformationIndex, a.PatchID, ErrInvalidAction)
	}

	undo := s.baseUndo()
	undo.MoverOldPosition = cur.Position
	undo.PlacedMask = t.Mask
	undo.QuiltIncomeDelta = p.ButtonIncome
	undo.ButtonCostPaid = p.ButtonCost
	undo.PatchSlot = a.PatchSlot
	undo.PatchID = a.PatchID

	cur.ButtonBalance -= p.ButtonCost
	cur.Quilt.Place(t.Mask, p.ButtonIncome)

	target := cur.Position + p.TimeCost
	newPos, incomeCrossings, specialCrossings := s.TimeBoard.Advance(s.Flags.CurrentPlayerIsOne, cur.Position, target)
	undo.MoverNewPosition = newPos
	cur.Position = newPos

	incomeAward := incomeCrossings * cur.Quilt.ButtonIncome
	undo.IncomeButtons = incomeAward
	cur.ButtonBalance += incomeAward

	undo.numCleared = copy(undo.clearedSpecial[:], specialCrossings)
	s.Patches.Take(a.PatchSlot)

	s.checkSevenBySevenBonus(cur, undo.MoverWasOne)
	s.resolveMarkersAndTurn(undo.MoverWasOne, newPos, specialCrossings)

	return undo, nil
}

func (s *State) applySpecialPatchPlacement(a Action) (UndoInfo, error) {
	if s.TurnType != SpecialPatchPlacement {
		return UndoInfo{}, fmt.Errorf("board: special-patch placement requires SpecialPatchPlacement turn type: %w", ErrWrongTurnType)
	}
	cur := s.current()
	if cur.Quilt.Tiles.IsSet(a.QuiltBoardIndex) {
		return UndoInfo{}, fmt.Errorf("board: cell %d already occupied: %w", a.QuiltBoardIndex, ErrInvalidAction)
	}

	undo := s.baseUndo()
	undo.PlacedMask = patch.Bit(a.QuiltBoardIndex)
	cur.Quilt.Place(undo.PlacedMask, 0)

	s.checkSevenBySevenBonus(cur, undo.MoverWasOne)

	s.PendingSpecial--
	if s.PendingSpecial <= 0 {
		s.TurnType = Normal
		s.resolveNextPlayer(undo.MoverWasOne)
	}

	return undo, nil
}

func (s *State) applyPhantom() UndoInfo {
	undo := s.baseUndo()
	s.Flags.CurrentPlayerIsOne = !s.Flags.CurrentPlayerIsOne
	return undo
}

// checkSevenBySevenBonus awards the 7x7 bonus to the mover if it isn't
// already held and the mover's board now satisfies the condition. Once
// set, SpecialTileHolder is never revoked by anything else in Apply.
func (s *State) checkSevenBySevenBonus(mover *PlayerState, moverWasOne bool) {
	if s.Flags.SpecialTileHolder == 0 && mover.Quilt.IsSpecialTileConditionReached() {
		s.Flags.SpecialTileHolder = moverNumber(moverWasOne)
	}
}

// resolveMarkersAndTurn applies the first-to-goal flag, then either opens
// a SpecialPatchPlacement interlude (no player switch) or advances to
// the next player under the normal precedence rule.
func (s *State) resolveMarkersAndTurn(moverWasOne bool, moverNewPosition int, specialCrossings []int) {
	if s.Flags.FirstToGoal == 0 && moverNewPosition == TimeBoardSize-1 {
		s.Flags.FirstToGoal = moverNumber(moverWasOne)
	}
	if len(specialCrossings) > 0 {
		s.TurnType = SpecialPatchPlacement
		s.PendingSpecial = len(specialCrossings)
		return
	}
	s.resolveNextPlayer(moverWasOne)
}

// Undo reverses Apply(a) given the UndoInfo it returned.
func (s *State) Undo(a Action, u UndoInfo) {
	switch a.Kind {
	case KindWalking:
		cur := s.playerPtr(u.MoverWasOne)
		s.TimeBoard.Retreat(u.MoverWasOne, u.MoverOldPosition, u.MoverNewPosition, u.clearedSpecial[:u.numCleared])
		cur.Position = u.MoverOldPosition
		cur.ButtonBalance -= u.StepButtons
		cur.ButtonBalance -= u.IncomeButtons

	case KindPatchPlacement:
		cur := s.playerPtr(u.MoverWasOne)
		s.Patches.Untake(u.PatchSlot, u.PatchID)
		s.TimeBoard.Retreat(u.MoverWasOne, u.MoverOldPosition, u.MoverNewPosition, u.clearedSpecial[:u.numCleared])
		cur.Position = u.MoverOldPosition
		cur.ButtonBalance -= u.IncomeButtons
		cur.Quilt.Unplace(u.PlacedMask, u.QuiltIncomeDelta)
		cur.ButtonBalance += u.ButtonCostPaid

	case KindSpecialPatchPlacement:
		cur := s.playerPtr(u.MoverWasOne)
		cur.Quilt.Unplace(u.PlacedMask, 0)

	case KindPhantom:
		// flags restored below covers the player-switch flip

	case KindNull:
		return
	}

	s.Flags = u.OldFlags
	s.TurnType = u.OldTurnType
	s.PendingSpecial = u.OldPendingSpecial
}
