package board

import (
	"testing"

	"github.com/nzeitz/patchwork/internal/patch"
)

func TestEmptyBoardWalking(t *testing.T) {
	s := NewInitialState(0)
	a := Action{Kind: KindWalking, StartingIndex: 0}
	if _, err := s.Apply(a); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Player1.Position != 1 {
		t.Errorf("player 1 position = %d, want 1", s.Player1.Position)
	}
	if s.Player1.ButtonBalance != 6 {
		t.Errorf("player 1 balance = %d, want 6", s.Player1.ButtonBalance)
	}
	if s.Flags.CurrentPlayerIsOne {
		t.Errorf("expected player 2 to move next")
	}
}

func TestForcedOneMove(t *testing.T) {
	s := NewInitialState(0)
	// Drain player 1's buttons and fill their board so only Walking is legal.
	s.Player1.ButtonBalance = 0
	s.Player1.Quilt.Tiles = patch.Full81.AndNot(patch.Bit(0))

	actions, err := s.LegalActions()
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("expected exactly 1 legal action, got %d: %v", len(actions), actions)
	}
	a, err := DecodeAction(actions[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Kind != KindWalking {
		t.Fatalf("expected the only legal action to be Walking, got %v", a.Kind)
	}
}

func TestSpecialPatchPlacementScenario(t *testing.T) {
	s := NewInitialState(0)
	// Force both players onto the cell right behind the first
	// special-patch marker, so player 1's walk to one past player 2 lands
	// exactly on the marker.
	start := specialPatchPositions[0] - 1
	s.Player1.Position = start
	s.Player2.Position = start
	s.TimeBoard.ClearPresence(true, 0)
	s.TimeBoard.ClearPresence(false, 0)
	s.TimeBoard.SetPresence(true, start)
	s.TimeBoard.SetPresence(false, start)

	a := Action{Kind: KindWalking, StartingIndex: s.Player1.Position}
	if _, err := s.Apply(a); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.TurnType != SpecialPatchPlacement {
		t.Fatalf("expected SpecialPatchPlacement turn type, got %v", s.TurnType)
	}
	actions, err := s.LegalActions()
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	want := patch.BoardCells - s.Player1.Quilt.Tiles.PopCount()
	if len(actions) != want {
		t.Fatalf("got %d legal actions, want %d", len(actions), want)
	}
}

func TestSevenBySevenBonusAttributionIsSticky(t *testing.T) {
	s := NewInitialState(0)
	s.Player2.Quilt.Tiles = sevenBySevenTemplates[0].AndNot(patch.Bit(0))

	a := Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: 0}
	s.Flags.CurrentPlayerIsOne = false
	s.TurnType = SpecialPatchPlacement
	s.PendingSpecial = 1

	if _, err := s.Apply(a); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Flags.SpecialTileHolder != 2 {
		t.Fatalf("expected player 2 to hold the 7x7 bonus, got %d", s.Flags.SpecialTileHolder)
	}

	// Player 1 later also fills a 7x7 region; the bonus must not move.
	s.Player1.Quilt.Tiles = sevenBySevenTemplates[1]
	s.checkSevenBySevenBonus(&s.Player1, true)
	if s.Flags.SpecialTileHolder != 2 {
		t.Fatalf("7x7 bonus was revoked from player 2")
	}
}

func TestTerminationScoring(t *testing.T) {
	s := NewInitialState(0)
	s.Player1.Position = TimeBoardSize - 1
	s.Player2.Position = TimeBoardSize - 1

	s.Player1.ButtonBalance = 12
	s.Player1.Quilt.Tiles = patch.Full81.AndNot(firstNBits(14))

	s.Player2.ButtonBalance = 18
	s.Player2.Quilt.Tiles = patch.Full81.AndNot(firstNBits(30))
	s.Flags.SpecialTileHolder = 2

	if !s.IsTerminated() {
		t.Fatalf("expected terminal state")
	}
	if got := s.Score(true); got != -16 {
		t.Fatalf("player 1 score = %d, want -16", got)
	}
	if got := s.Score(false); got != -35 {
		t.Fatalf("player 2 score = %d, want -35", got)
	}
	winner, draw := s.Winner()
	if draw || winner != 1 {
		t.Fatalf("winner = %d (draw=%v), want player 1", winner, draw)
	}
}

func firstNBits(n int) patch.Mask {
	var m patch.Mask
	for i := 0; i < n; i++ {
		m = m.Set(i)
	}
	return m
}

func TestApplyUndoIdentityAcrossAllKinds(t *testing.T) {
	cat := patch.Get()
	patchID := cat.RegularIDs()[0]

	build := func() State {
		s := NewInitialState(7)
		s.Player1.ButtonBalance = 20
		s.Player2.ButtonBalance = 20
		return s
	}

	cases := []Action{
		{Kind: KindWalking, StartingIndex: 0},
		{Kind: KindPatchPlacement, PatchID: patchID, PatchSlot: 0, TransformationIndex: 0},
		{Kind: KindPhantom},
	}

	for _, a := range cases {
		s := build()
		// Make sure the queue's slot 0 really holds patchID for the placement case.
		if a.Kind == KindPatchPlacement {
			for i, id := range s.Patches.ids {
				if id == patchID {
					s.Patches.ids[0], s.Patches.ids[i] = s.Patches.ids[i], s.Patches.ids[0]
					break
				}
			}
		}
		before := s
		undo, err := s.Apply(a)
		if err != nil {
			t.Fatalf("apply %+v: %v", a, err)
		}
		s.Undo(a, undo)
		if s != before {
			t.Fatalf("apply/undo not identity for %+v:\nbefore=%+v\nafter=%+v", a, before, s)
		}
	}
}

func TestSpecialPatchUndoIdentity(t *testing.T) {
	s := NewInitialState(3)
	s.TurnType = SpecialPatchPlacement
	s.PendingSpecial = 1
	before := s

	a := Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: 5}
	undo, err := s.Apply(a)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	s.Undo(a, undo)
	if s != before {
		t.Fatalf("apply/undo not identity for special-patch placement")
	}
}

func TestLegalActionsNonTerminalIsNonEmpty(t *testing.T) {
	s := NewInitialState(1)
	actions, err := s.LegalActions()
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	if len(actions) == 0 {
		t.Fatalf("expected at least one legal action from the opening position")
	}
}

func TestDeterminismSameSeedSameInitialState(t *testing.T) {
	a := NewInitialState(99)
	b := NewInitialState(99)
	if a != b {
		t.Fatalf("same seed produced different initial states")
	}
	c := NewInitialState(100)
	if a == c {
		t.Fatalf("different seeds produced identical initial states")
	}
}
