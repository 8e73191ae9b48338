package mcts

import (
	"testing"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/neural"
)

func TestPUCTChoosesLegalAction(t *testing.T) {
	s := board.NewInitialState(1)
	eval := neural.NewEvaluator(nil) // untrained random network: legality is all that's checked

	p := PUCT{Eval: eval, Iterations: 20}
	id, err := p.ChooseAction(&s, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("choose action: %v", err)
	}

	legal, err := s.LegalActions()
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	found := false
	for _, l := range legal {
		if l == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("chosen action %d is not among legal actions %v", id, legal)
	}
}

func TestPolicyIndexForWalkingHasNoSlot(t *testing.T) {
	if _, ok := policyIndexFor(board.Action{Kind: board.KindWalking, StartingIndex: 0}); ok {
		t.Error("walking actions should not map into the placement policy vector")
	}
}

func TestPolicyIndexForPlacementInRange(t *testing.T) {
	s := board.NewInitialState(1)
	actions, err := s.LegalActions()
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	found := false
	for _, id := range actions {
		a, err := board.DecodeAction(id)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if a.Kind != board.KindPatchPlacement {
			continue
		}
		idx, ok := policyIndexFor(a)
		if !ok {
			t.Fatalf("placement action %v has no policy index", a)
		}
		if idx < 0 || idx >= board.NaturalPolicySize {
			t.Fatalf("policy index %d out of range [0, %d)", idx, board.NaturalPolicySize)
		}
		found = true
	}
	if !found {
		t.Fatal("expected at least one legal patch placement from the initial state")
	}
}

func TestCoordinatorMatchesDirectEvaluation(t *testing.T) {
	s := board.NewInitialState(1)
	eval := neural.NewEvaluator(nil)
	coord := NewCoordinator(eval, 4, 2*time.Millisecond)
	defer coord.Stop()

	wantLogits, wantValue := eval.PolicyLogits(&s, 1)
	gotLogits, gotValue := coord.PolicyLogits(&s, 1)

	if gotValue != wantValue {
		t.Errorf("value = %d, want %d", gotValue, wantValue)
	}
	if gotLogits != wantLogits {
		t.Error("coordinator logits diverged from direct evaluation")
	}
}
