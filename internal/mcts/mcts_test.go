package mcts

import (
	"math/rand"
	"testing"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/engine"
)

func TestUCTChoosesLegalAction(t *testing.T) {
	s := board.NewInitialState(1)
	p := UCT{Eval: engine.WinRolloutEvaluator{Rand: rand.New(rand.NewSource(1))}, Iterations: 50}

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
			break
		}
	}
	if !found {
		t.Fatalf("chosen action %d is not among legal actions %v", id, legal)
	}
}

func TestUCTPastDeadlineReturnsLegalAction(t *testing.T) {
	s := board.NewInitialState(1)

	actions, err := s.LegalActions()
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	if len(actions) == 0 {
		t.Fatal("expected at least one legal action from the initial state")
	}

	p := UCT{Eval: engine.WinRolloutEvaluator{}, Iterations: 1000}
	// A deadline already in the past must still return a legal action.
	id, err := p.ChooseAction(&s, time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("choose action: %v", err)
	}
	found := false
	for _, l := range actions {
		if l == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback action %d not legal", id)
	}
}

func TestNodeNormalizeDegenerateRange(t *testing.T) {
	s := board.NewInitialState(1)
	n, err := newNode(s, 0, nil)
	if err != nil {
		t.Fatalf("newNode: %v", err)
	}
	if got := n.normalize(0.3); got != 0.5 {
		t.Errorf("normalize with no observations = %v, want 0.5 fallback", got)
	}
	n.record(1)
	n.record(-1)
	if got := n.normalize(1); got != 1 {
		t.Errorf("normalize(max) = %v, want 1", got)
	}
	if got := n.normalize(-1); got != 0 {
		t.Errorf("normalize(min) = %v, want 0", got)
	}
}

func TestMostVisitedChild(t *testing.T) {
	s := board.NewInitialState(1)
	root, err := newNode(s, 0, nil)
	if err != nil {
		t.Fatalf("newNode: %v", err)
	}
	a, _ := newNode(s, root.untried[0], root)
	b, _ := newNode(s, root.untried[1], root)
	a.visits = 3
	b.visits = 9
	root.children = []*Node{a, b}

	if got := root.mostVisitedChild(); got != b {
		t.Errorf("mostVisitedChild picked visits=%d, want the 9-visit child", got.visits)
	}
}
