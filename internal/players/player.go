// Package players implements the simple, non-search-tree players from the
// spec's search-player family: random and greedy. Both satisfy the same
// contract the tree-search players in internal/engine and internal/mcts
// use, so a batch-compare tournament can mix and match freely.
package players

import (
	"math/rand"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/engine"
)

// Player chooses one legal action from a state before an absolute
// deadline. Implementations must never exceed the deadline by more than a
// small grace interval, and must always return a legal ActionId when at
// least one exists.
type Player interface {
	ChooseAction(s *board.State, deadline time.Time) (board.ActionId, error)
}

func legalOrNull(s *board.State) ([]board.ActionId, error) {
	actions, err := s.LegalActions()
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return []board.ActionId{board.NullActionId()}, nil
	}
	return actions, nil
}

// Random uniformly samples among the legal actions.
type Random struct {
	Rand *rand.Rand
}

func (p Random) rng() *rand.Rand {
	if p.Rand != nil {
		return p.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ChooseAction implements Player.
func (p Random) ChooseAction(s *board.State, _ time.Time) (board.ActionId, error) {
	actions, err := legalOrNull(s)
	if err != nil {
		return 0, err
	}
	return actions[p.rng().Intn(len(actions))], nil
}

// Greedy applies every legal action, scores the result with its
// evaluator, undoes it, and picks the argmax: a single-ply lookahead.
type Greedy struct {
	Eval              engine.Evaluator
	PerspectivePlayer int // 1 or 2; whose score is being maximized
}

// ChooseAction implements Player.
func (p Greedy) ChooseAction(s *board.State, _ time.Time) (board.ActionId, error) {
	actions, err := legalOrNull(s)
	if err != nil {
		return 0, err
	}
	if len(actions) == 1 {
		return actions[0], nil
	}

	best := actions[0]
	bestScore := -1 << 62

	for _, id := range actions {
		action, decErr := board.DecodeAction(id)
		if decErr != nil {
			continue
		}
		if action.Kind == board.KindNull {
			continue
		}
		undo, applyErr := s.Apply(action)
		if applyErr != nil {
			continue
		}
		score := p.Eval.Evaluate(s, p.PerspectivePlayer)
		s.Undo(action, undo)

		if score > bestScore {
			bestScore = score
			best = id
		}
	}
	return best, nil
}
