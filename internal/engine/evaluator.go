package engine

import (
	"math/rand"

	"github.com/nzeitz/patchwork/internal/board"
)

// Evaluator scores a state from one player's perspective. Positive values
// favor perspectivePlayer (1 or 2); the scale is evaluator-specific but
// must stay well inside (-Infinity, Infinity) so search arithmetic never
// overflows.
//
// BatchEvaluator is the batch-friendly extension used by neural
// evaluators; callers that don't need batching can use a single-state
// Evaluator directly.
type Evaluator interface {
	Evaluate(s *board.State, perspectivePlayer int) int
}

// BatchEvaluator additionally scores many states in one call, letting a
// neural evaluator amortize a forward pass across a minibatch.
type BatchEvaluator interface {
	Evaluator
	EvaluateBatch(states []*board.State, perspectivePlayer int) []int
}

// StaticEvaluator is a hand-tuned linear combination of button-balance
// difference, current button-income difference, board-fill difference,
// and a fixed term for whichever player holds the 7x7 bonus. It does not
// project income over the remaining income markers, and it gives nothing
// for being close to an unclaimed 7x7 bonus. It never allocates and never
// mutates the state.
type StaticEvaluator struct {
	// ButtonWeight, IncomeWeight, FillWeight, BonusWeight tune the linear
	// combination. Zero-value StaticEvaluator uses DefaultStaticWeights.
	ButtonWeight, IncomeWeight, FillWeight, BonusWeight int
}

// DefaultStaticWeights produces a StaticEvaluator with reasonable weights
// for casual play: 1 per button of balance, 6 per point of income, 2 per
// covered cell, and 4 for holding the 7x7 bonus.
func DefaultStaticWeights() StaticEvaluator {
	return StaticEvaluator{ButtonWeight: 1, IncomeWeight: 6, FillWeight: 2, BonusWeight: 4}
}

func perspectiveOf(s *board.State, playerOne bool) *board.PlayerState {
	if playerOne {
		return &s.Player1
	}
	return &s.Player2
}

// Evaluate implements Evaluator.
func (e StaticEvaluator) Evaluate(s *board.State, perspectivePlayer int) int {
	w := e
	if w == (StaticEvaluator{}) {
		w = DefaultStaticWeights()
	}
	mine := perspectivePlayer == 1
	self, opp := perspectiveOf(s, mine), perspectiveOf(s, !mine)

	buttonDiff := self.ButtonBalance - opp.ButtonBalance
	incomeDiff := self.Quilt.ButtonIncome - opp.Quilt.ButtonIncome
	fillDiff := self.Quilt.Tiles.PopCount() - opp.Quilt.Tiles.PopCount()

	bonus := 0
	switch s.Flags.SpecialTileHolder {
	case 1:
		if mine {
			bonus = w.BonusWeight
		} else {
			bonus = -w.BonusWeight
		}
	case 2:
		if mine {
			bonus = -w.BonusWeight
		} else {
			bonus = w.BonusWeight
		}
	}

	return w.ButtonWeight*buttonDiff + w.IncomeWeight*incomeDiff + w.FillWeight*fillDiff + bonus
}

// WinRolloutEvaluator plays the game to completion using uniform-random
// legal actions and returns +1/0/-1 from perspectivePlayer's point of
// view, matching the spec's "win rollout" evaluator.
type WinRolloutEvaluator struct {
	Rand *rand.Rand
}

func (e WinRolloutEvaluator) rng() *rand.Rand {
	if e.Rand != nil {
		return e.Rand
	}
	return rand.New(rand.NewSource(1))
}

func (e WinRolloutEvaluator) rollout(s *board.State) (board.State, error) {
	cur := *s
	rng := e.rng()
	for !cur.IsTerminated() {
		actions, err := cur.LegalActions()
		if err != nil {
			return cur, err
		}
		if len(actions) == 0 {
			return cur, nil
		}
		pick := actions[rng.Intn(len(actions))]
		action, err := board.DecodeAction(pick)
		if err != nil {
			return cur, err
		}
		if _, err := cur.Apply(action); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

// Evaluate implements Evaluator.
func (e WinRolloutEvaluator) Evaluate(s *board.State, perspectivePlayer int) int {
	final, err := e.rollout(s)
	if err != nil {
		return 0
	}
	winner, draw := final.Winner()
	if draw {
		return 0
	}
	if winner == perspectivePlayer {
		return 1
	}
	return -1
}

// ScoreRolloutEvaluator is the same rollout as WinRolloutEvaluator but
// returns the raw terminal score difference instead of a win/loss
// indicator.
type ScoreRolloutEvaluator struct {
	WinRolloutEvaluator
}

// Evaluate implements Evaluator.
func (e ScoreRolloutEvaluator) Evaluate(s *board.State, perspectivePlayer int) int {
	final, err := e.rollout(s)
	if err != nil {
		return 0
	}
	mine := perspectivePlayer == 1
	return final.Score(mine) - final.Score(!mine)
}
