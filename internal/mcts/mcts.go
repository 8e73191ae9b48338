package mcts

import (
	"math"
	"math/rand"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/engine"
)

// defaultExploration is the classic UCT constant sqrt(2), matching squava's
// MCTSPlayer.
const defaultExploration = math.Sqrt2

// UCT is a plain Monte Carlo tree search player: UCT tree policy, a
// pluggable leaf Evaluator for the simulation phase, and most-visited-child
// root reporting. Grounded on squava's MCTSPlayer/MCTSNode.
//
// The spec's "win", "partial-score" and "score" MCTS variants are all the
// same search loop over a different leaf Evaluator: engine.WinRolloutEvaluator
// for win/loss rollouts, engine.ScoreRolloutEvaluator for raw score-margin
// rollouts, or any other engine.Evaluator (including a non-rollout static
// one) for a cheaper, noisier leaf estimate.
type UCT struct {
	// Eval scores a leaf from player one's perspective. Required.
	Eval engine.Evaluator
	// Exploration is the UCT constant; zero uses defaultExploration.
	Exploration float64
	// Iterations caps the number of simulations per search; zero means
	// search until the deadline passes.
	Iterations int
	Rand       *rand.Rand
}

func (m UCT) exploration() float64 {
	if m.Exploration == 0 {
		return defaultExploration
	}
	return m.Exploration
}

func (m UCT) rng() *rand.Rand {
	if m.Rand != nil {
		return m.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ChooseAction implements players.Player.
func (m UCT) ChooseAction(s *board.State, deadline time.Time) (board.ActionId, error) {
	root, err := newNode(s.Clone(), 0, nil)
	if err != nil {
		return 0, err
	}
	if root.isTerminal() || len(root.untried) == 0 {
		return board.NullActionId(), nil
	}
	if len(root.untried) == 1 {
		return root.untried[0], nil
	}

	iter := 0
	for time.Now().Before(deadline) && (m.Iterations == 0 || iter < m.Iterations) {
		m.simulateOnce(root)
		iter++
	}

	best := root.mostVisitedChild()
	if best == nil {
		// Never ran a single iteration (deadline already past): fall back to
		// an arbitrary legal action rather than report failure.
		return root.untried[m.rng().Intn(len(root.untried))], nil
	}
	return best.action, nil
}

// simulateOnce runs one select/expand/evaluate/backpropagate cycle rooted
// at root.
func (m UCT) simulateOnce(root *Node) {
	node := root
	for !node.isTerminal() && node.isFullyExpanded() && len(node.children) > 0 {
		node = m.selectChild(node)
	}
	if !node.isTerminal() && !node.isFullyExpanded() {
		node = m.expand(node)
	}

	valueP1 := float64(m.Eval.Evaluate(&node.state, 1))
	for n := node; n != nil; n = n.parent {
		n.record(valueP1)
	}
}

// selectChild picks node's child maximizing UCT score: a Q term
// normalized into [0, 1] via node's own observed value range, plus an
// exploration bonus that favors under-visited children.
func (m UCT) selectChild(node *Node) *Node {
	logN := math.Log(float64(node.visits))
	c := m.exploration()

	var best *Node
	bestScore := math.Inf(-1)
	for _, child := range node.children {
		q := node.normalize(node.relativeQ(child))
		explore := c * math.Sqrt(logN/float64(child.visits))
		score := q + explore
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// expand materializes one of node's untried actions as a new child.
func (m UCT) expand(node *Node) *Node {
	idx := m.rng().Intn(len(node.untried))
	actionID := node.untried[idx]
	node.untried[idx] = node.untried[len(node.untried)-1]
	node.untried = node.untried[:len(node.untried)-1]

	child := node.state.Clone()
	action, err := board.DecodeAction(actionID)
	if err != nil {
		// Unreachable: actionID came from the same state's LegalActions.
		return node
	}
	if _, err := child.Apply(action); err != nil {
		return node
	}

	newChild, err := newNode(child, actionID, node)
	if err != nil {
		return node
	}
	node.children = append(node.children, newChild)
	return newChild
}
