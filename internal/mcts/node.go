// Package mcts implements the spec's tree-search player family: plain
// Monte Carlo tree search with a UCT tree policy and rollout leaf
// evaluation, and an AlphaZero-style variant that replaces the rollout
// with a neural (policy, value) leaf evaluation under PUCT selection.
// Both share the four-phase select/expand/simulate-or-evaluate/
// backpropagate loop and the Node arena in this file, grounded on the
// pack's squava UCTSelectChild/AddChild/Update tree and the ZachBeta
// batched-MCTS PUCT selection formula.
package mcts

import (
	"math"

	"github.com/nzeitz/patchwork/internal/board"
)

// Node is one position in the search tree. Patchwork's State is a small
// value type with no reference fields of its own, so each node owns a
// full copy rather than replaying Apply/Undo against a single shared
// state; this trades a little memory for a tree that is trivially safe
// to share across leaf-parallel goroutines once built.
//
// Every accumulated value on a node is stored canonically, from player
// one's point of view (positive favors player one), never flipped by
// tree depth. Patchwork's "player behind on the time track moves next"
// rule means the same player can move on consecutive plies, so a classic
// alternating-sign negamax backpropagation would silently score half the
// tree from the wrong side; converting to mover-relative terms happens
// only at selection time, using each node's own CurrentPlayerIsOne flag.
type Node struct {
	state  board.State
	action board.ActionId // action that produced this node from its parent; zero at the root
	parent *Node

	children []*Node
	untried  []board.ActionId

	visits         int
	totalValueP1   float64
	minP1, maxP1   float64 // observed canonical value range, for Q normalization
	prior          float64 // PUCT prior; unused (implicitly uniform) by the plain UCT player
}

func newNode(s board.State, action board.ActionId, parent *Node) (*Node, error) {
	n := &Node{state: s, action: action, parent: parent, minP1: math.Inf(1), maxP1: math.Inf(-1)}
	if !s.IsTerminated() {
		actions, err := s.LegalActions()
		if err != nil {
			return nil, err
		}
		n.untried = actions
	}
	return n, nil
}

func (n *Node) isTerminal() bool {
	return n.state.IsTerminated()
}

func (n *Node) isFullyExpanded() bool {
	return len(n.untried) == 0
}

func (n *Node) currentPlayerIsOne() bool {
	return n.state.Flags.CurrentPlayerIsOne
}

// record folds one backpropagated canonical value into this node.
func (n *Node) record(valueP1 float64) {
	n.visits++
	n.totalValueP1 += valueP1
	if valueP1 < n.minP1 {
		n.minP1 = valueP1
	}
	if valueP1 > n.maxP1 {
		n.maxP1 = valueP1
	}
}

func (n *Node) meanP1() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.totalValueP1 / float64(n.visits)
}

// relativeQ converts child's canonical mean value into this node's own
// mover-relative scale: positive means good for whoever is to move here.
func (n *Node) relativeQ(child *Node) float64 {
	q := child.meanP1()
	if !n.currentPlayerIsOne() {
		q = -q
	}
	return q
}

// normalize maps a mover-relative value q into [0, 1] using this node's
// own observed range, converted into the same mover-relative scale.
func (n *Node) normalize(q float64) float64 {
	relMin, relMax := n.minP1, n.maxP1
	if !n.currentPlayerIsOne() {
		relMin, relMax = -n.maxP1, -n.minP1
	}
	if relMax <= relMin || math.IsInf(relMin, 0) || math.IsInf(relMax, 0) {
		return 0.5
	}
	v := (q - relMin) / (relMax - relMin)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// mostVisitedChild implements the "most visited child" root reporting
// policy spec's MCTS family uses, matching squava's MCTSPlayer.
func (n *Node) mostVisitedChild() *Node {
	var best *Node
	bestVisits := -1
	for _, c := range n.children {
		if c.visits > bestVisits {
			bestVisits = c.visits
			best = c
		}
	}
	return best
}
