package mcts

import (
	"math"
	"math/rand"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
)

// defaultCPuct is a conventional AlphaZero exploration constant.
const defaultCPuct = 1.5

// PUCT is the AlphaZero-style search player: same select/expand/
// backpropagate skeleton as UCT, but tree policy is PUCT with priors from
// a neural policy head, and leaf evaluation is the network's value head
// instead of a rollout. Grounded on the pack's ZachBeta batched-MCTS
// BatchedMCTS.selectBestChild/expandNode/backpropagate.
type PUCT struct {
	// Eval supplies (policy, value) at leaves: a bare *neural.Evaluator for
	// a lone PUCT player, or a *Coordinator to share one network across
	// several concurrently searching players.
	Eval policyValueEvaluator

	CPuct      float64
	Iterations int
	Rand       *rand.Rand

	// DirichletAlpha/DirichletEpsilon add exploration noise to the root's
	// priors, matching the spec's "optional Dirichlet noise at training
	// time". Zero DirichletEpsilon disables it, the right default for
	// ordinary play; only a training self-play loop should set these.
	DirichletAlpha   float64
	DirichletEpsilon float64
}

func (m PUCT) cPuct() float64 {
	if m.CPuct == 0 {
		return defaultCPuct
	}
	return m.CPuct
}

func (m PUCT) rng() *rand.Rand {
	if m.Rand != nil {
		return m.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ChooseAction implements players.Player.
func (m PUCT) ChooseAction(s *board.State, deadline time.Time) (board.ActionId, error) {
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

	m.evaluateAndExpand(root)
	if m.DirichletEpsilon > 0 {
		m.addRootNoise(root)
	}

	iter := 0
	for time.Now().Before(deadline) && (m.Iterations == 0 || iter < m.Iterations) {
		m.simulateOnce(root)
		iter++
	}

	best := root.mostVisitedChild()
	if best == nil {
		return root.children[m.rng().Intn(len(root.children))].action, nil
	}
	return best.action, nil
}

func (m PUCT) simulateOnce(root *Node) {
	node := root
	for !node.isTerminal() && node.isFullyExpanded() && len(node.children) > 0 {
		node = m.selectChild(node)
	}

	var valueP1 float64
	if node.isTerminal() {
		winner, draw := node.state.Winner()
		switch {
		case draw:
			valueP1 = 0
		case winner == 1:
			valueP1 = 1
		default:
			valueP1 = -1
		}
	} else {
		valueP1 = m.evaluateAndExpand(node)
	}

	for n := node; n != nil; n = n.parent {
		n.record(valueP1)
	}
}

// evaluateAndExpand runs the network once on node, expands every untried
// action at once with its policy prior (AlphaZero expands the whole leaf
// rather than one child per visit, unlike plain UCT's incremental widening
// since the priors are already known for free from the same forward pass),
// and returns the canonical (player-one-relative) value to backpropagate.
func (m PUCT) evaluateAndExpand(node *Node) float64 {
	logits, valueForMover := m.Eval.PolicyLogits(&node.state, moverPerspective(node))

	priors, total := make([]float64, len(node.untried)), 0.0
	for i, id := range node.untried {
		action, err := board.DecodeAction(id)
		if err != nil {
			priors[i] = 1
			total++
			continue
		}
		p := 1.0
		if idx, ok := policyIndexFor(action); ok {
			p = math.Exp(float64(logits[idx]) / policyTemperature)
		}
		priors[i] = p
		total += p
	}
	if total <= 0 {
		total = 1
	}

	for i, id := range node.untried {
		child := node.state.Clone()
		action, err := board.DecodeAction(id)
		if err != nil {
			continue
		}
		if _, err := child.Apply(action); err != nil {
			continue
		}
		newChild, err := newNode(child, id, node)
		if err != nil {
			continue
		}
		newChild.prior = priors[i] / total
		node.children = append(node.children, newChild)
	}
	node.untried = nil

	valueP1 := float64(valueForMover)
	if !node.currentPlayerIsOne() {
		valueP1 = -valueP1
	}
	return valueP1
}

// policyTemperature softens the raw int32 logits before the softmax; the
// network's logit scale is calibrated against this constant, not 1.
const policyTemperature = 256.0

func moverPerspective(n *Node) int {
	if n.currentPlayerIsOne() {
		return 1
	}
	return 2
}

// policyIndexFor reports the placement-policy index a legal action maps
// to, if any. Walking, special-patch-placement, Phantom and Null actions
// have no slot in the shared placement policy vector (board.EncodeNatural
// leaves their low bits outside board.NaturalLowBase's range), so they
// fall back to a flat prior of 1 in evaluateAndExpand.
func policyIndexFor(a board.Action) (int, bool) {
	nat, err := board.EncodeNatural(a)
	if err != nil {
		return 0, false
	}
	low := int(uint64(nat) & 0xFFFF)
	if low >= board.NaturalLowBase && low < board.NaturalLowBase+board.NaturalPolicySize {
		return low - board.NaturalLowBase, true
	}
	return 0, false
}

// selectChild picks node's child maximizing PUCT score.
func (m PUCT) selectChild(node *Node) *Node {
	sqrtParent := math.Sqrt(float64(node.visits))
	c := m.cPuct()

	var best *Node
	bestScore := math.Inf(-1)
	for _, child := range node.children {
		q := node.normalize(node.relativeQ(child))
		explore := c * child.prior * sqrtParent / float64(1+child.visits)
		score := q + explore
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// addRootNoise mixes Dirichlet(alpha) noise into the root's child priors,
// approximated here with normalized Gamma(alpha, 1) draws (Go has no
// stdlib Dirichlet sampler; a Gamma-ratio construction is the standard
// one). Only used when DirichletEpsilon > 0.
func (m PUCT) addRootNoise(root *Node) {
	if len(root.children) == 0 {
		return
	}
	rng := m.rng()
	noise := make([]float64, len(root.children))
	sum := 0.0
	for i := range noise {
		noise[i] = gammaSample(rng, m.DirichletAlpha)
		sum += noise[i]
	}
	if sum <= 0 {
		return
	}
	eps := m.DirichletEpsilon
	for i, child := range root.children {
		child.prior = (1-eps)*child.prior + eps*(noise[i]/sum)
	}
}

// gammaSample draws from Gamma(alpha, 1) via Marsaglia-Tsang, the
// textbook rejection sampler; used only to build Dirichlet root noise.
func gammaSample(rng *rand.Rand, alpha float64) float64 {
	if alpha < 1 {
		u := rng.Float64()
		return gammaSample(rng, alpha+1) * math.Pow(u, 1/alpha)
	}
	d := alpha - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
