package neural

import "github.com/nzeitz/patchwork/internal/board"

// Evaluator adapts a Network to engine.Evaluator/engine.BatchEvaluator and
// exposes the policy head for internal/mcts's AlphaZero-style player.
type Evaluator struct {
	Net *Network
}

// NewEvaluator wraps net. A nil net is replaced by a freshly random one,
// matching the teacher's "NNUE disabled falls back gracefully" behavior
// when no weights file is configured.
func NewEvaluator(net *Network) *Evaluator {
	if net == nil {
		net = NewNetwork()
		net.InitRandom(1)
	}
	return &Evaluator{Net: net}
}

// Evaluate implements engine.Evaluator.
func (e *Evaluator) Evaluate(s *board.State, perspectivePlayer int) int {
	var acc Accumulator
	acc.Refresh(e.Net, s)
	return e.Net.Value(&acc, perspectivePlayer == 1)
}

// EvaluateBatch implements engine.BatchEvaluator. The trunk matmuls are not
// vectorized across the batch (this network is small enough that per-state
// forward passes are cheap). internal/mcts's inference coordinator does not
// call it; it batches through PolicyLogitsBatch.
func (e *Evaluator) EvaluateBatch(states []*board.State, perspectivePlayer int) []int {
	out := make([]int, len(states))
	for i, s := range states {
		out[i] = e.Evaluate(s, perspectivePlayer)
	}
	return out
}

// PolicyLogits returns the raw placement-policy logits for s from
// perspectivePlayer's point of view, plus the value head's output in the
// same call (trunk and accumulator are shared between the two heads).
func (e *Evaluator) PolicyLogits(s *board.State, perspectivePlayer int) (logits [board.NaturalPolicySize]int32, value int) {
	var acc Accumulator
	acc.Refresh(e.Net, s)
	stm := perspectivePlayer == 1
	return e.Net.Policy(&acc, stm), e.Net.Value(&acc, stm)
}

// PolicyLogitsBatch runs PolicyLogits over many states. Like EvaluateBatch,
// the forward passes aren't vectorized across the batch yet; the signature
// is what internal/mcts's inference Coordinator calls once per flushed
// batch, so batching the arithmetic later needs no caller changes.
func (e *Evaluator) PolicyLogitsBatch(states []*board.State, perspectivePlayer int) ([][board.NaturalPolicySize]int32, []int) {
	logits := make([][board.NaturalPolicySize]int32, len(states))
	values := make([]int, len(states))
	for i, s := range states {
		logits[i], values[i] = e.PolicyLogits(s, perspectivePlayer)
	}
	return logits, values
}
