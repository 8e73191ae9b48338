package neural

import "github.com/nzeitz/patchwork/internal/board"

// Layer sizes, quantization shifts and the output scale follow the
// teacher's HalfKP network sizing conventions (int16 L1, int8 L2, a right
// shift between layers to keep intermediate sums in range). The trunk
// (L1Weights/L1Bias through L2Weights/L2Bias) is shared; ValueWeights and
// PolicyWeights are the two heads spec's neural evaluator requires.
const (
	L1Size = 128
	L2Size = 32

	L1QuantShift = 6
	L2QuantShift = 6
	ValueScale   = 64
)

// Network holds the quantized weights for the shared trunk plus the value
// and policy heads.
type Network struct {
	L1Weights [FeatureSize][L1Size]int16
	L1Bias    [L1Size]int16

	L2Weights [L1Size * 2][L2Size]int8
	L2Bias    [L2Size]int32

	ValueWeights [L2Size]int8
	ValueBias    int32

	PolicyWeights [L2Size][board.NaturalPolicySize]int8
	PolicyBias    [board.NaturalPolicySize]int32
}

// NewNetwork returns a network with zero weights; callers load real weights
// with LoadWeights or call InitRandom for a usable-but-untrained network.
func NewNetwork() *Network {
	return &Network{}
}

// ClampedReLU mirrors the teacher's clipped activation: clamp to [0, 127]
// then narrow to int8, keeping every intermediate layer's range bounded
// regardless of how the trunk was trained.
func ClampedReLU(v int16) int8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}

func (n *Network) trunk(acc *Accumulator, stmIsP1 bool) [L2Size]int8 {
	var stmAcc, nstmAcc *[L1Size]int16
	if stmIsP1 {
		stmAcc, nstmAcc = &acc.P1, &acc.P2
	} else {
		stmAcc, nstmAcc = &acc.P2, &acc.P1
	}

	var l1Out [L1Size * 2]int8
	for i := 0; i < L1Size; i++ {
		l1Out[i] = ClampedReLU(stmAcc[i])
		l1Out[L1Size+i] = ClampedReLU(nstmAcc[i])
	}

	var l2Out [L2Size]int8
	for i := 0; i < L2Size; i++ {
		sum := n.L2Bias[i]
		for j := 0; j < L1Size*2; j++ {
			sum += int32(l1Out[j]) * int32(n.L2Weights[j][i])
		}
		scaled := int16(sum >> L1QuantShift)
		l2Out[i] = ClampedReLU(scaled)
	}
	return l2Out
}

// Value returns the scalar value-head output for perspectivePlayer as a
// plain int, so it can be dropped into engine.Evaluator without
// special-casing.
func (n *Network) Value(acc *Accumulator, perspectivePlayerOne bool) int {
	l2Out := n.trunk(acc, perspectivePlayerOne)

	var sum int32 = n.ValueBias
	for i := 0; i < L2Size; i++ {
		sum += int32(l2Out[i]) * int32(n.ValueWeights[i])
	}
	return int(sum * ValueScale >> (L2QuantShift + 8))
}

// Policy returns one logit per entry of the shared NaturalActionId
// placement projection (board.NaturalPolicySize wide), from
// perspectivePlayerOne's point of view. Callers restrict this to the
// indices of actually-legal actions and renormalize, the way a
// trained policy head is always used downstream of softmax-over-legal.
func (n *Network) Policy(acc *Accumulator, perspectivePlayerOne bool) [board.NaturalPolicySize]int32 {
	l2Out := n.trunk(acc, perspectivePlayerOne)

	var logits [board.NaturalPolicySize]int32
	for p := 0; p < board.NaturalPolicySize; p++ {
		sum := n.PolicyBias[p]
		for i := 0; i < L2Size; i++ {
			sum += int32(l2Out[i]) * int32(n.PolicyWeights[i][p])
		}
		logits[p] = sum
	}
	return logits
}
