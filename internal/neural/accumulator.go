package neural

import "github.com/nzeitz/patchwork/internal/board"

// Accumulator holds the L1 activations for both players' perspectives at
// once, mirroring the teacher's White/Black accumulator pair. Patchwork
// placements touch dozens of feature groups at once (quilt occupancy,
// position, income, queue contents), unlike a chess move's single-piece
// delta, so there is no cheap incremental update here: Refresh always
// recomputes both perspectives from scratch. The struct still carries the
// split so Network.Forward can pick stm-first ordering exactly like the
// teacher's.
type Accumulator struct {
	P1 [L1Size]int16
	P2 [L1Size]int16
}

func refreshOne(net *Network, s *board.State, forPlayerOne bool, out *[L1Size]int16) {
	*out = net.L1Bias
	for _, f := range ExtractFeatures(s, forPlayerOne) {
		row := &net.L1Weights[f]
		for i := range out {
			out[i] += row[i]
		}
	}
}

// Refresh recomputes both perspectives of the accumulator from s.
func (a *Accumulator) Refresh(net *Network, s *board.State) {
	refreshOne(net, s, true, &a.P1)
	refreshOne(net, s, false, &a.P2)
}
