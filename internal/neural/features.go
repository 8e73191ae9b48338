// Package neural implements the spec's learned (policy, value) evaluator: a
// small quantized feed-forward network in the teacher's NNUE style,
// retargeted from chess's HalfKP king-relative features to a Patchwork
// relative-perspective feature set, with a shared trunk feeding a value
// head and a placement-policy head over the shared NaturalActionId
// projection.
package neural

import (
	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/patch"
)

// Feature group sizes. Every group is perspective-relative: it is computed
// twice per state, once from each player's point of view, the way the
// teacher's HalfKP features are computed once per king. "Mine" always
// refers to the player the group is being built for.
const (
	tilesFeatures    = 2 * patch.BoardCells // mine-occupied, theirs-occupied, per cell
	positionFeatures = 2 * board.TimeBoardSize
	balanceBuckets   = 32
	incomeBuckets    = 16
	queueBuckets     = patch.NumRegular + 1 // +1 for "no patch in this slot"
	queueSlots       = 3

	balanceFeatures = 2 * balanceBuckets
	incomeFeatures  = 2 * incomeBuckets
	queueFeatures   = queueSlots * queueBuckets

	bonusFeatures    = 3 // special-tile holder: none / mine / theirs
	turnTypeFeatures = 2 // Normal / SpecialPatchPlacement
	raceFeatures     = 3 // first-to-goal: none / mine / theirs
)

// FeatureSize is the width of the sparse binary feature space ExtractFeatures
// indexes into; it is also the row count of Network.L1Weights.
const FeatureSize = tilesFeatures + positionFeatures + balanceFeatures +
	incomeFeatures + queueFeatures + bonusFeatures + turnTypeFeatures + raceFeatures

func clampBucket(v, buckets int) int {
	if v < 0 {
		v = 0
	}
	if v >= buckets {
		v = buckets - 1
	}
	return v
}

// ExtractFeatures returns the sparse set of active feature indices for s as
// seen from forPlayerOne's perspective. Each index fires with implicit
// weight 1, the same convention the teacher's HalfKP feature set uses, so
// Accumulator only ever needs to sum selected rows of L1Weights.
func ExtractFeatures(s *board.State, forPlayerOne bool) []int32 {
	out := make([]int32, 0, 16+queueSlots+6)
	off := 0

	mine, theirs := &s.Player1, &s.Player2
	if !forPlayerOne {
		mine, theirs = &s.Player2, &s.Player1
	}

	for _, cell := range mine.Quilt.Tiles.Bits() {
		out = append(out, int32(off+cell))
	}
	off += patch.BoardCells
	for _, cell := range theirs.Quilt.Tiles.Bits() {
		out = append(out, int32(off+cell))
	}
	off += patch.BoardCells

	out = append(out, int32(off+mine.Position))
	off += board.TimeBoardSize
	out = append(out, int32(off+theirs.Position))
	off += board.TimeBoardSize

	out = append(out, int32(off+clampBucket(mine.ButtonBalance, balanceBuckets)))
	off += balanceBuckets
	out = append(out, int32(off+clampBucket(theirs.ButtonBalance, balanceBuckets)))
	off += balanceBuckets

	out = append(out, int32(off+clampBucket(mine.Quilt.ButtonIncome, incomeBuckets)))
	off += incomeBuckets
	out = append(out, int32(off+clampBucket(theirs.Quilt.ButtonIncome, incomeBuckets)))
	off += incomeBuckets

	for slot := 0; slot < queueSlots; slot++ {
		bucket := 0 // empty; regular patch ids start at 1
		if id, ok := s.Patches.At(slot); ok {
			bucket = int(id) % queueBuckets
		}
		out = append(out, int32(off+slot*queueBuckets+bucket))
	}
	off += queueFeatures

	bonus := 0 // none
	if s.Flags.SpecialTileHolder != 0 {
		holderIsMine := (s.Flags.SpecialTileHolder == 1) == forPlayerOne
		if holderIsMine {
			bonus = 1
		} else {
			bonus = 2
		}
	}
	out = append(out, int32(off+bonus))
	off += bonusFeatures

	turnType := 0
	if s.TurnType == board.SpecialPatchPlacement {
		turnType = 1
	}
	out = append(out, int32(off+turnType))
	off += turnTypeFeatures

	race := 0
	if s.Flags.FirstToGoal != 0 {
		if (s.Flags.FirstToGoal == 1) == forPlayerOne {
			race = 1
		} else {
			race = 2
		}
	}
	out = append(out, int32(off+race))
	off += raceFeatures

	return out
}
