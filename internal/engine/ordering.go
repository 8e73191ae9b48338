package engine

import (
	"sort"

	"github.com/nzeitz/patchwork/internal/board"
)

// Move ordering priorities, highest first.
const (
	TTActionScore  = 10_000_000
	KillerScore1   = 900_000
	KillerScore2   = 800_000
	PlacementBase  = 100_000
	WalkingBase    = 50_000
)

// MoveOrderer ranks legal ActionIds for alpha-beta search. Unlike a chess
// engine's fixed 64x64 from/to grid, the Patchwork action space is a
// dynamically sized, dense ActionId range, so the history table is a map
// keyed by ActionId; killers are a fixed two-entry array per ply.
type MoveOrderer struct {
	killers [MaxPly][2]board.ActionId
	history map[board.ActionId]int
}

// NewMoveOrderer creates an empty orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{history: make(map[board.ActionId]int)}
}

// Clear resets killers and ages history scores for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = 0
		mo.killers[i][1] = 0
	}
	for k, v := range mo.history {
		mo.history[k] = v / 2
	}
}

// ScoreActions assigns an ordering score to each candidate action.
func (mo *MoveOrderer) ScoreActions(actions []board.ActionId, ply int, ttAction board.ActionId) []int {
	scores := make([]int, len(actions))
	for i, a := range actions {
		scores[i] = mo.scoreAction(a, ply, ttAction)
	}
	return scores
}

func (mo *MoveOrderer) scoreAction(a board.ActionId, ply int, ttAction board.ActionId) int {
	if a == ttAction {
		return TTActionScore
	}
	if a == mo.killers[ply][0] {
		return KillerScore1
	}
	if a == mo.killers[ply][1] {
		return KillerScore2
	}

	dec, err := board.DecodeAction(a)
	if err != nil {
		return mo.history[a]
	}
	base := 0
	switch dec.Kind {
	case board.KindPatchPlacement, board.KindSpecialPatchPlacement:
		base = PlacementBase
	case board.KindWalking:
		base = WalkingBase
	}
	return base + mo.history[a]
}

// SortActions orders actions by descending score, swapping the parallel
// scores slice along with it.
func SortActions(actions []board.ActionId, scores []int) {
	idx := make([]int, len(actions))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return scores[idx[i]] > scores[idx[j]] })

	sortedActions := make([]board.ActionId, len(actions))
	sortedScores := make([]int, len(scores))
	for newPos, oldPos := range idx {
		sortedActions[newPos] = actions[oldPos]
		sortedScores[newPos] = scores[oldPos]
	}
	copy(actions, sortedActions)
	copy(scores, sortedScores)
}

// PickAction selects the best remaining action at or after index and moves
// it into place, allowing lazy incremental sorting during search.
func PickAction(actions []board.ActionId, scores []int, index int) {
	best := index
	for j := index + 1; j < len(actions); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		actions[index], actions[best] = actions[best], actions[index]
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet action that produced a beta cutoff.
func (mo *MoveOrderer) UpdateKillers(a board.ActionId, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == a {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = a
}

// UpdateHistory adjusts the history score for an action that either caused
// or failed to cause a cutoff at the given depth.
func (mo *MoveOrderer) UpdateHistory(a board.ActionId, depth int, isGood bool) {
	bonus := depth * depth
	if isGood {
		mo.history[a] += bonus
		if mo.history[a] > 400_000 {
			for k := range mo.history {
				mo.history[k] /= 2
			}
		}
	} else {
		mo.history[a] -= bonus
		if mo.history[a] < -400_000 {
			mo.history[a] = -400_000
		}
	}
}

// TopK returns the k highest-scoring non-walking ActionIds in actions plus
// every walking action, used by Searcher.BranchCap to cap branching
// factor on patch-placement moves while always keeping walking available.
func TopK(actions []board.ActionId, scores []int, k int) []board.ActionId {
	if k <= 0 || k >= len(actions) {
		out := make([]board.ActionId, len(actions))
		copy(out, actions)
		return out
	}
	idx := make([]int, len(actions))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return scores[idx[i]] > scores[idx[j]] })

	seen := make(map[board.ActionId]bool, k)
	out := make([]board.ActionId, 0, k)
	for _, i := range idx {
		a := actions[i]
		dec, err := board.DecodeAction(a)
		if err == nil && dec.Kind == board.KindWalking {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
			continue
		}
		if len(out) >= k {
			continue
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
