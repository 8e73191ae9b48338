package engine

import (
	"sync/atomic"

	"github.com/nzeitz/patchwork/internal/board"
)

// FailStrategy selects whether negamax returns scores that may lie
// outside the (alpha, beta) window it was called with (soft) or clips
// them to the window before returning (hard).
type FailStrategy int

const (
	FailSoft FailStrategy = iota
	FailHard
)

// Searcher runs a single-threaded principal-variation search with
// iterative deepening, aspiration windows, null-window re-search, late
// move reduction/pruning, search extensions, and a shared transposition
// table. One Searcher belongs to exactly one Worker.
type Searcher struct {
	state    *board.State
	tt       *TranspositionTable
	orderer  *MoveOrderer
	eval     Evaluator
	perspective int // 1 or 2: whose score the root search maximizes

	fail FailStrategy

	nodes    uint64
	stopFlag *atomic.Bool

	pv PVTable

	undoStack [MaxPly]board.UndoInfo

	// BranchCap, when > 0, limits patch-placement branching at every ply
	// (always keeping walking actions), to keep PVS tractable; zero (the
	// default) applies no cap.
	BranchCap int

	// LMRMinDepth/LMRMinMoveIndex gate when reductions start applying.
	LMRMinDepth     int
	LMRMinMoveIndex int

	// LMPMaxDepth/LMPBase gate late move pruning at shallow depths.
	LMPMaxDepth int
	LMPBase     int
}

// NewSearcher builds a Searcher sharing tt and using eval for leaf scoring.
func NewSearcher(tt *TranspositionTable, eval Evaluator, stopFlag *atomic.Bool) *Searcher {
	return &Searcher{
		tt:              tt,
		orderer:         NewMoveOrderer(),
		eval:            eval,
		stopFlag:        stopFlag,
		LMRMinDepth:     3,
		LMRMinMoveIndex: 3,
		LMPMaxDepth:     4,
		LMPBase:         8,
	}
}

// Reset prepares the searcher for a fresh iterative-deepening run from the
// given state, evaluated from perspectivePlayer's point of view.
func (s *Searcher) Reset(state *board.State, perspectivePlayer int) {
	s.state = state
	s.perspective = perspectivePlayer
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the node count accumulated since the last Reset.
func (s *Searcher) Nodes() uint64 { return s.nodes }

// Search runs a full-window negamax search to the given depth from the
// root and returns the best action and its score.
func (s *Searcher) Search(depth int) (board.ActionId, int) {
	score := s.negamax(depth, 0, -Infinity, Infinity)
	var best board.ActionId
	if s.pv.length[0] > 0 {
		best = s.pv.moves[0][0]
	}
	return best, score
}

// SearchAspirated runs the same search but starts from a window centered
// on guess, widening on fail-low/fail-high as PVS iterative deepening
// requires.
func (s *Searcher) SearchAspirated(depth, guess, window int) (board.ActionId, int) {
	if depth < 2 || window <= 0 {
		return s.Search(depth)
	}

	alpha, beta := guess-window, guess+window
	for attempt := 0; ; attempt++ {
		score := s.negamax(depth, 0, alpha, beta)
		if s.stopFlag.Load() {
			var best board.ActionId
			if s.pv.length[0] > 0 {
				best = s.pv.moves[0][0]
			}
			return best, score
		}
		if score <= alpha {
			if attempt >= 2 {
				alpha = -Infinity
			} else {
				alpha -= window << (attempt + 1)
			}
			continue
		}
		if score >= beta {
			if attempt >= 2 {
				beta = Infinity
			} else {
				beta += window << (attempt + 1)
			}
			continue
		}
		var best board.ActionId
		if s.pv.length[0] > 0 {
			best = s.pv.moves[0][0]
		}
		return best, score
	}
}

func (s *Searcher) stopped() bool {
	return s.nodes&4095 == 0 && s.stopFlag.Load()
}

// negamax implements PVS: the first child of every node is searched with
// the full window, every later child first with a null window and only
// re-searched at full width if it fails high.
func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.stopped() {
		return 0
	}
	s.nodes++
	s.pv.length[ply] = ply

	if s.state.IsTerminated() {
		return s.terminalScore(ply)
	}

	hash := s.state.Hash()
	var ttAction board.ActionId
	entry, found := s.tt.Probe(hash)
	if found {
		ttAction = entry.BestAction
		if int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	if depth <= 0 {
		return s.eval.Evaluate(s.state, s.perspective)
	}

	actionIds, err := s.state.LegalActions()
	if err != nil || len(actionIds) == 0 {
		return s.eval.Evaluate(s.state, s.perspective)
	}

	if s.BranchCap > 0 && len(actionIds) > s.BranchCap {
		scores := s.orderer.ScoreActions(actionIds, ply, ttAction)
		actionIds = TopK(actionIds, scores, s.BranchCap)
	}

	scores := s.orderer.ScoreActions(actionIds, ply, ttAction)

	forcedSingleReply := len(actionIds) == 1
	onBonusLine := s.state.Flags.SpecialTileHolder != 0

	bestScore := -Infinity
	var bestAction board.ActionId
	flag := TTUpperBound

	for i := range actionIds {
		PickAction(actionIds, scores, i)
		id := actionIds[i]

		action, decErr := board.DecodeAction(id)
		if decErr != nil {
			continue
		}

		childDepth := depth - 1
		if forcedSingleReply || onBonusLine {
			childDepth = depth // search extension
		}

		undo, applyErr := s.state.Apply(action)
		if applyErr != nil {
			continue
		}
		s.undoStack[ply] = undo

		var score int
		if i == 0 {
			score = -s.negamax(childDepth, ply+1, -beta, -alpha)
		} else {
			reduced := childDepth
			if depth >= s.LMRMinDepth && i >= s.LMRMinMoveIndex {
				r := lmrReductions[clampIdx(depth, 63)][clampIdx(i, 63)]
				reduced = childDepth - r
				if reduced < 1 {
					reduced = 1
				}
			}
			if depth <= s.LMPMaxDepth && i >= s.LMPBase+depth*depth {
				s.state.Undo(action, undo)
				continue
			}
			score = -s.negamax(reduced, ply+1, -alpha-1, -alpha)
			if score > alpha && reduced < childDepth {
				score = -s.negamax(childDepth, ply+1, -alpha-1, -alpha)
			}
			if score > alpha && score < beta {
				score = -s.negamax(childDepth, ply+1, -beta, -alpha)
			}
		}

		s.state.Undo(action, undo)

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestAction = id
			if score > alpha {
				alpha = score
				flag = TTExact
				s.pv.moves[ply][ply] = id
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			s.tt.Store(hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestAction)
			s.orderer.UpdateKillers(id, ply)
			s.orderer.UpdateHistory(id, depth, true)
			if s.fail == FailHard {
				return beta
			}
			return score
		}
	}

	s.tt.Store(hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestAction)
	if s.fail == FailHard {
		if bestScore < alpha {
			return alpha
		}
	}
	return bestScore
}

func (s *Searcher) terminalScore(ply int) int {
	winner, draw := s.state.Winner()
	if draw {
		return 0
	}
	if winner == s.perspective {
		return MateScore - ply
	}
	return -MateScore + ply
}

func clampIdx(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// GetPV returns the principal variation discovered by the last Search call.
func (s *Searcher) GetPV() []board.ActionId {
	pv := make([]board.ActionId, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}
