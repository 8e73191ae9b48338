package engine

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/nzeitz/patchwork/internal/board"
)

// lmrReductions is a precomputed logarithmic reduction table, following
// the same Stockfish-derived formula the teacher used for chess: higher
// depth and later move index reduce more.
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(21.46*math.Log(float64(d))) * int(21.46*math.Log(float64(m))) / 1024
		}
	}
}

// Worker runs one Lazy-SMP search lane: its own state clone, its own
// Searcher and move orderer, sharing only the transposition table and the
// cooperative stop flag with its siblings.
type Worker struct {
	id       int
	state    board.State
	searcher *Searcher

	tt       *TranspositionTable
	stopFlag *atomic.Bool

	resultCh chan<- WorkerResult

	recentScores   []int
	recentScoresMu sync.Mutex
}

// NewWorker builds a worker bound to the shared TT and stop flag.
func NewWorker(id int, tt *TranspositionTable, eval Evaluator, stopFlag *atomic.Bool, resultCh chan<- WorkerResult) *Worker {
	return &Worker{
		id:       id,
		tt:       tt,
		stopFlag: stopFlag,
		resultCh: resultCh,
		searcher: NewSearcher(tt, eval, stopFlag),
	}
}

// startDepth staggers each worker's starting iterative-deepening depth so
// Lazy-SMP workers explore the tree with different move orderings instead
// of redundantly retracing the same shallow iterations.
func (w *Worker) startDepth() int {
	switch {
	case w.id == 0:
		return 1
	case w.id <= 2:
		return 2
	case w.id <= 5:
		return 3
	default:
		return 4
	}
}

func (w *Worker) noteScore(score int) int {
	w.recentScoresMu.Lock()
	defer w.recentScoresMu.Unlock()
	w.recentScores = append(w.recentScores, score)
	if len(w.recentScores) > 10 {
		w.recentScores = w.recentScores[len(w.recentScores)-10:]
	}
	if len(w.recentScores) < 2 {
		return 50
	}
	min, max := w.recentScores[0], w.recentScores[0]
	for _, v := range w.recentScores {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}

// aspirationWindow sizes the search window from recent score volatility
// plus a small per-worker diversity term, the same heuristic the teacher
// used to keep Lazy-SMP workers from converging on identical windows.
func (w *Worker) aspirationWindow(volatility int) int {
	var window int
	switch {
	case volatility > 400:
		window = 150 + volatility/4
	case volatility < 50:
		window = 25
	default:
		window = 50 + volatility/8
	}
	return window + (w.id%8)*3
}

// run performs depth-staggered iterative deepening from root, posting a
// WorkerResult to resultCh after every completed depth, until maxDepth is
// reached, nodes exhausts, or the stop flag fires.
func (w *Worker) run(root board.State, perspective int, maxDepth int, nodeLimit uint64, wg *sync.WaitGroup) {
	defer wg.Done()

	w.state = root
	bestScore := 0
	var bestAction board.ActionId

	for depth := w.startDepth(); depth <= maxDepth; depth++ {
		if w.stopFlag.Load() {
			return
		}
		w.searcher.Reset(&w.state, perspective)

		var action board.ActionId
		var score int
		if depth < 2 {
			action, score = w.searcher.Search(depth)
		} else {
			volatility := w.noteScore(bestScore)
			window := w.aspirationWindow(volatility)
			action, score = w.searcher.SearchAspirated(depth, bestScore, window)
		}

		if w.stopFlag.Load() {
			return
		}

		bestScore = score
		bestAction = action

		w.resultCh <- WorkerResult{
			WorkerID: w.id,
			Depth:    depth,
			Score:    score,
			Action:   bestAction,
			PV:       w.searcher.GetPV(),
			Nodes:    w.searcher.Nodes(),
		}

		if nodeLimit > 0 && w.searcher.Nodes() >= nodeLimit {
			return
		}
		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			return
		}
	}
}
