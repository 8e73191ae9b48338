package engine

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
)

// Engine owns the Lazy-SMP worker pool and shared transposition table for
// principal variation search, and exposes the UPI-facing search entry
// points.
type Engine struct {
	workers  []*Worker
	tt       *TranspositionTable
	eval     Evaluator
	stopFlag atomic.Bool

	difficulty Difficulty

	// OnInfo is called with the best-so-far result every time any worker
	// improves on the current root depth. May be nil.
	OnInfo func(SearchInfo)
}

// NewEngine creates an Engine with one worker per logical CPU and a
// transposition table of ttSizeMB megabytes, using eval to score leaves.
func NewEngine(ttSizeMB int, eval Evaluator) *Engine {
	numWorkers := runtime.GOMAXPROCS(0)
	log.Printf("[Engine] Creating %d workers", numWorkers)

	e := &Engine{
		tt:         NewTranspositionTable(ttSizeMB),
		eval:       eval,
		difficulty: Medium,
	}
	e.workers = make([]*Worker, numWorkers)
	return e
}

// SetDifficulty selects the canned SearchLimits used by Search.
func (e *Engine) SetDifficulty(d Difficulty) { e.difficulty = d }

// SetEvaluator swaps the leaf evaluator used by the next SearchWithLimits
// call, letting a UPI `setoption` command switch evaluator kind at
// runtime without rebuilding the engine (and its transposition table).
func (e *Engine) SetEvaluator(eval Evaluator) { e.eval = eval }

// Clear discards the transposition table, called on the UPI `newgame`
// command so stale best actions never leak across games.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Stop cooperatively halts the running search; workers notice within a
// bounded number of nodes and return their best-so-far results.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Search picks an action using the engine's configured Difficulty preset.
func (e *Engine) Search(s *board.State, perspectivePlayer int) board.ActionId {
	return e.SearchWithLimits(s, perspectivePlayer, DifficultySettings[e.difficulty])
}

// SearchWithLimits runs a Lazy-SMP principal variation search bounded by
// limits and returns the best root action found. Workers search
// depth-staggered copies of the root state; the orchestrator tracks the
// best-by-depth-then-score result across all of them and reports
// improvements via OnInfo.
func (e *Engine) SearchWithLimits(s *board.State, perspectivePlayer int, limits SearchLimits) board.ActionId {
	legal, err := s.LegalActions()
	if err != nil || len(legal) == 0 {
		return board.NullActionId()
	}
	if len(legal) == 1 {
		return legal[0]
	}

	e.stopFlag.Store(false)
	e.tt.NewSearch()

	tm := NewTimeManager()
	tm.Init(limits)

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = MaxPly
	}

	resultCh := make(chan WorkerResult, len(e.workers)*maxDepth)
	var wg sync.WaitGroup

	for i := range e.workers {
		e.workers[i] = NewWorker(i, e.tt, e.eval, &e.stopFlag, resultCh)
		wg.Add(1)
		go e.workers[i].run(*s, perspectivePlayer, maxDepth, limits.Nodes, &wg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
		close(resultCh)
	}()

	var best WorkerResult
	haveBest := false
	bestDepthSeen := 0
	deadlineTimer := time.NewTimer(tm.maximum)
	defer deadlineTimer.Stop()

	for {
		select {
		case res, ok := <-resultCh:
			if !ok {
				return e.finish(best, haveBest, legal)
			}
			improved := !haveBest || res.Depth > bestDepthSeen || (res.Depth == bestDepthSeen && res.Score > best.Score)
			if improved {
				changed := haveBest && best.Action != res.Action
				best = res
				haveBest = true
				bestDepthSeen = res.Depth
				if e.OnInfo != nil {
					e.OnInfo(SearchInfo{
						Depth: res.Depth,
						Score: res.Score,
						Nodes: e.totalNodes(),
						Time:  tm.Elapsed(),
						PV:    res.PV,
					})
				}
				tm.NoteBestAction(changed)
			}
			if best.Score > MateScore-MaxPly {
				e.stopFlag.Store(true)
			}
			if tm.PastOptimum() && tm.StabilityCount() >= 4 {
				e.stopFlag.Store(true)
			}
		case <-done:
			return e.finish(best, haveBest, legal)
		case <-deadlineTimer.C:
			e.stopFlag.Store(true)
		}
	}
}

func (e *Engine) finish(best WorkerResult, haveBest bool, legal []board.ActionId) board.ActionId {
	if !haveBest && len(legal) > 0 {
		return legal[0]
	}
	return best.Action
}

func (e *Engine) totalNodes() uint64 {
	var total uint64
	for _, w := range e.workers {
		if w != nil && w.searcher != nil {
			total += w.searcher.Nodes()
		}
	}
	return total
}

// Evaluate scores s from perspectivePlayer's point of view using the
// engine's configured evaluator, without searching.
func (e *Engine) Evaluate(s *board.State, perspectivePlayer int) int {
	return e.eval.Evaluate(s, perspectivePlayer)
}

// ScoreToString formats a search score the way UPI `info score` expects:
// mate distance when near a proven win/loss, otherwise the raw evaluator
// score under the `cp` label.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		pliesToMate := MateScore - score
		return "mate " + itoa((pliesToMate+1)/2)
	}
	if score < -MateScore+MaxPly {
		pliesToMate := MateScore + score
		return "mate -" + itoa((pliesToMate+1)/2)
	}
	return "cp " + itoa(score)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
