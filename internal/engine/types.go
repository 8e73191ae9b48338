package engine

import (
	"time"

	"github.com/nzeitz/patchwork/internal/board"
)

// Search-wide constants. Scores are in the active evaluator's units (whole
// buttons for StaticEvaluator); MateScore marks a
// proven win and leaves headroom below Infinity for mate-distance ranking.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation discovered by a single search.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.ActionId
}

// SearchLimits bounds a single search invocation. Exactly one of Depth,
// Nodes, MoveTime is normally meaningful; Infinite overrides all of them
// until Stop is called.
type SearchLimits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

// SearchInfo is emitted to Engine.OnInfo as the search deepens, mirroring
// the UPI `info` line.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.ActionId
}

// SearchResult is the outcome of a completed (or stopped) search.
type SearchResult struct {
	Action board.ActionId
	Score  int
	PV     []board.ActionId
	Depth  int
}

// Difficulty selects a canned SearchLimits preset for casual play.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps a Difficulty to the limits used when no explicit
// SearchLimits are supplied.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 200 * time.Millisecond},
	Medium: {Depth: 5, MoveTime: 800 * time.Millisecond},
	Hard:   {Depth: 12, MoveTime: 3 * time.Second},
}

// WorkerResult is the message a Lazy-SMP worker posts to the orchestrator
// every time it finishes an iterative-deepening depth.
type WorkerResult struct {
	WorkerID int
	Depth    int
	Score    int
	Action   board.ActionId
	PV       []board.ActionId
	Nodes    uint64
}
