package engine

import "time"

// TimeManager turns a SearchLimits into an absolute deadline and tracks
// move stability across iterative-deepening depths so a search can stop
// early once the best action has settled.
type TimeManager struct {
	optimum   time.Duration
	maximum   time.Duration
	startTime time.Time

	stabilityCount   int
	instabilityCount int
}

// NewTimeManager creates an uninitialized time manager; call Init before use.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a new search under the given limits.
func (tm *TimeManager) Init(limits SearchLimits) {
	tm.startTime = time.Now()
	tm.stabilityCount = 0
	tm.instabilityCount = 0

	switch {
	case limits.Infinite:
		tm.optimum = time.Hour
		tm.maximum = time.Hour
	case limits.MoveTime > 0:
		tm.optimum = limits.MoveTime
		tm.maximum = limits.MoveTime
	default:
		// Depth- or node-bounded search: let the search itself stop the
		// clock, so give it generous headroom here.
		tm.optimum = time.Hour
		tm.maximum = time.Hour
	}
}

// Elapsed returns the time since Init.
func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.startTime) }

// ShouldStop reports whether the hard deadline has passed.
func (tm *TimeManager) ShouldStop() bool { return tm.Elapsed() >= tm.maximum }

// PastOptimum reports whether the soft deadline has passed.
func (tm *TimeManager) PastOptimum() bool { return tm.Elapsed() >= tm.optimum }

// NoteBestAction records whether the best root action changed since the
// last completed iteration, and adjusts the soft deadline accordingly: a
// stable best action lets the search stop sooner, an unstable one buys
// extra time up to the hard deadline.
func (tm *TimeManager) NoteBestAction(changed bool) {
	if changed {
		tm.instabilityCount++
		tm.stabilityCount = 0
	} else {
		tm.stabilityCount++
		tm.instabilityCount = 0
	}

	switch {
	case tm.stabilityCount >= 6:
		tm.optimum = tm.optimum * 40 / 100
	case tm.stabilityCount >= 4:
		tm.optimum = tm.optimum * 60 / 100
	case tm.stabilityCount >= 2:
		tm.optimum = tm.optimum * 80 / 100
	case tm.instabilityCount >= 4:
		tm.optimum = tm.optimum * 200 / 100
	case tm.instabilityCount >= 2:
		tm.optimum = tm.optimum * 150 / 100
	}
	if tm.optimum > tm.maximum {
		tm.optimum = tm.maximum
	}
}

// StabilityCount exposes consecutive stable iterations, used by the
// orchestrator's early-stop heuristic.
func (tm *TimeManager) StabilityCount() int { return tm.stabilityCount }
