package mcts

import (
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/neural"
)

// policyValueEvaluator is whatever PUCT needs from a leaf evaluator: the
// network's (policy, value) pair for one state. A bare *neural.Evaluator
// satisfies it directly for a single PUCT player running alone; Coordinator
// satisfies it too, for the case described in the spec's concurrency model
// where many search threads share one GPU/CPU-bound network and coalesce
// their leaf evaluations into minibatches.
type policyValueEvaluator interface {
	PolicyLogits(s *board.State, perspectivePlayer int) ([board.NaturalPolicySize]int32, int)
}

// inferenceRequest is one queued leaf evaluation, grounded on the pack's
// ZachBeta batched-MCTS position-fingerprint-plus-callback queue entry.
type inferenceRequest struct {
	state             *board.State
	perspectivePlayer int
	result            chan inferenceResult
}

type inferenceResult struct {
	logits [board.NaturalPolicySize]int32
	value  int
}

// Coordinator is the dedicated inference thread from the spec's
// concurrency model: search goroutines enqueue a leaf and block on its
// result channel; the coordinator pops up to BatchSize items or waits at
// most FlushInterval, runs one batched forward pass, and dispatches
// results back. A caller of PolicyLogits blocks at exactly two points:
// enqueueing its leaf and receiving its result.
type Coordinator struct {
	Eval          *neural.Evaluator
	BatchSize     int
	FlushInterval time.Duration

	queue chan inferenceRequest
	done  chan struct{}
}

// NewCoordinator starts the coordinator's background loop. Callers must
// call Stop when finished to release the goroutine.
func NewCoordinator(eval *neural.Evaluator, batchSize int, flushInterval time.Duration) *Coordinator {
	if batchSize < 1 {
		batchSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Millisecond
	}
	c := &Coordinator{
		Eval:          eval,
		BatchSize:     batchSize,
		FlushInterval: flushInterval,
		queue:         make(chan inferenceRequest, batchSize*4),
		done:          make(chan struct{}),
	}
	go c.run()
	return c
}

// Stop ends the coordinator's background loop. Requests already in flight
// still receive a result; requests submitted after Stop never return.
func (c *Coordinator) Stop() {
	close(c.done)
}

// PolicyLogits implements policyValueEvaluator by enqueueing s and
// blocking until a batch containing it has been evaluated.
func (c *Coordinator) PolicyLogits(s *board.State, perspectivePlayer int) ([board.NaturalPolicySize]int32, int) {
	req := inferenceRequest{state: s, perspectivePlayer: perspectivePlayer, result: make(chan inferenceResult, 1)}
	c.queue <- req
	res := <-req.result
	return res.logits, res.value
}

func (c *Coordinator) run() {
	for {
		var first inferenceRequest
		select {
		case <-c.done:
			return
		case first = <-c.queue:
		}

		batch := []inferenceRequest{first}
		timer := time.NewTimer(c.FlushInterval)
	collect:
		for len(batch) < c.BatchSize {
			select {
			case req := <-c.queue:
				batch = append(batch, req)
			case <-timer.C:
				break collect
			case <-c.done:
				timer.Stop()
				c.dispatch(batch)
				return
			}
		}
		timer.Stop()
		c.dispatch(batch)
	}
}

func (c *Coordinator) dispatch(batch []inferenceRequest) {
	states := make([]*board.State, len(batch))
	for i, req := range batch {
		states[i] = req.state
	}
	// All requests in a batch are assumed to share a perspective player,
	// true for the single-player-at-a-time use in this package's PUCT
	// search; a multi-player mixed-perspective caller would need to group
	// requests by perspective before reaching this point.
	logits, values := c.Eval.PolicyLogitsBatch(states, batch[0].perspectivePlayer)
	for i, req := range batch {
		req.result <- inferenceResult{logits: logits[i], value: values[i]}
	}
}
