// Command patchwork runs batch engine-vs-engine comparisons, the
// Patchwork analogue of the teacher's CLI driver. It reads repeated
// compare blocks from stdin:
//
//	compare
//	<player1>
//	<player2>
//	<games>
//	<parallelism>
//
// and exits 0 on clean termination, nonzero on invalid arguments or I/O
// failure. Structurally adapted from melvinzhang-squava's flag+bufio.Scanner
// CLI driver (main_cli.go), retargeted from an interactive 3-player game
// loop to a batch tournament runner.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/engine"
	"github.com/nzeitz/patchwork/internal/mcts"
	"github.com/nzeitz/patchwork/internal/neural"
	"github.com/nzeitz/patchwork/internal/players"
	"github.com/nzeitz/patchwork/internal/storage"
)

// moveTime bounds how long each tree-search player spends per move during
// a batch comparison; kept short since a compare run plays many games.
const moveTime = 100 * time.Millisecond

// newPlayer constructs a fresh players.Player by name. A fresh instance is
// built per game rather than shared, since engine.Engine and mcts search
// state are not safe for concurrent use by multiple games in flight.
func newPlayer(name string) (func() players.Player, error) {
	switch strings.ToLower(name) {
	case "random":
		return func() players.Player {
			return players.Random{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
		}, nil
	case "greedy":
		return func() players.Player {
			return dynamicGreedy{eval: engine.DefaultStaticWeights()}
		}, nil
	case "pvs":
		return func() players.Player {
			return enginePlayer{eng: engine.NewEngine(16, engine.DefaultStaticWeights())}
		}, nil
	case "uct":
		return func() players.Player {
			return mcts.UCT{Eval: engine.WinRolloutEvaluator{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}, Iterations: 2000}
		}, nil
	case "puct":
		return func() players.Player {
			return mcts.PUCT{Eval: neural.NewEvaluator(nil), Iterations: 800}
		}, nil
	default:
		return nil, fmt.Errorf("unknown player kind %q", name)
	}
}

// dynamicGreedy wraps players.Greedy, resolving the perspective to
// evaluate from at call time since the mover alternates (and sometimes
// repeats, per the time-track catch-up rule) across a game.
type dynamicGreedy struct {
	eval engine.Evaluator
}

func (g dynamicGreedy) ChooseAction(s *board.State, deadline time.Time) (board.ActionId, error) {
	perspective := 2
	if s.Flags.CurrentPlayerIsOne {
		perspective = 1
	}
	return players.Greedy{Eval: g.eval, PerspectivePlayer: perspective}.ChooseAction(s, deadline)
}

// enginePlayer adapts engine.Engine to players.Player, bounding each
// search to moveTime or the caller's deadline, whichever is sooner.
type enginePlayer struct {
	eng *engine.Engine
}

func (p enginePlayer) ChooseAction(s *board.State, deadline time.Time) (board.ActionId, error) {
	perspective := 2
	if s.Flags.CurrentPlayerIsOne {
		perspective = 1
	}
	limit := moveTime
	if until := time.Until(deadline); until > 0 && until < limit {
		limit = until
	}
	action := p.eng.SearchWithLimits(s, perspective, engine.SearchLimits{MoveTime: limit})
	return action, nil
}

// playGame plays one game to completion and returns 1, 2, or 0 (draw).
func playGame(p1, p2 players.Player, seed uint64) (int, error) {
	state := board.NewInitialState(seed)
	for !state.IsTerminated() {
		mover := p2
		if state.Flags.CurrentPlayerIsOne {
			mover = p1
		}
		deadline := time.Now().Add(moveTime)
		actionID, err := mover.ChooseAction(&state, deadline)
		if err != nil {
			return 0, err
		}
		action, err := board.DecodeAction(actionID)
		if err != nil {
			return 0, err
		}
		if _, err := state.Apply(action); err != nil {
			return 0, err
		}
	}
	winner, draw := state.Winner()
	if draw {
		return 0, nil
	}
	return winner, nil
}

// runCompare plays games games between player1Name and player2Name, up to
// parallelism concurrently, recording each result into store.
func runCompare(store *storage.Storage, player1Name, player2Name string, games, parallelism int) error {
	newP1, err := newPlayer(player1Name)
	if err != nil {
		return err
	}
	newP2, err := newPlayer(player2Name)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, parallelism)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for g := 0; g < games; g++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			defer func() { <-sem }()

			winner, err := playGame(newP1(), newP2(), seed)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if recErr := store.RecordGame(storage.GameResult{
				Player1: player1Name,
				Player2: player2Name,
				Winner:  winner,
			}); recErr != nil && firstErr == nil {
				firstErr = recErr
			}
		}(uint64(time.Now().UnixNano()) + uint64(g))
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	stats, err := store.LoadStats()
	if err != nil {
		return err
	}
	m := stats.Matchup(player1Name, player2Name)
	fmt.Printf("%s vs %s: %d games, %d wins / %d wins / %d draws (%.1f%% for %s)\n",
		player1Name, player2Name, m.GamesPlayed, m.Player1Wins, m.Player2Wins, m.Draws,
		m.WinRate1(), player1Name)
	return nil
}

func main() {
	cpuprofile := ""
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-cpuprofile=") {
			cpuprofile = strings.TrimPrefix(arg, "-cpuprofile=")
		}
	}
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	store, err := storage.NewStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line != "compare" {
			fmt.Fprintf(os.Stderr, "unexpected command %q, expected \"compare\"\n", line)
			os.Exit(1)
		}

		player1, ok1 := nextLine(scanner)
		player2, ok2 := nextLine(scanner)
		gamesStr, ok3 := nextLine(scanner)
		parallelismStr, ok4 := nextLine(scanner)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			fmt.Fprintln(os.Stderr, "truncated compare block")
			os.Exit(1)
		}

		games, err := strconv.Atoi(gamesStr)
		if err != nil || games <= 0 {
			fmt.Fprintf(os.Stderr, "invalid games count %q\n", gamesStr)
			os.Exit(1)
		}
		parallelism, err := strconv.Atoi(parallelismStr)
		if err != nil || parallelism <= 0 {
			fmt.Fprintf(os.Stderr, "invalid parallelism %q\n", parallelismStr)
			os.Exit(1)
		}

		if err := runCompare(store, player1, player2, games, parallelism); err != nil {
			fmt.Fprintf(os.Stderr, "compare failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "input error: %v\n", err)
		os.Exit(1)
	}
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
