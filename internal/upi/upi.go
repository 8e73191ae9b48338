// Package upi implements the Universal Patchwork Interface: a
// line-oriented textual protocol modeled on UCI (spec §6), adapted from
// the teacher's own UCI handler (bufio.Scanner main loop, flat
// name/value setoption parsing, the setoption-cpuprofile pseudo-option
// tied to runtime/pprof's CPU profiling lifecycle).
package upi

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nzeitz/patchwork/internal/board"
	"github.com/nzeitz/patchwork/internal/engine"
	"github.com/nzeitz/patchwork/internal/neural"
)

// UPI implements the Universal Patchwork Interface protocol over an
// engine.Engine.
type UPI struct {
	engine *engine.Engine
	state  board.State
	seed   uint64

	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool

	profileFile *os.File
}

// New creates a protocol handler wrapping eng, starting from a fresh
// initial state with seed 0 (overwritten by the first `position`
// command in practice).
func New(eng *engine.Engine) *UPI {
	return &UPI{engine: eng, state: board.NewInitialState(0)}
}

// Run reads commands from stdin until EOF or `quit`.
func (u *UPI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "upi":
			u.handleUPI()
		case "isready":
			fmt.Println("readyok")
		case "newgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
		case "setoption":
			u.handleSetOption(args)
		case "d":
			u.printDebug()
		}
	}
}

// printDebug is the `d` debug command: a terse one-line dump of the
// current state, the UPI analogue of the teacher's full board print
// (Patchwork has no natural ASCII board rendering for two overlapping
// quilt boards plus a circular time track, so this stays textual).
func (u *UPI) printDebug() {
	p1, p2 := &u.state.Player1, &u.state.Player2
	fmt.Printf("player1 pos=%d balance=%d filled=%d income=%d\n",
		p1.Position, p1.ButtonBalance, p1.Quilt.Tiles.PopCount(), p1.Quilt.ButtonIncome)
	fmt.Printf("player2 pos=%d balance=%d filled=%d income=%d\n",
		p2.Position, p2.ButtonBalance, p2.Quilt.Tiles.PopCount(), p2.Quilt.ButtonIncome)
	fmt.Printf("turnType=%d currentPlayerIsOne=%v terminated=%v\n",
		u.state.TurnType, u.state.Flags.CurrentPlayerIsOne, u.state.IsTerminated())
}

func (u *UPI) handleUPI() {
	fmt.Println("id name PatchworkEngine")
	fmt.Println("id author Patchwork Team")
	fmt.Println()
	fmt.Println("option name Hash type spin default 64 min 1 max 4096")
	fmt.Println("option name Evaluator type combo default static var static var winrollout var scorerollout var neural")
	fmt.Println("option name EvalFile type string default <empty>")
	fmt.Println("upiok")
}

// handleNewGame discards the transposition table and resets to a fresh
// initial state, matching spec §6's "discard any persistent state (TT,
// MCTS tree)".
func (u *UPI) handleNewGame() {
	u.engine.Clear()
	u.state = board.NewInitialState(u.seed)
}

// handlePosition loads a state from either "startpos [moves ...]" or
// "notation <string>", per spec §6's position grammar.
func (u *UPI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "startpos":
		u.state = board.NewInitialState(u.seed)
		moveStart := len(args)
		for i, a := range args {
			if a == "moves" {
				moveStart = i + 1
				break
			}
		}
		for _, tok := range args[moveStart:] {
			action, err := parseMoveToken(tok)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string invalid move %q: %v\n", tok, err)
				return
			}
			if _, err := u.state.Apply(action); err != nil {
				fmt.Fprintf(os.Stderr, "info string illegal move %q: %v\n", tok, err)
				return
			}
		}

	case "notation":
		notation := strings.Join(args[1:], " ")
		st, err := board.ReplayNotation(notation)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid notation: %v\n", err)
			return
		}
		u.state = st

	default:
		fmt.Fprintf(os.Stderr, "info string unknown position kind %q\n", args[0])
	}
}

// parseMoveToken accepts either a raw ActionId integer or a notation
// token, per spec §6's "each move is either an ActionId integer or a
// notation token".
func parseMoveToken(tok string) (board.Action, error) {
	if n, err := strconv.ParseUint(tok, 10, 32); err == nil {
		return board.DecodeAction(board.ActionId(n))
	}
	return board.ParseActionToken(tok)
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

func (u *UPI) handleGo(args []string) {
	opts := parseGoOptions(args)
	limits := toSearchLimits(opts)

	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(info)
	}

	perspective := 2
	if u.state.Flags.CurrentPlayerIsOne {
		perspective = 1
	}

	u.searching = true
	u.stopRequested.Store(false)
	u.searchDone = make(chan struct{})

	pos := u.state

	go func() {
		defer close(u.searchDone)
		best := u.engine.SearchWithLimits(&pos, perspective, limits)
		u.searching = false
		fmt.Printf("bestmove %d\n", uint32(best))
	}()
}

func parseGoOptions(args []string) GoOptions {
	var opts GoOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				opts.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		}
	}
	return opts
}

func toSearchLimits(opts GoOptions) engine.SearchLimits {
	if opts.Infinite {
		return engine.SearchLimits{Infinite: true}
	}
	return engine.SearchLimits{Depth: opts.Depth, Nodes: opts.Nodes, MoveTime: opts.MoveTime}
}

// sendInfo formats one `info` line per spec §6: "info depth <d> score cp
// <s> nodes <n> nps <n> pv <a1> <a2> ...".
func (u *UPI) sendInfo(info engine.SearchInfo) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, "score "+engine.ScoreToString(info.Score))
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if len(info.PV) > 0 {
		ids := make([]string, len(info.PV))
		for i, a := range info.PV {
			ids[i] = strconv.FormatUint(uint64(a), 10)
		}
		parts = append(parts, "pv "+strings.Join(ids, " "))
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

func (u *UPI) handleStop() {
	if u.searching {
		u.engine.Stop()
		<-u.searchDone
	}
}

func (u *UPI) handleQuit() {
	u.handleStop()
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		fmt.Fprintln(os.Stderr, "info string CPU profile saved")
	}
	os.Exit(0)
}

// handleSetOption processes "setoption name <name> value <value>",
// using the teacher's flat name/value token accumulation.
func (u *UPI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			switch {
			case readingName:
				if name != "" {
					name += " "
				}
				name += arg
			case readingValue:
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		// Accepted and ignored: the transposition table keeps the size the
		// engine was created with.
	case "evaluator":
		eval := evaluatorByName(value)
		if eval != nil {
			u.engine.SetEvaluator(eval)
		} else {
			fmt.Fprintf(os.Stderr, "info string unknown evaluator %q\n", value)
		}
	case "evalfile":
		net := neural.NewNetwork()
		if err := net.LoadWeights(value); err != nil {
			fmt.Fprintf(os.Stderr, "info string failed to load evaluator weights: %v\n", err)
			return
		}
		u.engine.SetEvaluator(neural.NewEvaluator(net))
	case "cpuprofile":
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			u.profileFile = nil
			fmt.Fprintln(os.Stderr, "info string CPU profile stopped")
		}
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				fmt.Fprintf(os.Stderr, "info string failed to start profile: %v\n", err)
				return
			}
			u.profileFile = f
			fmt.Fprintf(os.Stderr, "info string CPU profiling to %s\n", value)
		}
	}
}

func evaluatorByName(name string) engine.Evaluator {
	switch strings.ToLower(name) {
	case "static":
		return engine.DefaultStaticWeights()
	case "winrollout":
		return engine.WinRolloutEvaluator{}
	case "scorerollout":
		return engine.ScoreRolloutEvaluator{}
	case "neural":
		return neural.NewEvaluator(nil)
	default:
		return nil
	}
}
