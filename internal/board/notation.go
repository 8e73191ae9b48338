package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nzeitz/patchwork/internal/patch"
)

// Notation is a human-readable serialization of an action history,
// sufficient to replay a game deterministically given the seed it
// started from. The format is a header token carrying the seed followed
// by one compact token per action:
//
//	W<start>              Walking
//	P<patch>.<slot>.<tr>   PatchPlacement
//	S<cell>                SpecialPatchPlacement
//	PH                     Phantom
//	NU                     Null
func FormatNotation(seed uint64, actions []Action) string {
	tokens := make([]string, 0, len(actions)+1)
	tokens = append(tokens, "seed="+strconv.FormatUint(seed, 10))
	for _, a := range actions {
		tokens = append(tokens, FormatActionToken(a))
	}
	return strings.Join(tokens, " ")
}

// FormatActionToken formats a single Action as one notation token, e.g.
// "W3" or "P12.1.4". Exported so callers that parse one move at a time
// (the UPI `position` command's mixed ActionId/notation move list) can
// reuse the same token format without round-tripping a full notation
// string.
func FormatActionToken(a Action) string {
	switch a.Kind {
	case KindWalking:
		return fmt.Sprintf("W%d", a.StartingIndex)
	case KindPatchPlacement:
		return fmt.Sprintf("P%d.%d.%d", a.PatchID, a.PatchSlot, a.TransformationIndex)
	case KindSpecialPatchPlacement:
		return fmt.Sprintf("S%d", a.QuiltBoardIndex)
	case KindPhantom:
		return "PH"
	case KindNull:
		return "NU"
	default:
		return "?"
	}
}

// ParseNotation parses a string produced by FormatNotation back into a
// seed and an action list. It does not validate legality against any
// state; use ReplayNotation for that.
func ParseNotation(s string) (seed uint64, actions []Action, err error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("board: empty notation")
	}
	seedField := fields[0]
	if !strings.HasPrefix(seedField, "seed=") {
		return 0, nil, fmt.Errorf("board: notation missing seed header")
	}
	seed, err = strconv.ParseUint(strings.TrimPrefix(seedField, "seed="), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("board: parsing seed: %w", err)
	}

	actions = make([]Action, 0, len(fields)-1)
	for _, tok := range fields[1:] {
		a, err := ParseActionToken(tok)
		if err != nil {
			return 0, nil, err
		}
		actions = append(actions, a)
	}
	return seed, actions, nil
}

// ParseActionToken parses a single notation token back into an Action.
func ParseActionToken(tok string) (Action, error) {
	switch {
	case tok == "PH":
		return Action{Kind: KindPhantom}, nil
	case tok == "NU":
		return Action{Kind: KindNull}, nil
	case strings.HasPrefix(tok, "W"):
		n, err := strconv.Atoi(tok[1:])
		if err != nil {
			return Action{}, fmt.Errorf("board: parsing walking token %q: %w", tok, err)
		}
		return Action{Kind: KindWalking, StartingIndex: n}, nil
	case strings.HasPrefix(tok, "S"):
		n, err := strconv.Atoi(tok[1:])
		if err != nil {
			return Action{}, fmt.Errorf("board: parsing special token %q: %w", tok, err)
		}
		return Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: n}, nil
	case strings.HasPrefix(tok, "P"):
		parts := strings.Split(tok[1:], ".")
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("board: parsing patch token %q", tok)
		}
		id, err1 := strconv.Atoi(parts[0])
		slot, err2 := strconv.Atoi(parts[1])
		trans, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return Action{}, fmt.Errorf("board: parsing patch token %q", tok)
		}
		return Action{Kind: KindPatchPlacement, PatchID: patch.ID(id), PatchSlot: slot, TransformationIndex: trans}, nil
	default:
		return Action{}, fmt.Errorf("board: unrecognized action token %q", tok)
	}
}

// ReplayNotation reconstructs the final state by replaying a notation
// string from its initial seed, applying each action in order. It stops
// and returns an error at the first illegal action.
func ReplayNotation(s string) (State, error) {
	seed, actions, err := ParseNotation(s)
	if err != nil {
		return State{}, err
	}
	state := NewInitialState(seed)
	for i, a := range actions {
		if _, err := state.Apply(a); err != nil {
			return State{}, fmt.Errorf("board: replaying action %d (%s): %w", i, a, err)
		}
	}
	return state, nil
}
