package board

import (
	"fmt"
	"sync"

	"github.com/nzeitz/patchwork/internal/patch"
)

// Kind discriminates the five action variants.
type Kind uint8

const (
	KindWalking Kind = iota
	KindPatchPlacement
	KindSpecialPatchPlacement
	KindPhantom
	KindNull
)

// Action is the tagged union of every move the game state can apply. Only
// the fields relevant to Kind are meaningful; the others are zero.
//
// PreviousPlayerWas1 is not part of the ActionId encoding, and neither
// State.Apply nor State.Undo reads or writes it: Undo takes the mover from
// the UndoInfo that Apply returns (UndoInfo.MoverWasOne).
type Action struct {
	Kind Kind

	StartingIndex int // Walking

	PatchID             patch.ID // PatchPlacement
	PatchSlot           int      // PatchPlacement: 0, 1, or 2
	TransformationIndex int      // PatchPlacement
	PreviousPlayerWas1  bool     // PatchPlacement: not used by Apply or Undo

	QuiltBoardIndex int // SpecialPatchPlacement
}

func (a Action) String() string {
	switch a.Kind {
	case KindWalking:
		return fmt.Sprintf("Walking{start=%d}", a.StartingIndex)
	case KindPatchPlacement:
		return fmt.Sprintf("PatchPlacement{patch=%d slot=%d trans=%d}", a.PatchID, a.PatchSlot, a.TransformationIndex)
	case KindSpecialPatchPlacement:
		return fmt.Sprintf("SpecialPatchPlacement{cell=%d}", a.QuiltBoardIndex)
	case KindPhantom:
		return "Phantom"
	case KindNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// ActionId is the compact 32-bit surrogate used everywhere internally: the
// transposition table, move lists, UPI's bestmove line. Its ranges are
// disjoint and ascending: walking, special-patch placement, regular-patch
// placement, Phantom, Null.
//
// The walking and special-patch ranges are fixed by the board geometry
// (53 starting positions, 81 cells) and match the literal numbers in the
// protocol description exactly. The patch-placement range's upper bound,
// and therefore Phantom/Null's exact values, depend on the total number of
// (patch, slot, transformation) triples in the catalog, which is catalog
// data rather than protocol structure — so they are computed once from the
// live catalog instead of hardcoded.
type ActionId uint32

const (
	walkingBase = 0
	numWalking  = TimeBoardSize - 1 // starting indices 0..52
	specialBase = walkingBase + numWalking
	numSpecial  = patch.BoardCells // cell indices 0..80

	placementBaseValue = specialBase + numSpecial
)

type placementEntry struct {
	PatchID patch.ID
	Slot    int
	Index   int
}

var (
	placementOnce  sync.Once
	placementList  []placementEntry
	placementIndex map[placementEntry]int
)

func ensurePlacementCodec() {
	placementOnce.Do(func() {
		cat := patch.Get()
		ids := cat.RegularIDs()
		for _, id := range ids {
			n := len(cat.Transformations(id))
			for slot := 0; slot < 3; slot++ {
				for idx := 0; idx < n; idx++ {
					placementList = append(placementList, placementEntry{PatchID: id, Slot: slot, Index: idx})
				}
			}
		}
		placementIndex = make(map[placementEntry]int, len(placementList))
		for i, e := range placementList {
			placementIndex[e] = i
		}
	})
}

func numPlacementActions() int {
	ensurePlacementCodec()
	return len(placementList)
}

// PhantomActionId returns the ActionId reserved for Phantom.
func PhantomActionId() ActionId {
	return ActionId(placementBaseValue + numPlacementActions())
}

// NullActionId returns the ActionId reserved for Null.
func NullActionId() ActionId {
	return PhantomActionId() + 1
}

// EncodeAction converts an Action to its ActionId. Returns ErrDecodeRange
// if the action's fields don't address a real range or catalog entry.
func EncodeAction(a Action) (ActionId, error) {
	switch a.Kind {
	case KindWalking:
		if a.StartingIndex < 0 || a.StartingIndex >= numWalking {
			return 0, fmt.Errorf("board: walking start index %d: %w", a.StartingIndex, ErrDecodeRange)
		}
		return ActionId(walkingBase + a.StartingIndex), nil

	case KindSpecialPatchPlacement:
		if a.QuiltBoardIndex < 0 || a.QuiltBoardIndex >= numSpecial {
			return 0, fmt.Errorf("board: special-patch cell %d: %w", a.QuiltBoardIndex, ErrDecodeRange)
		}
		return ActionId(specialBase + a.QuiltBoardIndex), nil

	case KindPatchPlacement:
		ensurePlacementCodec()
		off, ok := placementIndex[placementEntry{PatchID: a.PatchID, Slot: a.PatchSlot, Index: a.TransformationIndex}]
		if !ok {
			return 0, fmt.Errorf("board: patch placement (patch=%d slot=%d trans=%d): %w",
				a.PatchID, a.PatchSlot, a.TransformationIndex, ErrDecodeRange)
		}
		return ActionId(placementBaseValue + off), nil

	case KindPhantom:
		return PhantomActionId(), nil

	case KindNull:
		return NullActionId(), nil

	default:
		return 0, fmt.Errorf("board: unknown action kind %d: %w", a.Kind, ErrDecodeRange)
	}
}

// DecodeAction converts an ActionId back to an Action. PreviousPlayerWas1
// is always false on the result: it is not part of the ActionId's
// identity. Undoing the action needs only the UndoInfo returned by Apply.
func DecodeAction(id ActionId) (Action, error) {
	v := int(id)
	switch {
	case v >= walkingBase && v < walkingBase+numWalking:
		return Action{Kind: KindWalking, StartingIndex: v - walkingBase}, nil

	case v >= specialBase && v < specialBase+numSpecial:
		return Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: v - specialBase}, nil

	case v >= placementBaseValue && v < placementBaseValue+numPlacementActions():
		e := placementList[v-placementBaseValue]
		return Action{Kind: KindPatchPlacement, PatchID: e.PatchID, PatchSlot: e.Slot, TransformationIndex: e.Index}, nil

	case id == PhantomActionId():
		return Action{Kind: KindPhantom}, nil

	case id == NullActionId():
		return Action{Kind: KindNull}, nil

	default:
		return Action{}, fmt.Errorf("board: action id %d: %w", id, ErrDecodeRange)
	}
}

// NaturalActionId is the 64-bit encoding sized for a policy network. For a
// patch placement its low 16 bits hold NaturalLowBase plus one of
// 1944 = 3 slots x 9 rows x 9 cols x 4 rotations x 2 flips cells of a
// policy output vector; this part is shared across every patch identity,
// since a policy network has no use for a separate output per catalog id.
// The high bits (16 and up) carry the originating patch id, which is
// exactly the information the low-bit projection loses, making the
// ActionId <-> NaturalActionId round trip exact even though the low bits
// alone are not injective across patches.
type NaturalActionId uint64

const (
	natPolicySize = 3 * patch.BoardSize * patch.BoardSize * 4 * 2 // 1944
	natLowBase    = specialBase + numSpecial                      // reuse placementBaseValue's numeric value
)

// NaturalPolicySize is the width of the placement slice of a policy
// network's output vector: one logit per (slot, row, col, rotation, flip)
// combination, shared across every patch identity. A policy network
// indexes into this range with the low bits of a NaturalActionId.
const NaturalPolicySize = natPolicySize

// NaturalLowBase is the offset where the placement policy range begins
// within the low 16 bits of a NaturalActionId. NaturalPolicyIndex below
// is not offset by it: subtract NaturalLowBase from the low bits to get a
// policy index.
const NaturalLowBase = natLowBase

// NaturalPolicyIndex returns the dense policy-vector index for a
// PatchPlacement action's (slot, row, col, rotation, flip) fields, in
// [0, NaturalPolicySize). It is the same projection EncodeNatural uses for
// the low bits of a PatchPlacement's NaturalActionId, exposed separately
// so a policy network can build its output vector without needing a
// concrete patch id.
func NaturalPolicyIndex(slot, row, col int, rot patch.Rotation, flipped bool) int {
	return natPolicyIndex(slot, row, col, rot, flipped)
}

func natPolicyIndex(slot, row, col int, rot patch.Rotation, flipped bool) int {
	f := 0
	if flipped {
		f = 1
	}
	idx := slot
	idx = idx*patch.BoardSize + row
	idx = idx*patch.BoardSize + col
	idx = idx*4 + int(rot)
	idx = idx*2 + f
	return idx
}

func natUnpackPolicyIndex(p int) (slot, row, col int, rot patch.Rotation, flipped bool) {
	f := p % 2
	p /= 2
	r := p % 4
	p /= 4
	c := p % patch.BoardSize
	p /= patch.BoardSize
	rw := p % patch.BoardSize
	p /= patch.BoardSize
	s := p
	return s, rw, c, patch.Rotation(r), f == 1
}

// EncodeNatural converts an Action to its NaturalActionId.
func EncodeNatural(a Action) (NaturalActionId, error) {
	switch a.Kind {
	case KindWalking, KindSpecialPatchPlacement:
		id, err := EncodeAction(a)
		if err != nil {
			return 0, err
		}
		return NaturalActionId(id), nil

	case KindPatchPlacement:
		cat := patch.Get()
		t, ok := cat.Transformation(a.PatchID, a.TransformationIndex)
		if !ok {
			return 0, fmt.Errorf("board: natural encode (patch=%d trans=%d): %w", a.PatchID, a.TransformationIndex, ErrDecodeRange)
		}
		low := natLowBase + natPolicyIndex(a.PatchSlot, t.Row, t.Col, t.Rotation, t.Flipped)
		return NaturalActionId(uint64(low) | (uint64(a.PatchID) << 16)), nil

	case KindPhantom:
		return NaturalActionId(natLowBase + natPolicySize), nil

	case KindNull:
		return NaturalActionId(natLowBase + natPolicySize + 1), nil

	default:
		return 0, fmt.Errorf("board: unknown action kind %d: %w", a.Kind, ErrDecodeRange)
	}
}

// DecodeNatural converts a NaturalActionId back to an Action. As with
// DecodeAction, PreviousPlayerWas1 is left false.
func DecodeNatural(n NaturalActionId) (Action, error) {
	v := uint64(n)
	low := int(v & 0xFFFF)
	patchID := patch.ID(v >> 16)

	switch {
	case low >= walkingBase && low < walkingBase+numWalking:
		return Action{Kind: KindWalking, StartingIndex: low - walkingBase}, nil

	case low >= specialBase && low < specialBase+numSpecial:
		return Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: low - specialBase}, nil

	case low >= natLowBase && low < natLowBase+natPolicySize:
		policy := low - natLowBase
		slot, row, col, rot, flipped := natUnpackPolicyIndex(policy)
		ts := patch.Get().Transformations(patchID)
		for i, t := range ts {
			if t.Row == row && t.Col == col && t.Rotation == rot && t.Flipped == flipped {
				return Action{Kind: KindPatchPlacement, PatchID: patchID, PatchSlot: slot, TransformationIndex: i}, nil
			}
		}
		return Action{}, fmt.Errorf("board: natural action id %d: no matching transformation: %w", n, ErrDecodeRange)

	case low == natLowBase+natPolicySize:
		return Action{Kind: KindPhantom}, nil

	case low == natLowBase+natPolicySize+1:
		return Action{Kind: KindNull}, nil

	default:
		return Action{}, fmt.Errorf("board: natural action id %d out of range: %w", n, ErrDecodeRange)
	}
}
