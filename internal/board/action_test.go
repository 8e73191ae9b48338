package board

import (
	"testing"

	"github.com/nzeitz/patchwork/internal/patch"
)

func TestActionEncodeDecodeRoundTripWalking(t *testing.T) {
	for start := 0; start < numWalking; start++ {
		a := Action{Kind: KindWalking, StartingIndex: start}
		id, err := EncodeAction(a)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		back, err := DecodeAction(id)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if back != a {
			t.Fatalf("round trip mismatch: got %+v, want %+v", back, a)
		}
	}
}

func TestActionEncodeDecodeRoundTripSpecial(t *testing.T) {
	for cell := 0; cell < numSpecial; cell++ {
		a := Action{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: cell}
		id, err := EncodeAction(a)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		back, err := DecodeAction(id)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if back != a {
			t.Fatalf("round trip mismatch: got %+v, want %+v", back, a)
		}
	}
}

func TestActionEncodeDecodeRoundTripPatchPlacement(t *testing.T) {
	cat := patch.Get()
	for _, id := range cat.RegularIDs() {
		n := len(cat.Transformations(id))
		for slot := 0; slot < 3; slot++ {
			for trans := 0; trans < n; trans++ {
				a := Action{Kind: KindPatchPlacement, PatchID: id, PatchSlot: slot, TransformationIndex: trans}
				enc, err := EncodeAction(a)
				if err != nil {
					t.Fatalf("encode %+v: %v", a, err)
				}
				back, err := DecodeAction(enc)
				if err != nil {
					t.Fatalf("decode: %v", err)
				}
				if back != a {
					t.Fatalf("round trip mismatch: got %+v, want %+v", back, a)
				}
			}
		}
	}
}

func TestActionEncodeDecodePhantomAndNull(t *testing.T) {
	for _, kind := range []Kind{KindPhantom, KindNull} {
		a := Action{Kind: kind}
		id, err := EncodeAction(a)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		back, err := DecodeAction(id)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if back.Kind != kind {
			t.Fatalf("got kind %v, want %v", back.Kind, kind)
		}
	}
}

func TestActionIdRangesAreDisjointAndAscending(t *testing.T) {
	if specialBase != walkingBase+numWalking {
		t.Fatalf("special range must start right after walking range")
	}
	if placementBaseValue != specialBase+numSpecial {
		t.Fatalf("placement range must start right after special range")
	}
	if PhantomActionId() <= ActionId(placementBaseValue) {
		t.Fatalf("Phantom must come after every patch placement id")
	}
	if NullActionId() != PhantomActionId()+1 {
		t.Fatalf("Null must immediately follow Phantom")
	}
}

func TestNaturalActionIdRoundTripAllKinds(t *testing.T) {
	cat := patch.Get()
	id := cat.RegularIDs()[0]
	n := len(cat.Transformations(id))

	cases := []Action{
		{Kind: KindWalking, StartingIndex: 12},
		{Kind: KindSpecialPatchPlacement, QuiltBoardIndex: 40},
		{Kind: KindPatchPlacement, PatchID: id, PatchSlot: 1, TransformationIndex: n - 1},
		{Kind: KindPhantom},
		{Kind: KindNull},
	}
	for _, a := range cases {
		nat, err := EncodeNatural(a)
		if err != nil {
			t.Fatalf("encode natural %+v: %v", a, err)
		}
		back, err := DecodeNatural(nat)
		if err != nil {
			t.Fatalf("decode natural: %v", err)
		}
		if back != a {
			t.Fatalf("natural round trip mismatch: got %+v, want %+v", back, a)
		}
	}
}

func TestDecodeActionRejectsOutOfRange(t *testing.T) {
	if _, err := DecodeAction(NullActionId() + 1); err == nil {
		t.Fatalf("expected an error decoding an id past Null")
	}
}
