package patch

import "fmt"

// ID identifies a patch in the catalog. SpecialID is the 1x1 special-patch
// template; regular patches use IDs 1..NumRegular.
type ID uint8

// SpecialID is the identifier of the 1x1 special-patch template shared by
// all five special-patch tokens on the time board.
const SpecialID ID = 0

// NumRegular is the number of regular patches in the catalog.
const NumRegular = 33

// NumSpecialTokens is the number of special-patch tokens placed on the time
// board at game start.
const NumSpecialTokens = 5

// Patch describes one entry in the catalog: a button cost, a time cost, a
// button income, and a shape. Shape[r][c] is true if the patch covers cell
// (r, c) of its own bounding box.
type Patch struct {
	ID           ID
	ButtonCost   int
	TimeCost     int
	ButtonIncome int
	Shape        [][]bool
}

// Rows returns the height of the patch's bounding box.
func (p *Patch) Rows() int { return len(p.Shape) }

// Cols returns the width of the patch's bounding box.
func (p *Patch) Cols() int {
	if len(p.Shape) == 0 {
		return 0
	}
	return len(p.Shape[0])
}

// Area returns the number of covered cells (used for the quiltboard
// remaining-space fast-path check).
func (p *Patch) Area() int {
	n := 0
	for _, row := range p.Shape {
		for _, c := range row {
			if c {
				n++
			}
		}
	}
	return n
}

func (p *Patch) String() string {
	return fmt.Sprintf("Patch{id=%d cost=%d time=%d income=%d area=%d}",
		p.ID, p.ButtonCost, p.TimeCost, p.ButtonIncome, p.Area())
}

// parseShape turns a slice of equal-length strings ('#' = covered,
// '.' = empty) into a Shape matrix.
func parseShape(rows ...string) [][]bool {
	shape := make([][]bool, len(rows))
	for r, row := range rows {
		line := make([]bool, len(row))
		for c, ch := range row {
			line[c] = ch == '#'
		}
		shape[r] = line
	}
	return shape
}

// specialPatch is the 1x1 template used for every special-patch token.
var specialPatch = Patch{
	ID:           SpecialID,
	ButtonCost:   0,
	TimeCost:     0,
	ButtonIncome: 0,
	Shape:        parseShape("#"),
}

// regularPatchSpecs is the static description of the 33 regular patches,
// listed in patch ID order (entry i is patch ID i+1); the list is not
// sorted by cost or time.
var regularPatchSpecs = []struct {
	cost, time, income int
	rows               []string
}{
	{2, 1, 0, []string{"##"}},
	{2, 2, 0, []string{"#", "#", "#"}},
	{3, 3, 1, []string{".#", "##", "#."}},
	{7, 4, 3, []string{"###", "###"}},
	{1, 3, 0, []string{".#.", "###", ".#."}},
	{3, 2, 1, []string{"##", "##"}},
	{10, 4, 2, []string{"####", "####"}},
	{4, 2, 0, []string{"###"}},
	{2, 1, 0, []string{"#", "#"}},
	{2, 2, 0, []string{"##."}},
	{6, 5, 2, []string{".##", "##.", ".#."}},
	{5, 3, 1, []string{"#.", "##", ".#"}},
	{1, 2, 0, []string{".#", "##"}},
	{7, 6, 3, []string{"####", ".##."}},
	{3, 1, 0, []string{"###", "#.."}},
	{0, 3, 1, []string{"##", "##", "##"}},
	{8, 6, 3, []string{".#.", "###", "###"}},
	{5, 4, 2, []string{"#.#", "###"}},
	{2, 3, 1, []string{"#.", "##"}},
	{1, 1, 0, []string{"#.", "##", "#."}},
	{4, 3, 1, []string{"###", ".#."}},
	{10, 5, 3, []string{"#.#", "###", "#.#"}},
	{3, 4, 1, []string{".#", "##", "#."}},
	{6, 2, 1, []string{"####"}},
	{2, 2, 0, []string{"##", ".#"}},
	{7, 1, 0, []string{"#.#", "###"}},
	{1, 5, 1, []string{"#"}},
	{5, 6, 2, []string{"#..", "###", "..#"}},
	{2, 3, 0, []string{"###", "..#"}},
	{3, 2, 0, []string{".##", "##."}},
	{10, 3, 2, []string{"##.", ".##", "..#"}},
	{4, 4, 1, []string{"##.", ".##"}},
	{8, 2, 1, []string{"##", "##", "##"}},
}

func init() {
	if len(regularPatchSpecs) != NumRegular {
		panic(fmt.Sprintf("patch: expected %d regular patch specs, got %d", NumRegular, len(regularPatchSpecs)))
	}
}
