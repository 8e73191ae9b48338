package patch

import "sort"

// Rotation is one of the four quarter-turns a patch shape may be placed in.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Transformation is one legal placement of a regular patch: a position on
// the 9x9 board plus the orientation used to get there, and the
// precomputed occupancy mask for that placement.
type Transformation struct {
	Row, Col   int
	Rotation   Rotation
	Flipped    bool
	Mask       Mask
}

// rotateShape rotates a shape 90 degrees clockwise.
func rotateShape(shape [][]bool) [][]bool {
	rows, cols := len(shape), len(shape[0])
	out := make([][]bool, cols)
	for c := 0; c < cols; c++ {
		out[c] = make([]bool, rows)
		for r := 0; r < rows; r++ {
			out[c][rows-1-r] = shape[r][c]
		}
	}
	return out
}

// flipShape mirrors a shape horizontally (reverses each row).
func flipShape(shape [][]bool) [][]bool {
	rows, cols := len(shape), len(shape[0])
	out := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]bool, cols)
		for c := 0; c < cols; c++ {
			out[r][c] = shape[r][cols-1-c]
		}
	}
	return out
}

// shapeKey produces a canonical string for shape-equality dedup.
func shapeKey(shape [][]bool) string {
	buf := make([]byte, 0, len(shape)*(len(shape[0])+1))
	for _, row := range shape {
		for _, cell := range row {
			if cell {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '|')
	}
	return string(buf)
}

// orientation pairs a rotation/flip combination with the shape it produces.
type orientation struct {
	rotation Rotation
	flipped  bool
	shape    [][]bool
}

// distinctOrientations returns, for each distinct shape reachable by
// rotating/flipping the base shape, the canonical (lowest rotation, then
// non-flipped before flipped) orientation that produces it.
func distinctOrientations(base [][]bool) []orientation {
	seen := make(map[string]bool)
	var out []orientation

	shape := base
	for rot := Rotate0; rot <= Rotate270; rot++ {
		for _, flipped := range []bool{false, true} {
			s := shape
			if flipped {
				s = flipShape(shape)
			}
			key := shapeKey(s)
			if !seen[key] {
				seen[key] = true
				out = append(out, orientation{rotation: rot, flipped: flipped, shape: s})
			}
		}
		shape = rotateShape(shape)
	}
	return out
}

// enumerateTransformations returns every legal placement of a patch shape
// on a 9x9 board, deduplicated by shape symmetry and ordered per the
// catalog's tie-break rule: row-major by top-left of the bounding box,
// then rotation 0->270, then non-flipped before flipped.
func enumerateTransformations(base [][]bool) []Transformation {
	orientations := distinctOrientations(base)

	var transforms []Transformation
	for _, o := range orientations {
		rows, cols := len(o.shape), len(o.shape[0])
		for row := 0; row+rows <= BoardSize; row++ {
			for col := 0; col+cols <= BoardSize; col++ {
				mask := Mask{}
				for r := 0; r < rows; r++ {
					for c := 0; c < cols; c++ {
						if o.shape[r][c] {
							mask = mask.Set(BitIndex(row+r, col+c))
						}
					}
				}
				transforms = append(transforms, Transformation{
					Row:      row,
					Col:      col,
					Rotation: o.rotation,
					Flipped:  o.flipped,
					Mask:     mask,
				})
			}
		}
	}

	sort.SliceStable(transforms, func(i, j int) bool {
		a, b := transforms[i], transforms[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		if a.Rotation != b.Rotation {
			return a.Rotation < b.Rotation
		}
		return !a.Flipped && b.Flipped
	})

	// Distinct orientations can still cover the same cells (a shape with an
	// empty column shifted by one); keep only the first of each mask.
	seen := make(map[Mask]bool, len(transforms))
	out := transforms[:0]
	for _, t := range transforms {
		if !seen[t.Mask] {
			seen[t.Mask] = true
			out = append(out, t)
		}
	}
	return out
}
