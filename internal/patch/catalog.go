package patch

import "sync"

// Catalog is the process-wide, immutable registry of patches and their
// precomputed placements. It is built once, lazily, on first use; per the
// design notes this is safe without synchronization once publication has
// happened, because the catalog is always fetched (and thus built) before
// any search worker is spawned. Reinitializing it between games is not
// supported or needed: the catalog carries no per-game state.
type Catalog struct {
	regular         map[ID]*Patch
	special         *Patch
	transformations map[ID][]Transformation
	order           []ID // regular IDs in ascending ID order (1..33)
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
)

// Get returns the process-wide catalog, building it on first call.
func Get() *Catalog {
	catalogOnce.Do(func() {
		catalog = build()
	})
	return catalog
}

func build() *Catalog {
	c := &Catalog{
		regular:         make(map[ID]*Patch, NumRegular),
		special:         &specialPatch,
		transformations: make(map[ID][]Transformation, NumRegular),
		order:           make([]ID, 0, NumRegular),
	}

	for i, spec := range regularPatchSpecs {
		id := ID(i + 1)
		p := &Patch{
			ID:           id,
			ButtonCost:   spec.cost,
			TimeCost:     spec.time,
			ButtonIncome: spec.income,
			Shape:        parseShape(spec.rows...),
		}
		c.regular[id] = p
		c.transformations[id] = enumerateTransformations(p.Shape)
		c.order = append(c.order, id)
	}

	return c
}

// Patch returns the regular patch with the given ID.
func (c *Catalog) Patch(id ID) (*Patch, bool) {
	p, ok := c.regular[id]
	return p, ok
}

// SpecialPatch returns the shared special-patch template.
func (c *Catalog) SpecialPatch() *Patch {
	return c.special
}

// Transformations returns every legal placement of the regular patch with
// the given ID, in stable catalog order.
func (c *Catalog) Transformations(id ID) []Transformation {
	return c.transformations[id]
}

// Transformation returns the placement at the given stable index for the
// regular patch with the given ID.
func (c *Catalog) Transformation(id ID, index int) (Transformation, bool) {
	ts := c.transformations[id]
	if index < 0 || index >= len(ts) {
		return Transformation{}, false
	}
	return ts[index], true
}

// RegularIDs returns the 33 regular patch IDs in deck order (1..33).
func (c *Catalog) RegularIDs() []ID {
	out := make([]ID, len(c.order))
	copy(out, c.order)
	return out
}

// InitialOrder returns a seeded shuffle of the 33 regular patch IDs, used
// to build the reproducible starting patch queue.
func (c *Catalog) InitialOrder(seed uint64) []ID {
	order := c.RegularIDs()
	rng := newXorshift(seed)
	for i := len(order) - 1; i > 0; i-- {
		j := int(rng.next() % uint64(i+1))
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// xorshift64star is a small, fast, reproducible PRNG used wherever the
// engine needs deterministic randomness from a caller-supplied seed.
type xorshift64star struct {
	state uint64
}

func newXorshift(seed uint64) *xorshift64star {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15 // avoid the all-zero fixed point
	}
	return &xorshift64star{state: seed}
}

func (x *xorshift64star) next() uint64 {
	x.state ^= x.state >> 12
	x.state ^= x.state << 25
	x.state ^= x.state >> 27
	return x.state * 0x2545F4914F6CDD1D
}
