package board

import "github.com/nzeitz/patchwork/internal/patch"

// PatchQueue is the ordered circular list of remaining regular patches.
// Storage is a fixed-size array so Take/Untake never touch the heap: the
// active window is ids[:length], and the pointer always sits at index 0,
// so the three playable patches are ids[0], ids[1], ids[2] (fewer, near
// the end of the game, when Len() < 3).
type PatchQueue struct {
	ids    [patch.NumRegular]patch.ID
	length int
}

// NewPatchQueue builds the starting queue from a seeded shuffle of the
// full 33-patch catalog.
func NewPatchQueue(seed uint64) PatchQueue {
	q := PatchQueue{length: patch.NumRegular}
	copy(q.ids[:], patch.Get().InitialOrder(seed))
	return q
}

// Len returns the number of patches remaining in the queue.
func (q *PatchQueue) Len() int {
	return q.length
}

// At returns the patch id at the given playable slot (0, 1, or 2).
func (q *PatchQueue) At(slot int) (patch.ID, bool) {
	if slot < 0 || slot >= q.length {
		return 0, false
	}
	return q.ids[slot], true
}

// NumPlayableSlots returns how many of the three playable slots are
// currently occupied (3 until the queue runs low near the end of a game).
func (q *PatchQueue) NumPlayableSlots() int {
	if q.length < 3 {
		return q.length
	}
	return 3
}

// Take removes the patch at the given slot and rotates the queue so the
// pointer sits just past it: every patch between the old pointer and the
// chosen slot wraps around to the back of the queue. Zero heap
// allocation: the rotation happens through a fixed-size stack buffer.
func (q *PatchQueue) Take(slot int) patch.ID {
	id := q.ids[slot]
	var tmp [patch.NumRegular]patch.ID
	n := copy(tmp[:], q.ids[slot+1:q.length])
	n += copy(tmp[n:], q.ids[:slot])
	copy(q.ids[:], tmp[:n])
	q.length--
	return id
}

// Untake is the exact inverse of Take, given the same slot and the id it
// returned.
func (q *PatchQueue) Untake(slot int, id patch.ID) {
	var tmp [patch.NumRegular]patch.ID
	n := copy(tmp[:], q.ids[q.length-slot:q.length])
	tmp[n] = id
	n++
	n += copy(tmp[n:], q.ids[:q.length-slot])
	copy(q.ids[:], tmp[:n])
	q.length++
}

// Clone returns a copy; PatchQueue has no reference fields so a plain
// struct copy already suffices, this just documents the intent at call
// sites that clone a whole State.
func (q PatchQueue) Clone() PatchQueue {
	return q
}
