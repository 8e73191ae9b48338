package engine

import (
	"sync"

	"github.com/nzeitz/patchwork/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry is the packed record stored per transposition table slot.
type TTEntry struct {
	Key        uint32
	BestAction board.ActionId
	Score      int16
	Depth      int8
	Flag       TTFlag
	Age        uint8
}

const ttShards = 256

// TranspositionTable is a lock-striped, open-addressed hash table keyed by
// board.State.Hash(). Sharding by the low bits of the index lets Lazy-SMP
// workers probe and store concurrently without a single global lock,
// matching the spec's "lock-striped" requirement for the shared TT.
type TranspositionTable struct {
	entries []TTEntry
	locks   [ttShards]sync.Mutex
	mask    uint64
	age     uint8
}

// NewTranspositionTable creates a table sized to roughly sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	entrySize := uint64(16)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}
	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		mask:    numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable) shard(idx uint64) *sync.Mutex {
	return &tt.locks[idx%ttShards]
}

// Probe looks up hash and reports whether a usable entry was found.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	idx := hash & tt.mask
	lock := tt.shard(idx)
	lock.Lock()
	entry := tt.entries[idx]
	lock.Unlock()

	if entry.Key == uint32(hash>>32) && entry.Depth > 0 {
		return entry, true
	}
	return TTEntry{}, false
}

// Store records a search result. Replacement prefers deeper, then newer,
// so a shallow probe from one worker never evicts a deeper result found by
// another worker still on an earlier iteration.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, best board.ActionId) {
	idx := hash & tt.mask
	lock := tt.shard(idx)
	lock.Lock()
	defer lock.Unlock()

	entry := &tt.entries[idx]
	if entry.Age != tt.age || depth >= int(entry.Depth) {
		entry.Key = uint32(hash >> 32)
		entry.BestAction = best
		entry.Score = int16(score)
		entry.Depth = int8(depth)
		entry.Flag = flag
		entry.Age = tt.age
	}
}

// NewSearch bumps the generation counter so stale entries lose replacement
// priority without needing to be zeroed out.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear empties every slot. Called on the UPI `newgame` command so stale
// best actions from a previous game never leak into a new one.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
}

// HashFull reports permille occupancy, sampling the first slots.
func (tt *TranspositionTable) HashFull() int {
	sample := 1000
	if uint64(sample) > uint64(len(tt.entries)) {
		sample = len(tt.entries)
	}
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == tt.age {
			used++
		}
	}
	return used * 1000 / sample
}

// AdjustScoreFromTT converts a mate score stored relative to the entry's
// own ply back to one relative to the current search ply.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT is the inverse of AdjustScoreFromTT, applied before a
// mate score is stored.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
