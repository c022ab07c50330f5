package search

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const (
	DefaultTTCapacity = 100000
	minTTCapacity     = 1024
	maxTTCapacity     = 1 << 26
	// approxEntryBytes is a rough per-entry cost of the LRU, including its
	// map bucket and list element.
	approxEntryBytes = 128
)

// Key identifies a searched node. The side to move is part of it: the same
// discs with the other side on turn is a different node.
type Key struct {
	Occupied uint64
	Black    uint64
	ToMove   board.Side
	Depth    int8
}

func makeKey(b board.Board, toMove board.Side, depth int) Key {
	occ, black := b.Words()
	return Key{Occupied: occ, Black: black, ToMove: toMove, Depth: int8(depth)}
}

// Entry is a cached score, from the perspective of the key's side to move.
// Flag says whether Score is exact or only a lower or upper bound.
type Entry struct {
	Score int32
	Flag  uint8
}

type Stats struct {
	Lookups   uint64
	Hits      uint64
	Created   uint64
	Evictions uint64
}

// TranspositionCache is a bounded least-recently-used map of search
// results. It is owned by a single Solver and is not safe for concurrent
// use.
type TranspositionCache struct {
	lru      *simplelru.LRU[Key, Entry]
	capacity int
	stats    Stats
}

// NewTranspositionCache makes a cache holding at most capacity entries.
// Non-positive capacities get the default.
func NewTranspositionCache(capacity int) *TranspositionCache {
	if capacity <= 0 {
		capacity = DefaultTTCapacity
	}
	t := &TranspositionCache{capacity: capacity}
	lru, err := simplelru.NewLRU[Key, Entry](capacity, func(Key, Entry) {
		t.stats.Evictions++
	})
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	t.lru = lru
	return t
}

// CapacityFromMemory sizes a cache to use about fractionOfMemory of the
// machine's memory.
func CapacityFromMemory(fractionOfMemory float64) int {
	totalMem := memory.TotalMemory()
	desired := int(fractionOfMemory * float64(totalMem) / approxEntryBytes)
	capacity := min(max(desired, minTTCapacity), maxTTCapacity)
	log.Info().Int("num-elems", capacity).
		Int("desired-num-elems", desired).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-cache-size")
	return capacity
}

func (t *TranspositionCache) Lookup(k Key) (Entry, bool) {
	t.stats.Lookups++
	e, ok := t.lru.Get(k)
	if ok {
		t.stats.Hits++
	}
	return e, ok
}

// Store inserts or overwrites k. When the cache is full the least recently
// used entry is dropped.
func (t *TranspositionCache) Store(k Key, e Entry) {
	t.lru.Add(k, e)
	t.stats.Created++
}

func (t *TranspositionCache) Reset() {
	t.lru.Purge()
	t.stats = Stats{}
}

func (t *TranspositionCache) Len() int {
	return t.lru.Len()
}

func (t *TranspositionCache) Capacity() int {
	return t.capacity
}

func (t *TranspositionCache) Stats() Stats {
	return t.stats
}
