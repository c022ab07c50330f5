package search

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/othello/board"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func key(n uint64) Key {
	return Key{Occupied: n, Black: n, ToMove: board.Black, Depth: 1}
}

func TestTTableLRUEviction(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionCache(3)
	is.Equal(tt.Capacity(), 3)
	tt.Store(key(1), Entry{Score: 1, Flag: TTExact})
	tt.Store(key(2), Entry{Score: 2, Flag: TTLower})
	tt.Store(key(3), Entry{Score: 3, Flag: TTUpper})

	// Touch 1 so that 2 becomes the least recently used.
	e, ok := tt.Lookup(key(1))
	is.True(ok)
	is.Equal(e, Entry{Score: 1, Flag: TTExact})

	tt.Store(key(4), Entry{Score: 4, Flag: TTExact})
	is.Equal(tt.Len(), 3)
	_, ok = tt.Lookup(key(2))
	is.True(!ok)
	for _, n := range []uint64{1, 3, 4} {
		_, ok := tt.Lookup(key(n))
		is.True(ok)
	}
	st := tt.Stats()
	is.Equal(st.Evictions, uint64(1))
	is.Equal(st.Created, uint64(4))
	is.Equal(st.Lookups, uint64(5))
	is.Equal(st.Hits, uint64(4))
}

func TestTTableOverwrite(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionCache(2)
	tt.Store(key(1), Entry{Score: 1, Flag: TTLower})
	tt.Store(key(1), Entry{Score: -7, Flag: TTExact})
	is.Equal(tt.Len(), 1)
	e, ok := tt.Lookup(key(1))
	is.True(ok)
	is.Equal(e.Score, int32(-7))
	is.Equal(tt.Stats().Evictions, uint64(0))
}

func TestTTableKeyIncludesSideAndDepth(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionCache(16)
	b := board.New()
	tt.Store(makeKey(b, board.Black, 3), Entry{Score: 5, Flag: TTExact})
	_, ok := tt.Lookup(makeKey(b, board.White, 3))
	is.True(!ok)
	_, ok = tt.Lookup(makeKey(b, board.Black, 2))
	is.True(!ok)
	_, ok = tt.Lookup(makeKey(b, board.Black, 3))
	is.True(ok)
}

func TestTTableReset(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionCache(0)
	is.Equal(tt.Capacity(), DefaultTTCapacity)
	tt.Store(key(9), Entry{Score: 9, Flag: TTExact})
	tt.Reset()
	is.Equal(tt.Len(), 0)
	is.Equal(tt.Stats(), Stats{})
	_, ok := tt.Lookup(key(9))
	is.True(!ok)
}

func TestCapacityFromMemoryClamped(t *testing.T) {
	is := is.New(t)
	is.Equal(CapacityFromMemory(0), minTTCapacity)
	c := CapacityFromMemory(0.5)
	is.True(c >= minTTCapacity)
	is.True(c <= maxTTCapacity)
}
