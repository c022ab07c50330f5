package board

import (
	"math/bits"

	"github.com/domino14/othello/move"
)

// Bitboard is a set of cells, bit i standing for cell i = x + 8*y.
type Bitboard uint64

const (
	// notFileH clears column x=7 so an eastward shift cannot wrap into
	// column 0 of the next row.
	notFileH Bitboard = 0x7f7f7f7f7f7f7f7f
	// notFileA clears column x=0 for westward shifts.
	notFileA Bitboard = 0xfefefefefefefefe

	Full Bitboard = 0xffffffffffffffff
)

// Direction is one of the 8 compass directions. North decreases y.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest

	NumDirections
)

// Shift moves every cell of b one step in direction d, dropping cells that
// would leave the board.
func (d Direction) Shift(b Bitboard) Bitboard {
	switch d {
	case North:
		return b >> 8
	case NorthEast:
		return (b & notFileH) >> 7
	case East:
		return (b & notFileH) << 1
	case SouthEast:
		return (b & notFileH) << 9
	case South:
		return b << 8
	case SouthWest:
		return (b & notFileA) << 7
	case West:
		return (b & notFileA) >> 1
	case NorthWest:
		return (b & notFileA) >> 9
	}
	return 0
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case East:
		return "E"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case West:
		return "W"
	case NorthWest:
		return "NW"
	}
	return "?"
}

func (b Bitboard) Count() int {
	return bits.OnesCount64(uint64(b))
}

func (b Bitboard) Has(m move.Move) bool {
	return b&Bitboard(m.Mask()) != 0
}

func (b Bitboard) IsEmpty() bool {
	return b == 0
}

// Squares returns the cells of b as moves, in increasing index order.
func (b Bitboard) Squares() []move.Move {
	moves := make([]move.Move, 0, b.Count())
	for b != 0 {
		i := bits.TrailingZeros64(uint64(b))
		moves = append(moves, move.Move(i))
		b &= b - 1
	}
	return moves
}

// First returns the lowest-index cell of b, or move.Pass if b is empty.
func (b Bitboard) First() move.Move {
	if b == 0 {
		return move.Pass
	}
	return move.Move(bits.TrailingZeros64(uint64(b)))
}
