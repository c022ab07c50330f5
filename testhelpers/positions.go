// Package testhelpers builds positions for tests across packages.
package testhelpers

import (
	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

// NewRNG returns a reproducible generator; the same seed always yields the
// same sequence.
func NewRNG(seed byte) *frand.RNG {
	var s [32]byte
	s[0] = seed
	return frand.NewCustom(s[:], 1024, 12)
}

// RandomPosition plays up to plies random legal moves from the starting
// position, passing when forced, and returns the resulting board and side
// to move. It stops early if the game ends.
func RandomPosition(rng *frand.RNG, plies int) (board.Board, board.Side) {
	b := board.New()
	onTurn := board.Black
	for i := 0; i < plies; i++ {
		if b.IsTerminal() {
			break
		}
		moves := b.Moves(onTurn)
		if len(moves) > 0 {
			b.Apply(moves[rng.Intn(len(moves))], onTurn)
		}
		onTurn = onTurn.Opposite()
	}
	return b, onTurn
}

// ScanMoves finds legal moves the slow way: for every empty cell, walk each
// of the 8 directions looking for a bounded run of opponent discs. It is
// the reference the bit-parallel generator is checked against.
func ScanMoves(b board.Board, side board.Side) board.Bitboard {
	var moves board.Bitboard
	other := side.Opposite()
	for y := 0; y < move.BoardDim; y++ {
		for x := 0; x < move.BoardDim; x++ {
			if b.IsOccupied(x, y) {
				continue
			}
			if scanCaptures(b, side, other, x, y) {
				m, _ := move.New(x, y)
				moves |= board.Bitboard(m.Mask())
			}
		}
	}
	return moves
}

func scanCaptures(b board.Board, side, other board.Side, x, y int) bool {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			cx, cy := x+dx, y+dy
			if !b.ColorAt(other, cx, cy) {
				continue
			}
			for b.ColorAt(other, cx, cy) {
				cx += dx
				cy += dy
			}
			if b.ColorAt(side, cx, cy) {
				return true
			}
		}
	}
	return false
}
