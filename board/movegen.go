package board

import "github.com/domino14/othello/move"

// maxRunExtension is how many times a frontier is pushed past its seed.
// The longest capturable run on an 8-wide board is 6 discs; the seed
// covers the first, these iterations cover the other 5.
const maxRunExtension = 5

// GenerateMoves returns every legal destination cell for side, computed
// with bit-parallel propagation in each of the 8 directions. An empty
// result means side must pass.
func (b Board) GenerateMoves(side Side) Bitboard {
	own := b.Discs(side)
	opp := b.Discs(side.Opposite())
	empty := ^b.Occupied()

	var moves Bitboard
	for d := North; d < NumDirections; d++ {
		frontier := d.Shift(own) & opp
		for i := 0; i < maxRunExtension; i++ {
			frontier |= d.Shift(frontier) & opp
		}
		moves |= d.Shift(frontier) & empty
	}
	return moves
}

// Moves lists the legal cell moves for side in increasing index order.
// This is the enumeration order the search relies on for tie-breaking.
func (b Board) Moves(side Side) []move.Move {
	return b.GenerateMoves(side).Squares()
}

// HasAnyMove reports whether side has at least one legal cell move.
func (b Board) HasAnyMove(side Side) bool {
	return b.GenerateMoves(side) != 0
}

// IsTerminal is true when neither side can place a disc.
func (b Board) IsTerminal() bool {
	return !b.HasAnyMove(Black) && !b.HasAnyMove(White)
}

// flips returns the opponent discs that placing on target would turn over
// for side. It does not check that target is empty.
func (b Board) flips(target Bitboard, side Side) Bitboard {
	own := b.Discs(side)
	opp := b.Discs(side.Opposite())

	var flipped Bitboard
	for d := North; d < NumDirections; d++ {
		var run Bitboard
		cur := d.Shift(target)
		for cur&opp != 0 {
			run |= cur
			cur = d.Shift(cur)
		}
		if cur&own != 0 {
			flipped |= run
		}
	}
	return flipped
}

// LegalMove reports whether m is legal for side. A pass is legal only
// when side has no cell move.
func (b Board) LegalMove(m move.Move, side Side) bool {
	if m.IsPass() {
		return !b.HasAnyMove(side)
	}
	target := Bitboard(m.Mask())
	if b.occupied&target != 0 {
		return false
	}
	return b.flips(target, side) != 0
}

// Apply plays m for side and returns the discs it flipped. An illegal move
// or a pass returns 0 and leaves b untouched.
func (b *Board) Apply(m move.Move, side Side) Bitboard {
	if m.IsPass() {
		return 0
	}
	target := Bitboard(m.Mask())
	if b.occupied&target != 0 {
		return 0
	}
	flipped := b.flips(target, side)
	if flipped == 0 {
		return 0
	}
	b.occupied |= target
	if side == Black {
		b.black |= flipped | target
	} else {
		b.black &^= flipped
	}
	return flipped
}

// Unapply reverts a successful Apply(m, side) that returned flipped.
// Calls must be made in reverse order of the applies they undo.
func (b *Board) Unapply(m move.Move, side Side, flipped Bitboard) {
	if m.IsPass() || flipped == 0 {
		return
	}
	target := Bitboard(m.Mask())
	b.occupied &^= target
	if side == Black {
		b.black &^= flipped | target
	} else {
		b.black |= flipped
	}
}
