// Package board is the 8x8 Othello position: two 64-bit words, the
// directional shifts over them, and bit-parallel move generation.
package board

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/domino14/othello/move"
)

// Side is one of the two colors. Black moves first.
type Side uint8

const (
	Black Side = iota
	White
)

func (s Side) Opposite() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// Symbol is the character used for this side's discs in text formats.
func (s Side) Symbol() byte {
	if s == Black {
		return 'X'
	}
	return 'O'
}

// SideFromString accepts "black"/"white", "b"/"w" or "x"/"o".
func SideFromString(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b", "x":
		return Black, nil
	case "white", "w", "o":
		return White, nil
	}
	return Black, fmt.Errorf("unknown side %q", s)
}

// Square is the state of a single cell.
type Square uint8

const (
	Empty Square = iota
	BlackDisc
	WhiteDisc
)

func (sq Square) Char() byte {
	switch sq {
	case BlackDisc:
		return 'X'
	case WhiteDisc:
		return 'O'
	}
	return '-'
}

// SquareFor returns the disc square of side s.
func SquareFor(s Side) Square {
	if s == Black {
		return BlackDisc
	}
	return WhiteDisc
}

// Grid is a raw 64-cell description of a position, indexed x + 8*y.
type Grid [move.NumSquares]Square

// Board is an Othello position. It is a small value type: copying a Board
// copies the position.
type Board struct {
	occupied Bitboard
	// black marks the occupied cells holding black discs. It is always a
	// subset of occupied.
	black Bitboard
}

const (
	initialOccupied Bitboard = 1<<(3+8*3) | 1<<(4+8*3) | 1<<(3+8*4) | 1<<(4+8*4)
	initialBlack    Bitboard = 1<<(4+8*3) | 1<<(3+8*4)
)

// New returns the standard starting position: white on (3,3) and (4,4),
// black on (4,3) and (3,4).
func New() Board {
	return Board{occupied: initialOccupied, black: initialBlack}
}

// FromWords builds a board from its two words. black is masked to
// occupied so the invariant holds whatever the caller passes.
func FromWords(occupied, black uint64) Board {
	return Board{occupied: Bitboard(occupied), black: Bitboard(black & occupied)}
}

func (b Board) Occupied() Bitboard {
	return b.occupied
}

// Words returns the two words that fully describe the position.
func (b Board) Words() (occupied, black uint64) {
	return uint64(b.occupied), uint64(b.black)
}

// Discs returns the cells holding side's discs.
func (b Board) Discs(side Side) Bitboard {
	if side == Black {
		return b.black
	}
	return b.occupied &^ b.black
}

func (b Board) Empties() Bitboard {
	return ^b.occupied
}

// IsOccupied reports whether cell (x, y) holds a disc. Off-board cells are
// reported empty.
func (b Board) IsOccupied(x, y int) bool {
	if !move.OnBoard(x, y) {
		return false
	}
	return b.occupied&(1<<uint(x+8*y)) != 0
}

// ColorAt is true iff (x, y) holds a disc of side.
func (b Board) ColorAt(side Side, x, y int) bool {
	if !move.OnBoard(x, y) {
		return false
	}
	return b.Discs(side)&(1<<uint(x+8*y)) != 0
}

// At returns the state of cell (x, y); Empty for off-board cells.
func (b Board) At(x, y int) Square {
	switch {
	case b.ColorAt(Black, x, y):
		return BlackDisc
	case b.ColorAt(White, x, y):
		return WhiteDisc
	}
	return Empty
}

// Place puts a disc of side on (x, y) without any capture logic.
func (b *Board) Place(side Side, x, y int) error {
	m, err := move.New(x, y)
	if err != nil {
		return err
	}
	bit := Bitboard(m.Mask())
	b.occupied |= bit
	if side == Black {
		b.black |= bit
	} else {
		b.black &^= bit
	}
	return nil
}

// Count returns the number of discs side has on the board.
func (b Board) Count(side Side) int {
	return b.Discs(side).Count()
}

// LoadGrid replaces the position with g. No legality checks are made.
func (b *Board) LoadGrid(g Grid) {
	b.occupied, b.black = 0, 0
	for i, sq := range g {
		bit := Bitboard(1) << uint(i)
		switch sq {
		case BlackDisc:
			b.occupied |= bit
			b.black |= bit
		case WhiteDisc:
			b.occupied |= bit
		}
	}
}

// Grid returns the position cell by cell.
func (b Board) Grid() Grid {
	var g Grid
	for i := range g {
		g[i] = b.At(i%move.BoardDim, i/move.BoardDim)
	}
	return g
}

// Signature hashes the position together with the side to move. Two boards
// with the same signature are, barring a 64-bit collision, the same game
// state.
func (b Board) Signature(toMove Side) uint64 {
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(b.occupied))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(b.black))
	buf[16] = byte(toMove)
	return xxhash.Sum64(buf[:])
}

// ToDisplayText renders the board with a1..h8 coordinates. Cells in marks
// are shown as '*' when empty.
func (b Board) ToDisplayText(marks Bitboard) string {
	var sb strings.Builder
	sb.WriteString("   a b c d e f g h\n")
	for y := 0; y < move.BoardDim; y++ {
		fmt.Fprintf(&sb, "%2d ", y+1)
		for x := 0; x < move.BoardDim; x++ {
			sq := b.At(x, y)
			c := sq.Char()
			if sq == Empty && marks&(1<<uint(x+8*y)) != 0 {
				c = '*'
			}
			sb.WriteByte(c)
			if x < move.BoardDim-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "black %d  white %d\n", b.Count(Black), b.Count(White))
	return sb.String()
}

func (b Board) String() string {
	return b.ToDisplayText(0)
}
