// Package move describes a single Othello action: placing a disc on one of
// the 64 cells, or passing.
package move

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BoardDim is the width and height of the board.
	BoardDim = 8
	// NumSquares is the number of cells on the board.
	NumSquares = BoardDim * BoardDim
)

var (
	ErrInvalidCoordinate = errors.New("coordinate is off the board")
	ErrBadNotation       = errors.New("could not parse move notation")
)

// Move is a cell index in [0, 64), where index = x + 8*y, or Pass.
// It fits in a byte so it can live inside a cache entry.
type Move int8

// Pass is the only legal action for a side with no cell move.
const Pass Move = -1

// New returns the move for cell (x, y).
func New(x, y int) (Move, error) {
	if !OnBoard(x, y) {
		return Pass, fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, x, y)
	}
	return Move(x + BoardDim*y), nil
}

// FromIndex returns the move for cell index i. It panics if i is off the
// board; callers iterate over known-good indices.
func FromIndex(i int) Move {
	if i < 0 || i >= NumSquares {
		panic(fmt.Sprintf("move index %d out of range", i))
	}
	return Move(i)
}

// OnBoard reports whether (x, y) is a cell.
func OnBoard(x, y int) bool {
	return 0 <= x && x < BoardDim && 0 <= y && y < BoardDim
}

func (m Move) IsPass() bool {
	return m == Pass
}

// Index returns the cell index. It is -1 for a pass.
func (m Move) Index() int {
	return int(m)
}

// X returns the column, 0-based.
func (m Move) X() int {
	return int(m) % BoardDim
}

// Y returns the row, 0-based.
func (m Move) Y() int {
	return int(m) / BoardDim
}

// Mask returns the single-bit set for this move's cell, or 0 for a pass.
func (m Move) Mask() uint64 {
	if m.IsPass() {
		return 0
	}
	return 1 << uint(m)
}

// String returns the conventional notation: column letter a-h for x,
// row number 1-8 for y.
func (m Move) String() string {
	if m.IsPass() {
		return "pass"
	}
	return fmt.Sprintf("%c%d", 'a'+m.X(), m.Y()+1)
}

// Coords returns "(x,y)", handy in logs and test failures.
func (m Move) Coords() string {
	if m.IsPass() {
		return "pass"
	}
	return fmt.Sprintf("(%d,%d)", m.X(), m.Y())
}

// FromString parses notation such as "c4", "C4" or "pass".
func FromString(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "pass" || s == "--" {
		return Pass, nil
	}
	if len(s) != 2 {
		return Pass, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}
	x := int(s[0]) - 'a'
	y := int(s[1]) - '1'
	m, err := New(x, y)
	if err != nil {
		return Pass, fmt.Errorf("%w: %q", ErrBadNotation, s)
	}
	return m, nil
}
