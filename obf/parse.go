// Package obf reads and writes positions in Othello board format: 64
// cells row-major from a1 ('X' black, 'O' white, '-' empty), a space and
// the side to move. An optional "; comment" may follow.
//
//	---------------------------OX------XO--------------------------- X
package obf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

var (
	ErrBadLength = errors.New("board field must have 64 cells")
	ErrBadSide   = errors.New("side to move must be X or O")
	ErrBadSquare = errors.New("cells must be X, O or -")
)

type Position struct {
	Board   board.Board
	ToMove  board.Side
	Comment string
}

// Parse reads a position. Cells are case-insensitive and '.' is accepted
// for an empty cell.
func Parse(s string) (Position, error) {
	var comment string
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		comment = strings.TrimSpace(s[idx+1:])
		s = s[:idx]
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Position{}, errors.New("must have 2 space-separated fields")
	}
	if len(fields[0]) != move.NumSquares {
		return Position{}, fmt.Errorf("%w: got %d", ErrBadLength, len(fields[0]))
	}
	var g board.Grid
	for i, c := range []byte(fields[0]) {
		switch c {
		case 'X', 'x', '*':
			g[i] = board.BlackDisc
		case 'O', 'o':
			g[i] = board.WhiteDisc
		case '-', '.':
			g[i] = board.Empty
		default:
			return Position{}, fmt.Errorf("%w: %q at %s", ErrBadSquare, c, move.FromIndex(i))
		}
	}
	var toMove board.Side
	switch fields[1] {
	case "X", "x":
		toMove = board.Black
	case "O", "o":
		toMove = board.White
	default:
		return Position{}, fmt.Errorf("%w: %q", ErrBadSide, fields[1])
	}
	var b board.Board
	b.LoadGrid(g)
	return Position{Board: b, ToMove: toMove, Comment: comment}, nil
}

func (p Position) String() string {
	var sb strings.Builder
	for _, sq := range p.Board.Grid() {
		sb.WriteByte(sq.Char())
	}
	sb.WriteByte(' ')
	sb.WriteByte(p.ToMove.Symbol())
	if p.Comment != "" {
		sb.WriteString(" ; ")
		sb.WriteString(p.Comment)
	}
	return sb.String()
}

// Start is the standard opening position with black to move.
func Start() Position {
	return Position{Board: board.New(), ToMove: board.Black}
}
