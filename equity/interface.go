package equity

import (
	"github.com/domino14/othello/board"
)

// WinScore is returned for a position where one side has no discs left.
// It is far outside anything the heuristic terms can add up to, and small
// enough that search bounds never overflow around it.
const WinScore = 1 << 20

// Evaluator scores a position statically. The score is from perspective's
// point of view regardless of who is on turn, and must be antisymmetric:
// Score(b, s) == -Score(b, s.Opposite()). The search relies on this to
// run as negamax.
type Evaluator interface {
	Score(b board.Board, perspective board.Side) int
}

// wipeout applies the terminal override. ok is false when both sides
// still have discs and the heuristic should be computed.
func wipeout(own, opp board.Bitboard) (score int, ok bool) {
	switch {
	case own == 0 && opp == 0:
		return 0, true
	case opp == 0:
		return WinScore, true
	case own == 0:
		return -WinScore, true
	}
	return 0, false
}
