package equity

import "github.com/domino14/othello/board"

// DiscDifferential scores a position by disc count alone. It is the
// evaluator used for reproducible baseline tests.
type DiscDifferential struct{}

func (DiscDifferential) Score(b board.Board, perspective board.Side) int {
	own := b.Discs(perspective)
	opp := b.Discs(perspective.Opposite())
	if s, ok := wipeout(own, opp); ok {
		return s
	}
	return own.Count() - opp.Count()
}
