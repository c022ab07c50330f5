package player

import (
	"context"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

// TurnPlayer is what a game runner needs from an engine to play out a
// game: one reply per turn, and a view of the engine's own board.
type TurnPlayer interface {
	ComputeMove(ctx context.Context, opp move.Move, msLeft int) move.Move
	Side() board.Side
	Board() board.Board
}

var _ TurnPlayer = (*Player)(nil)
