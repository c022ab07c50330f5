// Package game is the referee: it owns the authoritative board, accepts
// only legal moves, tracks whose turn it is and knows when the game ends.
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
	ErrNoHistory   = errors.New("no moves to undo")
)

type PlayState int

const (
	PlayStatePlaying PlayState = iota
	PlayStateGameOver
)

func (p PlayState) String() string {
	if p == PlayStateGameOver {
		return "game over"
	}
	return "playing"
}

// Turn is one entry of the game record.
type Turn struct {
	Side    board.Side
	Move    move.Move
	Flipped board.Bitboard
}

type Game struct {
	uid       string
	board     board.Board
	onturn    board.Side
	playState PlayState
	history   []Turn
	// start of the record, restored by Undo
	startBoard board.Board
	startSide  board.Side
}

// New starts a game from the standard opening, black to move.
func New() *Game {
	return FromPosition(board.New(), board.Black)
}

// FromPosition starts a game from an arbitrary position.
func FromPosition(b board.Board, toMove board.Side) *Game {
	g := &Game{
		uid:        uuid.NewString(),
		board:      b,
		onturn:     toMove,
		startBoard: b,
		startSide:  toMove,
	}
	g.updatePlayState()
	return g
}

func (g *Game) updatePlayState() {
	if g.board.IsTerminal() {
		g.playState = PlayStateGameOver
	} else {
		g.playState = PlayStatePlaying
	}
}

// PlayMove validates and plays m for the side on turn. A pass is only
// accepted when that side has no cell move.
func (g *Game) PlayMove(m move.Move) error {
	if g.playState == PlayStateGameOver {
		return ErrGameOver
	}
	if !g.board.LegalMove(m, g.onturn) {
		return fmt.Errorf("%w: %s for %s", ErrIllegalMove, m, g.onturn)
	}
	flipped := g.board.Apply(m, g.onturn)
	g.history = append(g.history, Turn{Side: g.onturn, Move: m, Flipped: flipped})
	g.onturn = g.onturn.Opposite()
	g.updatePlayState()
	if g.playState == PlayStateGameOver {
		black, white := g.Score()
		log.Debug().Str("gid", g.uid).Int("black", black).Int("white", white).
			Int("turns", len(g.history)).Msg("game-over")
	}
	return nil
}

// Undo takes back the last move.
func (g *Game) Undo() error {
	if len(g.history) == 0 {
		return ErrNoHistory
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.board.Unapply(last.Move, last.Side, last.Flipped)
	g.onturn = last.Side
	g.updatePlayState()
	return nil
}

// Reset goes back to the position the game started from.
func (g *Game) Reset() {
	g.board = g.startBoard
	g.onturn = g.startSide
	g.history = nil
	g.updatePlayState()
}

func (g *Game) Uid() string {
	return g.uid
}

func (g *Game) Board() board.Board {
	return g.board
}

func (g *Game) OnTurn() board.Side {
	return g.onturn
}

func (g *Game) Playing() PlayState {
	return g.playState
}

// LegalMoves lists the moves for the side on turn; a lone pass when it has
// no cell move, nothing once the game is over.
func (g *Game) LegalMoves() []move.Move {
	if g.playState == PlayStateGameOver {
		return nil
	}
	moves := g.board.Moves(g.onturn)
	if len(moves) == 0 {
		return []move.Move{move.Pass}
	}
	return moves
}

// Score returns the disc counts.
func (g *Game) Score() (black, white int) {
	return g.board.Count(board.Black), g.board.Count(board.White)
}

// SpreadFor is side's disc lead over its opponent.
func (g *Game) SpreadFor(side board.Side) int {
	return g.board.Count(side) - g.board.Count(side.Opposite())
}

// Winner returns the side with more discs once the game is over. ok is
// false while the game goes on and for a draw.
func (g *Game) Winner() (winner board.Side, ok bool) {
	if g.playState != PlayStateGameOver {
		return board.Black, false
	}
	switch spread := g.SpreadFor(board.Black); {
	case spread > 0:
		return board.Black, true
	case spread < 0:
		return board.White, true
	}
	return board.Black, false
}

// History returns a copy of the game record.
func (g *Game) History() []Turn {
	return append([]Turn(nil), g.history...)
}

// LastMove is the move played on the previous turn, or a pass at the start.
func (g *Game) LastMove() move.Move {
	if len(g.history) == 0 {
		return move.Pass
	}
	return g.history[len(g.history)-1].Move
}

func (g *Game) Turn() int {
	return len(g.history)
}
