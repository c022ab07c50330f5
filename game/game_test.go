package game

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/testhelpers"
)

func mv(t *testing.T, s string) move.Move {
	t.Helper()
	m, err := move.FromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestPlayAndUndo(t *testing.T) {
	is := is.New(t)
	g := New()
	is.Equal(g.OnTurn(), board.Black)
	is.Equal(g.Playing(), PlayStatePlaying)
	is.Equal(len(g.LegalMoves()), 4)
	is.True(g.Uid() != "")

	is.NoErr(g.PlayMove(mv(t, "f5")))
	is.Equal(g.OnTurn(), board.White)
	black, white := g.Score()
	is.Equal(black, 4)
	is.Equal(white, 1)
	is.Equal(g.LastMove(), mv(t, "f5"))

	is.NoErr(g.PlayMove(mv(t, "d6")))
	is.Equal(g.Turn(), 2)
	is.Equal(g.RecordString(10), "1.X f5 2.O d6\n")

	is.NoErr(g.Undo())
	is.NoErr(g.Undo())
	is.Equal(g.Board(), board.New())
	is.Equal(g.OnTurn(), board.Black)
	is.True(errors.Is(g.Undo(), ErrNoHistory))
}

func TestRejectsIllegalMoves(t *testing.T) {
	is := is.New(t)
	g := New()
	is.True(errors.Is(g.PlayMove(mv(t, "a1")), ErrIllegalMove))
	is.True(errors.Is(g.PlayMove(move.Pass), ErrIllegalMove))
	// legal for white, not for black
	is.True(errors.Is(g.PlayMove(mv(t, "e3")), ErrIllegalMove))
	is.Equal(g.Board(), board.New())
	is.Equal(g.Turn(), 0)
}

func TestPassAndGameOver(t *testing.T) {
	is := is.New(t)
	var b board.Board
	is.NoErr(b.Place(board.Black, 0, 0))
	is.NoErr(b.Place(board.White, 1, 0))
	is.NoErr(b.Place(board.White, 7, 7))
	g := FromPosition(b, board.White)
	// white cannot outflank the corner disc
	is.Equal(g.LegalMoves(), []move.Move{move.Pass})
	is.NoErr(g.PlayMove(move.Pass))
	is.NoErr(g.PlayMove(mv(t, "c1")))
	is.Equal(g.Playing(), PlayStateGameOver)
	is.Equal(len(g.LegalMoves()), 0)
	w, ok := g.Winner()
	is.True(ok)
	is.Equal(w, board.Black)
	is.Equal(g.SpreadFor(board.Black), 2)
	is.True(errors.Is(g.PlayMove(move.Pass), ErrGameOver))

	is.NoErr(g.Undo())
	is.Equal(g.Playing(), PlayStatePlaying)
	is.Equal(g.OnTurn(), board.Black)
	g.Reset()
	is.Equal(g.Board(), b)
	is.Equal(g.OnTurn(), board.White)
}

func TestDrawHasNoWinner(t *testing.T) {
	is := is.New(t)
	var b board.Board
	is.NoErr(b.Place(board.Black, 0, 0))
	is.NoErr(b.Place(board.White, 7, 7))
	g := FromPosition(b, board.Black)
	is.Equal(g.Playing(), PlayStateGameOver)
	_, ok := g.Winner()
	is.True(!ok)
}

func TestRandomGamesEnd(t *testing.T) {
	is := is.New(t)
	rng := testhelpers.NewRNG(41)
	for i := 0; i < 30; i++ {
		g := New()
		for g.Playing() == PlayStatePlaying {
			moves := g.LegalMoves()
			is.NoErr(g.PlayMove(moves[rng.Intn(len(moves))]))
		}
		is.True(g.Board().IsTerminal())
		black, white := g.Score()
		is.Equal(black+white, g.Board().Occupied().Count())
		for g.Turn() > 0 {
			is.NoErr(g.Undo())
		}
		is.Equal(g.Board(), board.New())
	}
}
