package player

import (
	"context"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func quickConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigPrewarmDepth, 0)
	cfg.Set(config.ConfigSearchDepth, 2)
	return cfg
}

func mv(t *testing.T, s string) move.Move {
	t.Helper()
	m, err := move.FromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestOpeningBaseline(t *testing.T) {
	is := is.New(t)
	p := New(quickConfig(), board.Black)
	p.SetTestingMode()
	m := p.ComputeMove(context.Background(), move.Pass, Unlimited)
	// All four openings tie at depth 2; the highest cell index wins.
	is.Equal(m, mv(t, "e6"))
	is.True(p.Board().ColorAt(board.Black, 4, 5))
	is.Equal(p.Board().Count(board.Black), 4)
	is.Equal(p.Board().Count(board.White), 1)
}

func TestOpeningBaselineWeighted(t *testing.T) {
	is := is.New(t)
	p := New(quickConfig(), board.Black)
	m := p.ComputeMove(context.Background(), move.Pass, Unlimited)
	is.Equal(m, mv(t, "e6"))
}

func TestOpeningIsOneOfFour(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigPrewarmDepth, 2)
	p := New(cfg, board.Black)
	opening := board.New().GenerateMoves(board.Black)
	m := p.ComputeMove(context.Background(), move.Pass, 2000)
	is.True(opening.Has(m))
	is.Equal(p.Board().Count(board.Black), 4)
}

func TestRepliesToOpponent(t *testing.T) {
	is := is.New(t)
	p := New(quickConfig(), board.White)
	m := p.ComputeMove(context.Background(), mv(t, "d3"), Unlimited)
	is.True(!m.IsPass())
	b := p.Board()
	is.True(b.ColorAt(board.Black, 3, 2))
	is.True(b.ColorAt(board.White, m.X(), m.Y()))
	// The second move of a game always flips exactly one disc.
	is.Equal(b.Count(board.Black), 3)
	is.Equal(b.Count(board.White), 3)
}

func TestIgnoresIllegalOpponentMove(t *testing.T) {
	is := is.New(t)
	p := New(quickConfig(), board.White)
	m := p.ComputeMove(context.Background(), mv(t, "a1"), Unlimited)
	is.True(board.New().LegalMove(m, board.White))
	is.Equal(p.Board().Count(board.White), 4)
	is.Equal(p.Board().Count(board.Black), 1)
}

func TestPassWhenStuck(t *testing.T) {
	is := is.New(t)
	var g board.Grid
	g[0] = board.BlackDisc
	g[1] = board.WhiteDisc
	p := New(quickConfig(), board.White)
	p.LoadPosition(g)
	before := p.Board()
	m := p.ComputeMove(context.Background(), move.Pass, 5000)
	is.Equal(m, move.Pass)
	is.Equal(p.Board(), before)
}

func TestLoadPositionRoundTrip(t *testing.T) {
	is := is.New(t)
	var g board.Grid
	for i := range g {
		g[i] = board.Square((i * 7) % 3)
	}
	p := New(quickConfig(), board.Black)
	p.LoadPosition(g)
	b := p.Board()
	for i, sq := range g {
		x, y := i%8, i/8
		is.Equal(b.IsOccupied(x, y), sq != board.Empty)
		is.Equal(b.ColorAt(board.Black, x, y), sq == board.BlackDisc)
		is.Equal(b.ColorAt(board.White, x, y), sq == board.WhiteDisc)
	}
}

func TestSelfPlayStaysLegal(t *testing.T) {
	is := is.New(t)
	cfg := quickConfig()
	black := New(cfg, board.Black)
	white := New(cfg, board.White)
	black.SetEvaluator(equity.DiscDifferential{})

	ref := board.New()
	last := move.Pass
	onTurn := board.Black
	passes := 0
	for passes < 2 {
		p := black
		if onTurn == board.White {
			p = white
		}
		m := p.ComputeMove(context.Background(), last, Unlimited)
		is.True(ref.LegalMove(m, onTurn))
		ref.Apply(m, onTurn)
		is.Equal(p.Board(), ref)
		if m.IsPass() {
			passes++
		} else {
			passes = 0
		}
		last = m
		onTurn = onTurn.Opposite()
	}
	is.True(ref.IsTerminal())
}

func TestResetKeepsCache(t *testing.T) {
	is := is.New(t)
	p := New(quickConfig(), board.Black)
	p.ComputeMove(context.Background(), move.Pass, Unlimited)
	cached := p.Solver().TranspositionCache().Len()
	is.True(cached > 0)

	p.Reset(board.White, board.New().Grid())
	is.Equal(p.Side(), board.White)
	is.Equal(p.Board(), board.New())
	is.Equal(p.Solver().TranspositionCache().Len(), cached)

	m := p.ComputeMove(context.Background(), mv(t, "f5"), Unlimited)
	is.True(!m.IsPass())
	is.True(p.Board().ColorAt(board.White, m.X(), m.Y()))
}
