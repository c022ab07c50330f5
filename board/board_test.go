package board

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/othello/move"
)

func mustMove(t *testing.T, x, y int) move.Move {
	t.Helper()
	m, err := move.New(x, y)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestInitialPosition(t *testing.T) {
	is := is.New(t)
	b := New()
	is.True(b.ColorAt(White, 3, 3))
	is.True(b.ColorAt(White, 4, 4))
	is.True(b.ColorAt(Black, 4, 3))
	is.True(b.ColorAt(Black, 3, 4))
	is.Equal(b.Count(Black), 2)
	is.Equal(b.Count(White), 2)
	is.Equal(b.Occupied().Count(), 4)
	is.True(!b.IsOccupied(0, 0))
}

func TestInitialMoves(t *testing.T) {
	is := is.New(t)
	b := New()

	black := b.Moves(Black)
	is.Equal(len(black), 4)
	for i, c := range [][2]int{{3, 2}, {2, 3}, {5, 4}, {4, 5}} {
		is.Equal(black[i], mustMove(t, c[0], c[1]))
	}

	white := b.Moves(White)
	is.Equal(len(white), 4)
	for i, c := range [][2]int{{4, 2}, {5, 3}, {2, 4}, {3, 5}} {
		is.Equal(white[i], mustMove(t, c[0], c[1]))
	}
}

func TestApplyFlips(t *testing.T) {
	is := is.New(t)
	b := New()
	m := mustMove(t, 2, 3)
	is.True(b.LegalMove(m, Black))
	flipped := b.Apply(m, Black)
	is.Equal(flipped.Squares(), []move.Move{mustMove(t, 3, 3)})
	is.True(b.ColorAt(Black, 2, 3))
	is.True(b.ColorAt(Black, 3, 3))
	is.Equal(b.Count(Black), 4)
	is.Equal(b.Count(White), 1)
}

func TestApplyIllegalIsNoop(t *testing.T) {
	is := is.New(t)
	b := New()
	before := b
	// Occupied target.
	is.Equal(b.Apply(mustMove(t, 3, 3), Black), Bitboard(0))
	// Empty but captures nothing.
	is.Equal(b.Apply(mustMove(t, 0, 0), Black), Bitboard(0))
	// Legal for the other side only.
	is.Equal(b.Apply(mustMove(t, 4, 2), Black), Bitboard(0))
	is.Equal(b.Apply(move.Pass, Black), Bitboard(0))
	is.Equal(b, before)
}

func TestApplyMultipleDirections(t *testing.T) {
	is := is.New(t)
	var g Grid
	// Three white runs, east, south and south-east of (0,0), each capped
	// by a black disc.
	set := func(sq Square, x, y int) { g[x+8*y] = sq }
	set(WhiteDisc, 1, 0)
	set(WhiteDisc, 2, 0)
	set(BlackDisc, 3, 0)
	set(WhiteDisc, 0, 1)
	set(BlackDisc, 0, 2)
	set(WhiteDisc, 1, 1)
	set(WhiteDisc, 2, 2)
	set(BlackDisc, 3, 3)
	var b Board
	b.LoadGrid(g)

	flipped := b.Apply(mustMove(t, 0, 0), Black)
	is.Equal(flipped.Count(), 5)
	is.Equal(b.Count(White), 0)
	is.Equal(b.Count(Black), 9)
}

func TestApplyUnapplyRoundTrip(t *testing.T) {
	is := is.New(t)
	b := New()
	before := b
	m := mustMove(t, 4, 5)
	flipped := b.Apply(m, Black)
	is.True(flipped != 0)
	is.True(b != before)
	b.Unapply(m, Black, flipped)
	is.Equal(b, before)

	// And for white, after a black move.
	b.Apply(mustMove(t, 2, 3), Black)
	mid := b
	wm := b.Moves(White)[0]
	wf := b.Apply(wm, White)
	is.True(wf != 0)
	b.Unapply(wm, White, wf)
	is.Equal(b, mid)
}

func TestEdgeWrapEast(t *testing.T) {
	is := is.New(t)
	var b Board
	is.NoErr(b.Place(Black, 6, 2))
	is.NoErr(b.Place(White, 7, 2))
	// Without the file mask the run would continue into (0,3).
	is.Equal(b.GenerateMoves(Black), Bitboard(0))
	is.True(!b.LegalMove(mustMove(t, 0, 3), Black))
}

func TestEdgeWrapWest(t *testing.T) {
	is := is.New(t)
	var b Board
	is.NoErr(b.Place(Black, 1, 3))
	is.NoErr(b.Place(White, 0, 3))
	is.Equal(b.GenerateMoves(Black), Bitboard(0))
}

func TestEdgeWrapDiagonals(t *testing.T) {
	is := is.New(t)
	var b Board
	is.NoErr(b.Place(Black, 6, 6))
	is.NoErr(b.Place(White, 7, 5))
	is.NoErr(b.Place(Black, 1, 1))
	is.NoErr(b.Place(White, 0, 2))
	is.Equal(b.GenerateMoves(Black), Bitboard(0))
}

func TestLongestRun(t *testing.T) {
	is := is.New(t)
	var b Board
	is.NoErr(b.Place(Black, 0, 0))
	for x := 1; x <= 6; x++ {
		is.NoErr(b.Place(White, x, 0))
	}
	is.Equal(b.GenerateMoves(Black).Squares(), []move.Move{mustMove(t, 7, 0)})
	flipped := b.Apply(mustMove(t, 7, 0), Black)
	is.Equal(flipped.Count(), 6)
	is.Equal(b.Count(White), 0)
}

func TestPassLegality(t *testing.T) {
	is := is.New(t)
	b := New()
	is.True(!b.LegalMove(move.Pass, Black))

	var stuck Board
	is.NoErr(stuck.Place(Black, 0, 0))
	is.NoErr(stuck.Place(White, 7, 7))
	is.True(stuck.LegalMove(move.Pass, Black))
	is.True(stuck.LegalMove(move.Pass, White))
	is.True(stuck.IsTerminal())
}

func TestPlaceInvalidCoordinate(t *testing.T) {
	is := is.New(t)
	var b Board
	err := b.Place(Black, 8, 0)
	is.True(errors.Is(err, move.ErrInvalidCoordinate))
	is.Equal(b, Board{})
	is.True(!b.IsOccupied(-1, 3))
	is.True(!b.ColorAt(Black, 3, 9))
	is.Equal(b.At(10, 10), Empty)
}

func TestLoadGridRoundTrip(t *testing.T) {
	is := is.New(t)
	var g Grid
	for i := range g {
		g[i] = Square(i % 3)
	}
	var b Board
	b.LoadGrid(g)
	is.Equal(b.Grid(), g)
	for i, sq := range g {
		x, y := i%8, i/8
		is.Equal(b.IsOccupied(x, y), sq != Empty)
		is.Equal(b.ColorAt(Black, x, y), sq == BlackDisc)
		is.Equal(b.ColorAt(White, x, y), sq == WhiteDisc)
	}
}

func TestFromWordsKeepsInvariant(t *testing.T) {
	is := is.New(t)
	b := FromWords(0x0f, 0xff)
	occ, black := b.Words()
	is.Equal(occ, uint64(0x0f))
	is.Equal(black, uint64(0x0f))
}

func TestSignatureIncludesSide(t *testing.T) {
	is := is.New(t)
	b := New()
	is.True(b.Signature(Black) != b.Signature(White))
	is.Equal(b.Signature(Black), New().Signature(Black))
}

func TestShiftDropsOffBoard(t *testing.T) {
	is := is.New(t)
	corner := Bitboard(1) << 63
	is.Equal(South.Shift(corner), Bitboard(0))
	is.Equal(East.Shift(corner), Bitboard(0))
	is.Equal(SouthEast.Shift(corner), Bitboard(0))
	is.Equal(North.Shift(corner), Bitboard(1)<<55)
	is.Equal(West.Shift(corner), Bitboard(1)<<62)
	is.Equal(NorthWest.Shift(corner), Bitboard(1)<<54)
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	b := New()
	txt := b.ToDisplayText(b.GenerateMoves(Black))
	is.Equal(txt, "   a b c d e f g h\n"+
		" 1 - - - - - - - -\n"+
		" 2 - - - - - - - -\n"+
		" 3 - - - * - - - -\n"+
		" 4 - - * O X - - -\n"+
		" 5 - - - X O * - -\n"+
		" 6 - - - - * - - -\n"+
		" 7 - - - - - - - -\n"+
		" 8 - - - - - - - -\n"+
		"black 2  white 2\n")
}
