package equity

import (
	"github.com/domino14/othello/board"
)

const (
	DefaultEdgeWeight   = 2
	DefaultCornerWeight = 8
	// DefaultXSquareWeight is a quarter of the corner weight, negated.
	DefaultXSquareWeight = -DefaultCornerWeight / 4
)

const (
	// RimMask is the 28 cells of the outer ring, corners included.
	RimMask board.Bitboard = 0xff818181818181ff
	// CornerMask is a1, h1, a8, h8.
	CornerMask board.Bitboard = 0x8100000000000081
	// XSquareMask is the 12 cells touching a corner orthogonally or
	// diagonally. Holding one tends to hand that corner to the opponent.
	XSquareMask board.Bitboard = 0x42c300000000c342
)

// Weights are the multipliers of the positional terms. Discs always count
// with weight 1.
type Weights struct {
	Edge    int
	Corner  int
	XSquare int
}

func DefaultWeights() Weights {
	return Weights{
		Edge:    DefaultEdgeWeight,
		Corner:  DefaultCornerWeight,
		XSquare: DefaultXSquareWeight,
	}
}

// WeightedEvaluator adds rim, corner and X-square differentials to the
// disc differential.
type WeightedEvaluator struct {
	Weights Weights
}

func NewWeightedEvaluator(w Weights) *WeightedEvaluator {
	return &WeightedEvaluator{Weights: w}
}

func (e *WeightedEvaluator) Score(b board.Board, perspective board.Side) int {
	own := b.Discs(perspective)
	opp := b.Discs(perspective.Opposite())
	if s, ok := wipeout(own, opp); ok {
		return s
	}
	diff := func(mask board.Bitboard) int {
		return (own & mask).Count() - (opp & mask).Count()
	}
	return diff(board.Full) +
		e.Weights.Edge*diff(RimMask) +
		e.Weights.Corner*diff(CornerMask) +
		e.Weights.XSquare*diff(XSquareMask)
}

// MaxHeuristic bounds the absolute value of any non-terminal score with
// these weights.
func (e *WeightedEvaluator) MaxHeuristic() int {
	abs := func(x int) int {
		if x < 0 {
			return -x
		}
		return x
	}
	return 64 + abs(e.Weights.Edge)*RimMask.Count() +
		abs(e.Weights.Corner)*CornerMask.Count() +
		abs(e.Weights.XSquare)*XSquareMask.Count()
}
