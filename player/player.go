// Package player is the engine facade a match harness talks to: it keeps
// the game board, applies the opponent's moves and answers with its own.
package player

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/search"
)

// Unlimited as the time left means no clock: search to the fixed depth.
const Unlimited = -1

const (
	// A timed search is cut off hard after this share of the time left,
	// whatever the iterative deepening slice says.
	hardBudgetDivisor = 4
	prewarmTimeout    = 5 * time.Second
)

type Player struct {
	side       board.Side
	board      board.Board
	solver     *search.Solver
	fixedDepth int
}

// EvaluatorFromConfig builds the weighted evaluator from the configured
// weights.
func EvaluatorFromConfig(cfg *config.Config) *equity.WeightedEvaluator {
	return equity.NewWeightedEvaluator(equity.Weights{
		Edge:    cfg.GetInt(config.ConfigEdgeWeight),
		Corner:  cfg.GetInt(config.ConfigCornerWeight),
		XSquare: cfg.GetInt(config.ConfigXSquareWeight),
	})
}

// NewSolver builds a solver with the configured evaluator, cache size,
// depth limits and time fraction.
func NewSolver(cfg *config.Config) *search.Solver {
	capacity := cfg.GetInt(config.ConfigTTCapacity)
	if frac := cfg.GetFloat64(config.ConfigTTFractionOfMem); frac > 0 {
		capacity = search.CapacityFromMemory(frac)
	}
	solver := search.NewSolver(EvaluatorFromConfig(cfg), search.NewTranspositionCache(capacity))
	solver.SetDepthLimits(cfg.GetInt(config.ConfigIDBaseDepth), cfg.GetInt(config.ConfigMaxSearchDepth))
	solver.SetTimeFraction(cfg.GetFloat64(config.ConfigTimeFraction))
	return solver
}

// New creates an engine playing side from the standard start position.
// It pre-warms the transposition cache, bounded by a startup timeout.
func New(cfg *config.Config, side board.Side) *Player {
	solver := NewSolver(cfg)
	p := &Player{
		side:       side,
		board:      board.New(),
		solver:     solver,
		fixedDepth: cfg.GetInt(config.ConfigSearchDepth),
	}

	if depth := cfg.GetInt(config.ConfigPrewarmDepth); depth > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), prewarmTimeout)
		defer cancel()
		if err := solver.Prewarm(ctx, depth); err != nil {
			log.Err(err).Int("depth", depth).Msg("prewarm-cut-short")
		}
	}
	return p
}

// ComputeMove applies the opponent's move, if any, then searches, applies
// and returns this engine's reply. move.Pass as opp means the opponent
// passed or there is nothing to report. msLeft > 0 is the time left on
// this side's clock in milliseconds; anything else searches to the fixed
// depth. The returned move is legal on the board it was played on, or a
// pass when there is none.
func (p *Player) ComputeMove(ctx context.Context, opp move.Move, msLeft int) move.Move {
	if !opp.IsPass() {
		if p.board.Apply(opp, p.side.Opposite()) == 0 {
			log.Warn().Str("move", opp.String()).Msg("ignoring-illegal-opponent-move")
		}
	}
	p.solver.SetPosition(p.board, p.side)
	res := Search(ctx, p.solver, p.fixedDepth, msLeft)

	if !res.Move.IsPass() && p.board.Apply(res.Move, p.side) == 0 {
		// The solver only returns generated moves; this is a bug.
		log.Error().Str("move", res.Move.String()).Msg("search-returned-illegal-move")
		return move.Pass
	}
	log.Debug().Str("move", res.Move.String()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Msg("computed-move")
	return res.Move
}

// Search runs solver from its current position. With msLeft > 0 it
// deepens iteratively on a clock of msLeft milliseconds, cut off hard at
// a quarter of it; otherwise it searches to depth. An interrupted search
// falls back to depth 1.
func Search(ctx context.Context, solver *search.Solver, depth, msLeft int) search.Result {
	var res search.Result
	var err error
	if msLeft > 0 {
		budget := time.Duration(msLeft) * time.Millisecond
		tctx, cancel := context.WithTimeout(ctx, budget/hardBudgetDivisor)
		res, err = solver.IterativelyDeepen(tctx, budget)
		cancel()
	} else {
		res, err = solver.FindBestMove(ctx, depth)
	}
	if err != nil {
		log.Err(err).Msg("search-interrupted-falling-back")
		res, _ = solver.FindBestMove(context.WithoutCancel(ctx), 1)
	}
	return res
}

// LoadPosition replaces the board with g without any legality checks.
// It exists for tests and analysis.
func (p *Player) LoadPosition(g board.Grid) {
	p.board.LoadGrid(g)
}

// Reset starts a new game on g, playing side. The cache is kept; its
// keys hold the whole position and side to move.
func (p *Player) Reset(side board.Side, g board.Grid) {
	p.side = side
	p.board.LoadGrid(g)
}

func (p *Player) Board() board.Board {
	return p.board
}

func (p *Player) Side() board.Side {
	return p.side
}

func (p *Player) Solver() *search.Solver {
	return p.solver
}

// SetEvaluator swaps the static evaluator, clearing the cache.
func (p *Player) SetEvaluator(e equity.Evaluator) {
	p.solver.SetEvaluator(e)
}

// SetFixedDepth sets the depth searched when there is no clock.
func (p *Player) SetFixedDepth(depth int) {
	p.fixedDepth = depth
}

// SetTestingMode makes the engine reproducible and fast: disc count only,
// fixed depth 2.
func (p *Player) SetTestingMode() {
	p.SetEvaluator(equity.DiscDifferential{})
	p.SetFixedDepth(2)
}
