// Package search picks moves with a depth-limited negamax alpha-beta
// search over the bitboard, backed by a transposition cache, with
// time-budgeted iterative deepening on top.
package search

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
**/

// Infinity is above any score an evaluator can return.
const Infinity = equity.WinScore + 1

const (
	DefaultBaseDepth    = 2
	DefaultMaxDepth     = 60
	DefaultTimeFraction = 0.05
	// nodes between checks of the context
	ctxPollMask = 1024 - 1
)

// Result is the outcome of one root search.
type Result struct {
	Move    move.Move
	Score   int
	Depth   int
	Nodes   uint64
	PV      PVLine
	Elapsed time.Duration
}

type Solver struct {
	// position is the root; work is the board negamax makes and unmakes
	// moves on.
	position board.Board
	toMove   board.Side
	work     board.Board

	eval   equity.Evaluator
	ttable *TranspositionCache
	nodes  atomic.Uint64

	baseDepth    int
	maxDepth     int
	timeFraction float64

	principalVariation PVLine
	logStream          io.Writer
}

func NewSolver(eval equity.Evaluator, tt *TranspositionCache) *Solver {
	if tt == nil {
		tt = NewTranspositionCache(DefaultTTCapacity)
	}
	return &Solver{
		position:     board.New(),
		toMove:       board.Black,
		eval:         eval,
		ttable:       tt,
		baseDepth:    DefaultBaseDepth,
		maxDepth:     DefaultMaxDepth,
		timeFraction: DefaultTimeFraction,
	}
}

// SetPosition sets the root to search from.
func (s *Solver) SetPosition(b board.Board, toMove board.Side) {
	s.position = b
	s.toMove = toMove
}

func (s *Solver) Position() (board.Board, board.Side) {
	return s.position, s.toMove
}

// SetEvaluator swaps the static evaluator. Cached scores were computed
// with the old one, so the cache is reset.
func (s *Solver) SetEvaluator(e equity.Evaluator) {
	s.eval = e
	s.ttable.Reset()
}

func (s *Solver) Evaluator() equity.Evaluator {
	return s.eval
}

// SetDepthLimits sets the first and the deepest depth iterative deepening
// will search.
func (s *Solver) SetDepthLimits(base, maxDepth int) {
	s.baseDepth = max(base, 1)
	s.maxDepth = max(maxDepth, s.baseDepth)
}

// SetTimeFraction sets the share of the remaining time budget that one
// call to IterativelyDeepen may spend.
func (s *Solver) SetTimeFraction(f float64) {
	s.timeFraction = f
}

// SetLogStream makes iterative deepening write one YAML document per
// completed depth to w. A nil w turns it off.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

func (s *Solver) TranspositionCache() *TranspositionCache {
	return s.ttable
}

func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

func (s *Solver) PrincipalVariation() PVLine {
	return s.principalVariation
}

// FindBestMove searches the root to a fixed depth. The move is the last,
// in increasing cell order, of those with the best score. If the side to
// move has no cell move the result is a pass with the static score. It
// returns the context's error if cancelled mid-search.
func (s *Solver) FindBestMove(ctx context.Context, depth int) (Result, error) {
	tstart := time.Now()
	s.work = s.position
	depth = min(max(depth, 1), max(s.work.Empties().Count(), 1))
	nodesBefore := s.nodes.Load()

	moves := s.work.Moves(s.toMove)
	if len(moves) == 0 {
		return Result{
			Move:    move.Pass,
			Score:   s.eval.Score(s.work, s.toMove),
			Depth:   depth,
			Elapsed: time.Since(tstart),
		}, nil
	}

	opp := s.toMove.Opposite()
	α, β := -Infinity, Infinity
	bestValue := -Infinity
	bestMove := move.Pass
	var pv, childPV PVLine
	for _, m := range moves {
		flipped := s.work.Apply(m, s.toMove)
		// One below α, so a child that ties the best so far is scored
		// exactly and the tie goes to the later move.
		value, err := s.negamax(ctx, depth-1, -β, -(α - 1), opp, &childPV)
		s.work.Unapply(m, s.toMove, flipped)
		if err != nil {
			return Result{}, err
		}
		value = -value
		log.Trace().Str("move", m.String()).Int("value", value).Msg("root-child")
		if value >= bestValue {
			bestValue = value
			bestMove = m
			pv.Update(m, childPV, value)
		}
		α = max(α, bestValue)
		childPV.Clear()
	}
	s.principalVariation = pv.copy()
	return Result{
		Move:    bestMove,
		Score:   bestValue,
		Depth:   depth,
		Nodes:   s.nodes.Load() - nodesBefore,
		PV:      s.principalVariation,
		Elapsed: time.Since(tstart),
	}, nil
}

// negamax returns the value of the work board for toMove, fail-soft
// within (α, β).
func (s *Solver) negamax(ctx context.Context, depth int, α, β int, toMove board.Side, pv *PVLine) (int, error) {
	if s.nodes.Add(1)&ctxPollMask == 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	key := makeKey(s.work, toMove, depth)
	alphaOrig := α
	if e, ok := s.ttable.Lookup(key); ok {
		score := int(e.Score)
		switch e.Flag {
		case TTExact:
			return score, nil
		case TTLower:
			α = max(α, score)
		case TTUpper:
			β = min(β, score)
		}
		if α >= β {
			return score, nil
		}
	}

	if depth == 0 {
		return s.leaf(key, toMove), nil
	}
	moves := s.work.GenerateMoves(toMove)
	if moves.IsEmpty() {
		if !s.work.HasAnyMove(toMove.Opposite()) {
			return s.leaf(key, toMove), nil
		}
		// Forced pass: same depth, other side on turn.
		var childPV PVLine
		value, err := s.negamax(ctx, depth, -β, -α, toMove.Opposite(), &childPV)
		if err != nil {
			return 0, err
		}
		pv.Update(move.Pass, childPV, -value)
		return -value, nil
	}

	bestValue := -Infinity
	var childPV PVLine
	for !moves.IsEmpty() {
		m := moves.First()
		moves &^= board.Bitboard(m.Mask())
		flipped := s.work.Apply(m, toMove)
		value, err := s.negamax(ctx, depth-1, -β, -α, toMove.Opposite(), &childPV)
		s.work.Unapply(m, toMove, flipped)
		if err != nil {
			return 0, err
		}
		if -value > bestValue {
			bestValue = -value
			pv.Update(m, childPV, bestValue)
		}
		α = max(α, bestValue)
		if bestValue >= β {
			break // beta cut-off
		}
		childPV.Clear()
	}

	var flag uint8
	switch {
	case bestValue <= alphaOrig:
		flag = TTUpper
	case bestValue >= β:
		flag = TTLower
	default:
		flag = TTExact
	}
	s.ttable.Store(key, Entry{Score: int32(bestValue), Flag: flag})
	return bestValue, nil
}

func (s *Solver) leaf(key Key, toMove board.Side) int {
	v := s.eval.Score(s.work, toMove)
	s.ttable.Store(key, Entry{Score: int32(v), Flag: TTExact})
	return v
}

type iterationLog struct {
	Depth     int      `yaml:"depth"`
	Move      string   `yaml:"move"`
	Score     int      `yaml:"score"`
	Nodes     uint64   `yaml:"nodes"`
	ElapsedMS int64    `yaml:"elapsed_ms"`
	PV        []string `yaml:"pv"`
}

// IterativelyDeepen searches at the base depth, then one deeper at a time
// while less than budget × time fraction has elapsed, and returns the
// deepest completed result. The base depth always runs to completion. A
// deeper search is abandoned if ctx is done, and its partial result is
// discarded.
func (s *Solver) IterativelyDeepen(ctx context.Context, budget time.Duration) (Result, error) {
	tstart := time.Now()
	slice := time.Duration(float64(budget) * s.timeFraction)
	deepest := min(s.maxDepth, max(s.position.Empties().Count(), 1))
	base := min(s.baseDepth, deepest)
	s.nodes.Store(0)

	g := &errgroup.Group{}
	done := make(chan bool)
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	var best Result
	g.Go(func() error {
		defer close(done)
		var err error
		log.Info().Int("plies", base).Msg("deepening-iteratively")
		best, err = s.FindBestMove(context.WithoutCancel(ctx), base)
		if err != nil {
			return err
		}
		s.logIteration(best)
		if best.Move.IsPass() {
			return nil
		}
		for p := base + 1; p <= deepest; p++ {
			if time.Since(tstart) >= slice || ctx.Err() != nil {
				break
			}
			log.Info().Int("plies", p).Msg("deepening-iteratively")
			res, err := s.FindBestMove(ctx, p)
			if err != nil {
				log.Debug().Err(err).Int("plies", p).Msg("iteration-abandoned")
				break
			}
			best = res
			s.logIteration(best)
		}
		return nil
	})

	err := g.Wait()
	stats := s.ttable.Stats()
	log.Info().
		Str("move", best.Move.String()).
		Int("depth", best.Depth).
		Uint64("nodes", s.nodes.Load()).
		Uint64("ttable-created", stats.Created).
		Uint64("ttable-lookups", stats.Lookups).
		Uint64("ttable-hits", stats.Hits).
		Uint64("ttable-evictions", stats.Evictions).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	best.Elapsed = time.Since(tstart)
	best.Nodes = s.nodes.Load()
	return best, err
}

func (s *Solver) logIteration(r Result) {
	log.Info().Int("score", r.Score).Int("ply", r.Depth).Str("pv", r.PV.NLBString()).Msg("best-val")
	if s.logStream == nil {
		return
	}
	out, err := yaml.Marshal(iterationLog{
		Depth:     r.Depth,
		Move:      r.Move.String(),
		Score:     r.Score,
		Nodes:     r.Nodes,
		ElapsedMS: r.Elapsed.Milliseconds(),
		PV:        r.PV.Notation(),
	})
	if err == nil {
		_, err = fmt.Fprintf(s.logStream, "---\n%s", out)
	}
	if err != nil {
		log.Err(err).Msg("log-stream-write")
	}
}

// Prewarm fills the cache with fixed-depth searches of the opening: the
// start position and every position after Black's first move, at each
// depth up to depth. The solver's root is restored afterwards.
func (s *Solver) Prewarm(ctx context.Context, depth int) error {
	if depth <= 0 {
		return nil
	}
	tstart := time.Now()
	savedPos, savedSide := s.position, s.toMove
	defer s.SetPosition(savedPos, savedSide)

	start := board.New()
	roots := []board.Board{start}
	sides := []board.Side{board.Black}
	for _, m := range start.Moves(board.Black) {
		b := start
		b.Apply(m, board.Black)
		roots = append(roots, b)
		sides = append(sides, board.White)
	}
	for d := 1; d <= depth; d++ {
		for i, b := range roots {
			s.SetPosition(b, sides[i])
			if _, err := s.FindBestMove(ctx, d); err != nil {
				return err
			}
		}
	}
	log.Info().Int("depth", depth).
		Int("cache-entries", s.ttable.Len()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("prewarmed")
	return nil
}
