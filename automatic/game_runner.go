// Package automatic plays engine-vs-engine games for testing evaluator
// changes and search settings, and collects the results.
package automatic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/game"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/player"
)

const (
	WeightedPlayer = "weighted"
	DiscPlayer     = "disc"
)

// gameOverMove marks the closing row of a finished game in the turn log.
// A game cut short has no such row.
const gameOverMove = "game-over"


// GameResult is the outcome of one game. Player 1 is the runner's first
// named engine, whichever color it had.
type GameResult struct {
	GameID     string
	P1Black    bool
	BlackDiscs int
	WhiteDiscs int
	Turns      int
	Opening    string
}

// P1Spread is player 1's disc lead at the end.
func (r GameResult) P1Spread() int {
	spread := r.BlackDiscs - r.WhiteDiscs
	if !r.P1Black {
		spread = -spread
	}
	return spread
}

// GameRunner plays games between two engines.
type GameRunner struct {
	config    *config.Config
	names     [2]string
	msPerSide int
	logchan   chan string
	// engines[i] plays for names[i]; built on first use and kept across
	// games so their caches stay warm.
	engines [2]*player.Player
}

// NewGameRunner makes a runner pitting the weighted engine against itself.
func NewGameRunner(logchan chan string, cfg *config.Config) *GameRunner {
	r := &GameRunner{logchan: logchan, config: cfg}
	// both names are known, so this cannot fail
	_ = r.Init(WeightedPlayer, WeightedPlayer)
	return r
}

// ValidatePlayer checks that name is a known engine type.
func ValidatePlayer(name string) error {
	if !lo.Contains([]string{WeightedPlayer, DiscPlayer}, name) {
		return fmt.Errorf("unknown player type %q", name)
	}
	return nil
}

// Init sets the two engines by name.
func (r *GameRunner) Init(player1, player2 string) error {
	for _, name := range []string{player1, player2} {
		if err := ValidatePlayer(name); err != nil {
			return err
		}
	}
	if r.names != [2]string{player1, player2} {
		r.engines = [2]*player.Player{}
	}
	r.names = [2]string{player1, player2}
	return nil
}

// SetClock gives each side ms milliseconds per game. Zero or less plays
// every move at the fixed search depth.
func (r *GameRunner) SetClock(ms int) {
	r.msPerSide = ms
}

// engine returns the i-th engine set up to play side from g.
func (r *GameRunner) engine(i int, side board.Side, g board.Grid) *player.Player {
	if r.engines[i] == nil {
		p := player.New(r.config, side)
		if r.names[i] == DiscPlayer {
			p.SetEvaluator(equity.DiscDifferential{})
		}
		r.engines[i] = p
	}
	r.engines[i].Reset(side, g)
	return r.engines[i]
}

// PlayGame plays the opening moves as given, then lets the engines finish
// the game.
func (r *GameRunner) PlayGame(ctx context.Context, opening []move.Move, p1Black bool) (GameResult, error) {
	g := game.New()
	for _, m := range opening {
		if err := g.PlayMove(m); err != nil {
			return GameResult{}, fmt.Errorf("opening %s: %w", openingString(opening), err)
		}
	}

	p1Side := board.White
	if p1Black {
		p1Side = board.Black
	}
	grid := g.Board().Grid()
	engines := map[board.Side]*player.Player{
		p1Side:            r.engine(0, p1Side, grid),
		p1Side.Opposite(): r.engine(1, p1Side.Opposite(), grid),
	}
	clocks := map[board.Side]int{board.Black: r.msPerSide, board.White: r.msPerSide}

	// The side on turn starts from the loaded board; only its opponent
	// needs to be told about the last move.
	last := move.Pass
	for g.Playing() == game.PlayStatePlaying {
		if err := ctx.Err(); err != nil {
			return GameResult{}, err
		}
		side := g.OnTurn()
		msLeft := player.Unlimited
		if r.msPerSide > 0 {
			msLeft = max(clocks[side], 1)
		}
		tstart := time.Now()
		m := engines[side].ComputeMove(ctx, last, msLeft)
		elapsed := time.Since(tstart)
		clocks[side] -= int(elapsed.Milliseconds())

		if err := g.PlayMove(m); err != nil {
			return GameResult{}, fmt.Errorf("engine %s: %w", side, err)
		}
		if r.logchan != nil {
			black, white := g.Score()
			r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%v,%v,%v\n",
				g.Uid(), g.Turn(), side, m, black, white, elapsed.Milliseconds())
		}
		last = m
	}

	black, white := g.Score()
	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%v,%v,-,%v,%v,%v,0\n", g.Uid(), g.Turn(), gameOverMove, black, white)
	}
	log.Debug().Str("gid", g.Uid()).Int("black", black).Int("white", white).Msg("game-finished")
	return GameResult{
		GameID:     g.Uid(),
		P1Black:    p1Black,
		BlackDiscs: black,
		WhiteDiscs: white,
		Turns:      g.Turn(),
		Opening:    openingString(opening),
	}, nil
}

func openingString(opening []move.Move) string {
	return strings.Join(lo.Map(opening, func(m move.Move, _ int) string {
		return m.String()
	}), " ")
}
