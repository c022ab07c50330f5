package shell

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/othello/automatic"
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/game"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/obf"
	"github.com/domino14/othello/player"
	"github.com/domino14/othello/search"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return msg(sc.options.ToDisplayText()), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		_, val := sc.options.Show(opt)
		return msg(val), nil
	}
	ret, err := sc.Set(opt, cmd.args[1])
	if err != nil {
		return nil, err
	}
	return msg("set " + opt + " to " + ret), nil
}

// Set changes one session setting and returns its new display value.
func (sc *ShellController) Set(key, value string) (string, error) {
	switch key {
	case "depth":
		d, err := strconv.Atoi(value)
		if err != nil {
			return "", err
		}
		if d < 1 {
			return "", errors.New("depth must be at least 1")
		}
		sc.options.depth = d
	case "time":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return "", err
		}
		if ms < 0 {
			return "", errors.New("time cannot be negative")
		}
		sc.options.timeMs = ms
	case "eval":
		if value != evalWeighted && value != evalDisc {
			return "", fmt.Errorf("eval must be %s or %s", evalWeighted, evalDisc)
		}
		sc.options.eval = value
		sc.solver.SetEvaluator(sc.evaluator())
	default:
		return "", errors.New("option " + key + " not settable")
	}
	_, val := sc.options.Show(key)
	return val, nil
}

func (sc *ShellController) gid(cmd *shellcmd) (*Response, error) {
	return msg(sc.game.Uid()), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.game = game.New()
	sc.curGenPlays = nil
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need a position to load")
	}
	pos, err := obf.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.game = game.FromPosition(pos.Board, pos.ToMove)
	sc.curGenPlays = nil
	log.Debug().Str("gid", sc.game.Uid()).Str("position", pos.String()).Msg("loaded-position")
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) currentPosition() obf.Position {
	return obf.Position{Board: sc.game.Board(), ToMove: sc.game.OnTurn()}
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "obf" {
		return msg(sc.currentPosition().String()), nil
	}
	return msg(sc.game.ToDisplayText()), nil
}

type scoredMove struct {
	m       move.Move
	flipped int
	score   int
}

// scoreMoves rates every legal move of the side on turn by the static
// evaluation of the position it leads to, best first.
func (sc *ShellController) scoreMoves() []scoredMove {
	b := sc.game.Board()
	side := sc.game.OnTurn()
	eval := sc.evaluator()
	scored := lo.Map(sc.game.LegalMoves(), func(m move.Move, _ int) scoredMove {
		after := b
		flipped := after.Apply(m, side)
		return scoredMove{m: m, flipped: flipped.Count(), score: eval.Score(after, side)}
	})
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

func moveTableHeader() string {
	return "     Move  Flips  Eval"
}

func moveTableRow(idx int, s scoredMove) string {
	return fmt.Sprintf("%3d: %-5s %-6d %d", idx+1, s.m, s.flipped, s.score)
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return nil, game.ErrGameOver
	}
	scored := sc.scoreMoves()
	limit := len(scored)
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		limit = min(max(n, 1), len(scored))
	}
	scored = scored[:limit]
	sc.curGenPlays = lo.Map(scored, func(s scoredMove, _ int) move.Move { return s.m })

	var sb strings.Builder
	sb.WriteString(moveTableHeader())
	for i, s := range scored {
		sb.WriteByte('\n')
		sb.WriteString(moveTableRow(i, s))
	}
	return msg(sb.String()), nil
}

// parseMove reads a move in notation, or #n for the n-th generated move.
func (sc *ShellController) parseMove(token string) (move.Move, error) {
	if rest, ok := strings.CutPrefix(token, "#"); ok {
		idx, err := strconv.Atoi(rest)
		if err != nil {
			return move.Pass, err
		}
		idx--
		if idx < 0 || idx >= len(sc.curGenPlays) {
			return move.Pass, errors.New("play outside range")
		}
		return sc.curGenPlays[idx], nil
	}
	return move.FromString(token)
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <move|#n|pass>")
	}
	m, err := sc.parseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(m); err != nil {
		return nil, err
	}
	sc.curGenPlays = nil
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if err := sc.game.Undo(); err != nil {
		return nil, err
	}
	sc.curGenPlays = nil
	return msg(sc.game.ToDisplayText()), nil
}

// runSearch searches the current position. Options -depth and -time
// override the session settings.
func (sc *ShellController) runSearch(cmd *shellcmd) (search.Result, error) {
	if sc.game.Playing() == game.PlayStateGameOver {
		return search.Result{}, game.ErrGameOver
	}
	depth := sc.options.depth
	if len(cmd.args) > 0 {
		d, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return search.Result{}, err
		}
		depth = d
	}
	depth, err := cmd.options.IntDefault("depth", depth)
	if err != nil {
		return search.Result{}, err
	}
	ms, err := cmd.options.IntDefault("time", sc.options.timeMs)
	if err != nil {
		return search.Result{}, err
	}
	sc.solver.SetPosition(sc.game.Board(), sc.game.OnTurn())
	return player.Search(context.Background(), sc.solver, depth, ms), nil
}

func (sc *ShellController) describeResult(res search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Best move: %s  score: %d  depth: %d\n", res.Move, res.Score, res.Depth)
	nps := 0.0
	if secs := res.Elapsed.Seconds(); secs > 0 {
		nps = float64(res.Nodes) / secs
	}
	sb.WriteString(sc.printer.Sprintf("Nodes: %d in %v (%.0f nodes/s)\n",
		res.Nodes, res.Elapsed.Round(time.Microsecond), nps))
	fmt.Fprintf(&sb, "PV: %s", strings.Join(res.PV.Notation(), " "))
	return sb.String()
}

func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	res, err := sc.runSearch(cmd)
	if err != nil {
		return nil, err
	}
	return msg(sc.describeResult(res)), nil
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	res, err := sc.runSearch(cmd)
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(res.Move); err != nil {
		return nil, err
	}
	sc.curGenPlays = nil
	return msg(sc.describeResult(res) + "\n" + sc.game.ToDisplayText()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	b := sc.game.Board()
	side := sc.game.OnTurn()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluation for %s (%s evaluator): %d\n", side, sc.options.eval,
		sc.evaluator().Score(b, side))
	fmt.Fprintf(&sb, "Disc differential: %d\n", sc.game.SpreadFor(side))
	fmt.Fprintf(&sb, "Mobility: black %d, white %d",
		b.GenerateMoves(board.Black).Count(), b.GenerateMoves(board.White).Count())
	return msg(sb.String()), nil
}

func (sc *ShellController) autoplayRunning() bool {
	sc.autoplayMu.Lock()
	defer sc.autoplayMu.Unlock()
	return sc.autoplayCancel != nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 {
		switch cmd.args[0] {
		case "stop":
			sc.autoplayMu.Lock()
			cancel := sc.autoplayCancel
			sc.autoplayMu.Unlock()
			if cancel == nil {
				return nil, errors.New("no running autoplay to stop")
			}
			cancel()
			return msg("stopping autoplay"), nil
		case "show":
			sc.autoplayMu.Lock()
			defer sc.autoplayMu.Unlock()
			if sc.lastMatch == nil {
				return nil, errors.New("no finished autoplay")
			}
			return msg(sc.lastMatch.String()), nil
		}
	}
	if sc.autoplayRunning() {
		return nil, errAutoplayRunning
	}

	opts, err := sc.compVCompOptions(cmd)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.autoplayMu.Lock()
	sc.autoplayCancel = cancel
	sc.autoplayDone = done
	sc.autoplayMu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		ms, err := automatic.StartCompVComp(ctx, sc.config, opts)
		sc.autoplayMu.Lock()
		sc.autoplayCancel = nil
		if ms != nil {
			sc.lastMatch = ms
		}
		sc.autoplayMu.Unlock()
		if err != nil {
			log.Err(err).Msg("autoplay-failed")
			return
		}
		sc.showMessage(ms.String())
	}()

	return msg(fmt.Sprintf("autoplay started: %d games of %s vs %s, logging to %s",
		opts.NumGames, opts.Player1, opts.Player2, opts.OutputFilename)), nil
}

func (sc *ShellController) compVCompOptions(cmd *shellcmd) (automatic.CompVCompOptions, error) {
	opts := automatic.CompVCompOptions{
		Player1:        automatic.WeightedPlayer,
		Player2:        automatic.WeightedPlayer,
		OutputFilename: sc.config.GetString(config.ConfigAutoplayLog),
	}
	if len(cmd.args) > 0 {
		opts.Player1 = cmd.args[0]
	}
	if len(cmd.args) > 1 {
		opts.Player2 = cmd.args[1]
	}
	for _, name := range []string{opts.Player1, opts.Player2} {
		if err := automatic.ValidatePlayer(name); err != nil {
			return opts, err
		}
	}
	var err error
	if opts.NumGames, err = cmd.options.IntDefault("games", 100); err != nil {
		return opts, err
	}
	if opts.Threads, err = cmd.options.IntDefault("threads", runtime.NumCPU()); err != nil {
		return opts, err
	}
	if opts.OpeningPlies, err = cmd.options.IntDefault("plies", 4); err != nil {
		return opts, err
	}
	if opts.MsPerSide, err = cmd.options.IntDefault("ms", 0); err != nil {
		return opts, err
	}
	if f := cmd.options.String("file"); f != "" {
		opts.OutputFilename = f
	}
	opts.ResultsDB = cmd.options.String("db")
	if f := cmd.options.String("openings"); f != "" {
		if opts.Openings, err = automatic.LoadOpenings(f); err != nil {
			return opts, err
		}
	}
	frand.Read(opts.Seed[:])
	return opts, nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
