package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/othello/automatic"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/game"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/player"
	"github.com/domino14/othello/search"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errAutoplayRunning   = errors.New("autoplay is running, please do `autoplay stop` first")
	errQuit              = errors.New("sending quit signal")
)

const (
	evalWeighted = "weighted"
	evalDisc     = "disc"
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// ShellOptions are the session settings changed with `set`.
type ShellOptions struct {
	// depth searched by `search` and `aiplay` when there is no clock
	depth int
	// milliseconds on the clock; 0 searches to depth
	timeMs int
	eval   string
}

func (opts *ShellOptions) Show(key string) (bool, string) {
	switch key {
	case "depth":
		return true, strconv.Itoa(opts.depth)
	case "time":
		return true, strconv.Itoa(opts.timeMs)
	case "eval":
		return true, opts.eval
	}
	return false, "No such option: " + key
}

func (opts *ShellOptions) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, key := range []string{"depth", "time", "eval"} {
		_, val := opts.Show(key)
		fmt.Fprintf(&sb, "  %-6s %s\n", key+":", val)
	}
	return sb.String()
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	config  *config.Config
	options *ShellOptions

	game        *game.Game
	solver      *search.Solver
	curGenPlays []move.Move
	printer     *message.Printer

	autoplayMu     sync.Mutex
	autoplayCancel context.CancelFunc
	autoplayDone   chan struct{}
	lastMatch      *automatic.MatchStats
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// newController builds the controller without a terminal.
func newController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		out:    out,
		config: cfg,
		options: &ShellOptions{
			depth: cfg.GetInt(config.ConfigSearchDepth),
			eval:  evalWeighted,
		},
		game:    game.New(),
		solver:  player.NewSolver(cfg),
		printer: message.NewPrinter(language.English),
	}
}

func NewShellController(cfg *config.Config) *ShellController {
	prompt := "othello"
	sc := newController(cfg, os.Stderr)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("\033[32m%s>\033[0m ", prompt),
		HistoryFile:     "/tmp/othello-readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) evaluator() equity.Evaluator {
	if sc.options.eval == evalDisc {
		return equity.DiscDifferential{}
	}
	return player.EvaluatorFromConfig(sc.config)
}

// isOption tells an option name like -games apart from an argument that
// happens to start with a dash, such as a position string.
func isOption(token string) bool {
	return len(token) > 1 && token[0] == '-' && unicode.IsLetter(rune(token[1]))
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for i := 1; i < len(fields); i++ {
		if isOption(fields[i]) {
			if i+1 >= len(fields) {
				return nil, errWrongOptionSyntax
			}
			key := fields[i][1:]
			options[key] = append(options[key], fields[i+1])
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "load":
		return sc.load(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "gen":
		return sc.generate(cmd)
	case "play":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "aiplay":
		return sc.aiplay(cmd)
	case "search":
		return sc.search(cmd)
	case "eval":
		return sc.eval(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "set":
		return sc.set(cmd)
	case "script":
		return sc.script(cmd)
	case "gid":
		return sc.gid(cmd)
	default:
		log.Debug().Msgf("command %v not found", strconv.Quote(cmd.cmd))
		return nil, errors.New("command not found")
	}
}

// Execute runs a single line, as given on the command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		sc.showError(err)
	} else if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops a running autoplay and waits for it.
func (sc *ShellController) Cleanup() {
	sc.autoplayMu.Lock()
	cancel, done := sc.autoplayCancel, sc.autoplayDone
	sc.autoplayMu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}
