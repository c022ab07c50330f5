package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/othello/config"
	"github.com/domino14/othello/game"
	"github.com/domino14/othello/move"
)

const startOBF = "---------------------------OX------XO--------------------------- X"

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigPrewarmDepth, 0)
	cfg.Set(config.ConfigSearchDepth, 2)
	cfg.Set(config.ConfigAutoplayLog, filepath.Join(t.TempDir(), "autoplay.csv"))
	var buf bytes.Buffer
	return newController(cfg, &buf), &buf
}

func run(t *testing.T, sc *ShellController, line string) (*Response, error) {
	t.Helper()
	sig := make(chan os.Signal, 1)
	return sc.standardModeSwitch(line, sig)
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.txt",
			&shellcmd{"autoplay", nil, CmdOptions{"file": {"/path/to/log.txt"}}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, CmdOptions{}},
			nil},
		{"autoplay weighted disc -games 10 -threads 2 ",
			&shellcmd{"autoplay",
				[]string{"weighted", "disc"},
				CmdOptions{"games": {"10"}, "threads": {"2"}}},
			nil,
		},
		{"autoplay weighted disc -games",
			nil, errWrongOptionSyntax},
		{"load " + startOBF,
			&shellcmd{"load", strings.Fields(startOBF), CmdOptions{}},
			nil},
		{`load "` + startOBF + `"`,
			&shellcmd{"load", []string{startOBF}, CmdOptions{}},
			nil},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func TestPlayAndUndo(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	resp, err := run(t, sc, "play f5")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "white to move"))
	is.Equal(sc.game.Turn(), 1)

	_, err = run(t, sc, "play f5")
	is.True(err != nil)
	_, err = run(t, sc, "play zz")
	is.True(err != nil)

	_, err = run(t, sc, "undo")
	is.NoErr(err)
	is.Equal(sc.game.Turn(), 0)
	_, err = run(t, sc, "undo")
	is.Equal(err, game.ErrNoHistory)
}

func TestGenAndPlayByIndex(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	resp, err := run(t, sc, "gen")
	is.NoErr(err)
	lines := strings.Split(resp.message, "\n")
	is.Equal(len(lines), 5) // header and the four opening moves
	is.Equal(len(sc.curGenPlays), 4)

	first := sc.curGenPlays[0]
	_, err = run(t, sc, "play #1")
	is.NoErr(err)
	is.Equal(sc.game.LastMove(), first)
	// a move clears the generated list
	_, err = run(t, sc, "play #1")
	is.True(err != nil)

	_, err = run(t, sc, "gen 2")
	is.NoErr(err)
	is.Equal(len(sc.curGenPlays), 2)
}

func TestLoadAndShow(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	_, err := run(t, sc, "play f5")
	is.NoErr(err)
	_, err = run(t, sc, "load "+startOBF+" ; start")
	is.NoErr(err)
	is.Equal(sc.game.Turn(), 0)

	resp, err := run(t, sc, "show obf")
	is.NoErr(err)
	is.Equal(resp.message, startOBF)

	resp, err = run(t, sc, "show")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "black to move"))

	_, err = run(t, sc, "load XO X")
	is.True(err != nil)
	_, err = run(t, sc, "load")
	is.True(err != nil)
}

func TestSearchAndAiplay(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	_, err := run(t, sc, "set eval disc")
	is.NoErr(err)
	resp, err := run(t, sc, "search")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Best move: e6  score: 0  depth: 2"))
	is.True(strings.Contains(resp.message, "PV: e6"))
	is.Equal(sc.game.Turn(), 0)

	resp, err = run(t, sc, "search 1")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Best move: e6  score: 3  depth: 1"))

	_, err = run(t, sc, "aiplay -depth 1")
	is.NoErr(err)
	e6, err := move.FromString("e6")
	is.NoErr(err)
	is.Equal(sc.game.LastMove(), e6)
	is.Equal(sc.game.OnTurn().String(), "white")
}

func TestSetOptions(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	resp, err := run(t, sc, "set")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "depth:"))

	resp, err = run(t, sc, "set depth 5")
	is.NoErr(err)
	is.Equal(resp.message, "set depth to 5")
	is.Equal(sc.options.depth, 5)

	resp, err = run(t, sc, "set time")
	is.NoErr(err)
	is.Equal(resp.message, "0")

	for _, bad := range []string{"set depth 0", "set depth x", "set time -5", "set eval mystery", "set colour red"} {
		_, err = run(t, sc, bad)
		is.True(err != nil)
	}
}

func TestEval(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	resp, err := run(t, sc, "eval")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Disc differential: 0"))
	is.True(strings.Contains(resp.message, "Mobility: black 4, white 4"))
}

func TestThousandsSeparator(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	is.Equal(sc.printer.Sprintf("%d", 1234567), "1,234,567")
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	script := `
local json = require("json")
local http = require("http")
assert(type(http.get) == "function")
assert(othello_new() ~= nil)
local r = othello_play("f5")
assert(string.sub(r, 1, 5) ~= "ERROR", r)
local s = othello_state()
assert(s.to_move == "white", s.to_move)
assert(s.black == 4, tostring(s.black))
assert(s.white == 1, tostring(s.white))
assert(s.over == false)
assert(s.moves[1] == "f5")
local bad = othello_play("a1")
assert(string.sub(bad, 1, 5) == "ERROR", bad)
local enc = json.encode({moves = s.moves})
assert(enc == '{"moves":["f5"]}', enc)
othello_set("eval disc")
othello_aiplay("-depth 1")
`
	path := filepath.Join(t.TempDir(), "test.lua")
	is.NoErr(os.WriteFile(path, []byte(script), 0o644))

	_, err := run(t, sc, "script "+path)
	is.NoErr(err)
	is.Equal(sc.game.Turn(), 2)
	is.Equal(sc.options.eval, evalDisc)

	failing := filepath.Join(t.TempDir(), "fail.lua")
	is.NoErr(os.WriteFile(failing, []byte(`error("boom")`), 0o644))
	_, err = run(t, sc, "script "+failing)
	is.True(err != nil)
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	sc.config.Set(config.ConfigSearchDepth, 1)
	out := filepath.Join(t.TempDir(), "games.csv")

	_, err := run(t, sc, "autoplay show")
	is.True(err != nil)
	_, err = run(t, sc, "autoplay stop")
	is.True(err != nil)

	resp, err := run(t, sc, "autoplay weighted disc -games 2 -threads 1 -plies 2 -file "+out)
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "2 games of weighted vs disc"))
	<-sc.autoplayDone

	resp, err = run(t, sc, "autoplay show")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "Games played: 2"))
	is.Equal(sc.lastMatch.Games, 2)
	is.True(!sc.autoplayRunning())

	_, err = run(t, sc, "autoplay mystery disc -games 2")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	c := NewShellCompleter(sc)

	complete := func(line string) []string {
		matches, _ := c.Do([]rune(line), len(line))
		out := make([]string, len(matches))
		for i, m := range matches {
			out[i] = string(m)
		}
		return out
	}

	is.Equal(complete("se"), []string{"arch", "t"})
	is.Equal(complete("set eval "), []string{"weighted", "disc"})
	is.Equal(complete("autoplay -g"), []string{"ames"})
	is.Equal(len(complete("play ")), 4)
	is.Equal(complete("play f"), []string{"5"})
}

func TestHelpAndExit(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	resp, err := run(t, sc, "help")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "aiplay"))
	resp, err = run(t, sc, "help autoplay")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "autoplay stop"))
	_, err = run(t, sc, "help nothing")
	is.True(err != nil)

	_, err = run(t, sc, "frobnicate")
	is.True(err != nil)

	sig := make(chan os.Signal, 1)
	_, err = sc.standardModeSwitch("exit", sig)
	is.Equal(err, errQuit)
	is.Equal(<-sig, os.Signal(syscall.SIGINT))
}
