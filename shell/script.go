package shell

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"

	"github.com/domino14/othello/game"
	"github.com/domino14/othello/move"
)

const scriptHTTPTimeout = 30 * time.Second

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("othello_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// luaCommand wraps a shell command so a script can call it with the rest
// of the command line as its one string argument.
func luaCommand(name string, fn func(*shellcmd) (*Response, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.OptString(1, "")
		cmd, err := extractFields(name + " " + lv)
		if err != nil {
			log.Err(err).Msg("error-parsing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := fn(cmd)
		if err != nil {
			log.Err(err).Msg("error-executing-" + name)
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(r.message))
		// return number of results pushed to stack.
		return 1
	}
}

type scriptState struct {
	OBF    string   `json:"obf"`
	ToMove string   `json:"to_move"`
	Black  int      `json:"black"`
	White  int      `json:"white"`
	Over   bool     `json:"over"`
	Winner string   `json:"winner"`
	Moves  []string `json:"moves"`
}

func (sc *ShellController) scriptState() scriptState {
	black, white := sc.game.Score()
	st := scriptState{
		OBF:    sc.currentPosition().String(),
		ToMove: sc.game.OnTurn().String(),
		Black:  black,
		White:  white,
		Moves:  lo.Map(sc.game.MoveList(), func(m move.Move, _ int) string { return m.String() }),
	}
	if sc.game.Playing() == game.PlayStateGameOver {
		st.Over = true
		st.Winner = "draw"
		if w, ok := sc.game.Winner(); ok {
			st.Winner = w.String()
		}
	}
	return st
}

// State pushes the game state as a table, through its JSON form.
func State(L *lua.LState) int {
	sc := getShell(L)
	data, err := json.Marshal(sc.scriptState())
	if err != nil {
		L.RaiseError("encoding state: %v", err)
		return 0
	}
	lv, err := luajson.Decode(L, data)
	if err != nil {
		L.RaiseError("decoding state: %v", err)
		return 0
	}
	L.Push(lv)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{Timeout: scriptHTTPTimeout}).Loader)

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal("othello_shell", lsc)

	commands := map[string]func(*shellcmd) (*Response, error){
		"new":    sc.newGame,
		"load":   sc.load,
		"show":   sc.show,
		"gen":    sc.generate,
		"play":   sc.play,
		"undo":   sc.undo,
		"aiplay": sc.aiplay,
		"search": sc.search,
		"eval":   sc.eval,
		"set":    sc.set,
		"gid":    sc.gid,
	}
	for name, fn := range commands {
		L.SetGlobal("othello_"+name, L.NewFunction(luaCommand(name, fn)))
	}
	L.SetGlobal("othello_state", L.NewFunction(State))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("script " + filepath + " finished"), nil
}
