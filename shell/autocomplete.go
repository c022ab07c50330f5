package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/othello/automatic"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"search": {Options: []string{"-depth", "-time"}},
	"aiplay": {Options: []string{"-depth", "-time"}},
	"autoplay": {
		Options: []string{"-games", "-threads", "-plies", "-ms", "-file", "-openings", "-db"},
		Args:    []string{automatic.WeightedPlayer, automatic.DiscPlayer, "stop", "show"},
	},
	"set":  {Args: []string{"depth", "time", "eval"}},
	"show": {Args: []string{"obf"}},
	"help": {Args: []string{"load", "play", "search", "autoplay", "set", "script"}},
}

var commandNames = []string{
	"help", "new", "load", "show", "gen", "play", "undo", "aiplay",
	"search", "eval", "autoplay", "set", "script", "gid", "exit",
}

var evalValues = []string{evalWeighted, evalDisc}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case cmdName == "set" && lastCompleteField == "eval":
			completions = evalValues
		case cmdName == "play" && c.sc != nil:
			// the legal moves, most promising first
			completions = lo.Map(c.sc.scoreMoves(), func(s scoredMove, _ int) string {
				return s.m.String()
			})
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
