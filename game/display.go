package game

import (
	"fmt"
	"strings"

	"github.com/domino14/othello/move"
)

// ToDisplayText shows the board with the legal moves of the side on turn
// marked, and the recent record.
func (g *Game) ToDisplayText() string {
	var sb strings.Builder
	marks := g.board.GenerateMoves(g.onturn)
	sb.WriteString(g.board.ToDisplayText(marks))
	if g.playState == PlayStateGameOver {
		sb.WriteString("game over")
		if w, ok := g.Winner(); ok {
			fmt.Fprintf(&sb, ", %s wins", w)
		} else {
			sb.WriteString(", draw")
		}
		sb.WriteByte('\n')
	} else {
		fmt.Fprintf(&sb, "%s to move\n", g.onturn)
	}
	sb.WriteString(g.RecordString(10))
	return sb.String()
}

// RecordString lists the last n moves, numbered from the start.
func (g *Game) RecordString(n int) string {
	if len(g.history) == 0 {
		return ""
	}
	start := max(len(g.history)-n, 0)
	tokens := make([]string, 0, len(g.history)-start)
	for i := start; i < len(g.history); i++ {
		t := g.history[i]
		tokens = append(tokens, fmt.Sprintf("%d.%c %s", i+1, t.Side.Symbol(), t.Move))
	}
	return strings.Join(tokens, " ") + "\n"
}

// MoveList returns every move played so far, passes included.
func (g *Game) MoveList() []move.Move {
	out := make([]move.Move, len(g.history))
	for i, t := range g.history {
		out[i] = t.Move
	}
	return out
}
