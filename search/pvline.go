package search

import (
	"fmt"
	"strings"

	"github.com/domino14/othello/move"
)

// PVLine is a principal variation: the line of best play found by the
// search. It can be cut short where a transposition hit ended the search.
type PVLine struct {
	Moves []move.Move
	score int
}

func (pvLine *PVLine) Clear() {
	pvLine.Moves = pvLine.Moves[:0]
}

// Update sets the line to m followed by the child's line.
func (pvLine *PVLine) Update(m move.Move, child PVLine, score int) {
	pvLine.Moves = append(pvLine.Moves[:0], m)
	pvLine.Moves = append(pvLine.Moves, child.Moves...)
	pvLine.score = score
}

func (pvLine PVLine) Score() int {
	return pvLine.score
}

func (pvLine PVLine) copy() PVLine {
	return PVLine{Moves: append([]move.Move(nil), pvLine.Moves...), score: pvLine.score}
}

// Notation lists the moves as space-separated a1..h8 / pass tokens.
func (pvLine PVLine) Notation() []string {
	out := make([]string, len(pvLine.Moves))
	for i, m := range pvLine.Moves {
		out[i] = m.String()
	}
	return out
}

func (pvLine PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d\n", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, m)
	}
	return sb.String()
}

// NLBString is String without line breaks, for log lines.
func (pvLine PVLine) NLBString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d; ", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, m)
	}
	return sb.String()
}
