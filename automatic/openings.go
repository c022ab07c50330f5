package automatic

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

// maxOpeningAttempts bounds the search for distinct openings, per opening
// wanted. There are only 244 distinct positions after 4 plies, for
// example, so a large request cannot always be met.
const maxOpeningAttempts = 50

// GenerateOpenings plays n random openings of the given number of plies.
// Openings that reach a position already produced are skipped while
// possible, so games start from distinct positions; once the attempts
// run out duplicates are allowed.
func GenerateOpenings(rng *frand.RNG, n, plies int) [][]move.Move {
	seen := map[uint64]bool{}
	openings := make([][]move.Move, 0, n)
	for attempts := 0; len(openings) < n; attempts++ {
		b := board.New()
		side := board.Black
		var seq []move.Move
		for i := 0; i < plies && !b.IsTerminal(); i++ {
			moves := b.Moves(side)
			m := move.Pass
			if len(moves) > 0 {
				m = moves[rng.Intn(len(moves))]
			}
			b.Apply(m, side)
			seq = append(seq, m)
			side = side.Opposite()
		}
		sig := b.Signature(side)
		if seen[sig] && attempts < n*maxOpeningAttempts {
			continue
		}
		seen[sig] = true
		openings = append(openings, seq)
	}
	return openings
}

// SaveOpenings writes openings one per line, moves space-separated.
func SaveOpenings(openings [][]move.Move, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create openings file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	if _, err := writer.WriteString("# Openings, one per line\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, o := range openings {
		if _, err := writer.WriteString(openingString(o) + "\n"); err != nil {
			return fmt.Errorf("failed to write opening %d: %w", i, err)
		}
	}
	return nil
}

// LoadOpenings reads a file written by SaveOpenings. Each opening is
// replayed to check it is legal.
func LoadOpenings(path string) ([][]move.Move, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open openings file: %w", err)
	}
	defer file.Close()

	var openings [][]move.Move
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b := board.New()
		side := board.Black
		var seq []move.Move
		for _, tok := range strings.Fields(line) {
			m, err := move.FromString(tok)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			if !b.LegalMove(m, side) {
				return nil, fmt.Errorf("line %d: illegal move %s for %s", lineNum, m, side)
			}
			b.Apply(m, side)
			seq = append(seq, m)
			side = side.Opposite()
		}
		openings = append(openings, seq)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading openings file: %w", err)
	}
	return openings, nil
}
