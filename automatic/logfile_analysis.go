package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/domino14/othello/stats"
)

// ColorSummary is what a turn log says about black against white.
type ColorSummary struct {
	Games       int
	BlackWins   int
	WhiteWins   int
	Draws       int
	BlackSpread stats.Statistic
	MoveMillis  stats.Statistic
}

func (c *ColorSummary) String() string {
	s := fmt.Sprintf("Games played: %d\n", c.Games)
	if c.Games == 0 {
		return s
	}
	s += fmt.Sprintf("Black wins: %d (%.3f%%)\n", c.BlackWins, 100*float64(c.BlackWins)/float64(c.Games))
	s += fmt.Sprintf("White wins: %d  Draws: %d\n", c.WhiteWins, c.Draws)
	s += fmt.Sprintf("Black mean spread: %.6f  Stdev: %.6f\n", c.BlackSpread.Mean(), c.BlackSpread.Stdev())
	s += fmt.Sprintf("Mean ms per move: %.3f  Max: %.0f\n", c.MoveMillis.Mean(), c.MoveMillis.Max())
	return s
}

// AnalyzeLogFile reads a turn log written by StartCompVComp. Only games
// closed by a game-over row are counted; one cut short by a stop request
// contributes its move times alone.
func AnalyzeLogFile(filepath string) (*ColorSummary, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := csv.NewReader(file)

	summary := &ColorSummary{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if record[0] == "gameID" {
			continue
		}
		if len(record) != 7 {
			return nil, fmt.Errorf("expected 7 fields, got %d", len(record))
		}
		black, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, err
		}
		white, err := strconv.Atoi(record[5])
		if err != nil {
			return nil, err
		}
		if record[3] == gameOverMove {
			summary.Games++
			switch {
			case black > white:
				summary.BlackWins++
			case black < white:
				summary.WhiteWins++
			default:
				summary.Draws++
			}
			summary.BlackSpread.Push(float64(black - white))
			continue
		}
		ms, err := strconv.Atoi(record[6])
		if err != nil {
			return nil, err
		}
		summary.MoveMillis.Push(float64(ms))
	}
	return summary, nil
}
