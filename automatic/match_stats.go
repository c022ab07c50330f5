package automatic

import (
	"fmt"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/othello/stats"
)

const (
	histogramBins  = 15
	histogramWidth = 40
	confidencePct  = 95
)

// MatchStats aggregates results from player 1's point of view.
type MatchStats struct {
	Player1 string
	Player2 string

	Games     int
	P1Wins    int
	P2Wins    int
	Draws     int
	BlackWins int
	P1Spread  stats.Statistic

	spreads []float64
}

func NewMatchStats(player1, player2 string) *MatchStats {
	return &MatchStats{Player1: player1, Player2: player2}
}

func (ms *MatchStats) Add(r GameResult) {
	ms.Games++
	spread := r.P1Spread()
	switch {
	case spread > 0:
		ms.P1Wins++
	case spread < 0:
		ms.P2Wins++
	default:
		ms.Draws++
	}
	if r.BlackDiscs > r.WhiteDiscs {
		ms.BlackWins++
	}
	ms.P1Spread.Push(float64(spread))
	ms.spreads = append(ms.spreads, float64(spread))
}

// Merge folds in the results another worker collected.
func (ms *MatchStats) Merge(o *MatchStats) {
	ms.Games += o.Games
	ms.P1Wins += o.P1Wins
	ms.P2Wins += o.P2Wins
	ms.Draws += o.Draws
	ms.BlackWins += o.BlackWins
	ms.P1Spread.Merge(&o.P1Spread)
	ms.spreads = append(ms.spreads, o.spreads...)
}

// P1Score counts a draw as half a win.
func (ms *MatchStats) P1Score() float64 {
	return float64(ms.P1Wins) + float64(ms.Draws)/2
}

func (ms *MatchStats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", ms.Games)
	if ms.Games == 0 {
		return sb.String()
	}
	pct := func(x float64) float64 { return 100 * x / float64(ms.Games) }
	fmt.Fprintf(&sb, "%v wins: %.1f (%.3f%%)\n", ms.Player1, ms.P1Score(), pct(ms.P1Score()))
	fmt.Fprintf(&sb, "%v wins: %d, draws: %d\n", ms.Player2, ms.P2Wins, ms.Draws)
	fmt.Fprintf(&sb, "Black wins: %d (%.3f%%)\n", ms.BlackWins, pct(float64(ms.BlackWins)))
	lo, hi := ms.P1Spread.ConfidenceInterval(confidencePct)
	fmt.Fprintf(&sb, "%v mean disc spread: %.3f  stdev: %.3f  %d%% CI: [%.3f, %.3f]\n",
		ms.Player1, ms.P1Spread.Mean(), ms.P1Spread.Stdev(), confidencePct, lo, hi)
	sb.WriteString("Spread distribution:\n")
	hist := histogram.Hist(histogramBins, ms.spreads)
	if err := histogram.Fprint(&sb, hist, histogram.Linear(histogramWidth)); err != nil {
		fmt.Fprintf(&sb, "(histogram unavailable: %v)\n", err)
	}
	return sb.String()
}
