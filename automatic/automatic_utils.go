package automatic

// Data collection for automatic games: many engine-vs-engine games in
// parallel, logged to a CSV file.

import (
	"context"
	"errors"
	"expvar"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/othello/config"
	"github.com/domino14/othello/move"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

const turnLogHeader = "gameID,turn,side,move,black,white,ms\n"

type CompVCompOptions struct {
	NumGames int
	Threads  int
	Player1  string
	Player2  string
	// random plies played before the engines take over
	OpeningPlies int
	// Openings, if set, are used instead of random ones, cycling.
	Openings [][]move.Move
	// MsPerSide is each side's clock per game; zero means fixed depth.
	MsPerSide      int
	Seed           [32]byte
	OutputFilename string
	// ResultsDB, if set, is a SQLite file every game result is added to.
	ResultsDB string
}

type job struct {
	opening []move.Move
	p1Black bool
}

// StartCompVComp plays opts.NumGames games on opts.Threads workers and
// waits for them. Each opening is played twice, once with each engine
// as black. The turn log goes to opts.OutputFilename.
func StartCompVComp(ctx context.Context, cfg *config.Config, opts CompVCompOptions) (*MatchStats, error) {
	if IsPlaying.Value() > 0 {
		return nil, errors.New("games are already being played, please wait till complete")
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Player1 == "" {
		opts.Player1 = WeightedPlayer
	}
	if opts.Player2 == "" {
		opts.Player2 = WeightedPlayer
	}
	for _, name := range []string{opts.Player1, opts.Player2} {
		if err := ValidatePlayer(name); err != nil {
			return nil, err
		}
	}

	openings := opts.Openings
	if len(openings) == 0 {
		rng := frand.NewCustom(opts.Seed[:], 1024, 12)
		openings = GenerateOpenings(rng, (opts.NumGames+1)/2, opts.OpeningPlies)
	}

	var store *ResultStore
	if opts.ResultsDB != "" {
		var err error
		if store, err = OpenResultStore(opts.ResultsDB); err != nil {
			return nil, err
		}
		defer store.Close()
	}

	logfile, err := os.Create(opts.OutputFilename)
	if err != nil {
		return nil, err
	}
	log.Debug().Msgf("Starting %v games, %v threads", opts.NumGames, opts.Threads)

	CVCCounter.Set(0)
	jobs := make(chan job, 100)
	logChan := make(chan string, 100)

	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		defer logfile.Close()
		logfile.WriteString(turnLogHeader)
		for msg := range logChan {
			logfile.WriteString(msg)
		}
		log.Info().Msg("exiting-turn-logger")
	}()

	total := NewMatchStats(opts.Player1, opts.Player2)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.NumGames; i++ {
			j := job{opening: openings[(i/2)%len(openings)], p1Black: i%2 == 0}
			select {
			case jobs <- j:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
		}
		log.Info().Msg("Finished queueing all jobs.")
		return nil
	})

	for t := 0; t < opts.Threads; t++ {
		g.Go(func() error {
			r := NewGameRunner(logChan, cfg)
			if err := r.Init(opts.Player1, opts.Player2); err != nil {
				return err
			}
			r.SetClock(opts.MsPerSide)
			local := NewMatchStats(opts.Player1, opts.Player2)
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			// Finished games count however the worker exits.
			defer func() {
				mu.Lock()
				total.Merge(local)
				mu.Unlock()
			}()
			for j := range jobs {
				res, err := r.PlayGame(gctx, j.opening, j.p1Black)
				if err != nil {
					if gctx.Err() != nil {
						// stopped mid-game; the partial game is dropped
						return nil
					}
					return err
				}
				local.Add(res)
				CVCCounter.Add(1)
				if store != nil {
					// a finished game is stored even after a stop request
					if err := store.Record(context.WithoutCancel(gctx), opts.Player1, opts.Player2, res); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}

	err = g.Wait()
	close(logChan)
	writerWG.Wait()
	log.Info().Int("games", total.Games).Msg("All games finished.")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// a stop request; report what finished
		return total, nil
	}
	return total, err
}
