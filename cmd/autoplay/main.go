// Command autoplay plays engine-vs-engine matches and prints the results.
// Counters are published over expvar when -debug-addr is given.
package main

import (
	"context"
	_ "expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"lukechampine.com/frand"

	"github.com/domino14/othello/automatic"
	"github.com/domino14/othello/config"
)

const (
	GracefulShutdownTimeout = 20 * time.Second

	flagGames        = "games"
	flagThreads      = "threads"
	flagPlayer1      = "player1"
	flagPlayer2      = "player2"
	flagOpeningPlies = "opening-plies"
	flagMsPerSide    = "ms-per-side"
	flagOpenings     = "openings"
	flagSaveOpenings = "save-openings"
	flagDebugAddr    = "debug-addr"
	flagResultsDB    = "results-db"
)

func main() {
	fs := pflag.NewFlagSet("autoplay", pflag.ContinueOnError)
	fs.Int(flagGames, 100, "number of games to play")
	fs.Int(flagThreads, runtime.NumCPU(), "games played at once")
	fs.String(flagPlayer1, automatic.WeightedPlayer, "first engine: weighted or disc")
	fs.String(flagPlayer2, automatic.DiscPlayer, "second engine: weighted or disc")
	fs.Int(flagOpeningPlies, 4, "random plies before the engines take over")
	fs.Int(flagMsPerSide, 0, "clock per side per game in ms; 0 searches to the fixed depth")
	fs.String(flagOpenings, "", "read openings from this file instead of generating them")
	fs.String(flagSaveOpenings, "", "write the generated openings to this file")
	fs.String(flagResultsDB, "", "also add every game result to this SQLite file")
	fs.String(flagDebugAddr, "", "serve expvar counters on this address, e.g. :8088")

	cfg := &config.Config{}
	if err := cfg.LoadFlags(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			log.Fatal().Err(err).Msg("")
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	var srv *http.Server
	if addr := cfg.GetString(flagDebugAddr); addr != "" {
		srv = &http.Server{Addr: addr, Handler: http.DefaultServeMux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("debug-server-failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := automatic.CompVCompOptions{
		NumGames:       cfg.GetInt(flagGames),
		Threads:        cfg.GetInt(flagThreads),
		Player1:        cfg.GetString(flagPlayer1),
		Player2:        cfg.GetString(flagPlayer2),
		OpeningPlies:   cfg.GetInt(flagOpeningPlies),
		MsPerSide:      cfg.GetInt(flagMsPerSide),
		OutputFilename: cfg.GetString(config.ConfigAutoplayLog),
		ResultsDB:      cfg.GetString(flagResultsDB),
	}
	frand.Read(opts.Seed[:])

	if path := cfg.GetString(flagOpenings); path != "" {
		openings, err := automatic.LoadOpenings(path)
		if err != nil {
			log.Fatal().Err(err).Msg("loading-openings")
		}
		opts.Openings = openings
	} else if path := cfg.GetString(flagSaveOpenings); path != "" {
		rng := frand.NewCustom(opts.Seed[:], 1024, 12)
		opts.Openings = automatic.GenerateOpenings(rng, (opts.NumGames+1)/2, opts.OpeningPlies)
		if err := automatic.SaveOpenings(opts.Openings, path); err != nil {
			log.Fatal().Err(err).Msg("saving-openings")
		}
	}

	ms, err := automatic.StartCompVComp(ctx, cfg, opts)
	if err != nil {
		log.Error().Err(err).Msg("autoplay-failed")
	}
	if ms != nil {
		fmt.Println(ms.String())
	}

	if opts.ResultsDB != "" {
		if err := printPooledStats(ctx, opts); err != nil {
			log.Error().Err(err).Msg("reading-results-db")
		}
	}

	if summary, err := automatic.AnalyzeLogFile(opts.OutputFilename); err != nil {
		log.Error().Err(err).Msg("analyzing-log")
	} else {
		fmt.Println(summary.String())
	}

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Msgf("HTTP server Shutdown: %v", err)
		}
		cancel()
	}
	log.Info().Msg("autoplay finished")
}

// printPooledStats shows the results of every game between the two
// players ever stored in the results database.
func printPooledStats(ctx context.Context, opts automatic.CompVCompOptions) error {
	store, err := automatic.OpenResultStore(opts.ResultsDB)
	if err != nil {
		return err
	}
	defer store.Close()
	ms, err := store.Stats(context.WithoutCancel(ctx), opts.Player1, opts.Player2)
	if err != nil {
		return err
	}
	fmt.Println("All stored games:")
	fmt.Println(ms.String())
	return nil
}
