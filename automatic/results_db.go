package automatic

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"
)

const (
	recordAttempts = 5
	recordDelay    = 20 * time.Millisecond
)

const createGamesTable = `CREATE TABLE IF NOT EXISTS games (
	game_id     TEXT PRIMARY KEY,
	player1     TEXT NOT NULL,
	player2     TEXT NOT NULL,
	p1_black    INTEGER NOT NULL,
	black_discs INTEGER NOT NULL,
	white_discs INTEGER NOT NULL,
	turns       INTEGER NOT NULL,
	opening     TEXT NOT NULL,
	played_at   TEXT NOT NULL
)`

// ResultStore keeps game results in a SQLite database, so results from
// many autoplay runs can be pooled per pairing.
type ResultStore struct {
	db *sql.DB
}

func OpenResultStore(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createGamesTable); err != nil {
		db.Close()
		return nil, err
	}
	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

// Record stores one game, retrying while the database is locked.
func (s *ResultStore) Record(ctx context.Context, player1, player2 string, r GameResult) error {
	return retry.Do(
		func() error {
			_, err := s.db.ExecContext(ctx,
				`INSERT INTO games (game_id, player1, player2, p1_black, black_discs,
					white_discs, turns, opening, played_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.GameID, player1, player2, lo.Ternary(r.P1Black, 1, 0), r.BlackDiscs, r.WhiteDiscs,
				r.Turns, r.Opening, time.Now().UTC().Format(time.RFC3339))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(recordAttempts),
		retry.Delay(recordDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return strings.Contains(err.Error(), "locked") || strings.Contains(err.Error(), "SQLITE_BUSY")
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("attempt", n).Str("gid", r.GameID).Msg("retrying-record")
		}),
	)
}

// Stats rebuilds the match statistics of every stored game between the
// two players, in that order.
func (s *ResultStore) Stats(ctx context.Context, player1, player2 string) (*MatchStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, p1_black, black_discs, white_discs, turns, opening
		FROM games WHERE player1 = ? AND player2 = ? ORDER BY played_at, game_id`,
		player1, player2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ms := NewMatchStats(player1, player2)
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.GameID, &r.P1Black, &r.BlackDiscs, &r.WhiteDiscs,
			&r.Turns, &r.Opening); err != nil {
			return nil, err
		}
		ms.Add(r)
	}
	return ms, rows.Err()
}
