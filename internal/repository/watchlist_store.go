package repository

import (
	"context"
	"database/sql"
	"fmt"

	drepo "StockPulse/internal/domain/repository"
)

// WatchlistSchema holds the idempotent DDL for per-user watchlists.
var WatchlistSchema = []string{
	`CREATE TABLE IF NOT EXISTS watchlists (
		user_id  TEXT NOT NULL,
		ticker   TEXT NOT NULL,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, ticker)
	)`,
}

// PostgresWatchlistStore implements WatchlistStore on Postgres.
type PostgresWatchlistStore struct {
	db *sql.DB
}

func NewPostgresWatchlistStore(db *sql.DB) *PostgresWatchlistStore {
	return &PostgresWatchlistStore{db: db}
}

var _ drepo.WatchlistStore = (*PostgresWatchlistStore)(nil)

// Toggle adds the ticker if absent, removes it if present. Membership is
// idempotent: toggling twice restores the original state.
func (s *PostgresWatchlistStore) Toggle(ctx context.Context, userID, ticker string) (bool, []string, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlists WHERE user_id = $1 AND ticker = $2`, userID, ticker)
	if err != nil {
		return false, nil, fmt.Errorf("watchlist toggle: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, nil, fmt.Errorf("watchlist toggle: %w", err)
	}

	added := removed == 0
	if added {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO watchlists (user_id, ticker) VALUES ($1, $2)
			ON CONFLICT (user_id, ticker) DO NOTHING`, userID, ticker)
		if err != nil {
			return false, nil, fmt.Errorf("watchlist toggle: %w", err)
		}
	}

	list, err := s.List(ctx, userID)
	if err != nil {
		return added, nil, err
	}
	return added, list, nil
}

// List returns the user's tickers in stable order.
func (s *PostgresWatchlistStore) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ticker FROM watchlists WHERE user_id = $1 ORDER BY added_at, ticker`, userID)
	if err != nil {
		return nil, fmt.Errorf("watchlist list: %w", err)
	}
	defer rows.Close()

	tickers := make([]string, 0, 8)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("watchlist scan: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
