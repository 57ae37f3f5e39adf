package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
)

// PredictionSchema holds the idempotent DDL for the prediction audit trail.
// The partial unique index backs the ticker-scoped upsert: at most one
// pending record per ticker, while completed/failed history accumulates.
var PredictionSchema = []string{
	`CREATE TABLE IF NOT EXISTS predictions (
		id               BIGSERIAL PRIMARY KEY,
		ticker           TEXT NOT NULL,
		prediction_price DOUBLE PRECISION NOT NULL,
		starting_price   DOUBLE PRECISION NOT NULL,
		target_time      TIMESTAMPTZ NOT NULL,
		actual_price     DOUBLE PRECISION,
		accuracy_score   DOUBLE PRECISION,
		status           TEXT NOT NULL DEFAULT 'pending',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS predictions_pending_ticker_idx
		ON predictions (ticker) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS predictions_ticker_target_idx
		ON predictions (ticker, target_time DESC)`,
}

// PostgresPredictionStore implements PredictionStore on Postgres.
type PostgresPredictionStore struct {
	db *sql.DB
}

func NewPostgresPredictionStore(db *sql.DB) *PostgresPredictionStore {
	return &PostgresPredictionStore{db: db}
}

var _ drepo.PredictionStore = (*PostgresPredictionStore)(nil)

const predictionColumns = `id, ticker, prediction_price, starting_price, target_time,
	actual_price, accuracy_score, status, created_at`

// UpsertByTicker creates or refreshes the single pending record for a ticker.
func (s *PostgresPredictionStore) UpsertByTicker(ctx context.Context, rec models.PredictionRecord) (models.PredictionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO predictions (ticker, prediction_price, starting_price, target_time, status)
		VALUES ($1, $2, $3, $4, 'pending')
		ON CONFLICT (ticker) WHERE status = 'pending' DO UPDATE SET
			prediction_price = EXCLUDED.prediction_price,
			starting_price   = EXCLUDED.starting_price,
			target_time      = EXCLUDED.target_time,
			created_at       = NOW()
		RETURNING `+predictionColumns,
		rec.Ticker, rec.PredictionPrice, rec.StartingPrice, rec.TargetTime)

	out, err := scanPrediction(row)
	if err != nil {
		return models.PredictionRecord{}, fmt.Errorf("upsert prediction %s: %w", rec.Ticker, err)
	}
	return out, nil
}

// FindPending returns pending records matured before the given instant,
// oldest first.
func (s *PostgresPredictionStore) FindPending(ctx context.Context, before time.Time) ([]models.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE status = 'pending' AND target_time < $1
		ORDER BY target_time ASC`, before)
	if err != nil {
		return nil, fmt.Errorf("find pending: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// UpdateScored persists actual price, accuracy score and completed status as
// one atomic update. The status guard makes re-scoring a no-op.
func (s *PostgresPredictionStore) UpdateScored(ctx context.Context, id int64, actualPrice, accuracyScore float64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE predictions
		SET actual_price = $2, accuracy_score = $3, status = 'completed'
		WHERE id = $1 AND status = 'pending'`,
		id, actualPrice, accuracyScore)
	if err != nil {
		return fmt.Errorf("update scored %d: %w", id, err)
	}
	return nil
}

// MarkFailed transitions a still-pending record to failed.
func (s *PostgresPredictionStore) MarkFailed(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE predictions
		SET status = 'failed'
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("mark failed %d: %w", id, err)
	}
	return nil
}

// RecentCompleted returns the latest completed records, newest target first.
func (s *PostgresPredictionStore) RecentCompleted(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE status = 'completed'
		ORDER BY target_time DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent completed: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(r rowScanner) (models.PredictionRecord, error) {
	var (
		rec      models.PredictionRecord
		actual   sql.NullFloat64
		accuracy sql.NullFloat64
	)
	err := r.Scan(&rec.ID, &rec.Ticker, &rec.PredictionPrice, &rec.StartingPrice,
		&rec.TargetTime, &actual, &accuracy, &rec.Status, &rec.CreatedAt)
	if err != nil {
		return rec, err
	}
	if actual.Valid {
		rec.ActualPrice = &actual.Float64
	}
	if accuracy.Valid {
		rec.AccuracyScore = &accuracy.Float64
	}
	return rec, nil
}

func collectPredictions(rows *sql.Rows) ([]models.PredictionRecord, error) {
	var out []models.PredictionRecord
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
