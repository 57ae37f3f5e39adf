package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// QuoteProvider fetches live and historical market data for a ticker.
// An empty result is a valid, non-exceptional outcome ("no data").
type QuoteProvider interface {
	// Quote returns the current price, percent change and name for a ticker.
	Quote(ctx context.Context, ticker string) (models.PricePoint, error)
	// HistoricalCloses returns the most recent intraday closing prices,
	// oldest first, with missing samples filtered out.
	HistoricalCloses(ctx context.Context, ticker string) ([]float64, error)
	// Trending returns the current trending symbols.
	Trending(ctx context.Context) ([]models.TrendingSymbol, error)
}

// ForecastProvider fetches a multi-step future-price forecast, one point
// per hour. Treated as untrusted, possibly-empty external input.
type ForecastProvider interface {
	Forecast(ctx context.Context, ticker string) ([]float64, error)
}

// SearchProvider looks up symbols by free-text query, with a market-movers
// feed backing the empty-query fallback.
type SearchProvider interface {
	// SearchByName returns symbols matching a company-name query.
	SearchByName(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
	// BiggestGainers returns the day's top gaining symbols with quotes.
	BiggestGainers(ctx context.Context) ([]models.SearchResult, error)
}

// PredictionStore persists the prediction audit trail. The audit job is
// the sole mutator of score fields; everything else only reads.
type PredictionStore interface {
	// UpsertByTicker creates or refreshes the single pending record for a
	// ticker and returns the stored row.
	UpsertByTicker(ctx context.Context, rec models.PredictionRecord) (models.PredictionRecord, error)
	// FindPending returns pending records whose target time is before the
	// given instant, oldest first.
	FindPending(ctx context.Context, before time.Time) ([]models.PredictionRecord, error)
	// UpdateScored atomically sets actual price, accuracy score and
	// completed status on a still-pending record.
	UpdateScored(ctx context.Context, id int64, actualPrice, accuracyScore float64) error
	// MarkFailed transitions a still-pending record to failed.
	MarkFailed(ctx context.Context, id int64) error
	// RecentCompleted returns the latest completed records, newest first.
	RecentCompleted(ctx context.Context, limit int) ([]models.PredictionRecord, error)
}

// WatchlistStore persists per-user ticker sets.
type WatchlistStore interface {
	// Toggle adds the ticker if absent, removes it if present, and returns
	// whether it was added along with the resulting list.
	Toggle(ctx context.Context, userID, ticker string) (added bool, tickers []string, err error)
	List(ctx context.Context, userID string) ([]string, error)
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordCacheLookup(family, result string)
	RecordUpstreamCall(provider, outcome string)
	RecordAuditRun()
	RecordAuditRecord(outcome string)
	RecordLatency(op string, seconds float64)
}
