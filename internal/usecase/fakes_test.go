package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/cache"
	xlogger "StockPulse/pkg/logger"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func testReadThrough(t *testing.T) *cache.ReadThrough {
	t.Helper()
	return cache.NewReadThrough(cache.NewTTLCache(), testLogger(t), nil)
}

// fakeQuotes serves canned quotes and close series per ticker; tickers in
// failing error on every call.
type fakeQuotes struct {
	mu       sync.Mutex
	prices   map[string]float64
	closes   map[string][]float64
	trending []models.TrendingSymbol
	failing  map[string]bool

	quoteCalls  int
	closesCalls int
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{
		prices:  map[string]float64{},
		closes:  map[string][]float64{},
		failing: map[string]bool{},
	}
}

func (f *fakeQuotes) Quote(_ context.Context, ticker string) (models.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if f.failing[ticker] {
		return models.PricePoint{}, fmt.Errorf("quote %s: %w", ticker, models.ErrUpstream)
	}
	p, ok := f.prices[ticker]
	if !ok {
		return models.PricePoint{}, fmt.Errorf("quote %s: %w", ticker, models.ErrNoData)
	}
	return models.PricePoint{Symbol: ticker, Price: p, Name: ticker + " Inc", ObservedAt: time.Now()}, nil
}

func (f *fakeQuotes) HistoricalCloses(_ context.Context, ticker string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closesCalls++
	if f.failing[ticker] {
		return nil, fmt.Errorf("chart %s: %w", ticker, models.ErrUpstream)
	}
	return f.closes[ticker], nil
}

func (f *fakeQuotes) Trending(context.Context) ([]models.TrendingSymbol, error) {
	return f.trending, nil
}

// fakeForecasts serves one canned series for every ticker.
type fakeForecasts struct {
	mu     sync.Mutex
	series []float64
	err    error
	calls  int
}

func (f *fakeForecasts) Forecast(context.Context, string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.series, f.err
}

// fakePredictions is an in-memory PredictionStore honoring the pending
// status guard.
type fakePredictions struct {
	mu   sync.Mutex
	recs []*models.PredictionRecord
	next int64
}

func (f *fakePredictions) UpsertByTicker(_ context.Context, rec models.PredictionRecord) (models.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.Ticker == rec.Ticker && r.Status == models.StatusPending {
			r.PredictionPrice = rec.PredictionPrice
			r.StartingPrice = rec.StartingPrice
			r.TargetTime = rec.TargetTime
			return *r, nil
		}
	}
	f.next++
	stored := rec
	stored.ID = f.next
	stored.Status = models.StatusPending
	stored.CreatedAt = time.Now()
	f.recs = append(f.recs, &stored)
	return stored, nil
}

func (f *fakePredictions) FindPending(_ context.Context, before time.Time) ([]models.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PredictionRecord
	for _, r := range f.recs {
		if r.Status == models.StatusPending && r.TargetTime.Before(before) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakePredictions) UpdateScored(_ context.Context, id int64, actual, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.ID == id && r.Status == models.StatusPending {
			a, s := actual, score
			r.ActualPrice = &a
			r.AccuracyScore = &s
			r.Status = models.StatusCompleted
		}
	}
	return nil
}

func (f *fakePredictions) MarkFailed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.ID == id && r.Status == models.StatusPending {
			r.Status = models.StatusFailed
		}
	}
	return nil
}

func (f *fakePredictions) RecentCompleted(_ context.Context, limit int) ([]models.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PredictionRecord
	for _, r := range f.recs {
		if r.Status == models.StatusCompleted {
			out = append(out, *r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeWatchlists is an in-memory WatchlistStore.
type fakeWatchlists struct {
	mu sync.Mutex
	m  map[string][]string
}

func newFakeWatchlists() *fakeWatchlists {
	return &fakeWatchlists{m: map[string][]string{}}
}

func (f *fakeWatchlists) Toggle(_ context.Context, userID, ticker string) (bool, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.m[userID]
	for i, t := range list {
		if t == ticker {
			f.m[userID] = append(list[:i], list[i+1:]...)
			return false, f.m[userID], nil
		}
	}
	f.m[userID] = append(list, ticker)
	return true, f.m[userID], nil
}

func (f *fakeWatchlists) List(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.m[userID]...), nil
}

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	mu      sync.Mutex
	records map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{records: map[string]int{}}
}

func (m *fakeMetrics) RecordCacheLookup(family, result string) { m.inc("cache:" + family + ":" + result) }
func (m *fakeMetrics) RecordUpstreamCall(p, o string)          { m.inc("upstream:" + p + ":" + o) }
func (m *fakeMetrics) RecordAuditRun()                         { m.inc("audit_run") }
func (m *fakeMetrics) RecordAuditRecord(outcome string)        { m.inc("audit:" + outcome) }
func (m *fakeMetrics) RecordLatency(string, float64)           {}

func (m *fakeMetrics) inc(k string) {
	m.mu.Lock()
	m.records[k]++
	m.mu.Unlock()
}

func (m *fakeMetrics) count(k string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[k]
}
