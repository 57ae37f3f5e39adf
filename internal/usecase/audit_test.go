package usecase

import (
	"context"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func newTestAuditor(t *testing.T, store *fakePredictions, quotes *fakeQuotes, metrics *fakeMetrics) *Auditor {
	t.Helper()
	a := NewAuditor(store, quotes, metrics, testLogger(t), 5, 72*time.Hour)
	a.now = func() time.Time { return time.Date(2024, 10, 10, 15, 5, 0, 0, time.UTC) }
	return a
}

func pendingRecord(id int64, ticker string, predicted float64, target time.Time) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:              id,
		Ticker:          ticker,
		PredictionPrice: predicted,
		StartingPrice:   predicted,
		TargetTime:      target,
		Status:          models.StatusPending,
	}
}

func TestAccuracyScore(t *testing.T) {
	if got := AccuracyScore(100, 95); got != 95.00 {
		t.Fatalf("got %v want 95.00", got)
	}
	// 100% error clamps to zero, never negative
	if got := AccuracyScore(50, 100); got != 0 {
		t.Fatalf("got %v want 0", got)
	}
	if got := AccuracyScore(100, 100); got != 100 {
		t.Fatalf("got %v want 100", got)
	}
}

func TestAuditScoresMaturedPending(t *testing.T) {
	target := time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)
	store := &fakePredictions{recs: []*models.PredictionRecord{
		pendingRecord(1, "TSLA", 95, target),
	}}
	quotes := newFakeQuotes()
	quotes.closes["TSLA"] = []float64{99, 100}
	metrics := newFakeMetrics()

	a := newTestAuditor(t, store, quotes, metrics)
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	rec := store.recs[0]
	if rec.Status != models.StatusCompleted {
		t.Fatalf("status %s", rec.Status)
	}
	if rec.ActualPrice == nil || *rec.ActualPrice != 100 {
		t.Fatalf("actual %v", rec.ActualPrice)
	}
	if rec.AccuracyScore == nil || *rec.AccuracyScore != 95.00 {
		t.Fatalf("score %v", rec.AccuracyScore)
	}
	if metrics.count("audit:scored") != 1 {
		t.Fatalf("scored count %d", metrics.count("audit:scored"))
	}
}

func TestAuditIdempotent(t *testing.T) {
	target := time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)
	store := &fakePredictions{recs: []*models.PredictionRecord{
		pendingRecord(1, "TSLA", 95, target),
	}}
	quotes := newFakeQuotes()
	quotes.closes["TSLA"] = []float64{100}
	metrics := newFakeMetrics()

	a := newTestAuditor(t, store, quotes, metrics)
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// realized price moves; a second run must not re-score
	quotes.closes["TSLA"] = []float64{50}
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rec := store.recs[0]
	if *rec.ActualPrice != 100 || *rec.AccuracyScore != 95.00 {
		t.Fatalf("record re-scored: %+v", rec)
	}
	if metrics.count("audit:scored") != 1 {
		t.Fatalf("scored count %d", metrics.count("audit:scored"))
	}
}

func TestAuditIsolatesPerRecordFailures(t *testing.T) {
	target := time.Date(2024, 10, 10, 14, 0, 0, 0, time.UTC)
	store := &fakePredictions{recs: []*models.PredictionRecord{
		pendingRecord(1, "GOOD", 100, target),
		pendingRecord(2, "BAD", 100, target),
		pendingRecord(3, "ALSOGOOD", 100, target),
	}}
	quotes := newFakeQuotes()
	quotes.closes["GOOD"] = []float64{100}
	quotes.closes["ALSOGOOD"] = []float64{100}
	quotes.failing["BAD"] = true
	metrics := newFakeMetrics()

	a := newTestAuditor(t, store, quotes, metrics)
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if store.recs[0].Status != models.StatusCompleted || store.recs[2].Status != models.StatusCompleted {
		t.Fatal("healthy records should be scored")
	}
	if store.recs[1].Status != models.StatusPending {
		t.Fatalf("failing record should stay pending, got %s", store.recs[1].Status)
	}
	if metrics.count("audit:skipped") != 1 {
		t.Fatalf("skipped count %d", metrics.count("audit:skipped"))
	}
}

func TestAuditAbandonsStalePending(t *testing.T) {
	// matured far beyond the pending-age bound
	target := time.Date(2024, 10, 1, 14, 0, 0, 0, time.UTC)
	store := &fakePredictions{recs: []*models.PredictionRecord{
		pendingRecord(1, "GHOST", 100, target),
	}}
	quotes := newFakeQuotes()
	metrics := newFakeMetrics()

	a := newTestAuditor(t, store, quotes, metrics)
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if store.recs[0].Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", store.recs[0].Status)
	}
}

func TestAuditIgnoresUnmatured(t *testing.T) {
	target := time.Date(2024, 10, 10, 16, 0, 0, 0, time.UTC) // in the future
	store := &fakePredictions{recs: []*models.PredictionRecord{
		pendingRecord(1, "TSLA", 95, target),
	}}
	quotes := newFakeQuotes()
	quotes.closes["TSLA"] = []float64{100}

	a := newTestAuditor(t, store, quotes, newFakeMetrics())
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if store.recs[0].Status != models.StatusPending {
		t.Fatalf("unmatured record touched: %s", store.recs[0].Status)
	}
}

func TestSummaryGlobalScore(t *testing.T) {
	s90, s80 := 90.0, 80.0
	a100, a200 := 100.0, 200.0
	store := &fakePredictions{recs: []*models.PredictionRecord{
		{ID: 1, Ticker: "A", Status: models.StatusCompleted, AccuracyScore: &s90, ActualPrice: &a100},
		{ID: 2, Ticker: "B", Status: models.StatusCompleted, AccuracyScore: &s80, ActualPrice: &a200},
		{ID: 3, Ticker: "C", Status: models.StatusPending},
	}}

	a := newTestAuditor(t, store, newFakeQuotes(), newFakeMetrics())
	sum, err := a.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalPredictions != 2 {
		t.Fatalf("total %d", sum.TotalPredictions)
	}
	if sum.GlobalScore != 85.00 {
		t.Fatalf("global score %v", sum.GlobalScore)
	}
}
