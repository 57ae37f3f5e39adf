package usecase

import (
	"context"
	"math"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// Auditor retroactively scores matured predictions against realized
// prices. It is the sole mutator of prediction score fields.
type Auditor struct {
	predictions   drepo.PredictionStore
	quotes        drepo.QuoteProvider
	metrics       drepo.Metrics
	logger        *xlogger.Logger
	minuteOffset  int
	maxPendingAge time.Duration

	now func() time.Time // overridable for tests
}

func NewAuditor(
	predictions drepo.PredictionStore,
	quotes drepo.QuoteProvider,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
	minuteOffset int,
	maxPendingAge time.Duration,
) *Auditor {
	return &Auditor{
		predictions:   predictions,
		quotes:        quotes,
		metrics:       metrics,
		logger:        logger,
		minuteOffset:  minuteOffset,
		maxPendingAge: maxPendingAge,
		now:           time.Now,
	}
}

// AccuracyScore computes 100 minus the percentage error of a prediction
// against the realized price, clamped at zero and rounded to 2 decimals.
func AccuracyScore(actual, predicted float64) float64 {
	percentError := math.Abs(actual-predicted) / actual * 100
	return util.Round2(math.Max(0, 100-percentError))
}

// Start runs the audit loop until ctx is cancelled, firing hourly at the
// configured minute offset.
func (a *Auditor) Start(ctx context.Context) {
	a.logger.Info("audit scheduler started", xlogger.Int("minute_offset", a.minuteOffset))
	for {
		next := util.NextMinuteMark(a.now(), a.minuteOffset)
		timer := time.NewTimer(next.Sub(a.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			a.logger.Info("audit scheduler stopped")
			return
		case <-timer.C:
			if err := a.RunOnce(ctx); err != nil {
				a.logger.Error("audit run failed", xlogger.Error(err))
			}
		}
	}
}

// RunOnce scores every matured pending prediction. The batch is processed
// sequentially, one record at a time, to avoid bursting the rate-limited
// quote provider. Failures are isolated per record: a record that cannot
// be scored stays pending for the next run, and one failure never aborts
// the rest of the batch.
func (a *Auditor) RunOnce(ctx context.Context) error {
	a.metrics.RecordAuditRun()
	start := a.now()

	pending, err := a.predictions.FindPending(ctx, start)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	a.logger.Info("auditing matured predictions", xlogger.Int("count", len(pending)))

	for _, rec := range pending {
		a.auditRecord(ctx, rec)
	}

	a.metrics.RecordLatency("audit_run", a.now().Sub(start).Seconds())
	return nil
}

func (a *Auditor) auditRecord(ctx context.Context, rec models.PredictionRecord) {
	now := a.now()

	// bounded retry: a record the provider has not been able to price for
	// this long is abandoned rather than retried forever
	if a.maxPendingAge > 0 && now.Sub(rec.TargetTime) > a.maxPendingAge {
		if err := a.predictions.MarkFailed(ctx, rec.ID); err != nil {
			a.logger.Error("mark failed",
				xlogger.String("ticker", rec.Ticker), xlogger.Error(err))
			return
		}
		a.metrics.RecordAuditRecord("failed")
		a.logger.Warn("prediction abandoned",
			xlogger.String("ticker", rec.Ticker),
			xlogger.Duration("overdue", now.Sub(rec.TargetTime)))
		return
	}

	closes, err := a.quotes.HistoricalCloses(ctx, rec.Ticker)
	if err != nil || len(closes) == 0 {
		if err != nil {
			a.logger.Warn("audit price fetch failed",
				xlogger.String("ticker", rec.Ticker), xlogger.Error(err))
		}
		// leave pending, retry next run
		a.metrics.RecordAuditRecord("skipped")
		return
	}

	actual := closes[len(closes)-1]
	if actual == 0 {
		a.metrics.RecordAuditRecord("skipped")
		return
	}

	score := AccuracyScore(actual, rec.PredictionPrice)
	if err := a.predictions.UpdateScored(ctx, rec.ID, actual, score); err != nil {
		a.logger.Error("audit update failed",
			xlogger.String("ticker", rec.Ticker), xlogger.Error(err))
		return
	}

	a.metrics.RecordAuditRecord("scored")
	a.logger.Info("audit complete",
		xlogger.String("ticker", rec.Ticker),
		xlogger.Float64("accuracy", score))
}

// Summary returns the recent completed records and the mean accuracy
// across them.
func (a *Auditor) Summary(ctx context.Context) (models.AuditSummary, error) {
	logs, err := a.predictions.RecentCompleted(ctx, 50)
	if err != nil {
		return models.AuditSummary{}, err
	}

	var total float64
	var scored int
	for _, rec := range logs {
		if rec.AccuracyScore != nil {
			total += *rec.AccuracyScore
			scored++
		}
	}

	summary := models.AuditSummary{
		Logs:             logs,
		TotalPredictions: len(logs),
	}
	if scored > 0 {
		summary.GlobalScore = util.Round2(total / float64(scored))
	}
	return summary, nil
}
