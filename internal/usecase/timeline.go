package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/cache"
	xlogger "StockPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Synthesizer stitches a historical price series and a forecast series into
// one continuous timeline, and records a pending prediction whenever a
// forecast is issued.
type Synthesizer struct {
	quotes      drepo.QuoteProvider
	forecasts   drepo.ForecastProvider
	predictions drepo.PredictionStore
	rt          *cache.ReadThrough
	unifiedTTL  time.Duration
	forecastTTL time.Duration
	step        time.Duration
	logger      *xlogger.Logger

	now func() time.Time // overridable for tests
}

func NewSynthesizer(
	quotes drepo.QuoteProvider,
	forecasts drepo.ForecastProvider,
	predictions drepo.PredictionStore,
	rt *cache.ReadThrough,
	unifiedTTL, forecastTTL time.Duration,
	logger *xlogger.Logger,
) *Synthesizer {
	return &Synthesizer{
		quotes:      quotes,
		forecasts:   forecasts,
		predictions: predictions,
		rt:          rt,
		unifiedTTL:  unifiedTTL,
		forecastTTL: forecastTTL,
		step:        time.Hour,
		logger:      logger,
		now:         time.Now,
	}
}

// Unified returns the continuity-corrected past+future price path for a
// ticker. An empty result means one of the upstream series was unavailable;
// it is never an error. Non-empty timelines are cached as a unit, empty
// ones are not, so a partial outage does not pin an empty chart for the
// whole TTL.
func (s *Synthesizer) Unified(ctx context.Context, ticker string) ([]models.TimelinePoint, error) {
	key := cache.UnifiedKey(ticker)
	b, _, err := s.rt.Do(ctx, cache.FamilyUnified, key, s.unifiedTTL, func(ctx context.Context) ([]byte, error) {
		pts := s.synthesize(ctx, ticker)
		if len(pts) == 0 {
			return nil, models.ErrNoData
		}
		return json.Marshal(pts)
	})
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return nil, nil
		}
		// cache plumbing failed in some other way: degrade, don't error
		s.logger.Warn("unified synthesis failed",
			xlogger.String("ticker", ticker), xlogger.Error(err))
		return nil, nil
	}

	var pts []models.TimelinePoint
	if err := json.Unmarshal(b, &pts); err != nil {
		return nil, fmt.Errorf("decode cached timeline %s: %w", ticker, err)
	}
	return pts, nil
}

// synthesize builds the timeline. History and forecast are independent
// reads, so they are fetched concurrently and joined before the offset
// computation. Every failure path collapses to an empty timeline.
func (s *Synthesizer) synthesize(ctx context.Context, ticker string) []models.TimelinePoint {
	var history, forecast []float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.quotes.HistoricalCloses(gctx, ticker)
		if err != nil {
			s.logger.Warn("history fetch failed",
				xlogger.String("ticker", ticker), xlogger.Error(err))
			return nil
		}
		history = h
		return nil
	})
	g.Go(func() error {
		f, err := s.cachedForecast(gctx, ticker)
		if err != nil {
			s.logger.Warn("forecast fetch failed",
				xlogger.String("ticker", ticker), xlogger.Error(err))
			return nil
		}
		forecast = f
		return nil
	})
	_ = g.Wait()

	if len(history) == 0 || len(forecast) == 0 {
		return nil
	}

	// The forecast is produced independently of the live feed and is not
	// guaranteed to start at the current observed price. Shifting every
	// forecast point by the gap keeps the past/future boundary continuous
	// without altering the forecast's shape.
	currentPrice := history[len(history)-1]
	offset := currentPrice - forecast[0]

	now := s.now()
	pts := make([]models.TimelinePoint, 0, len(history)+len(forecast))
	for i, price := range history {
		pts = append(pts, models.TimelinePoint{
			Timestamp: now.Add(-time.Duration(len(history)-1-i) * s.step),
			Price:     price,
			Kind:      models.PointPast,
		})
	}
	for i, price := range forecast {
		pts = append(pts, models.TimelinePoint{
			Timestamp: now.Add(time.Duration(i+1) * s.step),
			Price:     price + offset,
			Kind:      models.PointFuture,
		})
	}
	return pts
}

// cachedForecast serves the raw forecast series through the read-through
// cache. The model retrains on a daily cadence, so a served series stays
// valid for the whole TTL; empty series are not cached, keeping provider
// outages retryable.
func (s *Synthesizer) cachedForecast(ctx context.Context, ticker string) ([]float64, error) {
	key := cache.ForecastKey(ticker)
	b, _, err := s.rt.Do(ctx, cache.FamilyForecast, key, s.forecastTTL, func(ctx context.Context) ([]byte, error) {
		series, err := s.forecasts.Forecast(ctx, ticker)
		if err != nil {
			return nil, err
		}
		if len(series) == 0 {
			return nil, models.ErrNoData
		}
		return json.Marshal(series)
	})
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			return nil, nil
		}
		return nil, err
	}

	var series []float64
	if err := json.Unmarshal(b, &series); err != nil {
		return nil, fmt.Errorf("decode cached forecast %s: %w", ticker, err)
	}
	return series, nil
}

// Forecast returns the raw forecast series for a ticker and records the
// issued prediction as a pending audit record: the final forecast point is
// the predicted price, due len(forecast) hours from now.
func (s *Synthesizer) Forecast(ctx context.Context, ticker string) ([]float64, models.PredictionRecord, error) {
	forecast, err := s.cachedForecast(ctx, ticker)
	if err != nil {
		s.logger.Warn("forecast fetch failed",
			xlogger.String("ticker", ticker), xlogger.Error(err))
		return nil, models.PredictionRecord{}, nil
	}
	if len(forecast) == 0 {
		return nil, models.PredictionRecord{}, nil
	}

	quote, err := s.quotes.Quote(ctx, ticker)
	if err != nil {
		// without a starting price the prediction cannot be audited later;
		// still serve the forecast
		s.logger.Warn("starting price unavailable, forecast not recorded",
			xlogger.String("ticker", ticker), xlogger.Error(err))
		return forecast, models.PredictionRecord{}, nil
	}

	rec, err := s.predictions.UpsertByTicker(ctx, models.PredictionRecord{
		Ticker:          ticker,
		PredictionPrice: forecast[len(forecast)-1],
		StartingPrice:   quote.Price,
		TargetTime:      s.now().Add(time.Duration(len(forecast)) * s.step),
	})
	if err != nil {
		return nil, models.PredictionRecord{}, fmt.Errorf("record prediction %s: %w", ticker, err)
	}

	return forecast, rec, nil
}
