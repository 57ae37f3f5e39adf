package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/cache"
	xlogger "StockPulse/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// QuoteService serves live prices and trending symbols through the
// read-through cache.
type QuoteService struct {
	quotes      drepo.QuoteProvider
	rt          *cache.ReadThrough
	priceTTL    time.Duration
	trendingTTL time.Duration
	logger      *xlogger.Logger
}

func NewQuoteService(quotes drepo.QuoteProvider, rt *cache.ReadThrough, priceTTL, trendingTTL time.Duration, logger *xlogger.Logger) *QuoteService {
	return &QuoteService{
		quotes:      quotes,
		rt:          rt,
		priceTTL:    priceTTL,
		trendingTTL: trendingTTL,
		logger:      logger,
	}
}

// LivePrice returns the current quote for a ticker, cached for a short TTL
// to keep the "live" feel without hammering the provider.
func (s *QuoteService) LivePrice(ctx context.Context, ticker string) (models.PricePoint, error) {
	key := cache.PriceKey(ticker)
	b, cached, err := s.rt.Do(ctx, cache.FamilyPrice, key, s.priceTTL, func(ctx context.Context) ([]byte, error) {
		p, err := s.quotes.Quote(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	})
	if err != nil {
		return models.PricePoint{}, err
	}

	var p models.PricePoint
	if err := json.Unmarshal(b, &p); err != nil {
		return models.PricePoint{}, fmt.Errorf("decode cached price %s: %w", ticker, err)
	}
	if cached {
		p.Source = "cache"
	} else {
		p.Source = "live"
	}
	return p, nil
}

// Trending returns the trending symbols enriched with live quotes. Quotes
// are fetched in parallel and per-symbol failures drop that symbol from the
// batch rather than failing it.
func (s *QuoteService) Trending(ctx context.Context) ([]models.TrendingQuote, error) {
	b, _, err := s.rt.Do(ctx, cache.FamilyTrending, cache.TrendingKey, s.trendingTTL, func(ctx context.Context) ([]byte, error) {
		enriched, err := s.fetchTrending(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(enriched)
	})
	if err != nil {
		return nil, err
	}

	var out []models.TrendingQuote
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode cached trending: %w", err)
	}
	return out, nil
}

func (s *QuoteService) fetchTrending(ctx context.Context) ([]models.TrendingQuote, error) {
	symbols, err := s.quotes.Trending(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*models.TrendingQuote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			p, err := s.quotes.Quote(gctx, sym.Symbol)
			if err != nil {
				// drop this symbol, keep the batch
				s.logger.Warn("trending quote failed",
					xlogger.String("symbol", sym.Symbol), xlogger.Error(err))
				return nil
			}
			if p.Name == "" {
				p.Name = sym.Name
			}
			results[i] = &models.TrendingQuote{PricePoint: p}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.TrendingQuote, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
