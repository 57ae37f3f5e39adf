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
	"StockPulse/pkg/util"

	"golang.org/x/sync/errgroup"
)

// WatchlistService manages per-user ticker sets and their batch
// enrichment with quotes and sparklines.
type WatchlistService struct {
	store    drepo.WatchlistStore
	quotes   drepo.QuoteProvider
	rt       *cache.ReadThrough
	priceTTL time.Duration
	logger   *xlogger.Logger
}

func NewWatchlistService(store drepo.WatchlistStore, quotes drepo.QuoteProvider, rt *cache.ReadThrough, priceTTL time.Duration, logger *xlogger.Logger) *WatchlistService {
	return &WatchlistService{
		store:    store,
		quotes:   quotes,
		rt:       rt,
		priceTTL: priceTTL,
		logger:   logger,
	}
}

// Toggle adds or removes a ticker from the user's watchlist.
func (s *WatchlistService) Toggle(ctx context.Context, userID, symbol string) (models.ToggleResult, error) {
	ticker := util.NormalizeTicker(symbol)
	if ticker == "" {
		return models.ToggleResult{}, fmt.Errorf("invalid ticker symbol")
	}

	added, list, err := s.store.Toggle(ctx, userID, ticker)
	if err != nil {
		return models.ToggleResult{}, err
	}

	msg := "Removed from wishlist"
	if added {
		msg = "Added to wishlist"
	}
	return models.ToggleResult{Message: msg, Watchlist: list}, nil
}

// List returns the user's raw ticker list.
func (s *WatchlistService) List(ctx context.Context, userID string) ([]string, error) {
	return s.store.List(ctx, userID)
}

// Details returns the user's watchlist enriched with live quotes and
// sparklines. Tickers are enriched in parallel; a ticker whose provider
// calls fail is dropped from the result, never failing the batch.
func (s *WatchlistService) Details(ctx context.Context, userID string) ([]models.WatchlistQuote, error) {
	tickers, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return []models.WatchlistQuote{}, nil
	}

	results := make([]*models.WatchlistQuote, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			wq, err := s.enrich(gctx, ticker)
			if err != nil {
				s.logger.Warn("watchlist enrich failed",
					xlogger.String("ticker", ticker), xlogger.Error(err))
				return nil
			}
			results[i] = wq
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.WatchlistQuote, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// enrich serves one ticker's quote+sparkline through the price cache. The
// cached object is the full enriched payload, so a watchlist refresh and a
// live-price lookup share the same entry.
func (s *WatchlistService) enrich(ctx context.Context, ticker string) (*models.WatchlistQuote, error) {
	key := cache.PriceKey(ticker)
	b, cached, err := s.rt.Do(ctx, cache.FamilyPrice, key, s.priceTTL, func(ctx context.Context) ([]byte, error) {
		var (
			price models.PricePoint
			spark []float64
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			p, err := s.quotes.Quote(gctx, ticker)
			if err != nil {
				return err
			}
			price = p
			return nil
		})
		g.Go(func() error {
			// sparkline is decoration: losing it should not drop the ticker
			sp, err := s.quotes.HistoricalCloses(gctx, ticker)
			if err != nil {
				return nil
			}
			spark = sp
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if price.Name == "" {
			price.Name = ticker
		}
		return json.Marshal(models.WatchlistQuote{PricePoint: price, Sparkline: spark})
	})
	if err != nil {
		return nil, err
	}

	var wq models.WatchlistQuote
	if err := json.Unmarshal(b, &wq); err != nil {
		return nil, fmt.Errorf("decode cached watchlist entry %s: %w", ticker, err)
	}
	if wq.Sparkline == nil {
		wq.Sparkline = []float64{}
	}
	if cached {
		wq.Source = "cache"
	} else {
		wq.Source = "live"
	}
	return &wq, nil
}
