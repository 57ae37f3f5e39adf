package di

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/brain"
	icache "StockPulse/internal/service/cache"
	"StockPulse/internal/service/fmp"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/yahoo"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	pkgpg "StockPulse/pkg/postgres"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	lcfg := &xlogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lcfg.Level = "debug"
		lcfg.Format = "console"
	}
	l, err := xlogger.New(lcfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the Redis cache, falling back to the in-memory
// TTL cache when Redis is unreachable. The cache holds only derivable
// data, so starting without it degrades latency, not correctness.
func ProvideCache(cfg *config.Config, l *xlogger.Logger) icache.BytesCache {
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unreachable, using in-memory cache",
			xlogger.String("addr", cfg.Redis.Addr), xlogger.Error(err))
		_ = rc.Close()
		return icache.NewTTLCache()
	}
	return rc
}

// ProvideReadThrough creates the coalescing read-through cache front.
func ProvideReadThrough(c icache.BytesCache, l *xlogger.Logger, m repository.Metrics) *icache.ReadThrough {
	return icache.NewReadThrough(c, l, m)
}

// ProvidePostgresClient creates the Postgres client and ensures schema.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	client, err := pkgpg.NewClient(
		pkgpg.WithHost(cfg.Postgres.Host, cfg.Postgres.Port),
		pkgpg.WithDatabase(cfg.Postgres.Database),
		pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
		pkgpg.WithSSLMode(cfg.Postgres.SSLMode),
		pkgpg.WithMaxConnections(10, 5),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append(append([]string{}, internalrepo.PredictionSchema...), internalrepo.WatchlistSchema...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return client, nil
}

// ProvidePredictionStore creates the Postgres prediction audit trail.
func ProvidePredictionStore(pg *pkgpg.Client) repository.PredictionStore {
	return internalrepo.NewPostgresPredictionStore(pg.DB())
}

// ProvideWatchlistStore creates the Postgres watchlist store.
func ProvideWatchlistStore(pg *pkgpg.Client) repository.WatchlistStore {
	return internalrepo.NewPostgresWatchlistStore(pg.DB())
}

// ProvideQuoteProvider creates the rate-limited quote provider client.
func ProvideQuoteProvider(cfg *config.Config, m repository.Metrics) repository.QuoteProvider {
	return yahoo.New(cfg.Quotes.BaseURL, cfg.Quotes.Timeout,
		yahoo.WithRateLimit(ratelimit.New(), cfg.Quotes.MaxRPS),
		yahoo.WithMetrics(m),
		yahoo.WithSparkPoints(cfg.Quotes.SparkPoints),
	)
}

// ProvideForecastProvider creates the forecasting service client.
func ProvideForecastProvider(cfg *config.Config, m repository.Metrics) repository.ForecastProvider {
	return brain.New(cfg.Brain.BaseURL, cfg.Brain.Timeout, m)
}

// ProvideSearchProvider creates the symbol search client.
func ProvideSearchProvider(cfg *config.Config, m repository.Metrics) repository.SearchProvider {
	return fmp.New(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.Timeout, m)
}

// ProvideQuoteService creates the price/trending use case.
func ProvideQuoteService(
	quotes repository.QuoteProvider,
	rt *icache.ReadThrough,
	cfg *config.Config,
	l *xlogger.Logger,
) *usecase.QuoteService {
	return usecase.NewQuoteService(quotes, rt, cfg.CacheTTL.Price, cfg.CacheTTL.Trending, l)
}

// ProvideSynthesizer creates the unified timeline use case.
func ProvideSynthesizer(
	quotes repository.QuoteProvider,
	forecasts repository.ForecastProvider,
	predictions repository.PredictionStore,
	rt *icache.ReadThrough,
	cfg *config.Config,
	l *xlogger.Logger,
) *usecase.Synthesizer {
	return usecase.NewSynthesizer(quotes, forecasts, predictions, rt, cfg.CacheTTL.Unified, cfg.CacheTTL.Forecast, l)
}

// ProvideWatchlistService creates the watchlist use case.
func ProvideWatchlistService(
	store repository.WatchlistStore,
	quotes repository.QuoteProvider,
	rt *icache.ReadThrough,
	cfg *config.Config,
	l *xlogger.Logger,
) *usecase.WatchlistService {
	return usecase.NewWatchlistService(store, quotes, rt, cfg.CacheTTL.Price, l)
}

// ProvideAuditor creates the prediction audit scheduler.
func ProvideAuditor(
	predictions repository.PredictionStore,
	quotes repository.QuoteProvider,
	m repository.Metrics,
	cfg *config.Config,
	l *xlogger.Logger,
) *usecase.Auditor {
	return usecase.NewAuditor(predictions, quotes, m, l, cfg.Audit.MinuteOffset, cfg.Audit.MaxPendingAge)
}

// ProvideSearchService creates the symbol search use case.
func ProvideSearchService(provider repository.SearchProvider, l *xlogger.Logger) *usecase.SearchService {
	return usecase.NewSearchService(provider, l)
}

// ProvidePriceStream creates the websocket price push handler.
func ProvidePriceStream(l *xlogger.Logger, quotes *usecase.QuoteService, cfg *config.Config) *api.PriceStreamHandler {
	return api.NewPriceStreamHandler(l, quotes, cfg.Stream.PushInterval)
}

// ProvideDashboardHandler creates the HTTP handler with all routes.
func ProvideDashboardHandler(
	l *xlogger.Logger,
	quotes *usecase.QuoteService,
	timeline *usecase.Synthesizer,
	watchlist *usecase.WatchlistService,
	auditor *usecase.Auditor,
	search *usecase.SearchService,
	stream *api.PriceStreamHandler,
) *api.DashboardHandler {
	return api.NewDashboardHandler(l, quotes, timeline, watchlist, auditor, search, stream)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *xlogger.Logger,
	handler *api.DashboardHandler,
	auditor *usecase.Auditor,
	c icache.BytesCache,
	pg *pkgpg.Client,
) *server.App {
	return server.New(cfg, l, handler, auditor, c, pg)
}
