package cache

import (
	"context"
	"time"

	xlogger "StockPulse/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Metrics is the slice of the metrics recorder the cache layer needs.
type Metrics interface {
	RecordCacheLookup(family, result string)
}

// FetchFunc produces the value for a key on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// ReadThrough fronts a BytesCache with request coalescing: concurrent
// misses on the same key trigger at most one upstream fetch, and all
// waiters receive the same result. Cache failures fail open: a broken
// cache degrades to hitting the provider directly, and a failed write
// only means the value is not cached this round.
type ReadThrough struct {
	cache   BytesCache
	flight  singleflight.Group
	logger  *xlogger.Logger
	metrics Metrics
}

func NewReadThrough(c BytesCache, l *xlogger.Logger, m Metrics) *ReadThrough {
	return &ReadThrough{cache: c, logger: l, metrics: m}
}

// Do returns the cached value for key, or fetches, caches and returns it.
// The second return reports whether the value came from the cache.
func (r *ReadThrough) Do(ctx context.Context, family, key string, ttl time.Duration, fetch FetchFunc) ([]byte, bool, error) {
	b, ok, err := r.cache.GetBytes(key)
	if err != nil {
		r.logger.Warn("cache get failed, bypassing",
			xlogger.String("key", key), xlogger.Error(err))
	} else if ok {
		r.record(family, "hit")
		return b, true, nil
	}
	r.record(family, "miss")

	v, err, _ := r.flight.Do(key, func() (interface{}, error) {
		b, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.cache.SetBytes(key, b, ttl); err != nil {
			// Fire-and-forget: the value just is not cached this round.
			r.logger.Warn("cache set failed",
				xlogger.String("key", key), xlogger.Error(err))
		}
		return b, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

func (r *ReadThrough) record(family, result string) {
	if r.metrics != nil {
		r.metrics.RecordCacheLookup(family, result)
	}
}
