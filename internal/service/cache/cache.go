package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// Key families. The namespacing is load-bearing: it must match any
// pre-existing cached state.
const (
	FamilyPrice    = "price"
	FamilyUnified  = "unified"
	FamilyForecast = "forecast"
	FamilyTrending = "trending"

	TrendingKey = "trending"
)

// PriceKey builds the live-price cache key for a ticker.
func PriceKey(ticker string) string { return FamilyPrice + ":" + ticker }

// UnifiedKey builds the unified-timeline cache key for a ticker.
func UnifiedKey(ticker string) string { return FamilyUnified + ":" + ticker }

// ForecastKey builds the raw-forecast cache key for a ticker.
func ForecastKey(ticker string) string { return FamilyForecast + ":" + ticker }
