package models

// WatchlistQuote is a watchlist entry enriched with its live quote and a
// recent intraday sparkline.
type WatchlistQuote struct {
	PricePoint
	Sparkline []float64 `json:"sparkline"`
}

// ToggleResult reports the outcome of a watchlist toggle.
type ToggleResult struct {
	Message   string   `json:"message"`
	Watchlist []string `json:"wishlist"`
}
