package models

import "time"

// PricePoint is a normalized live quote for a ticker. Produced fresh by the
// quote provider on every call; immutable once returned.
type PricePoint struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PercentChange *float64  `json:"changesPercentage,omitempty"`
	Name          string    `json:"name,omitempty"`
	ObservedAt    time.Time `json:"lastUpdated"`
	Source        string    `json:"source,omitempty"`
}

// TrendingSymbol is one entry of the trending-symbols feed.
type TrendingSymbol struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// TrendingQuote is a trending symbol enriched with its live quote.
type TrendingQuote struct {
	PricePoint
}
