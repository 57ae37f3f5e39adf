package models

// SearchResult is one entry of the symbol search feed. Price and
// PercentChange are only present on the gainers fallback feed.
type SearchResult struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Exchange      string   `json:"exchange,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	PercentChange *float64 `json:"change,omitempty"`
}

// SearchResponse is the search endpoint payload. Type is "search" for a
// name lookup and "trending" for the short-query gainers fallback.
type SearchResponse struct {
	Type    string         `json:"type"`
	Results []SearchResult `json:"results"`
}
