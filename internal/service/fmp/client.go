package fmp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
)

// Client implements the SearchProvider capability against the Financial
// Modeling Prep stable API. Responses are typed structs with explicit
// optional fields.
type Client struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	metrics drepo.Metrics
}

// New creates a search provider client.
func New(baseURL, apiKey string, timeout time.Duration, metrics drepo.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		metrics: metrics,
	}
}

var _ drepo.SearchProvider = (*Client)(nil)

// --- wire formats ---

type searchHit struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Exchange      *string `json:"exchange"`
	StockExchange *string `json:"stockExchange"`
	Currency      *string `json:"currency"`
}

type gainerHit struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             *float64 `json:"price"`
	ChangesPercentage *float64 `json:"changesPercentage"`
}

// --- operations ---

// SearchByName returns symbols matching a company-name query.
func (c *Client) SearchByName(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	var hits []searchHit
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stable/search-name",
		QueryParams: map[string][]string{
			"query":  {query},
			"limit":  {strconv.Itoa(limit)},
			"apikey": {c.apiKey},
		},
	}, &hits)
	if err != nil {
		c.record("error")
		return nil, fmt.Errorf("search %q: %w: %v", query, models.ErrUpstream, err)
	}

	out := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Symbol == "" {
			continue
		}
		r := models.SearchResult{Symbol: h.Symbol, Name: h.Name}
		switch {
		case h.Exchange != nil:
			r.Exchange = *h.Exchange
		case h.StockExchange != nil:
			r.Exchange = *h.StockExchange
		}
		if h.Currency != nil {
			r.Currency = *h.Currency
		}
		out = append(out, r)
	}

	c.record("ok")
	return out, nil
}

// BiggestGainers returns the day's top gaining symbols with quotes.
func (c *Client) BiggestGainers(ctx context.Context) ([]models.SearchResult, error) {
	var hits []gainerHit
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/stable/biggest-gainers",
		QueryParams: map[string][]string{"apikey": {c.apiKey}},
	}, &hits)
	if err != nil {
		c.record("error")
		return nil, fmt.Errorf("gainers: %w: %v", models.ErrUpstream, err)
	}

	out := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Symbol == "" {
			continue
		}
		out = append(out, models.SearchResult{
			Symbol:        h.Symbol,
			Name:          h.Name,
			Price:         h.Price,
			PercentChange: h.ChangesPercentage,
		})
	}

	c.record("ok")
	return out, nil
}

func (c *Client) record(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall("fmp", outcome)
	}
}
