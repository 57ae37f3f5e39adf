package yahoo

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	xhttp "StockPulse/pkg/http"
)

const limiterKey = "yahoo"

// Client implements the QuoteProvider capability against a Yahoo-style
// chart/trending HTTP API. Responses are modeled as typed structs with
// explicit optional fields; absent fields never panic, they degrade to
// "no data".
type Client struct {
	baseURL     string
	sparkPoints int
	client      *xhttp.Client
	limiter     *ratelimit.Limiter
	maxRPS      float64
	metrics     drepo.Metrics
}

// Option configures Client.
type Option func(*Client)

// WithRateLimit guards outgoing calls with a token bucket.
func WithRateLimit(l *ratelimit.Limiter, maxRPS float64) Option {
	return func(c *Client) {
		c.limiter = l
		c.maxRPS = maxRPS
	}
}

// WithMetrics records upstream call outcomes.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithSparkPoints sets how many recent closes HistoricalCloses keeps.
func WithSparkPoints(n int) Option {
	return func(c *Client) { c.sparkPoints = n }
}

// New creates a quote provider client.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		sparkPoints: 24,
		client:      xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ drepo.QuoteProvider = (*Client)(nil)

// --- wire formats ---

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	ShortName          *string  `json:"shortName"`
	LongName           *string  `json:"longName"`
	RegularMarketTime  *int64   `json:"regularMarketTime"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type trendingResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
	} `json:"finance"`
}

// --- operations ---

// Quote returns the current price, percent change and name for a ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (models.PricePoint, error) {
	res, err := c.chart(ctx, ticker, "1d", "1m")
	if err != nil {
		return models.PricePoint{}, err
	}

	meta := res.Meta
	if meta.RegularMarketPrice == nil {
		c.record("nodata")
		return models.PricePoint{}, fmt.Errorf("quote %s: %w", ticker, models.ErrNoData)
	}

	p := models.PricePoint{
		Symbol:     ticker,
		Price:      *meta.RegularMarketPrice,
		ObservedAt: time.Now(),
	}
	if meta.RegularMarketTime != nil {
		p.ObservedAt = time.Unix(*meta.RegularMarketTime, 0)
	}
	if meta.ChartPreviousClose != nil && *meta.ChartPreviousClose != 0 {
		pct := (p.Price - *meta.ChartPreviousClose) / *meta.ChartPreviousClose * 100
		p.PercentChange = &pct
	}
	switch {
	case meta.ShortName != nil:
		p.Name = *meta.ShortName
	case meta.LongName != nil:
		p.Name = *meta.LongName
	}

	c.record("ok")
	return p, nil
}

// HistoricalCloses returns the most recent hourly closes over a 7-day
// window, oldest first. The wide window absorbs weekend and holiday gaps
// while still yielding a fixed-length recent slice. Fewer samples than
// requested is not an error; an empty result means "no data".
func (c *Client) HistoricalCloses(ctx context.Context, ticker string) ([]float64, error) {
	res, err := c.chart(ctx, ticker, "7d", "1h")
	if err != nil {
		return nil, err
	}

	if len(res.Indicators.Quote) == 0 {
		c.record("nodata")
		return nil, nil
	}

	raw := res.Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	if len(closes) > c.sparkPoints {
		closes = closes[len(closes)-c.sparkPoints:]
	}

	c.record("ok")
	return closes, nil
}

// Trending returns the current US trending symbols.
func (c *Client) Trending(ctx context.Context) ([]models.TrendingSymbol, error) {
	if !c.allow() {
		return nil, fmt.Errorf("trending: %w: rate limited", models.ErrUpstream)
	}

	var tr trendingResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/v1/finance/trending/US",
		QueryParams: map[string][]string{"count": {"10"}},
	}, &tr)
	if err != nil {
		c.record("error")
		return nil, fmt.Errorf("trending: %w: %v", models.ErrUpstream, err)
	}

	if len(tr.Finance.Result) == 0 {
		c.record("nodata")
		return nil, nil
	}

	out := make([]models.TrendingSymbol, 0, len(tr.Finance.Result[0].Quotes))
	for _, q := range tr.Finance.Result[0].Quotes {
		if q.Symbol == "" {
			continue
		}
		// the trending endpoint often returns just the symbol
		out = append(out, models.TrendingSymbol{Symbol: q.Symbol, Name: q.Symbol})
	}

	c.record("ok")
	return out, nil
}

func (c *Client) chart(ctx context.Context, ticker, rng, interval string) (*chartResult, error) {
	if !c.allow() {
		return nil, fmt.Errorf("chart %s: %w: rate limited", ticker, models.ErrUpstream)
	}

	var cr chartResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, ticker),
		QueryParams: map[string][]string{
			"range":    {rng},
			"interval": {interval},
		},
	}, &cr)
	if err != nil {
		c.record("error")
		return nil, fmt.Errorf("chart %s: %w: %v", ticker, models.ErrUpstream, err)
	}

	if cr.Chart.Error != nil {
		c.record("nodata")
		return nil, fmt.Errorf("chart %s: %w: %s", ticker, models.ErrNoData, cr.Chart.Error.Code)
	}
	if len(cr.Chart.Result) == 0 {
		c.record("nodata")
		return nil, fmt.Errorf("chart %s: %w", ticker, models.ErrNoData)
	}

	return &cr.Chart.Result[0], nil
}

func (c *Client) allow() bool {
	if c.limiter == nil || c.maxRPS <= 0 {
		return true
	}
	return c.limiter.Allow(limiterKey, c.maxRPS, c.maxRPS)
}

func (c *Client) record(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall("quotes", outcome)
	}
}
