package brain

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	xhttp "StockPulse/pkg/http"
)

// Client fetches multi-step price forecasts from the Python forecasting
// service. A failure or non-2xx response is "no forecast" to the caller;
// no retry is performed in line.
type Client struct {
	baseURL string
	client  *xhttp.Client
	metrics drepo.Metrics
}

// New creates a forecast provider client.
func New(baseURL string, timeout time.Duration, metrics drepo.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		metrics: metrics,
	}
}

var _ drepo.ForecastProvider = (*Client)(nil)

type predictResponse struct {
	Ticker   string    `json:"ticker"`
	Forecast []float64 `json:"forecast"`
}

// Forecast returns hourly future price points for a ticker, earliest first.
func (c *Client) Forecast(ctx context.Context, ticker string) ([]float64, error) {
	var pr predictResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/predict/%s", c.baseURL, ticker),
	}, &pr)
	if err != nil {
		c.record("error")
		return nil, fmt.Errorf("predict %s: %w: %v", ticker, models.ErrUpstream, err)
	}

	if len(pr.Forecast) == 0 {
		c.record("nodata")
		return nil, nil
	}

	c.record("ok")
	return pr.Forecast, nil
}

func (c *Client) record(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall("brain", outcome)
	}
}
