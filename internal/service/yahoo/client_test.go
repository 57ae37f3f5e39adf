package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func chartBody(price, prevClose float64, name string, closes []interface{}) string {
	closesJSON := "["
	for i, c := range closes {
		if i > 0 {
			closesJSON += ","
		}
		if c == nil {
			closesJSON += "null"
		} else {
			closesJSON += fmt.Sprintf("%v", c)
		}
	}
	closesJSON += "]"
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"symbol":"TSLA","regularMarketPrice":%v,"chartPreviousClose":%v,"shortName":%q,"regularMarketTime":1700000000},
		"timestamp":[],
		"indicators":{"quote":[{"close":%s}]}
	}],"error":null}}`, price, prevClose, name, closesJSON)
}

func TestQuoteParsesMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/TSLA" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody(242.5, 250, "Tesla, Inc.", nil)))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	p, err := c.Quote(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if p.Price != 242.5 || p.Name != "Tesla, Inc." {
		t.Fatalf("unexpected point %+v", p)
	}
	if p.PercentChange == nil {
		t.Fatal("expected percent change")
	}
	if want := (242.5 - 250) / 250 * 100; *p.PercentChange != want {
		t.Fatalf("pct %v want %v", *p.PercentChange, want)
	}
}

func TestQuoteMissingPriceIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"TSLA"},"indicators":{"quote":[]}}],"error":null}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	_, err := c.Quote(context.Background(), "TSLA")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestQuoteAPIErrorIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	_, err := c.Quote(context.Background(), "GHOST")
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestHistoricalClosesFiltersNullsAndTruncates(t *testing.T) {
	closes := make([]interface{}, 0, 30)
	for i := 0; i < 30; i++ {
		if i%7 == 3 {
			closes = append(closes, nil)
			continue
		}
		closes = append(closes, 100+float64(i))
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("range"); got != "7d" {
			t.Errorf("range %s", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Errorf("interval %s", got)
		}
		_, _ = w.Write([]byte(chartBody(242.5, 250, "Tesla", closes)))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second, WithSparkPoints(24))
	got, err := c.HistoricalCloses(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("HistoricalCloses: %v", err)
	}
	if len(got) != 24 {
		t.Fatalf("expected 24 closes, got %d", len(got))
	}
	// most recent sample survives truncation
	if got[len(got)-1] != 129 {
		t.Fatalf("last close %v", got[len(got)-1])
	}
}

func TestHistoricalClosesShortSeriesIsFine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody(242.5, 250, "Tesla", []interface{}{240.0, 241.0})))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	got, err := c.HistoricalCloses(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("HistoricalCloses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 closes, got %d", len(got))
	}
}

func TestTrendingParsesSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/finance/trending/US" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"finance":{"result":[{"quotes":[{"symbol":"NVDA"},{"symbol":"TSLA"},{"symbol":""}]}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	got, err := c.Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "NVDA" || got[1].Symbol != "TSLA" {
		t.Fatalf("unexpected symbols %v", got)
	}
}

func TestChartNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	_, err := c.Quote(context.Background(), "TSLA")
	if !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
