package fmp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func TestSearchByNameParsesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stable/search-name" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "tesla" {
			t.Errorf("query %s", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "k" {
			t.Errorf("apikey %s", got)
		}
		_, _ = w.Write([]byte(`[
			{"symbol":"TSLA","name":"Tesla, Inc.","exchange":"NASDAQ","currency":"USD"},
			{"symbol":"TL0.DE","name":"Tesla, Inc.","stockExchange":"XETRA","currency":"EUR"},
			{"symbol":"","name":"junk row"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 2*time.Second, nil)
	got, err := c.SearchByName(context.Background(), "tesla", 10)
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if got[0].Exchange != "NASDAQ" || got[0].Currency != "USD" {
		t.Fatalf("unexpected hit %+v", got[0])
	}
	// stockExchange is the fallback field name
	if got[1].Exchange != "XETRA" {
		t.Fatalf("unexpected hit %+v", got[1])
	}
}

func TestBiggestGainersParsesQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stable/biggest-gainers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"symbol":"NVDA","name":"NVIDIA Corporation","price":900.5,"changesPercentage":4.2},
			{"symbol":"AMD","name":"Advanced Micro Devices","price":160.0,"changesPercentage":3.1}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 2*time.Second, nil)
	got, err := c.BiggestGainers(context.Background())
	if err != nil {
		t.Fatalf("BiggestGainers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 gainers, got %d", len(got))
	}
	if got[0].Price == nil || *got[0].Price != 900.5 {
		t.Fatalf("price %v", got[0].Price)
	}
	if got[0].PercentChange == nil || *got[0].PercentChange != 4.2 {
		t.Fatalf("change %v", got[0].PercentChange)
	}
}

func TestSearchNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit reached", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", 2*time.Second, nil)
	if _, err := c.SearchByName(context.Background(), "tesla", 10); !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if _, err := c.BiggestGainers(context.Background()); !errors.Is(err, models.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
