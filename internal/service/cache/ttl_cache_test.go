package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache()

	if err := c.SetBytes("price:TSLA", []byte(`{"price":242.5}`), time.Minute); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}

	b, ok, err := c.GetBytes("price:TSLA")
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(b, []byte(`{"price":242.5}`)) {
		t.Fatalf("payload mismatch: %s", b)
	}
}

func TestTTLCacheMiss(t *testing.T) {
	c := NewTTLCache()
	_, ok, err := c.GetBytes("price:MISSING")
	if err != nil {
		t.Fatalf("GetBytes: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	if err := c.SetBytes("unified:AAPL", []byte("payload"), 120*time.Second); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}

	now = now.Add(119 * time.Second)
	if _, ok, _ := c.GetBytes("unified:AAPL"); !ok {
		t.Fatal("expected hit before TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := c.GetBytes("unified:AAPL"); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestTTLCacheOverwrite(t *testing.T) {
	c := NewTTLCache()
	_ = c.SetBytes("k", []byte("old"), time.Minute)
	_ = c.SetBytes("k", []byte("new"), time.Minute)

	b, ok, _ := c.GetBytes("k")
	if !ok || string(b) != "new" {
		t.Fatalf("expected whole-entry replacement, got %q ok=%v", b, ok)
	}
}
