package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	xlogger "StockPulse/pkg/logger"
)

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type brokenCache struct{}

func (brokenCache) GetBytes(string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) SetBytes(string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestReadThroughMissThenHit(t *testing.T) {
	rt := NewReadThrough(NewTTLCache(), testLogger(t), nil)

	var fetches int32
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		return []byte("v1"), nil
	}

	b, cached, err := rt.Do(context.Background(), FamilyPrice, "price:TSLA", time.Minute, fetch)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if cached || string(b) != "v1" {
		t.Fatalf("expected fresh v1, got %q cached=%v", b, cached)
	}

	b, cached, err = rt.Do(context.Background(), FamilyPrice, "price:TSLA", time.Minute, fetch)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !cached || string(b) != "v1" {
		t.Fatalf("expected cache hit, got %q cached=%v", b, cached)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("expected 1 fetch, got %d", n)
	}
}

func TestReadThroughCoalescesConcurrentMisses(t *testing.T) {
	rt := NewReadThrough(NewTTLCache(), testLogger(t), nil)

	var fetches int32
	gate := make(chan struct{})
	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&fetches, 1)
		<-gate
		return []byte("shared"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	started := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			b, _, err := rt.Do(context.Background(), FamilyUnified, "unified:NVDA", time.Minute, fetch)
			if err != nil {
				t.Errorf("Do: %v", err)
				return
			}
			results[i] = string(b)
		}(i)
	}

	for i := 0; i < callers; i++ {
		<-started
	}
	// let the goroutines reach singleflight before releasing the fetch
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("expected 1 coalesced fetch, got %d", n)
	}
	for i, r := range results {
		if r != "shared" {
			t.Fatalf("caller %d got %q", i, r)
		}
	}
}

func TestReadThroughFailsOpenOnCacheError(t *testing.T) {
	rt := NewReadThrough(brokenCache{}, testLogger(t), nil)

	b, cached, err := rt.Do(context.Background(), FamilyPrice, "price:AMD", time.Minute,
		func(ctx context.Context) ([]byte, error) { return []byte("live"), nil })
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if cached || string(b) != "live" {
		t.Fatalf("got %q cached=%v", b, cached)
	}
}

func TestReadThroughPropagatesFetchError(t *testing.T) {
	rt := NewReadThrough(NewTTLCache(), testLogger(t), nil)

	want := fmt.Errorf("provider down")
	_, _, err := rt.Do(context.Background(), FamilyPrice, "price:X", time.Minute,
		func(ctx context.Context) ([]byte, error) { return nil, want })
	if err == nil || err.Error() != "provider down" {
		t.Fatalf("got %v", err)
	}
}
