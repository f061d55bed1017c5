package sift

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- ShouldRetry Tests ---

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		attempt    int
		maxRetries int
		want       bool
	}{
		{0, 0, false},
		{0, 1, true},
		{1, 1, false},
		{0, 3, true},
		{2, 3, true},
		{3, 3, false},
		{5, 3, false},
	}

	for _, tt := range tests {
		if got := ShouldRetry(tt.attempt, tt.maxRetries); got != tt.want {
			t.Errorf("ShouldRetry(%d, %d) = %v, want %v", tt.attempt, tt.maxRetries, got, tt.want)
		}
	}
}

func TestSleep(t *testing.T) {
	if err := sleep(context.Background(), 0); err != nil {
		t.Errorf("zero sleep error = %v", err)
	}

	start := time.Now()
	if err := sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Errorf("sleep error = %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("sleep returned early")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// --- Gate Tests ---

func TestGate_BoundsSlots(t *testing.T) {
	g := newGate(Config{ConcurrencyLimit: 2})
	ctx := context.Background()

	if err := g.acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.acquire(ctx); err != nil {
		t.Fatal(err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := g.acquire(short); err == nil {
		t.Fatal("third acquire should block until the context ends")
	}

	g.release()
	if err := g.acquire(ctx); err != nil {
		t.Errorf("acquire after release error = %v", err)
	}
}

func TestGate_RateRefusalIsDeadline(t *testing.T) {
	g := newGate(Config{ConcurrencyLimit: 1, RateLimit: 0.1, RateBurst: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The first token is free; the next would take ten seconds.
	if err := g.acquire(ctx); err != nil {
		t.Fatal(err)
	}
	g.release()

	err := g.acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

// --- Collector Tests ---

func TestCollector_RestoresInputOrder(t *testing.T) {
	c := newCollector(3)
	c.send(2, Result{URL: "c"})
	c.send(0, Result{URL: "a"})
	c.send(1, Result{URL: "b"})

	report := c.Collect(3)
	for i, want := range []string{"a", "b", "c"} {
		if report.Results[i].URL != want {
			t.Errorf("Results[%d].URL = %q, want %q", i, report.Results[i].URL, want)
		}
	}
}

// --- Abandoned Result Tests ---

func TestAbandoned_Reason(t *testing.T) {
	r := &runner{}
	req := Request{URL: "u"}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.abandoned(cancelled, req, 1, 0, errors.New("boom"))
	if res.Error == nil || *res.Error != "failed to scrape u after 1 attempt(s): batch cancelled (last error: boom)" {
		t.Errorf("unexpected error: %v", res.Error)
	}

	// A live context still reports the deadline: the limiter refused to wait.
	res = r.abandoned(context.Background(), req, 0, 0, nil)
	if res.Error == nil || *res.Error != "failed to scrape u after 0 attempt(s): batch deadline exceeded" {
		t.Errorf("unexpected error: %v", res.Error)
	}
	if res.StatusCode != 0 || res.Links == nil {
		t.Errorf("abandoned result should have status 0 and empty links, got %+v", res)
	}
}

// --- BatchReport Tests ---

func TestBatchReport_Derived(t *testing.T) {
	errMsg := "down"
	report := &BatchReport{
		Results: []Result{
			{URL: "a", StatusCode: 200, Links: []string{"https://x", "https://y"}},
			{URL: "b", StatusCode: 404, Links: []string{}},
			{URL: "c", StatusCode: 0, Links: []string{}, Error: &errMsg},
			{URL: "d", StatusCode: 200, Links: []string{"https://z"}},
		},
		Elapsed: 1500 * time.Millisecond,
	}

	if report.Len() != 4 {
		t.Errorf("Len() = %d", report.Len())
	}
	if report.Succeeded() != 3 {
		t.Errorf("Succeeded() = %d", report.Succeeded())
	}
	if report.Failed() != 1 {
		t.Errorf("Failed() = %d", report.Failed())
	}
	if report.TotalLinks() != 3 {
		t.Errorf("TotalLinks() = %d", report.TotalLinks())
	}

	counts := report.StatusCounts()
	if counts[200] != 2 || counts[404] != 1 || counts[0] != 1 {
		t.Errorf("StatusCounts() = %v", counts)
	}

	want := Summary{Total: 4, Succeeded: 3, Failed: 1, TotalLinks: 3, ElapsedMs: 1500}
	if got := report.Summary(); got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}
