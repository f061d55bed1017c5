// Package sift fetches a fixed list of URLs concurrently and extracts the
// title, meta description, first paragraph and absolute links of each page.
//
// Every input URL yields exactly one Result. Transport failures are retried
// after a constant delay; HTTP error statuses are terminal results, not
// failures. At most Config.ConcurrencyLimit fetches are in flight at once.
package sift

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmylchreest/sift/internal/logger"
	"github.com/jmylchreest/sift/pkg/extractor"
	"github.com/jmylchreest/sift/pkg/fetcher"
)

// Sift is the scrape engine. It is safe for concurrent use; each Scrape call
// gets its own admission gate.
type Sift struct {
	fetcher   fetcher.Fetcher
	extractor FieldExtractor
	config    Config
}

// New creates a Sift. The configuration is validated here, so a returned
// Sift never rejects a batch.
func New(opts ...Option) (*Sift, error) {
	s := settings{config: DefaultConfig()}
	for _, opt := range opts {
		opt(&s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	f := s.fetcher
	if f == nil {
		f = fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent:   s.config.UserAgent,
			Timeout:     s.config.Timeout,
			MaxBodySize: s.config.MaxBodySize,
		})
	}

	ext := s.extractor
	if ext == nil {
		ext = extractor.New(extractor.DefaultSelectors())
	}

	return &Sift{
		fetcher:   f,
		extractor: ext,
		config:    s.config,
	}, nil
}

// Scrape validates cfg and runs one batch with it. It is shorthand for New
// followed by Sift.Scrape and Close.
func Scrape(ctx context.Context, urls []string, cfg Config, opts ...Option) (*BatchReport, error) {
	s, err := New(append([]Option{WithConfig(cfg)}, opts...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return s.Scrape(ctx, urls), nil
}

// Config returns the engine configuration.
func (s *Sift) Config() Config {
	return s.config
}

// Scrape processes every URL once and returns when all tasks are terminal.
// The report holds one Result per input URL, in input order; duplicates are
// processed independently. No goroutine started here outlives the call.
func (s *Sift) Scrape(ctx context.Context, urls []string) *BatchReport {
	start := time.Now()
	if len(urls) == 0 {
		return &BatchReport{Results: []Result{}}
	}

	if s.config.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.BatchTimeout)
		defer cancel()
	}

	logger.Info("batch starting",
		"urls", len(urls),
		"fetcher", s.fetcher.Type(),
		"concurrency", s.config.ConcurrencyLimit,
		"max_retries", s.config.MaxRetries,
		"retry_delay", s.config.RetryDelay)

	r := &runner{
		fetcher:   s.fetcher,
		extractor: s.extractor,
		config:    s.config,
		gate:      newGate(s.config),
	}
	col := newCollector(len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			col.send(req.Index, r.runSafe(ctx, req))
		}(Request{URL: u, Index: i})
	}

	report := col.Collect(len(urls))
	wg.Wait()
	report.Elapsed = time.Since(start)

	logger.Info("batch complete",
		"total", report.Len(),
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"links", report.TotalLinks(),
		"elapsed", report.Elapsed.Round(time.Millisecond))

	return report
}

// runSafe converts a panic in a fetcher or extractor into a failed result so
// the batch still receives exactly one result for the request.
func (r *runner) runSafe(ctx context.Context, req Request) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("task panicked", "url", req.URL, "panic", p)
			res = failed(req, 0, 0, fmt.Errorf("panic: %v", p))
		}
	}()
	return r.run(ctx, req)
}

// Close releases the fetcher.
func (s *Sift) Close() error {
	if s.fetcher != nil {
		return s.fetcher.Close()
	}
	return nil
}
