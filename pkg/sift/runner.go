package sift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/sift/internal/logger"
	"github.com/jmylchreest/sift/pkg/extractor"
	"github.com/jmylchreest/sift/pkg/fetcher"
)

// Reasons recorded on results of tasks abandoned before reaching a terminal
// fetch outcome.
var (
	ErrDeadlineExceeded = errors.New("batch deadline exceeded")
	ErrCancelled        = errors.New("batch cancelled")
)

// FieldExtractor turns a fetched document into result fields.
type FieldExtractor interface {
	Extract(html string) extractor.Fields
}

// runner drives one Request through fetch, retry and extraction.
type runner struct {
	fetcher   fetcher.Fetcher
	extractor FieldExtractor
	config    Config
	gate      *gate
}

// run never fails: every outcome is encoded in the returned Result.
func (r *runner) run(ctx context.Context, req Request) Result {
	log := logger.With("url", req.URL)
	opts := fetcher.Options{
		UserAgent:   r.config.UserAgent,
		Timeout:     r.config.Timeout,
		MaxBodySize: r.config.MaxBodySize,
	}

	var (
		lastErr error
		elapsed time.Duration
	)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			log.Debug("retrying fetch",
				"attempt", attempt+1,
				"delay", r.config.RetryDelay,
				"error", lastErr)
			if err := sleep(ctx, r.config.RetryDelay); err != nil {
				return r.abandoned(ctx, req, attempt, elapsed, lastErr)
			}
		}

		content, admitted, err := r.admit(ctx, req.URL, opts)
		if !admitted {
			return r.abandoned(ctx, req, attempt, elapsed, lastErr)
		}
		elapsed = content.elapsed

		if err == nil {
			return r.completed(req, content.Content, elapsed, attempt+1)
		}
		lastErr = err

		if ctx.Err() != nil {
			return r.abandoned(ctx, req, attempt+1, elapsed, lastErr)
		}
		if !ShouldRetry(attempt, r.config.MaxRetries) {
			log.Info("fetch failed",
				"attempts", attempt+1,
				"fetch", elapsed.Round(time.Millisecond),
				"error", err)
			return failed(req, attempt+1, elapsed, err)
		}
	}
}

type timedContent struct {
	fetcher.Content
	elapsed time.Duration
}

// admit holds a concurrency slot for exactly the duration of one fetch.
// admitted is false when the batch context ended before a slot was granted.
func (r *runner) admit(ctx context.Context, url string, opts fetcher.Options) (tc timedContent, admitted bool, err error) {
	if err := r.gate.acquire(ctx); err != nil {
		return timedContent{}, false, err
	}
	defer r.gate.release()

	tc, err = r.fetch(ctx, url, opts)
	return tc, true, err
}

// fetch performs one attempt under its own timeout. A response without a
// status code is treated as no response at all.
func (r *runner) fetch(ctx context.Context, url string, opts fetcher.Options) (timedContent, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	start := time.Now()
	content, err := r.fetcher.Fetch(attemptCtx, url, opts)
	tc := timedContent{Content: content, elapsed: time.Since(start)}
	if err != nil {
		return tc, err
	}
	if content.StatusCode == 0 {
		return tc, fetcher.ErrNoResponse
	}
	return tc, nil
}

func (r *runner) completed(req Request, content fetcher.Content, elapsed time.Duration, attempts int) Result {
	fields := r.extractor.Extract(content.HTML)
	links := fields.Links
	if links == nil {
		links = []string{}
	}

	logger.Debug("fetched",
		"url", req.URL,
		"status", content.StatusCode,
		"attempts", attempts,
		"fetch", elapsed.Round(time.Millisecond),
		"links", len(links))

	return Result{
		URL:            req.URL,
		Title:          fields.Title,
		Description:    fields.Description,
		FirstParagraph: fields.FirstParagraph,
		Links:          links,
		StatusCode:     content.StatusCode,
		FetchTimeMs:    elapsed.Milliseconds(),
		Attempts:       attempts,
	}
}

// abandoned builds the result for a task cut short by the batch context.
func (r *runner) abandoned(ctx context.Context, req Request, attempts int, elapsed time.Duration, lastErr error) Result {
	reason := ErrDeadlineExceeded
	if errors.Is(ctx.Err(), context.Canceled) {
		reason = ErrCancelled
	}

	err := reason
	if lastErr != nil {
		err = fmt.Errorf("%w (last error: %v)", reason, lastErr)
	}

	logger.Info("task abandoned", "url", req.URL, "attempts", attempts, "reason", reason)
	return failed(req, attempts, elapsed, err)
}

func failed(req Request, attempts int, elapsed time.Duration, err error) Result {
	msg := fmt.Sprintf("failed to scrape %s after %d attempt(s): %v", req.URL, attempts, err)
	return Result{
		URL:         req.URL,
		Links:       []string{},
		FetchTimeMs: elapsed.Milliseconds(),
		Error:       &msg,
		Attempts:    attempts,
	}
}
