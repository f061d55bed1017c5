package sift

import (
	"time"

	"github.com/jmylchreest/sift/pkg/fetcher"
)

type settings struct {
	config    Config
	fetcher   fetcher.Fetcher
	extractor FieldExtractor
}

// Option configures Sift.
type Option func(*settings)

// WithConfig replaces the whole configuration. Options applied after it
// still override individual fields.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithFetcher injects the Fetch Client. The default is a static colly fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(s *settings) {
		s.fetcher = f
	}
}

// WithExtractor injects the field extractor.
func WithExtractor(e FieldExtractor) Option {
	return func(s *settings) {
		s.extractor = e
	}
}

// WithConcurrency sets the maximum number of simultaneous fetches.
func WithConcurrency(n int) Option {
	return func(s *settings) {
		s.config.ConcurrencyLimit = n
	}
}

// WithTimeout sets the per-attempt fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.config.Timeout = d
	}
}

// WithMaxRetries sets how many attempts may follow a failed first attempt.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		s.config.MaxRetries = n
	}
}

// WithRetryDelay sets the pause before every retry.
func WithRetryDelay(d time.Duration) Option {
	return func(s *settings) {
		s.config.RetryDelay = d
	}
}

// WithBatchTimeout bounds the whole batch.
func WithBatchTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.config.BatchTimeout = d
	}
}

// WithRateLimit paces fetch attempts to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *settings) {
		s.config.RateLimit = rps
		s.config.RateBurst = burst
	}
}

// WithUserAgent sets the HTTP user agent.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.config.UserAgent = ua
	}
}

// WithMaxBodySize caps the response body size in bytes.
func WithMaxBodySize(n int) Option {
	return func(s *settings) {
		s.config.MaxBodySize = n
	}
}
