// Package fetcher defines the interface for web page fetching.
// Implement the Fetcher interface to plug a different transport (a headless
// browser, a recorded fixture, a proxy pool) into the scrape engine.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page fetching strategies.
//
// A Fetcher returns an error only when no HTTP response was obtained
// (connection failure, DNS failure, timeout, unreadable body). Responses with
// an HTTP error status are returned as Content with that status code.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int // bytes, 0 = fetcher default
	Headers     map[string]string
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrEmptyURL).
var (
	// ErrEmptyURL is returned when Fetch is called without a URL.
	ErrEmptyURL = errors.New("empty url")
	// ErrNoResponse indicates the transport finished without delivering a response.
	ErrNoResponse = errors.New("no response received")
)

// DefaultUserAgent is a desktop Chrome user agent; many sites serve reduced
// markup to unknown clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
