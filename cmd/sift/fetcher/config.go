// Package fetcher provides the headless-browser Fetch Client used by the
// CLI's dynamic fetch mode.
package fetcher

import (
	"time"

	"github.com/jmylchreest/sift/pkg/fetcher"
)

// Config holds configuration for the dynamic fetcher.
type Config struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int    // bytes of rendered HTML kept, 0 = unlimited
	ChromePath  string // empty = search PATH and common install locations
	Headful     bool   // show the browser window
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: fetcher.DefaultUserAgent,
		Timeout:   30 * time.Second,
	}
}
