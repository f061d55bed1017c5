// Package api exposes the scrape engine over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/sift/pkg/fetcher"
	"github.com/jmylchreest/sift/pkg/sift"
)

// DefaultMaxURLs caps the URLs accepted in one scrape request.
const DefaultMaxURLs = 100

// Options configures the router.
type Options struct {
	// Config is the engine configuration requests start from.
	Config sift.Config

	// Fetcher is shared by all requests and never closed by the router.
	// Nil means a static fetcher built from Config.
	Fetcher fetcher.Fetcher

	// MaxURLs caps URLs per request; 0 means DefaultMaxURLs.
	MaxURLs int

	// RateLimit is requests per second per client IP; 0 disables it.
	RateLimit float64
	RateBurst int

	// Debug selects gin's debug mode.
	Debug bool
}

// NewRouter creates a configured Gin engine.
//
//	Global: Recovery → request log
//	/api/v1/scrape: rate limit (if enabled)
func NewRouter(opts Options) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.MaxURLs <= 0 {
		opts.MaxURLs = DefaultMaxURLs
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent:   opts.Config.UserAgent,
			Timeout:     opts.Config.Timeout,
			MaxBodySize: opts.Config.MaxBodySize,
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLog())

	v1 := r.Group("/api/v1")
	v1.GET("/health", health(opts.Fetcher, time.Now()))

	scrape := v1.Group("")
	if opts.RateLimit > 0 {
		scrape.Use(rateLimit(opts.RateLimit, opts.RateBurst))
	}
	scrape.POST("/scrape", scrapeHandler(opts))

	return r
}
