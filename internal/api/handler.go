package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jmylchreest/sift/internal/logger"
	"github.com/jmylchreest/sift/internal/version"
	"github.com/jmylchreest/sift/pkg/fetcher"
	"github.com/jmylchreest/sift/pkg/sift"
)

// ScrapeRequest is the body of POST /api/v1/scrape. Omitted settings fall
// back to the server configuration.
type ScrapeRequest struct {
	URLs             []string `json:"urls" binding:"required,dive,required"`
	ConcurrencyLimit *int     `json:"concurrency_limit,omitempty"`
	MaxRetries       *int     `json:"max_retries,omitempty"`
	TimeoutMs        *int64   `json:"timeout_ms,omitempty"`
	RetryDelayMs     *int64   `json:"retry_delay_ms,omitempty"`
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// apply overlays the request settings on cfg.
func (r ScrapeRequest) apply(cfg sift.Config) (sift.Config, error) {
	if r.ConcurrencyLimit != nil {
		cfg.ConcurrencyLimit = *r.ConcurrencyLimit
	}
	if r.MaxRetries != nil {
		cfg.MaxRetries = *r.MaxRetries
	}
	if r.TimeoutMs != nil {
		d, err := millis("timeout_ms", *r.TimeoutMs)
		if err != nil {
			return cfg, err
		}
		cfg.Timeout = d
	}
	if r.RetryDelayMs != nil {
		d, err := millis("retry_delay_ms", *r.RetryDelayMs)
		if err != nil {
			return cfg, err
		}
		cfg.RetryDelay = d
	}
	return cfg, nil
}

func millis(field string, ms int64) (time.Duration, error) {
	if ms > maxMillis || ms < -maxMillis {
		return 0, fmt.Errorf("%w: %s out of range (max %d)", sift.ErrInvalidConfig, field, maxMillis)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ScrapeResponse is returned for a completed batch.
type ScrapeResponse struct {
	Results []sift.Result `json:"results"`
	Summary sift.Summary  `json:"summary"`
}

// ErrorResponse carries a request-level failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Fetcher string `json:"fetcher"`
	Uptime  string `json:"uptime"`
}

func health(f fetcher.Fetcher, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: version.String(),
			Fetcher: f.Type(),
			Uptime:  time.Since(started).Round(time.Second).String(),
		})
	}
}

// scrapeHandler runs one batch per request and answers once every URL is
// terminal. A client disconnect cancels the batch.
func scrapeHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
			return
		}
		if len(req.URLs) > opts.MaxURLs {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "too many urls"})
			return
		}

		cfg, err := req.apply(opts.Config)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		s, err := sift.New(
			sift.WithConfig(cfg),
			sift.WithFetcher(opts.Fetcher),
		)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sift.ErrInvalidConfig) {
				status = http.StatusBadRequest
			}
			c.JSON(status, ErrorResponse{Error: err.Error()})
			return
		}

		report := s.Scrape(c.Request.Context(), req.URLs)
		logger.Info("api scrape complete",
			"client", c.ClientIP(),
			"urls", report.Len(),
			"failed", report.Failed(),
			"elapsed", report.Elapsed.Round(time.Millisecond))

		c.JSON(http.StatusOK, ScrapeResponse{
			Results: report.Results,
			Summary: report.Summary(),
		})
	}
}
