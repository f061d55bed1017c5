package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sift/pkg/sift"
)

// engineFlags maps CLI flags to config keys shared by scrape and serve.
var engineFlags = map[string]string{
	"concurrency":   "concurrency_limit",
	"timeout":       "timeout",
	"max-retries":   "max_retries",
	"retry-delay":   "retry_delay",
	"batch-timeout": "batch_timeout",
	"rate-limit":    "rate_limit",
	"rate-burst":    "rate_burst",
	"user-agent":    "user_agent",
	"max-body-size": "max_body_size",
	"fetch-mode":    "fetch_mode",
	"chrome-path":   "chrome_path",
	"headful":       "headful",
}

func addEngineFlags(flags *pflag.FlagSet) {
	def := sift.DefaultConfig()

	flags.IntP("concurrency", "c", def.ConcurrencyLimit, "maximum simultaneous fetches")
	flags.Duration("timeout", def.Timeout, "per-attempt fetch timeout")
	flags.Int("max-retries", def.MaxRetries, "retries after a failed first attempt")
	flags.Duration("retry-delay", def.RetryDelay, "pause before each retry")
	flags.Duration("batch-timeout", 0, "deadline for the whole batch (0 = none)")
	flags.Float64("rate-limit", 0, "fetch attempts per second across the batch (0 = unlimited)")
	flags.Int("rate-burst", 1, "burst allowed by --rate-limit")
	flags.String("user-agent", "", "HTTP user agent (default: desktop Chrome)")
	flags.String("max-body-size", "10MB", "max response body size (e.g., 512KB, 10MB, 0=fetcher default)")
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.String("chrome-path", "", "Chrome/Chromium binary for dynamic mode (default: auto-detect)")
	flags.Bool("headful", false, "show the browser window in dynamic mode")
}

// bindEngineFlags binds the command's engine flags. It runs in PreRunE so
// scrape and serve do not overwrite each other's bindings.
func bindEngineFlags(flags *pflag.FlagSet) error {
	for flag, key := range engineFlags {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

func setEngineDefaults() {
	def := sift.DefaultConfig()
	viper.SetDefault("concurrency_limit", def.ConcurrencyLimit)
	viper.SetDefault("timeout", def.Timeout)
	viper.SetDefault("max_retries", def.MaxRetries)
	viper.SetDefault("retry_delay", def.RetryDelay)
	viper.SetDefault("rate_burst", 1)
	viper.SetDefault("max_body_size", "10MB")
	viper.SetDefault("fetch_mode", "static")
}

// engineConfig assembles the engine configuration from flags, environment
// and config file. Validation is left to sift.New.
func engineConfig(v *viper.Viper) (sift.Config, error) {
	maxBody, err := parseSize(v.GetString("max_body_size"))
	if err != nil {
		return sift.Config{}, fmt.Errorf("invalid max_body_size: %w", err)
	}

	return sift.Config{
		ConcurrencyLimit: v.GetInt("concurrency_limit"),
		Timeout:          v.GetDuration("timeout"),
		MaxRetries:       v.GetInt("max_retries"),
		RetryDelay:       v.GetDuration("retry_delay"),
		BatchTimeout:     v.GetDuration("batch_timeout"),
		RateLimit:        v.GetFloat64("rate_limit"),
		RateBurst:        v.GetInt("rate_burst"),
		UserAgent:        v.GetString("user_agent"),
		MaxBodySize:      maxBody,
	}, nil
}

// parseSize accepts human sizes ("512KB", "10 MiB"); "" and "0" mean 0.
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
