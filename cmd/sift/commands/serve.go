package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sift/internal/api"
	"github.com/jmylchreest/sift/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scraper over HTTP",
	Long: `Start an HTTP server exposing the scraper.

Endpoints:
  GET  /api/v1/health
  POST /api/v1/scrape   {"urls": [...], "concurrency_limit": 5, "max_retries": 3,
                         "timeout_ms": 30000, "retry_delay_ms": 1000}

Engine flags set the defaults each request may override.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindEngineFlags(cmd.Flags()); err != nil {
			return err
		}
		for flag, key := range map[string]string{
			"addr":           "server.addr",
			"max-urls":       "server.max_urls",
			"api-rate-limit": "server.rate_limit",
			"api-rate-burst": "server.rate_burst",
		} {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.Int("max-urls", api.DefaultMaxURLs, "maximum URLs per request")
	flags.Float64("api-rate-limit", 0, "requests per second per client (0 = unlimited)")
	flags.Int("api-rate-burst", 5, "burst allowed by --api-rate-limit")

	addEngineFlags(flags)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := engineConfig(viper.GetViper())
	if err != nil {
		return err
	}
	// Reject a bad base configuration at startup rather than on every request.
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := newFetcher(viper.GetViper(), cfg)
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		return err
	}
	defer func() { _ = f.Close() }()

	router := api.NewRouter(api.Options{
		Config:    cfg,
		Fetcher:   f,
		MaxURLs:   viper.GetInt("server.max_urls"),
		RateLimit: viper.GetFloat64("server.rate_limit"),
		RateBurst: viper.GetInt("server.rate_burst"),
		Debug:     viper.GetBool("debug"),
	})

	addr := viper.GetString("server.addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr, "fetcher", f.Type())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")

	// In-flight batches get the per-attempt timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server forced shutdown", "error", err)
		return err
	}
	logger.Info("HTTP server drained gracefully")
	return nil
}
