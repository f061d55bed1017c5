// Package commands implements the CLI commands for sift.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sift/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Concurrent page fetcher and metadata extractor",
	Long: `Sift fetches a list of URLs concurrently and extracts each page's
title, meta description, first paragraph and absolute links.

Transport failures are retried after a fixed delay; HTTP error pages are
reported with their status code. Every URL produces exactly one result.

Examples:
  # Scrape a few pages
  sift scrape -u https://example.com -u https://example.org

  # Read URLs from a file, five at a time, as JSON lines
  sift scrape --urls-file urls.txt -c 5 --format jsonl -o results.jsonl

  # Serve the scraper over HTTP
  sift serve --addr :8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			Level: viper.GetString("log_level"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.sift.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".sift")
		viper.SetConfigType("yaml")
	}

	bindEnv(viper.GetViper())
	setEngineDefaults()

	// A missing default config file is fine; a named or broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logError("reading config: %v", err)
		}
	}
}

// bindEnv maps SIFT_* variables onto config keys: SIFT_RETRY_DELAY,
// SIFT_SERVER_ADDR, ...
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("SIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
