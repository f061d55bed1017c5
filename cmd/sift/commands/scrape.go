package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/sift/cmd/sift/fetcher"
	"github.com/jmylchreest/sift/internal/logger"
	"github.com/jmylchreest/sift/internal/output"
	"github.com/jmylchreest/sift/pkg/fetcher"
	"github.com/jmylchreest/sift/pkg/sift"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Fetch URLs and extract page metadata",
	Long: `Fetch every URL once (plus retries) and extract its title, meta
description, first paragraph and absolute links.

URLs come from positional arguments, -u flags and --urls-file, in that
order. Results are written in input order; duplicates are kept.

Examples:
  sift scrape https://example.com https://example.org
  sift scrape -u https://example.com --max-retries 5 --retry-delay 2s
  cat urls.txt | sift scrape --urls-file - --format yaml`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindEngineFlags(cmd.Flags())
	},
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// URL inputs
	flags.StringArrayP("url", "u", nil, "URL to scrape (can be repeated)")
	flags.String("urls-file", "", "file with one URL per line (- for stdin)")

	// Output settings
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")

	addEngineFlags(flags)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	urls, err := collectURLs(cmd, args)
	if err != nil {
		logger.Error("failed to read URLs", "error", err)
		return err
	}
	if len(urls) == 0 {
		return cmd.Help()
	}
	logger.Debug("URLs to process", "count", len(urls))

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	cfg, err := engineConfig(viper.GetViper())
	if err != nil {
		return err
	}

	f, err := newFetcher(viper.GetViper(), cfg)
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		return err
	}

	s, err := sift.New(sift.WithConfig(cfg), sift.WithFetcher(f))
	if err != nil {
		_ = f.Close()
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer func() { _ = s.Close() }()

	// Setup output
	var out io.Writer = os.Stdout
	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		file, err := os.Create(outPath) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			logger.Error("failed to create output file", "path", outPath, "error", err)
			return err
		}
		defer func() { _ = file.Close() }()
		out = file
	}

	report := s.Scrape(ctx, urls)

	if err := output.WriteReport(out, format, report); err != nil {
		logger.Error("failed to write output", "error", err)
		return err
	}

	printSummary(report)
	return nil
}

// collectURLs gathers URLs from arguments, -u flags and --urls-file.
func collectURLs(cmd *cobra.Command, args []string) ([]string, error) {
	urls := append([]string{}, args...)

	flagURLs, _ := cmd.Flags().GetStringArray("url")
	urls = append(urls, flagURLs...)

	path, _ := cmd.Flags().GetString("urls-file")
	if path == "" {
		return urls, nil
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		file, err := os.Open(path) //#nosec G304 -- CLI tool reads user-specified input file
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()
		r = file
	}

	fromFile, err := readURLs(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return append(urls, fromFile...), nil
}

// maxURLLine bounds a single line of a URL list.
const maxURLLine = 1 << 20

// readURLs returns one URL per non-blank line. Lines starting with # are
// comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxURLLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// newFetcher builds the Fetch Client selected by fetch_mode.
func newFetcher(v *viper.Viper, cfg sift.Config) (fetcher.Fetcher, error) {
	switch mode := v.GetString("fetch_mode"); mode {
	case "static", "":
		return fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.Timeout,
			MaxBodySize: cfg.MaxBodySize,
		}), nil
	case "dynamic":
		f, err := clifetcher.NewDynamicFetcher(clifetcher.Config{
			UserAgent:   cfg.UserAgent,
			Timeout:     cfg.Timeout,
			MaxBodySize: cfg.MaxBodySize,
			ChromePath:  v.GetString("chrome_path"),
			Headful:     v.GetBool("headful"),
		})
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", mode)
	}
}

// printSummary writes the batch summary to stderr.
func printSummary(report *sift.BatchReport) {
	logInfo("Scraping completed in %s", report.Elapsed.Round(time.Millisecond))
	logInfo("Successfully scraped %s of %s sites (%s failed)",
		humanize.Comma(int64(report.Succeeded())),
		humanize.Comma(int64(report.Len())),
		humanize.Comma(int64(report.Failed())))
	logInfo("Extracted %s links", humanize.Comma(int64(report.TotalLinks())))

	counts := report.StatusCounts()
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		label := fmt.Sprintf("HTTP %d", code)
		if code == 0 {
			label = "no response"
		}
		logInfo("  %-12s %s", label, humanize.Comma(int64(counts[code])))
	}
}
