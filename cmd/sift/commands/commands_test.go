package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sift/pkg/sift"
)

// --- URL Input Tests ---

func TestReadURLs(t *testing.T) {
	in := `
# seed list
https://example.com

  https://example.org/page  
#https://skipped.example
https://example.com
`
	urls, err := readURLs(strings.NewReader(in))
	if err != nil {
		t.Fatalf("readURLs() error = %v", err)
	}
	want := []string{"https://example.com", "https://example.org/page", "https://example.com"}
	if len(urls) != len(want) {
		t.Fatalf("got %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestCollectURLs_ArgsFlagsAndStdin(t *testing.T) {
	cmd := &cobra.Command{Use: "scrape"}
	cmd.Flags().StringArrayP("url", "u", nil, "")
	cmd.Flags().String("urls-file", "", "")
	cmd.SetIn(bytes.NewBufferString("https://c.example\n"))

	if err := cmd.Flags().Parse([]string{"-u", "https://b.example", "--urls-file", "-"}); err != nil {
		t.Fatal(err)
	}

	urls, err := collectURLs(cmd, []string{"https://a.example"})
	if err != nil {
		t.Fatalf("collectURLs() error = %v", err)
	}
	want := "https://a.example,https://b.example,https://c.example"
	if got := strings.Join(urls, ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCollectURLs_CommaInURL(t *testing.T) {
	cmd := &cobra.Command{Use: "scrape"}
	cmd.Flags().StringArrayP("url", "u", nil, "")
	cmd.Flags().String("urls-file", "", "")

	if err := cmd.Flags().Parse([]string{"-u", "https://example.com/search?tags=a,b", "-u", "https://example.org"}); err != nil {
		t.Fatal(err)
	}

	urls, err := collectURLs(cmd, nil)
	if err != nil {
		t.Fatalf("collectURLs() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("got %d URLs %q, want 2", len(urls), urls)
	}
	if urls[0] != "https://example.com/search?tags=a,b" {
		t.Errorf("urls[0] = %q", urls[0])
	}
}

func TestReadURLs_LongLine(t *testing.T) {
	long := "https://example.com/?q=" + strings.Repeat("x", 200*1024)
	urls, err := readURLs(strings.NewReader("https://a.example\n" + long + "\n"))
	if err != nil {
		t.Fatalf("readURLs() error = %v", err)
	}
	if len(urls) != 2 || urls[1] != long {
		t.Errorf("got %d URLs, want 2 with the long line intact", len(urls))
	}
}

// --- Config Tests ---

func TestBindEnv_DottedKeys(t *testing.T) {
	t.Setenv("SIFT_SERVER_ADDR", ":9999")
	t.Setenv("SIFT_RETRY_DELAY", "3s")

	v := viper.New()
	bindEnv(v)

	if got := v.GetString("server.addr"); got != ":9999" {
		t.Errorf("server.addr = %q, want :9999", got)
	}
	if got := v.GetDuration("retry_delay"); got != 3*time.Second {
		t.Errorf("retry_delay = %v, want 3s", got)
	}
}


func TestEngineConfig(t *testing.T) {
	v := viper.New()
	v.Set("concurrency_limit", 8)
	v.Set("timeout", "10s")
	v.Set("max_retries", 0)
	v.Set("retry_delay", "250ms")
	v.Set("batch_timeout", "2m")
	v.Set("rate_limit", 2.5)
	v.Set("rate_burst", 3)
	v.Set("user_agent", "test-agent")
	v.Set("max_body_size", "1MB")

	cfg, err := engineConfig(v)
	if err != nil {
		t.Fatalf("engineConfig() error = %v", err)
	}

	if cfg.ConcurrencyLimit != 8 || cfg.MaxRetries != 0 || cfg.RateBurst != 3 {
		t.Errorf("unexpected ints: %+v", cfg)
	}
	if cfg.Timeout != 10*time.Second || cfg.RetryDelay != 250*time.Millisecond || cfg.BatchTimeout != 2*time.Minute {
		t.Errorf("unexpected durations: %+v", cfg)
	}
	if cfg.RateLimit != 2.5 || cfg.UserAgent != "test-agent" {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.MaxBodySize != 1000*1000 {
		t.Errorf("MaxBodySize = %d, want 1000000", cfg.MaxBodySize)
	}
}

func TestEngineConfig_InvalidSize(t *testing.T) {
	v := viper.New()
	v.Set("max_body_size", "lots")
	if _, err := engineConfig(v); err == nil {
		t.Error("expected error for invalid size")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"0", 0},
		{"512", 512},
		{"10KB", 10000},
		{"1 MiB", 1 << 20},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if err != nil {
			t.Errorf("parseSize(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewFetcher(t *testing.T) {
	v := viper.New()
	v.Set("fetch_mode", "static")
	f, err := newFetcher(v, sift.DefaultConfig())
	if err != nil {
		t.Fatalf("newFetcher(static) error = %v", err)
	}
	if f.Type() != "static" {
		t.Errorf("Type() = %q", f.Type())
	}

	v.Set("fetch_mode", "ftp")
	if _, err := newFetcher(v, sift.DefaultConfig()); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewFetcher_DynamicUsesChromePath(t *testing.T) {
	v := viper.New()
	v.Set("fetch_mode", "dynamic")
	v.Set("chrome_path", "/opt/custom/chrome")
	v.Set("headful", true)

	f, err := newFetcher(v, sift.DefaultConfig())
	if err != nil {
		t.Fatalf("newFetcher(dynamic) error = %v", err)
	}
	defer func() { _ = f.Close() }()
	if f.Type() != "dynamic" {
		t.Errorf("Type() = %q", f.Type())
	}
}

func TestEngineFlags_BrowserOptions(t *testing.T) {
	cmd := &cobra.Command{Use: "scrape"}
	addEngineFlags(cmd.Flags())
	for _, name := range []string{"chrome-path", "headful"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
		if _, ok := engineFlags[name]; !ok {
			t.Errorf("--%s not bound to a config key", name)
		}
	}
}
