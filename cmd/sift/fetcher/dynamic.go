package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/sift/internal/logger"
	"github.com/jmylchreest/sift/pkg/fetcher"
)

// ErrNoBrowser is returned when no Chrome/Chromium binary can be found.
var ErrNoBrowser = errors.New("no Chrome or Chromium binary found")

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("dynamic fetcher closed")

// launchFunc starts a browser under allocCtx and returns its context.
type launchFunc func(allocCtx context.Context) (context.Context, context.CancelFunc, error)

// DynamicFetcher renders pages in a shared headless browser, one tab per
// fetch. It implements fetcher.Fetcher.
type DynamicFetcher struct {
	config      Config
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	launch      launchFunc

	mu            sync.Mutex // guards the fields below
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	closed        bool
}

// NewDynamicFetcher prepares a browser allocator. The browser itself starts
// on the first Fetch.
func NewDynamicFetcher(cfg Config) (*DynamicFetcher, error) {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = FindChromePath()
	}
	if cfg.ChromePath == "" {
		return nil, ErrNoBrowser
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(cfg.ChromePath),
		chromedp.Flag("headless", !cfg.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher created",
		"chrome", cfg.ChromePath,
		"headful", cfg.Headful,
		"timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:      cfg,
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		launch:      launchBrowser,
	}, nil
}

func launchBrowser(allocCtx context.Context) (context.Context, context.CancelFunc, error) {
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	return ctx, cancel, nil
}

// browser returns the running browser, starting it if needed. A failed start
// is not remembered, and a browser that has gone away is started again.
func (f *DynamicFetcher) browser() (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	if f.browserCtx != nil {
		if f.browserCtx.Err() == nil {
			return f.browserCtx, nil
		}
		logger.Debug("browser gone, restarting", "error", f.browserCtx.Err())
		f.cancelBrowser()
		f.browserCtx, f.cancelBrowser = nil, nil
	}

	ctx, cancel, err := f.launch(f.allocCtx)
	if err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}
	f.browserCtx, f.cancelBrowser = ctx, cancel
	return ctx, nil
}

// Fetch navigates a new tab to targetURL and returns the rendered document.
// The status code is that of the main document response; error statuses are
// returned as Content like the static fetcher does.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	if targetURL == "" {
		return fetcher.Content{}, fetcher.ErrEmptyURL
	}

	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	browserCtx, err := f.browser()
	if err != nil {
		return result, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	var (
		status      atomic.Int64
		contentType atomic.Value
		html        string
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
			return
		}
		// The first document response is the main frame; iframes follow.
		if status.CompareAndSwap(0, resp.Response.Status) {
			contentType.Store(resp.Response.MimeType)
		}
	})

	actions := []chromedp.Action{network.Enable()}
	if ua := opts.UserAgent; ua != "" && ua != f.config.UserAgent {
		actions = append(actions, emulation.SetUserAgentOverride(ua))
	}
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}
	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
		chromedp.Location(&result.URL),
	)

	logger.Debug("dynamic fetch starting", "url", targetURL, "timeout", timeout)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("browser fetch: %w", ctxErr)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("browser fetch: %w", context.DeadlineExceeded)
		}
		return result, fmt.Errorf("browser fetch: %w", err)
	}

	maxBody := opts.MaxBodySize
	if maxBody == 0 {
		maxBody = f.config.MaxBodySize
	}
	if maxBody > 0 && len(html) > maxBody {
		html = html[:maxBody]
	}

	result.HTML = html
	result.StatusCode = int(status.Load())
	if ct, ok := contentType.Load().(string); ok {
		result.ContentType = ct
	}

	logger.Debug("dynamic fetch complete",
		"url", targetURL,
		"status", result.StatusCode,
		"html_size", len(html))

	return result, nil
}

// Close shuts the browser down. Later fetches fail with ErrClosed.
func (f *DynamicFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	if f.cancelBrowser != nil {
		f.cancelBrowser()
		f.browserCtx, f.cancelBrowser = nil, nil
	}
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
