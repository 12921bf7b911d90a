package chromedp_crawler

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/registry-scraper/internal/repository"
	"github.com/user/registry-scraper/pkg/metrics"
	"github.com/user/registry-scraper/pkg/utils"
)

// ChromedpFetcher renders search pages in headless Chrome. It shares one
// browser allocator across requests and renders one page at a time.
type ChromedpFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	baseURL     *url.URL
	searchPath  string
	timeout     time.Duration
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

var _ repository.PageFetcher = (*ChromedpFetcher)(nil)

// NewChromedpFetcher starts a headless browser allocator.
func NewChromedpFetcher(baseURL, searchPath, userAgent string, pageLoadTimeout, minInterval time.Duration, m *metrics.Metrics, logger *zap.Logger) (*ChromedpFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	return &ChromedpFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		baseURL:     base,
		searchPath:  searchPath,
		timeout:     pageLoadTimeout,
		limiter:     limiter,
		metrics:     m,
		logger:      logger,
	}, nil
}

// Fetch navigates to the search page and returns the rendered document.
func (c *ChromedpFetcher) Fetch(ctx context.Context, query string, page int) ([]byte, error) {
	if query == "" {
		return nil, repository.ErrInvalidQuery
	}
	if page < 1 {
		return nil, repository.ErrInvalidPage
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := utils.SearchURL(c.baseURL, c.searchPath, query, page)

	taskCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()
	taskCtx, cancel = context.WithTimeout(taskCtx, c.timeout)
	defer cancel()

	// Propagate the caller's cancellation into the browser task.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	html, err := c.render(taskCtx, target)
	c.metrics.ObserveFetch(time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var fe *repository.FetchError
		if errors.As(err, &fe) {
			c.logger.Warn("browser fetch got error status", zap.String("url", target), zap.Int("status", fe.StatusCode))
			return nil, fe
		}
		c.logger.Warn("browser fetch failed", zap.String("url", target), zap.Error(err))
		return nil, &repository.FetchError{Kind: repository.FetchErrorNetwork, URL: target, Err: err}
	}

	c.logger.Debug("rendered search page", zap.String("url", target), zap.Duration("duration", time.Since(start)))
	return []byte(html), nil
}

// render navigates and reads the document. A non-2xx main document response
// is reported as an HTTP status FetchError, since the browser renders error
// pages like any other.
func (c *ChromedpFetcher) render(ctx context.Context, target string) (string, error) {
	resp, err := chromedp.RunResponse(ctx, chromedp.Navigate(target))
	if err != nil {
		return "", err
	}
	if resp != nil && (resp.Status < 200 || resp.Status > 299) {
		return "", &repository.FetchError{
			Kind:       repository.FetchErrorHTTPStatus,
			URL:        target,
			StatusCode: int(resp.Status),
		}
	}

	var html string
	err = chromedp.Run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// Close shuts the browser down.
func (c *ChromedpFetcher) Close() {
	c.cancelAlloc()
}
