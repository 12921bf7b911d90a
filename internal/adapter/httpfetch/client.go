package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/registry-scraper/internal/proxy"
	"github.com/user/registry-scraper/internal/repository"
	"github.com/user/registry-scraper/pkg/metrics"
)

// Options configures the search page client.
type Options struct {
	BaseURL    string
	SearchPath string
	Timeout    time.Duration
	// MinInterval is the floor between two requests to the origin. Zero disables it.
	MinInterval time.Duration
}

// Client issues rate-limited GET requests against the public search endpoint.
// It never retries.
type Client struct {
	http       *resty.Client
	searchPath string
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

var _ repository.PageFetcher = (*Client)(nil)

// New creates a search client. The proxy manager supplies the identity header
// and optional proxy rotation.
func New(opts Options, pm *proxy.Manager, m *metrics.Metrics, logger *zap.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(0)
	client.SetHeader("User-Agent", pm.UserAgent())
	client.SetHeader("Accept", "text/html,application/xhtml+xml")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = pm.ProxyFunc()
	client.SetTransport(transport)

	var limiter *rate.Limiter
	if opts.MinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}

	return &Client{
		http:       client,
		searchPath: opts.SearchPath,
		limiter:    limiter,
		metrics:    m,
		logger:     logger,
	}
}

// Fetch returns the markup of one result page.
func (c *Client) Fetch(ctx context.Context, query string, page int) ([]byte, error) {
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

	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("page", strconv.Itoa(page)).
		Get(c.searchPath)
	c.metrics.ObserveFetch(time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, &repository.FetchError{
			Kind: repository.FetchErrorNetwork,
			URL:  c.http.BaseURL + c.searchPath,
			Err:  err,
		}
	}
	if !res.IsSuccess() {
		return nil, &repository.FetchError{
			Kind:       repository.FetchErrorHTTPStatus,
			URL:        res.Request.URL,
			StatusCode: res.StatusCode(),
		}
	}

	c.logger.Debug("fetched search page",
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("bytes", len(res.Body())),
		zap.Duration("duration", time.Since(start)),
	)
	return res.Body(), nil
}
