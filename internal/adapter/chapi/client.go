package chapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
)

const (
	DefaultBaseURL  = "https://api.company-information.service.gov.uk"
	MaxItemsPerPage = 100
)

var ErrMissingAPIKey = errors.New("registry api key is not configured")

// Client talks to the authenticated registry API. The key is sent as the
// basic auth user name with an empty password.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

var _ repository.RegistryAPI = (*Client)(nil)

// New creates an API client. It fails without a key since every endpoint
// requires one.
func New(baseURL, apiKey, userAgent string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetBasicAuth(apiKey, "")
	client.SetHeader("Accept", "application/json")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	return &Client{http: client, logger: logger}, nil
}

// Search runs a company search. itemsPerPage is capped at MaxItemsPerPage.
func (c *Client) Search(ctx context.Context, query string, itemsPerPage, startIndex int) (*domain.RegistrySearchPage, error) {
	if query == "" {
		return nil, repository.ErrInvalidQuery
	}
	if itemsPerPage <= 0 || itemsPerPage > MaxItemsPerPage {
		itemsPerPage = MaxItemsPerPage
	}
	if startIndex < 0 {
		startIndex = 0
	}

	var out domain.RegistrySearchPage
	err := c.get(ctx, "/search/companies", map[string]string{
		"q":              query,
		"items_per_page": strconv.Itoa(itemsPerPage),
		"start_index":    strconv.Itoa(startIndex),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Company fetches a company profile.
func (c *Client) Company(ctx context.Context, number string) (*domain.RegistryProfile, error) {
	var out domain.RegistryProfile
	if err := c.get(ctx, "/company/"+url.PathEscape(number), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Officers fetches the officer list of a company.
func (c *Client) Officers(ctx context.Context, number string) (*domain.OfficerList, error) {
	var out domain.OfficerList
	if err := c.get(ctx, "/company/"+url.PathEscape(number)+"/officers", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &repository.FetchError{Kind: repository.FetchErrorNetwork, URL: c.http.BaseURL + path, Err: err}
	}

	switch {
	case res.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, repository.ErrNotFound)
	case !res.IsSuccess():
		c.logger.Warn("registry api request failed",
			zap.String("path", path),
			zap.Int("status", res.StatusCode()),
		)
		return &repository.FetchError{
			Kind:       repository.FetchErrorHTTPStatus,
			URL:        res.Request.URL,
			StatusCode: res.StatusCode(),
		}
	}
	return nil
}
