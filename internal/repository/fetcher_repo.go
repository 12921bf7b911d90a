package repository

import "context"

// PageFetcher retrieves one page of registry search results.
type PageFetcher interface {
	// Fetch returns the raw markup for the given query and 1-based page.
	Fetch(ctx context.Context, query string, page int) ([]byte, error)
}
