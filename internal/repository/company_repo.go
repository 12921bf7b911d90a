package repository

import (
	"context"

	"github.com/user/registry-scraper/internal/domain"
)

// CompanyStore defines durable storage of scraped companies.
type CompanyStore interface {
	// Upsert inserts a candidate or merges it into the existing row with the same
	// registry id, returning the stored row id.
	Upsert(ctx context.Context, candidate domain.CompanyCandidate) (int64, error)
	// FindByRegistryID returns ErrNotFound when no row exists.
	FindByRegistryID(ctx context.Context, registryID string) (*domain.Company, error)
	// List calls fn for every stored row in registry id order.
	List(ctx context.Context, fn func(domain.Company) error) error
	// Snapshot reads cumulative counts for reporting.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
	Ping(ctx context.Context) error
}
