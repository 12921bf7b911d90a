package repository

import (
	"context"

	"github.com/user/registry-scraper/internal/domain"
)

// RegistryAPI is the optional authenticated JSON interface of the registry.
// The scraping pipeline does not depend on it.
type RegistryAPI interface {
	Search(ctx context.Context, query string, itemsPerPage, startIndex int) (*domain.RegistrySearchPage, error)
	Company(ctx context.Context, number string) (*domain.RegistryProfile, error)
	Officers(ctx context.Context, number string) (*domain.OfficerList, error)
}
