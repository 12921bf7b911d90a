package postgres

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("SCRAPER_INTEGRATION") == "" {
		t.Skip("set SCRAPER_INTEGRATION=1 to run postgres integration tests")
	}
	ctx := context.Background()

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "scraper",
				"POSTGRES_PASSWORD": "scraper",
				"POSTGRES_DB":       "scraper",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := Connect(ctx, fmt.Sprintf("postgres://scraper:scraper@%s:%s/scraper?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := Migrate(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, applied)
	return pool
}

func TestUpsertMergePolicy(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repo := NewCompanyRepo(pool)
	incorporated := time.Date(2015, time.March, 3, 0, 0, 0, 0, time.UTC)

	id1, err := repo.Upsert(ctx, domain.CompanyCandidate{
		RegistryID:        "123",
		Name:              "Acme",
		EntityType:        domain.EntityTypeLtd,
		IncorporationDate: &incorporated,
		SectorKeyword:     "technology",
		SourceURL:         "https://example.test/company/123",
		ScrapedAt:         time.Now(),
	})
	require.NoError(t, err)

	first, err := repo.FindByRegistryID(ctx, "123")
	require.NoError(t, err)
	assert.Empty(t, first.Address)
	assert.Equal(t, domain.StatusActive, first.Status)
	assert.Equal(t, domain.DataSource, first.DataSource)

	id2, err := repo.Upsert(ctx, domain.CompanyCandidate{
		RegistryID:    "123",
		Name:          "Acme Ltd",
		EntityType:    domain.EntityTypePLC,
		Address:       "1 High St, SW1A 1AA",
		PostalCode:    "SW1A 1AA",
		SectorKeyword: "finance",
		ScrapedAt:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	_, err = repo.Upsert(ctx, domain.CompanyCandidate{RegistryID: "123", Name: "Acme Ltd", ScrapedAt: time.Now()})
	require.NoError(t, err)

	got, err := repo.FindByRegistryID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Name)
	assert.Equal(t, "1 High St, SW1A 1AA", got.Address)
	assert.Equal(t, "SW1A 1AA", got.PostalCode)
	assert.Equal(t, domain.EntityTypeLtd, got.EntityType)
	assert.Equal(t, "technology", got.SectorKeyword)
	require.NotNil(t, got.IncorporationDate)
	assert.True(t, got.IncorporationDate.Equal(incorporated))
	assert.False(t, got.LastCheckedAt.Before(first.LastCheckedAt))

	snap, err := repo.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, snap.Total)
	assert.EqualValues(t, 1, snap.Active)
	assert.EqualValues(t, 1, snap.ByEntityType[domain.EntityTypeLtd])
	assert.EqualValues(t, 1, snap.BySector["technology"])

	var listed []string
	require.NoError(t, repo.List(ctx, func(c domain.Company) error {
		listed = append(listed, c.RegistryID)
		return nil
	}))
	assert.Equal(t, []string{"123"}, listed)

	_, err = repo.FindByRegistryID(ctx, "999")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpsertFailureDoesNotRollBackEarlierRows(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	repo := NewCompanyRepo(pool)

	_, err := repo.Upsert(ctx, domain.CompanyCandidate{RegistryID: "111", Name: "First", ScrapedAt: time.Now()})
	require.NoError(t, err)

	// company_number is VARCHAR(20)
	_, err = repo.Upsert(ctx, domain.CompanyCandidate{RegistryID: "1234567890123456789012345", Name: "Too long", ScrapedAt: time.Now()})
	var pe *repository.PersistError
	require.ErrorAs(t, err, &pe)

	_, err = repo.FindByRegistryID(ctx, "111")
	assert.NoError(t, err)
}
