package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
)

func TestUpsertKeepsAddressWhenLaterObservationIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewCompanyStore()

	id1, err := s.Upsert(ctx, domain.CompanyCandidate{RegistryID: "123", Name: "Acme", Address: "1 High St, London, SW1A 1AA", PostalCode: "SW1A 1AA"})
	require.NoError(t, err)
	id2, err := s.Upsert(ctx, domain.CompanyCandidate{RegistryID: "123", Name: "Acme Ltd"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	row, err := s.FindByRegistryID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", row.Name)
	assert.Equal(t, "1 High St, London, SW1A 1AA", row.Address)
	assert.Equal(t, "SW1A 1AA", row.PostalCode)
}

func TestUpsertMergeExample(t *testing.T) {
	ctx := context.Background()
	s := NewCompanyStore()

	_, err := s.Upsert(ctx, domain.CompanyCandidate{RegistryID: "123", Name: "Acme", SectorKeyword: "technology", EntityType: domain.EntityTypeLtd})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, domain.CompanyCandidate{RegistryID: "123", Name: "Acme Ltd", Address: "1 High St, SW1A 1AA", SectorKeyword: "finance", EntityType: domain.EntityTypePLC})
	require.NoError(t, err)

	row, err := s.FindByRegistryID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", row.Name)
	assert.Equal(t, "1 High St, SW1A 1AA", row.Address)
	assert.Equal(t, "technology", row.SectorKeyword)
	assert.Equal(t, domain.EntityTypeLtd, row.EntityType)
	assert.Equal(t, domain.StatusActive, row.Status)
	assert.Equal(t, domain.DataSource, row.DataSource)
}

func TestFindByRegistryIDNotFound(t *testing.T) {
	_, err := NewCompanyStore().FindByRegistryID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListIsOrderedAndSnapshotCounts(t *testing.T) {
	ctx := context.Background()
	s := NewCompanyStore()
	now := time.Now()
	for _, c := range []domain.CompanyCandidate{
		{RegistryID: "789", Name: "C", EntityType: domain.EntityTypeLLP, SectorKeyword: "finance", ScrapedAt: now},
		{RegistryID: "123", Name: "A", EntityType: domain.EntityTypeLtd, SectorKeyword: "technology", ScrapedAt: now},
		{RegistryID: "456", Name: "B", EntityType: domain.EntityTypeLtd, SectorKeyword: "technology", ScrapedAt: now.Add(-48 * time.Hour)},
	} {
		_, err := s.Upsert(ctx, c)
		require.NoError(t, err)
	}

	var ids []string
	require.NoError(t, s.List(ctx, func(c domain.Company) error {
		ids = append(ids, c.RegistryID)
		return nil
	}))
	assert.Equal(t, []string{"123", "456", "789"}, ids)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, snap.Total)
	assert.EqualValues(t, 3, snap.Active)
	assert.EqualValues(t, 2, snap.RecentlyScraped)
	assert.EqualValues(t, 2, snap.ByEntityType[domain.EntityTypeLtd])
	assert.EqualValues(t, 2, snap.BySector["technology"])
}

func TestSnapshotCountsInactiveRowsLikePostgres(t *testing.T) {
	ctx := context.Background()
	s := NewCompanyStore()
	now := time.Now()
	_, err := s.Upsert(ctx, domain.CompanyCandidate{RegistryID: "111", Name: "LIVE", EntityType: domain.EntityTypeLtd, SectorKeyword: "media", ScrapedAt: now})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, domain.CompanyCandidate{RegistryID: "222", Name: "GONE", EntityType: domain.EntityTypePLC, SectorKeyword: "media", ScrapedAt: now})
	require.NoError(t, err)
	s.rows["222"].Status = domain.StatusDissolved

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, snap.Total)
	assert.EqualValues(t, 1, snap.Active)
	assert.EqualValues(t, 2, snap.RecentlyScraped)
	assert.EqualValues(t, 1, snap.ByEntityType[domain.EntityTypePLC])
	assert.EqualValues(t, 1, snap.ByEntityType[domain.EntityTypeLtd])
	assert.EqualValues(t, 1, snap.BySector["media"])
}
