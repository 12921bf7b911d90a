package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/registry-scraper/internal/adapter/memory"
	"github.com/user/registry-scraper/internal/domain"
)

func seededStore(t *testing.T) *memory.CompanyStore {
	t.Helper()
	store := memory.NewCompanyStore()
	incorporated := time.Date(2015, time.March, 3, 0, 0, 0, 0, time.UTC)
	scraped := time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC)
	for _, c := range []domain.CompanyCandidate{
		{RegistryID: "SC123456", Name: "NORTHERN DATA PLC", EntityType: domain.EntityTypePLC, SectorKeyword: "software", ScrapedAt: scraped},
		{RegistryID: "12345678", Name: "ACME, TECHNOLOGY LIMITED", EntityType: domain.EntityTypeLtd, IncorporationDate: &incorporated,
			Address: "1 High Street, London, SW1A 1AA", PostalCode: "SW1A 1AA", SectorKeyword: "technology",
			SourceURL: "https://example.test/company/12345678", ScrapedAt: scraped},
	} {
		_, err := store.Upsert(context.Background(), c)
		require.NoError(t, err)
	}
	return store
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(context.Background(), seededStore(t), FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{
		"12345678", "ACME, TECHNOLOGY LIMITED", "ltd", "active", "2015-03-03",
		"1 High Street, London, SW1A 1AA", "SW1A 1AA", "technology",
		"https://example.test/company/12345678", "2024-05-01T10:30:00Z",
	}, rows[1])
	assert.Equal(t, "SC123456", rows[2][0])
	assert.Empty(t, rows[2][4])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(context.Background(), seededStore(t), FormatJSON, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2015-03-03", got[0].DateOfCreation)
	assert.Equal(t, "plc", got[1].CompanyType)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(context.Background(), memory.NewCompanyStore(), FormatJSON, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	_, err := Write(context.Background(), memory.NewCompanyStore(), Format("xml"), &bytes.Buffer{})
	assert.Error(t, err)
}
