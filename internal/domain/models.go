package domain

import "time"

// DataSource is recorded on every row written by the scraper.
const DataSource = "companies_house"

// EntityType is the normalized legal form of a registered company.
type EntityType string

const (
	EntityTypeLtd     EntityType = "ltd"
	EntityTypePLC     EntityType = "plc"
	EntityTypeLLP     EntityType = "llp"
	EntityTypeUnknown EntityType = "unknown"
)

// Status is the registry status of a company.
type Status string

const (
	StatusActive    Status = "active"
	StatusDissolved Status = "dissolved"
	StatusUnknown   Status = "unknown"
)

// CompanyCandidate is one parsed search result that has not been persisted yet.
type CompanyCandidate struct {
	RegistryID        string
	Name              string
	EntityType        EntityType
	Status            Status
	IncorporationDate *time.Time
	Address           string
	PostalCode        string
	SectorKeyword     string
	SourceURL         string
	ScrapedAt         time.Time
}

// Company mirrors the `scraped_companies` table.
type Company struct {
	ID                int64      `json:"id"`
	RegistryID        string     `json:"company_number"`
	Name              string     `json:"company_name"`
	EntityType        EntityType `json:"company_type"`
	Status            Status     `json:"company_status"`
	IncorporationDate *time.Time `json:"date_of_creation,omitempty"`
	Address           string     `json:"address,omitempty"`
	PostalCode        string     `json:"postal_code,omitempty"`
	SectorKeyword     string     `json:"sector_keyword,omitempty"`
	SourceURL         string     `json:"company_url"`
	ScrapedAt         time.Time  `json:"scraped_at"`
	DataSource        string     `json:"data_source"`
	Verified          bool       `json:"verified"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastCheckedAt     time.Time  `json:"last_checked_at"`
}

// NewCompany builds the row inserted the first time a registry id is seen.
func NewCompany(c CompanyCandidate, now time.Time) Company {
	entityType := c.EntityType
	if entityType == "" {
		entityType = EntityTypeUnknown
	}
	return Company{
		RegistryID:        c.RegistryID,
		Name:              c.Name,
		EntityType:        entityType,
		Status:            StatusActive,
		IncorporationDate: c.IncorporationDate,
		Address:           c.Address,
		PostalCode:        c.PostalCode,
		SectorKeyword:     c.SectorKeyword,
		SourceURL:         c.SourceURL,
		ScrapedAt:         c.ScrapedAt,
		DataSource:        DataSource,
		CreatedAt:         now,
		UpdatedAt:         now,
		LastCheckedAt:     now,
	}
}

// Merge applies a later observation of the same registry id to an existing row.
// The name always follows the newest observation, address and postal code are
// only filled, never erased, and entity type, incorporation date and sector
// keyword keep their first-written values.
func (c *Company) Merge(next CompanyCandidate, now time.Time) {
	c.Name = next.Name
	if next.Address != "" {
		c.Address = next.Address
	}
	if next.PostalCode != "" {
		c.PostalCode = next.PostalCode
	}
	c.UpdatedAt = now
	c.LastCheckedAt = now
}

// Snapshot is a read of cumulative stored-row counts used for reporting.
type Snapshot struct {
	Total           int64                `json:"total"`
	Active          int64                `json:"active"`
	RecentlyScraped int64                `json:"recently_scraped"`
	ByEntityType    map[EntityType]int64 `json:"by_entity_type"`
	BySector        map[string]int64     `json:"by_sector"`
}
