package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
)

// CompanyRepoImpl persists scraped companies in the `scraped_companies` table.
type CompanyRepoImpl struct {
	db  *pgxpool.Pool
	now func() time.Time
}

var _ repository.CompanyStore = (*CompanyRepoImpl)(nil)

// NewCompanyRepo creates a new instance of CompanyRepoImpl.
func NewCompanyRepo(db *pgxpool.Pool) *CompanyRepoImpl {
	return &CompanyRepoImpl{db: db, now: time.Now}
}

// Empty address and postal code values are sent as NULL so the conflict path
// can keep whatever is already stored. Type, incorporation date and sector
// keyword are only written on insert.
const upsertCompanySQL = `
	INSERT INTO scraped_companies (
		company_number, company_name, company_type, company_status,
		date_of_creation, address, postal_code, sector_keyword,
		company_url, scraped_at, data_source,
		created_at, updated_at, last_checked_at
	) VALUES (
		$1, $2, $3, $4, $5, NULLIF($6::text, ''), NULLIF($7::text, ''), NULLIF($8::text, ''),
		$9, $10, $11, $12, $12, $12
	)
	ON CONFLICT (company_number) DO UPDATE SET
		company_name = EXCLUDED.company_name,
		address = COALESCE(EXCLUDED.address, scraped_companies.address),
		postal_code = COALESCE(EXCLUDED.postal_code, scraped_companies.postal_code),
		last_checked_at = EXCLUDED.last_checked_at,
		updated_at = EXCLUDED.updated_at
	RETURNING id`

// Upsert writes one candidate in its own transaction.
func (r *CompanyRepoImpl) Upsert(ctx context.Context, c domain.CompanyCandidate) (int64, error) {
	if c.RegistryID == "" {
		return 0, &repository.PersistError{Err: repository.ErrNoRegistryID}
	}
	row := domain.NewCompany(c, r.now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, &repository.PersistError{RegistryID: c.RegistryID, Err: err}
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, upsertCompanySQL,
		row.RegistryID,
		row.Name,
		string(row.EntityType),
		string(row.Status),
		row.IncorporationDate,
		row.Address,
		row.PostalCode,
		row.SectorKeyword,
		row.SourceURL,
		row.ScrapedAt,
		row.DataSource,
		row.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, &repository.PersistError{RegistryID: c.RegistryID, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &repository.PersistError{RegistryID: c.RegistryID, Err: err}
	}
	return id, nil
}

const selectCompanyColumns = `
	SELECT id, company_number, company_name, company_type, company_status,
		date_of_creation, address, postal_code, sector_keyword, company_url,
		scraped_at, data_source, verified, created_at, updated_at, last_checked_at
	FROM scraped_companies`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var (
		c                                        domain.Company
		entityType, address, postal, sector, src *string
		scrapedAt                                *time.Time
		status                                   string
	)
	err := row.Scan(
		&c.ID,
		&c.RegistryID,
		&c.Name,
		&entityType,
		&status,
		&c.IncorporationDate,
		&address,
		&postal,
		&sector,
		&src,
		&scrapedAt,
		&c.DataSource,
		&c.Verified,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.LastCheckedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = domain.Status(status)
	c.EntityType = domain.EntityType(deref(entityType))
	c.Address = deref(address)
	c.PostalCode = deref(postal)
	c.SectorKeyword = deref(sector)
	c.SourceURL = deref(src)
	if scrapedAt != nil {
		c.ScrapedAt = *scrapedAt
	}
	return &c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FindByRegistryID retrieves one stored company.
func (r *CompanyRepoImpl) FindByRegistryID(ctx context.Context, registryID string) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, selectCompanyColumns+` WHERE company_number = $1`, registryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return c, err
}

// List streams every stored company ordered by company number.
func (r *CompanyRepoImpl) List(ctx context.Context, fn func(domain.Company) error) error {
	rows, err := r.db.Query(ctx, selectCompanyColumns+` ORDER BY company_number`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return err
		}
		if err := fn(*c); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Snapshot reads cumulative counts in a single batch.
func (r *CompanyRepoImpl) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		ByEntityType: make(map[domain.EntityType]int64),
		BySector:     make(map[string]int64),
	}

	batch := &pgx.Batch{}
	batch.Queue(`SELECT COUNT(*) FROM scraped_companies`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&snap.Total)
	})
	batch.Queue(`SELECT COUNT(*) FROM scraped_companies WHERE company_status = 'active'`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&snap.Active)
	})
	batch.Queue(`SELECT COUNT(*) FROM scraped_companies WHERE scraped_at > CURRENT_TIMESTAMP - INTERVAL '1 day'`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&snap.RecentlyScraped)
	})
	batch.Queue(`
		SELECT company_type, COUNT(*) FROM scraped_companies
		WHERE company_type IS NOT NULL
		GROUP BY company_type`).Query(func(rows pgx.Rows) error {
		for rows.Next() {
			var t string
			var n int64
			if err := rows.Scan(&t, &n); err != nil {
				return err
			}
			snap.ByEntityType[domain.EntityType(t)] = n
		}
		return rows.Err()
	})
	batch.Queue(`
		SELECT sector_keyword, COUNT(*) FROM scraped_companies
		WHERE company_status = 'active' AND sector_keyword IS NOT NULL
		GROUP BY sector_keyword`).Query(func(rows pgx.Rows) error {
		for rows.Next() {
			var s string
			var n int64
			if err := rows.Scan(&s, &n); err != nil {
				return err
			}
			snap.BySector[s] = n
		}
		return rows.Err()
	})

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Ping checks database connectivity.
func (r *CompanyRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
