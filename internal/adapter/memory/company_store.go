package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
)

// CompanyStore keeps rows in memory with the same merge policy as the
// Postgres upserter. It backs dry runs.
type CompanyStore struct {
	mu     sync.Mutex
	rows   map[string]*domain.Company
	nextID int64
	now    func() time.Time
}

var _ repository.CompanyStore = (*CompanyStore)(nil)

func NewCompanyStore() *CompanyStore {
	return &CompanyStore{rows: make(map[string]*domain.Company), now: time.Now}
}

func (s *CompanyStore) Upsert(_ context.Context, c domain.CompanyCandidate) (int64, error) {
	if c.RegistryID == "" {
		return 0, &repository.PersistError{Err: repository.ErrNoRegistryID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if row, ok := s.rows[c.RegistryID]; ok {
		row.Merge(c, now)
		return row.ID, nil
	}
	s.nextID++
	row := domain.NewCompany(c, now)
	row.ID = s.nextID
	s.rows[c.RegistryID] = &row
	return row.ID, nil
}

func (s *CompanyStore) FindByRegistryID(_ context.Context, registryID string) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[registryID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (s *CompanyStore) List(ctx context.Context, fn func(domain.Company) error) error {
	s.mu.Lock()
	rows := make([]domain.Company, 0, len(s.rows))
	for _, row := range s.rows {
		rows = append(rows, *row)
	}
	s.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].RegistryID < rows[j].RegistryID })
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *CompanyStore) Snapshot(_ context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &domain.Snapshot{
		ByEntityType: make(map[domain.EntityType]int64),
		BySector:     make(map[string]int64),
	}
	recent := s.now().Add(-24 * time.Hour)
	for _, row := range s.rows {
		snap.Total++
		if row.ScrapedAt.After(recent) {
			snap.RecentlyScraped++
		}
		if row.EntityType != "" {
			snap.ByEntityType[row.EntityType]++
		}
		// Active count and sector breakdown cover active rows only.
		if row.Status != domain.StatusActive {
			continue
		}
		snap.Active++
		if row.SectorKeyword != "" {
			snap.BySector[row.SectorKeyword]++
		}
	}
	return snap, nil
}

func (s *CompanyStore) Ping(context.Context) error {
	return nil
}
