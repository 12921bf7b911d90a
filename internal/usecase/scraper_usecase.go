package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
	"github.com/user/registry-scraper/pkg/metrics"
)

const (
	DefaultRequestDelay = time.Second
	DefaultSectorDelay  = 2 * time.Second
	DefaultMaxPages     = 5
)

// ResultParser turns one page of markup into candidates.
type ResultParser interface {
	Parse(content []byte) ([]domain.CompanyCandidate, error)
}

// Options tunes the sector driver.
type Options struct {
	// RunID scopes the run. A random id is generated when empty.
	RunID        string
	MaxPages     int
	RequestDelay time.Duration
	SectorDelay  time.Duration
}

// Scraper walks sectors and their result pages strictly one request at a
// time, feeding every non-duplicate candidate to the store.
type Scraper struct {
	fetcher repository.PageFetcher
	parser  ResultParser
	seen    repository.SeenIndex
	store   repository.CompanyStore
	opts    Options
	metrics *metrics.Metrics
	logger  *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewScraper creates a new sector driver.
func NewScraper(
	fetcher repository.PageFetcher,
	parser ResultParser,
	seen repository.SeenIndex,
	store repository.CompanyStore,
	opts Options,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Scraper {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = DefaultMaxPages
	}
	return &Scraper{
		fetcher: fetcher,
		parser:  parser,
		seen:    seen,
		store:   store,
		opts:    opts,
		metrics: m,
		logger:  logger.With(zap.String("run_id", opts.RunID)),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// RunID returns the id of the run this driver executes.
func (s *Scraper) RunID() string {
	return s.opts.RunID
}

// Run processes the sectors in order. Fetch and persist failures never stop
// the run; only cancellation of ctx does, in which case the statistics
// gathered so far are returned together with the context error.
func (s *Scraper) Run(ctx context.Context, sectors []string) (*domain.RunStatistics, error) {
	stats := domain.NewRunStatistics(s.opts.RunID, s.now())
	defer func() { stats.FinishedAt = s.now() }()

	s.logger.Info("starting run",
		zap.Strings("sectors", sectors),
		zap.Int("max_pages", s.opts.MaxPages),
	)

	for i, sector := range sectors {
		if i > 0 {
			if err := s.sleep(ctx, s.opts.SectorDelay); err != nil {
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		sec, err := s.runSector(ctx, sector, stats)
		stats.Sectors = append(stats.Sectors, sec)
		if err != nil {
			return stats, err
		}
		s.logger.Info("sector finished",
			zap.String("sector", sector),
			zap.Int("pages", sec.Pages),
			zap.Int("found", sec.Found),
			zap.Int("duplicates", sec.Duplicates),
			zap.Int("saved", sec.Saved),
			zap.Int("skipped", sec.Skipped),
		)
	}

	s.logger.Info("run finished",
		zap.Int("saved", stats.TotalSaved()),
		zap.Int("skipped", stats.TotalSkipped()),
	)
	return stats, nil
}

// runSector returns a non-nil error only when ctx is done.
func (s *Scraper) runSector(ctx context.Context, sector string, stats *domain.RunStatistics) (domain.SectorStats, error) {
	sec := domain.SectorStats{Sector: sector}
	log := s.logger.With(zap.String("sector", sector))

	for page := 1; page <= s.opts.MaxPages; page++ {
		if page > 1 {
			if err := s.sleep(ctx, s.opts.RequestDelay); err != nil {
				return sec, err
			}
		}
		if err := ctx.Err(); err != nil {
			return sec, err
		}

		content, err := s.fetcher.Fetch(ctx, sector, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return sec, ctxErr
			}
			s.metrics.IncPage(sector, metrics.PageFailed)
			sec.FetchErr = err.Error()

			var fe *repository.FetchError
			if errors.As(err, &fe) {
				log.Warn("fetch failed, ending sector",
					zap.Int("page", page),
					zap.String("kind", string(fe.Kind)),
					zap.Int("status", fe.StatusCode),
					zap.Error(err),
				)
			} else {
				log.Warn("fetch failed, ending sector", zap.Int("page", page), zap.Error(err))
			}
			return sec, nil
		}
		sec.Pages++

		candidates, err := s.parser.Parse(content)
		if err != nil {
			log.Warn("unreadable page, ending sector", zap.Int("page", page), zap.Error(err))
			s.metrics.IncPage(sector, metrics.PageFailed)
			return sec, nil
		}
		if len(candidates) == 0 {
			log.Info("no more results", zap.Int("page", page))
			s.metrics.IncPage(sector, metrics.PageEmpty)
			return sec, nil
		}
		s.metrics.IncPage(sector, metrics.PageOK)
		s.metrics.IncCandidates(metrics.OutcomeParsed, len(candidates))
		sec.Found += len(candidates)

		saved := 0
		for _, c := range candidates {
			if err := ctx.Err(); err != nil {
				return sec, err
			}
			c.SectorKeyword = sector
			switch s.process(ctx, log, c) {
			case metrics.OutcomeSaved:
				saved++
				sec.Saved++
				stats.ByType[c.EntityType]++
			case metrics.OutcomeDuplicate:
				sec.Duplicates++
			case metrics.OutcomeSkipped:
				sec.Skipped++
			}
		}

		log.Info("page processed",
			zap.Int("page", page),
			zap.Int("found", len(candidates)),
			zap.Int("saved", saved),
		)
	}
	return sec, nil
}

// process filters one candidate through the dedup index and persists it.
// It returns the metrics outcome of the candidate.
func (s *Scraper) process(ctx context.Context, log *zap.Logger, c domain.CompanyCandidate) string {
	seen, err := s.seen.Seen(ctx, c.RegistryID)
	if err != nil {
		// The store's conflict policy still keeps rows unique.
		log.Warn("dedup lookup failed, treating as unseen", zap.String("registry_id", c.RegistryID), zap.Error(err))
	}
	if seen {
		s.metrics.IncCandidates(metrics.OutcomeDuplicate, 1)
		return metrics.OutcomeDuplicate
	}
	if err := s.seen.MarkSeen(ctx, c.RegistryID); err != nil {
		log.Warn("dedup update failed", zap.String("registry_id", c.RegistryID), zap.Error(err))
	}

	if _, err := s.store.Upsert(ctx, c); err != nil {
		log.Warn("skipping candidate", zap.String("registry_id", c.RegistryID), zap.Error(err))
		s.metrics.IncCandidates(metrics.OutcomeSkipped, 1)
		return metrics.OutcomeSkipped
	}
	s.metrics.IncCandidates(metrics.OutcomeSaved, 1)
	return metrics.OutcomeSaved
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
