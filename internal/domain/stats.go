package domain

import (
	"sort"
	"time"
)

// SectorStats is the accounting for one sector keyword within a run.
type SectorStats struct {
	Sector     string
	Pages      int
	Found      int
	Duplicates int
	Saved      int
	Skipped    int
	FetchErr   string
}

// RunStatistics is scoped to one driver invocation and is never persisted.
type RunStatistics struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Sectors    []SectorStats
	ByType     map[EntityType]int
}

// NewRunStatistics returns empty statistics for the given run.
func NewRunStatistics(runID string, startedAt time.Time) *RunStatistics {
	return &RunStatistics{
		RunID:     runID,
		StartedAt: startedAt,
		ByType:    make(map[EntityType]int),
	}
}

// TotalSaved sums saved records across sectors.
func (s *RunStatistics) TotalSaved() int {
	total := 0
	for _, sec := range s.Sectors {
		total += sec.Saved
	}
	return total
}

// TotalSkipped sums candidates whose persistence failed.
func (s *RunStatistics) TotalSkipped() int {
	total := 0
	for _, sec := range s.Sectors {
		total += sec.Skipped
	}
	return total
}

// Saved returns the saved count for a sector, zero if it was never visited.
func (s *RunStatistics) Saved(sector string) int {
	for _, sec := range s.Sectors {
		if sec.Sector == sector {
			return sec.Saved
		}
	}
	return 0
}

// SectorsBySaved returns the sectors ordered by saved count, highest first.
func (s *RunStatistics) SectorsBySaved() []SectorStats {
	out := make([]SectorStats, len(s.Sectors))
	copy(out, s.Sectors)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Saved > out[j].Saved
	})
	return out
}
