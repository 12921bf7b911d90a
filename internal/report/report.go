package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/user/registry-scraper/internal/domain"
)

// TopSectors caps the sector breakdown of a snapshot.
const TopSectors = 15

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RunSummary renders the end-of-run accounting, busiest sectors first.
func RunSummary(w io.Writer, stats *domain.RunStatistics) {
	fmt.Fprintf(w, "Run %s finished in %s\n", stats.RunID, stats.FinishedAt.Sub(stats.StartedAt).Round(time.Second))

	t := newTable(w)
	t.SetTitle("Companies by sector")
	t.AppendHeader(table.Row{"Sector", "Pages", "Found", "Duplicates", "Saved", "Skipped", "Note"})
	for _, sec := range stats.SectorsBySaved() {
		t.AppendRow(table.Row{sec.Sector, sec.Pages, sec.Found, sec.Duplicates, sec.Saved, sec.Skipped, sec.FetchErr})
	}
	t.AppendFooter(table.Row{"Total", "", "", "", stats.TotalSaved(), stats.TotalSkipped(), ""})
	t.Render()

	if len(stats.ByType) == 0 {
		return
	}
	types := newTable(w)
	types.SetTitle("Saved by company type")
	types.AppendHeader(table.Row{"Type", "Saved"})
	for _, kv := range sortedCounts(stats.ByType) {
		types.AppendRow(table.Row{kv.key, kv.n})
	}
	types.Render()
}

// Snapshot renders cumulative stored-row counts.
func Snapshot(w io.Writer, snap *domain.Snapshot) {
	t := newTable(w)
	t.SetTitle("Database statistics")
	t.AppendRows([]table.Row{
		{"Total companies", snap.Total},
		{"Active companies", snap.Active},
		{"Recently scraped (24h)", snap.RecentlyScraped},
	})
	t.Render()

	if len(snap.ByEntityType) > 0 {
		types := newTable(w)
		types.SetTitle("By company type")
		types.AppendHeader(table.Row{"Type", "Companies"})
		for _, kv := range sortedCounts(snap.ByEntityType) {
			types.AppendRow(table.Row{kv.key, kv.n})
		}
		types.Render()
	}

	if len(snap.BySector) > 0 {
		sectors := newTable(w)
		sectors.SetTitle("Active companies by sector")
		sectors.AppendHeader(table.Row{"Sector", "Companies"})
		for i, kv := range sortedCounts(snap.BySector) {
			if i == TopSectors {
				break
			}
			sectors.AppendRow(table.Row{kv.key, kv.n})
		}
		sectors.Render()
	}
}

// Profile renders an API company profile and its officers.
func Profile(w io.Writer, p *domain.RegistryProfile, officers *domain.OfficerList) {
	t := newTable(w)
	t.SetTitle(p.CompanyName)
	addr := []string{p.Address.AddressLine1, p.Address.AddressLine2, p.Address.Locality, p.Address.PostalCode}
	t.AppendRows([]table.Row{
		{"Number", p.CompanyNumber},
		{"Type", p.Type},
		{"Status", p.CompanyStatus},
		{"Incorporated", p.DateOfCreation},
		{"Address", joinNonEmpty(addr)},
		{"SIC codes", strings.Join(p.SICCodes, ", ")},
		{"Has charges", p.HasCharges},
		{"Insolvency history", p.HasInsolvencyHistory},
	})
	t.Render()

	if officers == nil || len(officers.Items) == 0 {
		return
	}
	ot := newTable(w)
	ot.SetTitle(fmt.Sprintf("Officers (%d active, %d resigned)", officers.ActiveCount, officers.ResignedCount))
	ot.AppendHeader(table.Row{"Name", "Role", "Appointed", "Resigned"})
	for _, o := range officers.Items {
		ot.AppendRow(table.Row{o.Name, o.OfficerRole, o.AppointedOn, o.ResignedOn})
	}
	ot.Render()
}

type count struct {
	key string
	n   int64
}

// sortedCounts orders by count descending, then key.
func sortedCounts[K ~string, V int | int64](m map[K]V) []count {
	out := make([]count, 0, len(m))
	for k, v := range m {
		out = append(out, count{key: string(k), n: int64(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

func joinNonEmpty(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// SearchResults renders one page of API search hits.
func SearchResults(w io.Writer, page *domain.RegistrySearchPage) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%d results, showing %d from %d", page.TotalResults, len(page.Items), page.StartIndex))
	t.AppendHeader(table.Row{"Number", "Name", "Type", "Status", "Created", "Postcode"})
	for _, it := range page.Items {
		t.AppendRow(table.Row{it.CompanyNumber, it.Title, it.CompanyType, it.CompanyStatus, it.DateOfCreation, it.Address.PostalCode})
	}
	t.Render()
}
