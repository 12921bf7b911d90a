package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/user/registry-scraper/internal/domain"
	"github.com/user/registry-scraper/internal/repository"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"

	dateLayout = "2006-01-02"
)

// Columns is the header row of CSV exports and the key set of JSON exports.
var Columns = []string{
	"company_number",
	"company_name",
	"company_type",
	"company_status",
	"date_of_creation",
	"address",
	"postal_code",
	"sector_keyword",
	"company_url",
	"scraped_at",
}

// Record is the exported shape of one stored company.
type Record struct {
	CompanyNumber  string `json:"company_number"`
	CompanyName    string `json:"company_name"`
	CompanyType    string `json:"company_type"`
	CompanyStatus  string `json:"company_status"`
	DateOfCreation string `json:"date_of_creation"`
	Address        string `json:"address"`
	PostalCode     string `json:"postal_code"`
	SectorKeyword  string `json:"sector_keyword"`
	CompanyURL     string `json:"company_url"`
	ScrapedAt      string `json:"scraped_at"`
}

func NewRecord(c domain.Company) Record {
	r := Record{
		CompanyNumber: c.RegistryID,
		CompanyName:   c.Name,
		CompanyType:   string(c.EntityType),
		CompanyStatus: string(c.Status),
		Address:       c.Address,
		PostalCode:    c.PostalCode,
		SectorKeyword: c.SectorKeyword,
		CompanyURL:    c.SourceURL,
	}
	if c.IncorporationDate != nil {
		r.DateOfCreation = c.IncorporationDate.Format(dateLayout)
	}
	if !c.ScrapedAt.IsZero() {
		r.ScrapedAt = c.ScrapedAt.UTC().Format(time.RFC3339)
	}
	return r
}

func (r Record) values() []string {
	return []string{
		r.CompanyNumber,
		r.CompanyName,
		r.CompanyType,
		r.CompanyStatus,
		r.DateOfCreation,
		r.Address,
		r.PostalCode,
		r.SectorKeyword,
		r.CompanyURL,
		r.ScrapedAt,
	}
}

// Write streams every stored company to w in registry id order and returns
// the number of rows written.
func Write(ctx context.Context, store repository.CompanyStore, format Format, w io.Writer) (int, error) {
	switch format {
	case FormatCSV:
		return writeCSV(ctx, store, w)
	case FormatJSON:
		return writeJSON(ctx, store, w)
	default:
		return 0, fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(ctx context.Context, store repository.CompanyStore, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return 0, err
	}
	n := 0
	err := store.List(ctx, func(c domain.Company) error {
		n++
		return cw.Write(NewRecord(c).values())
	})
	if err != nil {
		return n, fmt.Errorf("export csv: %w", err)
	}
	cw.Flush()
	return n, cw.Error()
}

func writeJSON(ctx context.Context, store repository.CompanyStore, w io.Writer) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}
	n := 0
	err := store.List(ctx, func(c domain.Company) error {
		b, err := json.MarshalIndent(NewRecord(c), "  ", "  ")
		if err != nil {
			return err
		}
		sep := ",\n  "
		if n == 0 {
			sep = "\n  "
		}
		n++
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	})
	if err != nil {
		return n, fmt.Errorf("export json: %w", err)
	}
	end := "\n]\n"
	if n == 0 {
		end = "]\n"
	}
	_, err = io.WriteString(w, end)
	return n, err
}
