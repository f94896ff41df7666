// Package export writes scraped datasets to CSV files that spreadsheet
// tools open with correct accented characters.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/scrape"
)

// utf8BOM makes Excel detect UTF-8 instead of assuming a legacy codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the fixed CSV column order.
var Columns = []string{
	"code",
	"company_name",
	"security_type",
	"theoretical_quantity",
	"participation_pct",
	"page_number",
	"collected_at",
	"source_url",
}

// Filename builds the timestamped file name for a run, e.g.
// ibov_20260102_150405.csv.
func Filename(t time.Time) string {
	return fmt.Sprintf("ibov_%s.csv", t.Format("20060102_150405"))
}

// WriteCSV writes records to path, creating parent directories as needed.
// The header row is always written, so an empty dataset still produces a
// valid file.
func WriteCSV(path string, records []scrape.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewStorage("mkdir", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorage("create", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return apperrors.NewStorage("write_bom", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return apperrors.NewStorage("write_header", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Code,
			rec.Company,
			rec.SecurityType,
			rec.TheoreticalQty,
			rec.ParticipationPct,
			strconv.Itoa(rec.Page),
			rec.CollectedAt.Format(time.RFC3339),
			rec.SourceURL,
		}
		if err := w.Write(row); err != nil {
			return apperrors.NewStorage("write_row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewStorage("flush", err)
	}

	return f.Sync()
}
