// Package convert turns exported CSV files into a typed SQLite staging
// database. Textual quantities and percentages in Brazilian formatting
// ("1.234.567", "5,123") become numeric columns that downstream queries
// can aggregate without string munging.
package convert

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const schema = `
CREATE TABLE IF NOT EXISTS constituents (
	code                 TEXT    NOT NULL,
	company_name         TEXT    NOT NULL,
	security_type        TEXT,
	theoretical_quantity INTEGER,
	participation_pct    REAL,
	page_number          INTEGER NOT NULL,
	collected_at         TEXT    NOT NULL,
	source_url           TEXT,
	source_file          TEXT    NOT NULL,
	PRIMARY KEY (code, page_number, source_file)
);`

// Converter loads CSV exports into one SQLite database.
type Converter struct {
	db  *sql.DB
	log *logger.Logger
}

// Open creates (or reopens) the staging database at path.
func Open(path string, log *logger.Logger) (*Converter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.NewStorage("mkdir", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.NewStorage("open_db", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewStorage("create_schema", err)
	}

	return &Converter{db: db, log: log.WithComponent("convert")}, nil
}

// Close releases the database handle.
func (c *Converter) Close() error {
	return c.db.Close()
}

// ConvertFile loads one CSV export into the database. Rows already present
// for the same (code, page, file) are left untouched, so re-running a
// conversion is safe.
func (c *Converter) ConvertFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, apperrors.NewStorage("open_csv", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		return 0, apperrors.NewStorage("read_csv", err)
	}
	if len(rows) == 0 {
		c.log.Warnf("No data rows in %s", filepath.Base(path))
		return 0, nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, apperrors.NewStorage("begin_tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO constituents
		(code, company_name, security_type, theoretical_quantity,
		 participation_pct, page_number, collected_at, source_url, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, apperrors.NewStorage("prepare", err)
	}
	defer stmt.Close()

	base := filepath.Base(path)
	inserted := 0
	for _, row := range rows {
		qty, err := ParseQuantity(row[3])
		if err != nil {
			c.log.Warnf("Skipping row with bad quantity %q in %s", row[3], base)
			continue
		}
		pct, err := ParsePercent(row[4])
		if err != nil {
			c.log.Warnf("Skipping row with bad percentage %q in %s", row[4], base)
			continue
		}
		page, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			c.log.Warnf("Skipping row with bad page number %q in %s", row[5], base)
			continue
		}

		res, err := stmt.Exec(row[0], row[1], row[2], qty, pct, page, row[6], row[7], base)
		if err != nil {
			return inserted, apperrors.NewStorage("insert", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, apperrors.NewStorage("commit", err)
	}

	c.log.Infof("Loaded %d row(s) from %s", inserted, base)
	return inserted, nil
}

// ConvertDir loads every .csv file under dir. A file that fails to parse is
// logged and skipped; the remaining files still load.
func (c *Converter) ConvertDir(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, apperrors.NewStorage("glob", err)
	}
	if len(matches) == 0 {
		c.log.Warnf("No CSV files found in %s", dir)
		return 0, nil
	}

	total := 0
	for _, path := range matches {
		n, err := c.ConvertFile(path)
		total += n
		if err != nil {
			c.log.WithError(err).Warnf("Conversion failed for %s", filepath.Base(path))
		}
	}
	return total, nil
}

// Count returns the number of staged rows.
func (c *Converter) Count() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM constituents`).Scan(&n)
	return n, err
}

// readRows parses the CSV body, tolerating a UTF-8 BOM and requiring the
// exported eight-column layout. The header row is validated and dropped.
func readRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 8

	all, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	if !strings.EqualFold(all[0][0], "code") {
		return nil, fmt.Errorf("unexpected header %q", all[0][0])
	}
	return all[1:], nil
}

// ParseQuantity parses a theoretical quantity such as "1.234.567" or
// "1234567" into an integer. Dots are thousands separators in the source
// locale.
func ParseQuantity(s string) (int64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	return strconv.ParseInt(cleaned, 10, 64)
}

// ParsePercent parses a participation percentage such as "5,123" or "0.504"
// into a float. A comma is the decimal separator in the source locale; a
// value with a single dot and no comma is accepted as already anglicized.
func ParsePercent(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("empty percentage")
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	return strconv.ParseFloat(cleaned, 64)
}

// StampedDBName builds the per-run database file name, e.g.
// ibov_20260102.db.
func StampedDBName(t time.Time) string {
	return fmt.Sprintf("ibov_%s.db", t.Format("20060102"))
}
