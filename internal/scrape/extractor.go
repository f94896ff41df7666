package scrape

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/b3flow/ibovscan/internal/browser"
	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/logger"
)

// minDataCells is the cell count below which a row is treated as a
// malformed/separator row and skipped silently.
const minDataCells = 5

// Extractor parses the current page's rendered table into records. It works
// on a single HTML snapshot so one extraction pass sees one consistent DOM.
type Extractor struct {
	page browser.Page
	log  *logger.Logger
	now  func() time.Time
}

// NewExtractor creates a row extractor over a live page session.
func NewExtractor(page browser.Page, log *logger.Logger) *Extractor {
	return &Extractor{
		page: page,
		log:  log.WithComponent("extractor"),
		now:  time.Now,
	}
}

// Extract locates the table via the ordered candidate selectors and maps its
// data rows into records for the given page number. Header-shaped rows and
// short rows are skipped; a bad row never aborts the page. Returns an error
// only when the snapshot fails or no candidate selector matches a table.
func (e *Extractor) Extract(pageNumber int) (PageResult, error) {
	html, err := e.page.HTML()
	if err != nil {
		return nil, apperrors.NewTableMissing(pageNumber)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.NewTableMissing(pageNumber)
	}

	var table *goquery.Selection
	for _, selector := range tableSelectors {
		if s := doc.Find(selector).First(); s.Length() > 0 {
			table = s
			break
		}
	}
	if table == nil {
		e.log.WithPage(pageNumber).Error("No table found on page")
		return nil, apperrors.NewTableMissing(pageNumber)
	}

	collectedAt := e.now()
	sourceURL := e.page.CurrentURL()
	records := make(PageResult, 0, 128)
	headerSeen := false

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")

		if cells.Length() == 0 {
			// Header-cell markers without data cells: the first such row
			// flips the header flag, and every header-shaped row is skipped
			// (nested tables repeat their headers).
			if row.Find("th").Length() > 0 {
				if !headerSeen {
					headerSeen = true
					e.log.WithPage(pageNumber).Debugf("Header identified at row %d", i)
				}
			}
			return
		}

		if cells.Length() < minDataCells {
			return
		}

		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(cell.Text()))
		})

		rec := Record{
			Code:             texts[0],
			Company:          texts[1],
			SecurityType:     texts[2],
			TheoreticalQty:   texts[3],
			ParticipationPct: texts[4],
			Page:             pageNumber,
			CollectedAt:      collectedAt,
			SourceURL:        sourceURL,
		}

		// Empty or placeholder codes are header leakage, not data.
		if rec.Code == "" || rec.Company == "" || isCodeHeaderLabel(rec.Code) {
			e.log.WithPage(pageNumber).Debugf("Skipping invalid row %d", i)
			return
		}

		records = append(records, rec)
	})

	e.log.PageEvent(pageNumber, len(records))
	return records, nil
}
