// Package scrape implements the page-traversal leaf components: render
// waiting, row extraction, pagination advance, and page-density widening.
// All of them talk to the browser only through the driver seam in
// internal/browser, so every component is testable against fakes.
package scrape

import "time"

// Record is one constituent row tied to the page it was extracted from.
type Record struct {
	Code             string    `json:"code"`
	Company          string    `json:"company_name"`
	SecurityType     string    `json:"security_type"`
	TheoreticalQty   string    `json:"theoretical_quantity"`
	ParticipationPct string    `json:"participation_pct"`
	Page             int       `json:"page_number"`
	CollectedAt      time.Time `json:"collected_at"`
	SourceURL        string    `json:"source_url"`
}

// Key identifies a record for deduplication.
type Key struct {
	Code string
	Page int
}

// Key returns the record's dedup key.
func (r Record) Key() Key {
	return Key{Code: r.Code, Page: r.Page}
}

// PageResult is the ordered sequence of records produced by one extraction
// pass. An empty result is a valid outcome, distinct from an extraction
// failure (which is reported as an error).
type PageResult []Record
