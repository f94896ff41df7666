package scraper

import (
	"sort"
	"time"

	"github.com/b3flow/ibovscan/internal/scrape"
)

// Record is one constituent row tied to the page it was extracted from.
type Record = scrape.Record

// PageResult is the ordered record sequence of one extraction pass.
type PageResult = scrape.PageResult

// TerminationReason says which terminal condition ended a traversal.
type TerminationReason string

// Termination reasons.
const (
	ReasonNone          TerminationReason = ""
	ReasonLastPage      TerminationReason = "last_page"
	ReasonNoAdvance     TerminationReason = "no_advance"
	ReasonCeiling       TerminationReason = "ceiling"
	ReasonRenderTimeout TerminationReason = "render_timeout"
	ReasonExtractFailed TerminationReason = "extract_failed"
	ReasonCancelled     TerminationReason = "cancelled"
)

// TraversalState tracks one scraping run. It is owned exclusively by the
// session orchestrator for the duration of the run; accumulated records are
// append-only and the terminal flag is set exactly once.
type TraversalState struct {
	CurrentPage int
	Visited     int
	Accumulated []Record
	Terminated  bool
	Reason      TerminationReason
}

// NewTraversalState starts a traversal at page 1.
func NewTraversalState() *TraversalState {
	return &TraversalState{CurrentPage: 1}
}

// Accumulate appends one page's records and counts the visit.
func (s *TraversalState) Accumulate(result PageResult) {
	s.Accumulated = append(s.Accumulated, result...)
	s.Visited++
}

// NextPage advances the page counter (monotonically increasing).
func (s *TraversalState) NextPage() {
	s.CurrentPage++
}

// Terminate records the first terminal condition; later calls are no-ops.
func (s *TraversalState) Terminate(reason TerminationReason) {
	if s.Terminated {
		return
	}
	s.Terminated = true
	s.Reason = reason
}

// Dataset is the final materialization of a run: records sorted by
// (page, code) ascending, deduplicated keeping the first traversal-order
// occurrence of each (code, page) pair.
type Dataset struct {
	Records []Record
	Reason  TerminationReason
}

// Materialize builds a Dataset from records in traversal order.
func Materialize(records []Record) *Dataset {
	seen := make(map[scrape.Key]bool, len(records))
	unique := make([]Record, 0, len(records))
	for _, rec := range records {
		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, rec)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].Page != unique[j].Page {
			return unique[i].Page < unique[j].Page
		}
		return unique[i].Code < unique[j].Code
	})

	return &Dataset{Records: unique}
}

// Empty reports whether the run collected zero records. A zero-record run
// is a valid (if degenerate) success, distinct from an erroring run.
func (d *Dataset) Empty() bool {
	return len(d.Records) == 0
}

// Summary describes a materialized dataset.
type Summary struct {
	TotalRecords    int
	UniqueCodes     int
	UniqueCompanies int
	PagesVisited    int
	PerPage         map[int]int
	FirstCollected  time.Time
	LastCollected   time.Time
}

// Summarize computes run statistics over the dataset.
func (d *Dataset) Summarize() Summary {
	s := Summary{
		TotalRecords: len(d.Records),
		PerPage:      make(map[int]int),
	}

	codes := make(map[string]bool)
	companies := make(map[string]bool)
	pages := make(map[int]bool)

	for _, rec := range d.Records {
		codes[rec.Code] = true
		companies[rec.Company] = true
		pages[rec.Page] = true
		s.PerPage[rec.Page]++

		if s.FirstCollected.IsZero() || rec.CollectedAt.Before(s.FirstCollected) {
			s.FirstCollected = rec.CollectedAt
		}
		if rec.CollectedAt.After(s.LastCollected) {
			s.LastCollected = rec.CollectedAt
		}
	}

	s.UniqueCodes = len(codes)
	s.UniqueCompanies = len(companies)
	s.PagesVisited = len(pages)
	return s
}
