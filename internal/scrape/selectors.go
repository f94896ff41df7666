package scrape

import "strings"

// The selector chains below are ordered by reliability: structural "next"
// controls are more stable across page variants than numeric links, so
// attribute/class matchers run before link-text and numeric fallbacks.

// matcherKind distinguishes how a nextMatcher locates candidates.
type matcherKind int

const (
	matchCSS matcherKind = iota
	matchLinkText
)

// nextMatcher is one typed pagination-advance matcher, evaluated in
// sequence with the first usable candidate short-circuiting the chain.
type nextMatcher struct {
	kind  matcherKind
	query string
}

func (m nextMatcher) describe() string {
	if m.kind == matchLinkText {
		return "text:" + m.query
	}
	return "css:" + m.query
}

// nextMatchers locates "next page" controls across the layout variants the
// target renders: aria labels, bilingual titles, Bootstrap-style pagination
// widgets, and DataTables conventions.
var nextMatchers = []nextMatcher{
	{matchCSS, "a[aria-label='Next']"},
	{matchCSS, "a[title='Next']"},
	{matchCSS, "a[title='Próxima']"},
	{matchCSS, "button[aria-label='Next']"},
	{matchCSS, "button[title='Next']"},
	{matchCSS, "button[title='Próxima']"},
	{matchLinkText, "Next"},
	{matchLinkText, "Próxima"},
	{matchLinkText, ">"},
	{matchCSS, ".pagination a[aria-label='Next']"},
	{matchCSS, ".pagination button[aria-label='Next']"},
	{matchCSS, ".pagination a:last-child"},
	{matchCSS, "a.page-link[aria-label='Next']"},
	{matchCSS, "li.page-item:last-child a"},
	{matchCSS, "a[data-dt-idx]"},
	{matchCSS, "button.paginate_button.next"},
	{matchCSS, ".dataTables_paginate .next"},
}

// disabledNextSelectors match "next" controls rendered in a disabled state,
// the strongest last-page signal.
var disabledNextSelectors = []string{
	"a[aria-label='Next'][aria-disabled='true']",
	"button[aria-label='Next'][disabled]",
	"a[title='Next'].disabled",
	"button[title='Next']:disabled",
	".pagination .next.disabled",
	".dataTables_paginate .next.disabled",
}

// endOfListMarkers are bilingual free-text last-page phrases scanned against
// a normalized snapshot of the rendered body. Inherently fragile; the
// orchestrator logs which marker fired to aid tuning.
var endOfListMarkers = []string{
	"última página",
	"last page",
	"fim da lista",
	"end of list",
}

// activeIndicatorSelector locates the visually current page number.
const activeIndicatorSelector = ".active, .current, [aria-current='page']"

// tableSelectors are the ordered table-location candidates; first match wins.
var tableSelectors = []string{
	"table",
	"table.table",
	"[role='table']",
	".table-responsive table",
}

// codeHeaderLabels guard against header rows that lack th markers: a data
// row whose code cell carries the column heading is header leakage.
var codeHeaderLabels = []string{"Código", "Code"}

// pageSizeSelectors locate the items-per-page control.
var pageSizeSelectors = []string{"#selectPage", "select"}

// pageSizeCandidates are tried in descending order so the widest available
// density wins.
var pageSizeCandidates = []string{"120", "60", "40", "20"}

// isCodeHeaderLabel reports whether a code cell holds a column heading.
func isCodeHeaderLabel(code string) bool {
	for _, label := range codeHeaderLabels {
		if strings.EqualFold(code, label) {
			return true
		}
	}
	return false
}

// hasDisabledToken reports whether a class attribute carries a disabled
// class token.
func hasDisabledToken(class string) bool {
	for _, token := range strings.Fields(class) {
		if strings.EqualFold(token, "disabled") {
			return true
		}
	}
	return false
}
