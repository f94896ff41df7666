package scrape

import (
	"strconv"
	"strings"

	"github.com/b3flow/ibovscan/internal/browser"
	"github.com/b3flow/ibovscan/internal/logger"
)

// Paginator decides whether more pages exist and advances to the next one.
// It is a best-effort heuristic matcher, not a guaranteed DOM contract:
// structural "next" controls are tried first, a numbered-page link second.
type Paginator struct {
	page browser.Page
	log  *logger.Logger
}

// NewPaginator creates a pagination controller over a live page session.
func NewPaginator(page browser.Page, log *logger.Logger) *Paginator {
	return &Paginator{
		page: page,
		log:  log.WithComponent("paginator"),
	}
}

// Advance tries the matcher chain in strict priority order and clicks the
// first usable control. Returns false when no strategy succeeded, which
// signals natural end-of-pagination.
func (p *Paginator) Advance() bool {
	for _, m := range nextMatchers {
		candidates, err := p.candidates(m)
		if err != nil {
			p.log.StrategyEvent(m.describe(), false)
			continue
		}
		for _, el := range candidates {
			if !p.usable(el) {
				continue
			}
			if p.click(el) {
				p.log.Infof("Advanced via %s", m.describe())
				p.log.StrategyEvent(m.describe(), true)
				return true
			}
		}
		p.log.StrategyEvent(m.describe(), false)
	}

	return p.advanceByNumber()
}

// IsLastPage evaluates the last-page heuristics: a disabled "next" control,
// or a bilingual end-of-list phrase in the rendered body. The returned
// heuristic string names what fired, for logging.
func (p *Paginator) IsLastPage() (bool, string) {
	for _, selector := range disabledNextSelectors {
		els, err := p.page.Elements(selector)
		if err == nil && len(els) > 0 {
			return true, "selector:" + selector
		}
	}

	body, err := p.page.BodyText()
	if err != nil {
		return false, ""
	}
	body = strings.ToLower(body)
	for _, marker := range endOfListMarkers {
		if strings.Contains(body, marker) {
			return true, "marker:" + marker
		}
	}

	return false, ""
}

func (p *Paginator) candidates(m nextMatcher) ([]browser.Element, error) {
	if m.kind == matchLinkText {
		return p.page.ElementsByText("a", m.query)
	}
	return p.page.Elements(m.query)
}

// usable requires a visible, enabled control carrying no disabled marker
// (attribute, aria-disabled, or a disabled class token).
func (p *Paginator) usable(el browser.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	enabled, err := el.Enabled()
	if err != nil || !enabled {
		return false
	}
	if _, present, _ := el.Attribute("disabled"); present {
		return false
	}
	if v, present, _ := el.Attribute("aria-disabled"); present && v == "true" {
		return false
	}
	if class, present, _ := el.Attribute("class"); present && hasDisabledToken(class) {
		return false
	}
	return true
}

// click scrolls the control into view and clicks it, falling back to a
// script-driven click when the direct click throws.
func (p *Paginator) click(el browser.Element) bool {
	_ = el.ScrollIntoView()

	if err := el.Click(); err != nil {
		if err := el.ScriptClick(); err != nil {
			p.log.WithError(err).Debug("Both click paths failed")
			return false
		}
	}
	return true
}

// advanceByNumber falls back to numeric reasoning: read the active page
// indicator (default 1 if unreadable) and click the link for the next
// page number if it is visible and enabled.
func (p *Paginator) advanceByNumber() bool {
	next := p.activePage() + 1

	links, err := p.page.ElementsByText("a", strconv.Itoa(next))
	if err != nil || len(links) == 0 {
		p.log.Info("No next-page control found")
		return false
	}

	for _, link := range links {
		visible, err := link.Visible()
		if err != nil || !visible {
			continue
		}
		enabled, err := link.Enabled()
		if err != nil || !enabled {
			continue
		}
		if err := link.Click(); err != nil {
			continue
		}
		p.log.Infof("Advanced to page %d via numbered link", next)
		return true
	}

	p.log.Info("No next-page control found")
	return false
}

// activePage reads the visually current page number, defaulting to 1.
func (p *Paginator) activePage() int {
	els, err := p.page.Elements(activeIndicatorSelector)
	if err != nil || len(els) == 0 {
		return 1
	}
	text, err := els[0].Text()
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
