package scrape

import (
	"time"

	"github.com/b3flow/ibovscan/internal/browser"
	"github.com/b3flow/ibovscan/internal/logger"
)

// Density widens the items-per-page setting before traversal begins, so the
// run needs fewer pagination transitions. Failure is always non-fatal:
// traversal proceeds with whatever density the page already has.
type Density struct {
	page   browser.Page
	log    *logger.Logger
	settle time.Duration
}

// NewDensity creates a density optimizer over a live page session.
func NewDensity(page browser.Page, log *logger.Logger, settle time.Duration) *Density {
	return &Density{
		page:   page,
		log:    log.WithComponent("density"),
		settle: settle,
	}
}

// Widen locates the page-size control, reads its available option values,
// and selects the first of the descending candidates that is present, by
// value first and by visible text second. After a successful selection the
// settle delay lets the page reload at the new density. Reports whether any
// selection was made.
func (d *Density) Widen() bool {
	control := d.findControl()
	if control == nil {
		d.log.Debug("No page-size control found")
		return false
	}

	available, err := control.OptionValues()
	if err != nil {
		d.log.WithError(err).Debug("Could not read page-size options")
		return false
	}
	d.log.Debugf("Page-size options available: %v", available)

	present := make(map[string]bool, len(available))
	for _, v := range available {
		present[v] = true
	}

	for _, candidate := range pageSizeCandidates {
		if !present[candidate] {
			continue
		}
		if err := control.SelectValue(candidate); err != nil {
			d.log.StrategyEvent("select_by_value:"+candidate, false)
			if err := control.SelectText(candidate); err != nil {
				d.log.StrategyEvent("select_by_text:"+candidate, false)
				continue
			}
		}
		d.log.Infof("Configured %s items per page", candidate)
		if d.settle > 0 {
			time.Sleep(d.settle)
		}
		return true
	}

	d.log.Warn("Could not configure a larger page size")
	return false
}

func (d *Density) findControl() browser.Element {
	for _, selector := range pageSizeSelectors {
		els, err := d.page.Elements(selector)
		if err == nil && len(els) > 0 {
			return els[0]
		}
	}
	return nil
}
