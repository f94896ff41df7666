package scrape

import (
	"time"

	"github.com/b3flow/ibovscan/internal/browser"
	"github.com/b3flow/ibovscan/internal/logger"
)

// Waiter blocks until the page's table structure is present and presumed
// populated. A timeout is a recoverable "not ready", never an error: the
// caller decides whether to abandon the page or the run.
type Waiter struct {
	page    browser.Page
	log     *logger.Logger
	timeout time.Duration
	settle  time.Duration
}

// NewWaiter creates a render waiter over a live page session.
func NewWaiter(page browser.Page, log *logger.Logger, timeout, settle time.Duration) *Waiter {
	return &Waiter{
		page:    page,
		log:     log.WithComponent("waiter"),
		timeout: timeout,
		settle:  settle,
	}
}

// WaitReady blocks until a table element exists, applies the settle delay
// for client-side data population, and confirms at least one row via the
// primary row selector, falling back to the looser alternate.
func (w *Waiter) WaitReady() bool {
	if !w.page.WaitElement("table", w.timeout) {
		w.log.Warn("Timed out waiting for table structure")
		return false
	}

	if w.settle > 0 {
		time.Sleep(w.settle)
	}

	rows, err := w.page.Elements("table tbody tr")
	if err != nil || len(rows) == 0 {
		rows, _ = w.page.Elements("table tr")
	}

	w.log.Debugf("Table loaded with %d rows", len(rows))
	return len(rows) > 0
}
