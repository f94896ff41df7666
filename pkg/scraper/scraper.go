// Package scraper drives a full traversal of the IBOV constituent table:
// open the target page, widen page density once, then loop render-wait,
// extract, terminal-check, advance until a terminal condition or the page
// ceiling, finally materializing a sorted, deduplicated dataset.
package scraper

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/b3flow/ibovscan/internal/browser"
	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/logger"
	"github.com/b3flow/ibovscan/internal/scrape"
)

// phase is one state of the traversal state machine.
type phase int

const (
	phaseInit phase = iota
	phaseOptimizing
	phasePageLoading
	phaseExtracting
	phaseCheckTerminal
	phaseAdvancing
	phaseDone
)

// wideRowThreshold is a purely diagnostic marker: a page yielding this many
// rows suggests the density optimization took effect. It never feeds
// control flow.
const wideRowThreshold = 40

// Scraper owns one traversal: one browser session, one TraversalState, no
// parallelism across pages (pagination is stateful navigation, not random
// access).
type Scraper struct {
	cfg     *Config
	log     *logger.Logger
	session browser.Page
	limiter *rate.Limiter
}

// New creates a scraper. Without WithSession, Run launches its own browser
// and releases it on every exit path.
func New(cfg *Config, opts ...Option) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scraper{
		cfg: cfg,
		log: logger.New(logger.Config{Level: logger.InfoLevel, Pretty: true, Component: "scraper"}),
	}
	if cfg.Verbose {
		s.log.SetLevel(logger.DebugLevel)
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.NavPerSecond), 1)
	}

	return s, nil
}

// Run executes the traversal and returns the materialized dataset. A
// zero-record dataset is a valid success; only browser-session construction
// failure returns an error. Partial results survive per-page failures.
func (s *Scraper) Run(ctx context.Context) (*Dataset, error) {
	// A nil session means Run owns the browser lifecycle; an injected
	// session stays open for its caller.
	if s.session == nil {
		sess, err := browser.NewSession(s.cfg.Browser)
		if err != nil {
			return nil, apperrors.NewBrowser("session_start", err)
		}
		s.session = sess
		defer func() {
			if err := sess.Close(); err != nil {
				s.log.WithError(err).Warn("Browser session close failed")
			}
		}()
	}

	waiter := scrape.NewWaiter(s.session, s.log, s.cfg.Timeout, s.cfg.TableSettle)
	extractor := scrape.NewExtractor(s.session, s.log)
	paginator := scrape.NewPaginator(s.session, s.log)
	density := scrape.NewDensity(s.session, s.log, s.cfg.DensitySettle)

	state := NewTraversalState()
	current := phaseInit

	s.log.Infof("Starting scrape of %s (max %d pages)", s.cfg.TargetURL, s.cfg.MaxPages)

	for current != phaseDone {
		switch current {

		case phaseInit:
			if !s.pace(ctx, state) {
				current = phaseDone
				break
			}
			if err := s.session.Navigate(s.cfg.TargetURL); err != nil {
				s.log.WithError(err).Error("Failed to open target page")
				state.Terminate(ReasonRenderTimeout)
				current = phaseDone
				break
			}
			s.sleep(s.cfg.InitialSettle)
			current = phaseOptimizing

		case phaseOptimizing:
			if density.Widen() {
				s.log.Info("Page density widened; fewer pagination transitions needed")
			} else {
				s.log.Warn("Using default pagination density")
			}
			current = phasePageLoading

		case phasePageLoading:
			if !waiter.WaitReady() {
				s.log.WithPage(state.CurrentPage).Warn("Page never became ready; keeping partial results")
				state.Terminate(ReasonRenderTimeout)
				current = phaseDone
				break
			}
			current = phaseExtracting

		case phaseExtracting:
			result, err := extractor.Extract(state.CurrentPage)
			if err != nil {
				s.log.WithError(err).WithPage(state.CurrentPage).Error("Extraction failed; keeping partial results")
				state.Terminate(ReasonExtractFailed)
				current = phaseDone
				break
			}
			state.Accumulate(result)
			if len(result) == 0 {
				s.log.WithPage(state.CurrentPage).Warn("No data found on page")
			}
			if len(result) >= wideRowThreshold {
				s.log.WithPage(state.CurrentPage).Debugf("Wide page: %d rows", len(result))
			}
			current = phaseCheckTerminal

		case phaseCheckTerminal:
			// Runs strictly after extraction so the final page's rows are
			// already accumulated when a terminal heuristic fires.
			if last, heuristic := paginator.IsLastPage(); last {
				s.log.HeuristicEvent(heuristic)
				state.Terminate(ReasonLastPage)
				current = phaseDone
				break
			}
			current = phaseAdvancing

		case phaseAdvancing:
			if state.CurrentPage >= s.cfg.MaxPages {
				s.log.Infof("Page ceiling reached: %d", s.cfg.MaxPages)
				state.Terminate(ReasonCeiling)
				current = phaseDone
				break
			}
			if !paginator.Advance() {
				s.log.Info("No pagination strategy advanced; traversal complete")
				state.Terminate(ReasonNoAdvance)
				current = phaseDone
				break
			}
			s.sleep(s.cfg.AdvanceSettle)
			if !s.pace(ctx, state) {
				current = phaseDone
				break
			}
			state.NextPage()
			current = phasePageLoading
		}
	}

	dataset := Materialize(state.Accumulated)
	dataset.Reason = state.Reason

	summary := dataset.Summarize()
	s.log.Infof("Scrape finished: %d records from %d page(s), reason=%s",
		summary.TotalRecords, state.Visited, state.Reason)
	if dataset.Empty() {
		s.log.Warn("Run collected zero records")
	}

	return dataset, nil
}

// pace blocks on the navigation rate limiter; false means the context was
// cancelled and the traversal must stop with partial results.
func (s *Scraper) pace(ctx context.Context, state *TraversalState) bool {
	if err := s.limiter.Wait(ctx); err != nil {
		state.Terminate(ReasonCancelled)
		return false
	}
	return true
}

func (s *Scraper) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
