package scraper

import (
	"golang.org/x/time/rate"

	"github.com/b3flow/ibovscan/internal/browser"
	"github.com/b3flow/ibovscan/internal/logger"
)

// Option customizes a Scraper.
type Option func(*Scraper)

// WithSession injects an existing page session instead of launching a
// browser. The scraper will not close an injected session; its lifetime
// belongs to the caller. This is the seam tests use to substitute fakes.
func WithSession(page browser.Page) Option {
	return func(s *Scraper) {
		s.session = page
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Scraper) {
		s.log = log
	}
}

// WithLimiter replaces the navigation rate limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(s *Scraper) {
		s.limiter = limiter
	}
}
