// Package errors provides error types and handling for the IBOV pipeline.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// RowParse is a single table row that could not be parsed; the row is
	// skipped and extraction continues.
	RowParse
	// RenderTimeout means the table structure never appeared within the
	// timeout budget; the page is abandoned, accumulated data is kept.
	RenderTimeout
	// TableMissing means no candidate selector matched a table on a page
	// that reported ready.
	TableMissing
	// Strategy is a single pagination-advance or density-selection strategy
	// failing; the next candidate strategy is attempted.
	Strategy
	// Browser is a browser-session failure. Session construction errors are
	// fatal; no partial run is possible.
	Browser
	// Storage covers local staging failures (CSV, SQLite, run ledger).
	Storage
	// Upload covers object-storage transfer failures.
	Upload
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case RowParse:
		return "row_parse"
	case RenderTimeout:
		return "render_timeout"
	case TableMissing:
		return "table_missing"
	case Strategy:
		return "strategy"
	case Browser:
		return "browser"
	case Storage:
		return "storage"
	case Upload:
		return "upload"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Recoverable reports whether a run can continue past errors of this type.
// Only browser-session errors abort a run outright.
func (t ErrorType) Recoverable() bool {
	switch t {
	case RowParse, RenderTimeout, TableMissing, Strategy:
		return true
	default:
		return false
	}
}

// ScrapeError represents a categorized pipeline error.
type ScrapeError struct {
	Type      ErrorType
	Operation string
	Page      int // 0 when not page-scoped
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ScrapeError) Error() string {
	where := e.Operation
	if e.Page > 0 {
		where = fmt.Sprintf("%s (page %d)", e.Operation, e.Page)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s: %s (caused by: %v)",
			e.Type.String(), where, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s: %s", e.Type.String(), where, e.Message)
}

// Unwrap returns the underlying error.
func (e *ScrapeError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *ScrapeError) Is(target error) bool {
	t, ok := target.(*ScrapeError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new ScrapeError.
func New(errType ErrorType, operation, message string, cause error) *ScrapeError {
	return &ScrapeError{
		Type:      errType,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewRowParse creates a per-row parse error.
func NewRowParse(page int, cause error) *ScrapeError {
	err := New(RowParse, "extract", "row could not be parsed", cause)
	err.Page = page
	return err
}

// NewRenderTimeout creates a render-timeout error for a page.
func NewRenderTimeout(page int) *ScrapeError {
	err := New(RenderTimeout, "render_wait", "table never appeared", nil)
	err.Page = page
	return err
}

// NewTableMissing creates a table-not-found error for a page.
func NewTableMissing(page int) *ScrapeError {
	err := New(TableMissing, "extract", "no candidate selector matched a table", nil)
	err.Page = page
	return err
}

// NewStrategy creates a per-strategy error.
func NewStrategy(operation string, cause error) *ScrapeError {
	return New(Strategy, operation, "strategy failed", cause)
}

// NewBrowser creates a browser-session error.
func NewBrowser(operation string, cause error) *ScrapeError {
	return New(Browser, operation, "browser session failure", cause)
}

// NewStorage creates a local-staging error.
func NewStorage(operation string, cause error) *ScrapeError {
	return New(Storage, operation, "staging failure", cause)
}

// NewUpload creates an object-storage error.
func NewUpload(key string, cause error) *ScrapeError {
	return New(Upload, "upload", fmt.Sprintf("transfer of %q failed", key), cause)
}

// NewCancelled creates a cancellation error.
func NewCancelled(operation string) *ScrapeError {
	return New(Cancelled, operation, "operation cancelled", nil)
}

// TypeOf extracts the error type from an error.
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type
	}
	return Unknown
}

// IsFatal reports whether err must abort the whole run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return !se.Type.Recoverable()
	}
	return true
}

// PageOf extracts the page number from an error, 0 if not page-scoped.
func PageOf(err error) int {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Page
	}
	return 0
}
