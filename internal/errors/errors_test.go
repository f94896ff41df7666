package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{RowParse, "row_parse"},
		{RenderTimeout, "render_timeout"},
		{TableMissing, "table_missing"},
		{Strategy, "strategy"},
		{Browser, "browser"},
		{Storage, "storage"},
		{Upload, "upload"},
		{Cancelled, "cancelled"},
		{Unknown, "unknown"},
		{ErrorType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.errType.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.errType, got, tt.want)
		}
	}
}

func TestErrorType_Recoverable(t *testing.T) {
	recoverable := []ErrorType{RowParse, RenderTimeout, TableMissing, Strategy}
	fatal := []ErrorType{Browser, Storage, Upload, Cancelled, Unknown}

	for _, et := range recoverable {
		if !et.Recoverable() {
			t.Errorf("%s should be recoverable", et)
		}
	}
	for _, et := range fatal {
		if et.Recoverable() {
			t.Errorf("%s should not be recoverable", et)
		}
	}
}

func TestScrapeError_Error(t *testing.T) {
	err := NewTableMissing(4)
	msg := err.Error()
	if !strings.Contains(msg, "table_missing") || !strings.Contains(msg, "page 4") {
		t.Errorf("Error() = %q", msg)
	}

	cause := errors.New("connection refused")
	wrapped := NewBrowser("session_start", cause)
	if !strings.Contains(wrapped.Error(), "connection refused") {
		t.Errorf("Error() = %q, cause missing", wrapped.Error())
	}
}

func TestScrapeError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorage("write_row", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestScrapeError_Is(t *testing.T) {
	a := NewRenderTimeout(1)
	b := NewRenderTimeout(7)

	if !errors.Is(fmt.Errorf("wrapped: %w", a), b) {
		t.Error("Errors of the same type should match regardless of page")
	}
	if errors.Is(a, NewTableMissing(1)) {
		t.Error("Errors of different types should not match")
	}
}

func TestTypeOf(t *testing.T) {
	if got := TypeOf(NewRenderTimeout(1)); got != RenderTimeout {
		t.Errorf("TypeOf() = %v, want RenderTimeout", got)
	}
	if got := TypeOf(fmt.Errorf("wrapped: %w", NewUpload("key", nil))); got != Upload {
		t.Errorf("TypeOf(wrapped) = %v, want Upload", got)
	}
	if got := TypeOf(errors.New("plain")); got != Unknown {
		t.Errorf("TypeOf(plain) = %v, want Unknown", got)
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil is not fatal")
	}
	if IsFatal(NewTableMissing(2)) {
		t.Error("A missing table on one page is recoverable")
	}
	if !IsFatal(NewBrowser("launch", errors.New("no chrome"))) {
		t.Error("Browser-session failure is fatal")
	}
	if !IsFatal(errors.New("plain")) {
		t.Error("Uncategorized errors are treated as fatal")
	}
}

func TestPageOf(t *testing.T) {
	if got := PageOf(NewRenderTimeout(6)); got != 6 {
		t.Errorf("PageOf() = %d, want 6", got)
	}
	if got := PageOf(errors.New("plain")); got != 0 {
		t.Errorf("PageOf(plain) = %d, want 0", got)
	}
}
