package scrape

import (
	"strconv"
	"testing"
)

func TestIsCodeHeaderLabel(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"Código", true},
		{"CÓDIGO", true},
		{"code", true},
		{"Code", true},
		{"PETR4", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isCodeHeaderLabel(tt.code); got != tt.want {
			t.Errorf("isCodeHeaderLabel(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestHasDisabledToken(t *testing.T) {
	tests := []struct {
		class string
		want  bool
	}{
		{"disabled", true},
		{"page-link disabled", true},
		{"Disabled next", true},
		{"notdisabled", false},
		{"disabled-state", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := hasDisabledToken(tt.class); got != tt.want {
			t.Errorf("hasDisabledToken(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestNextMatcherDescribe(t *testing.T) {
	if got := (nextMatcher{matchCSS, "a.next"}).describe(); got != "css:a.next" {
		t.Errorf("describe() = %q", got)
	}
	if got := (nextMatcher{matchLinkText, "Próxima"}).describe(); got != "text:Próxima" {
		t.Errorf("describe() = %q", got)
	}
}

func TestPageSizeCandidatesDescending(t *testing.T) {
	// The widest density must be tried first.
	for i := 1; i < len(pageSizeCandidates); i++ {
		prev, _ := strconv.Atoi(pageSizeCandidates[i-1])
		cur, _ := strconv.Atoi(pageSizeCandidates[i])
		if prev <= cur {
			t.Errorf("Candidates not descending at %d: %v", i, pageSizeCandidates)
		}
	}
}
