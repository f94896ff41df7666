package scrape

import (
	"errors"
	"testing"
)

func TestDensity_Widen_PicksWidestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		want    string
	}{
		{"full option set", []string{"20", "40", "60", "120"}, "120"},
		{"truncated option set", []string{"20", "40"}, "40"},
		{"single option", []string{"20"}, "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			control := usableFake("")
			control.options = tt.options

			page := newFakePage()
			page.addElement("#selectPage", control)

			d := NewDensity(page, testLogger(), 0)
			if !d.Widen() {
				t.Fatal("Widen() = false, want true")
			}
			if control.selected != tt.want {
				t.Errorf("selected = %q, want %q", control.selected, tt.want)
			}
		})
	}
}

func TestDensity_Widen_FallsBackToGenericSelect(t *testing.T) {
	control := usableFake("")
	control.options = []string{"20", "120"}

	page := newFakePage()
	page.addElement("select", control)

	if !NewDensity(page, testLogger(), 0).Widen() {
		t.Fatal("Widen() = false, want true via generic select element")
	}
	if control.selected != "120" {
		t.Errorf("selected = %q, want 120", control.selected)
	}
}

func TestDensity_Widen_SelectByTextFallback(t *testing.T) {
	control := usableFake("")
	control.options = []string{"120"}
	control.selValErr = errors.New("option not settable by value")

	page := newFakePage()
	page.addElement("#selectPage", control)

	if !NewDensity(page, testLogger(), 0).Widen() {
		t.Fatal("Widen() = false, want true via text selection fallback")
	}
	if control.selected != "120" {
		t.Errorf("selected = %q, want 120", control.selected)
	}
}

func TestDensity_Widen_NoControl(t *testing.T) {
	page := newFakePage()

	if NewDensity(page, testLogger(), 0).Widen() {
		t.Error("Widen() = true, want false without a page-size control")
	}
}

func TestDensity_Widen_NoMatchingOption(t *testing.T) {
	control := usableFake("")
	control.options = []string{"10", "25", "50"}

	page := newFakePage()
	page.addElement("#selectPage", control)

	if NewDensity(page, testLogger(), 0).Widen() {
		t.Error("Widen() = true, want false when no candidate density exists")
	}
	if control.selected != "" {
		t.Errorf("selected = %q, want no selection", control.selected)
	}
}
