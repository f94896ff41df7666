package scrape

import (
	"testing"
	"time"
)

func TestWaiter_WaitReady_Timeout(t *testing.T) {
	page := newFakePage()
	page.waitHit = false

	w := NewWaiter(page, testLogger(), 10*time.Millisecond, 0)

	if w.WaitReady() {
		t.Error("WaitReady() = true, want false when the table never appears")
	}
}

func TestWaiter_WaitReady_TableWithoutRows(t *testing.T) {
	page := newFakePage()

	w := NewWaiter(page, testLogger(), time.Second, 0)

	if w.WaitReady() {
		t.Error("WaitReady() = true, want false when the table has no rows")
	}
}

func TestWaiter_WaitReady_RowsInTbody(t *testing.T) {
	page := newFakePage()
	page.addElement("table tbody tr", usableFake("row"))

	w := NewWaiter(page, testLogger(), time.Second, 0)

	if !w.WaitReady() {
		t.Error("WaitReady() = false, want true with populated tbody rows")
	}
}

func TestWaiter_WaitReady_RowsViaFallbackSelector(t *testing.T) {
	page := newFakePage()
	page.addElement("table tr", usableFake("row"))

	w := NewWaiter(page, testLogger(), time.Second, 0)

	if !w.WaitReady() {
		t.Error("WaitReady() = false, want true via the loose row selector")
	}
}
