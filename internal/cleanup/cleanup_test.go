package cleanup

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/b3flow/ibovscan/internal/logger"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.Disabled, Pretty: false, Output: io.Discard})
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSweeper_Sweep_RemovesArtifacts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ibov_20260828_200000.csv")
	touch(t, dir, "ibov_20260828.db")
	kept := touch(t, dir, "notes.txt")

	n, err := NewSweeper(quietLogger(), 0).Sweep(dir)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Error("Non-artifact file was removed")
	}
}

func TestSweeper_Sweep_KeepsRunHistory(t *testing.T) {
	dir := t.TempDir()
	runlog := touch(t, dir, "runs.db")
	touch(t, dir, "ibov_20260828.db")

	n, err := NewSweeper(quietLogger(), 0).Sweep(dir)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, err := os.Stat(runlog); err != nil {
		t.Error("Run history database must survive sweeps")
	}
}

func TestSweeper_Sweep_Retention(t *testing.T) {
	dir := t.TempDir()
	old := touch(t, dir, "old.csv")
	fresh := touch(t, dir, "fresh.csv")

	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}

	n, err := NewSweeper(quietLogger(), 24*time.Hour).Sweep(dir)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("File inside the retention window was removed")
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("File outside the retention window survived")
	}
}

func TestSweeper_Sweep_MissingDir(t *testing.T) {
	n, err := NewSweeper(quietLogger(), 0).Sweep(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Errorf("Sweep() error = %v, want nil for a missing directory", err)
	}
	if n != 0 {
		t.Errorf("Sweep() = %d, want 0", n)
	}
}
