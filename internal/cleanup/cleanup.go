// Package cleanup removes local run artifacts once they have been shipped
// to object storage, so the data directory does not grow without bound.
package cleanup

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/logger"
)

// artifactExtensions are the file types a run leaves behind.
var artifactExtensions = []string{".csv", ".db"}

// runLogName is never swept; it is the long-lived run history.
const runLogName = "runs.db"

// Sweeper deletes run artifacts from a directory.
type Sweeper struct {
	log *logger.Logger

	// Retention keeps artifacts younger than this. Zero means sweep
	// everything.
	Retention time.Duration
}

// NewSweeper creates a sweeper with the given retention window.
func NewSweeper(log *logger.Logger, retention time.Duration) *Sweeper {
	return &Sweeper{log: log.WithComponent("cleanup"), Retention: retention}
}

// Sweep removes eligible artifacts under dir and returns how many files it
// deleted. Files that fail to delete are logged and skipped.
func (s *Sweeper) Sweep(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, apperrors.NewStorage("read_dir", err)
	}

	cutoff := time.Now().Add(-s.Retention)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !s.eligible(entry.Name()) {
			continue
		}

		if s.Retention > 0 {
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.log.WithError(err).Warnf("Could not remove %s", entry.Name())
			continue
		}
		s.log.Debugf("Removed %s", entry.Name())
		removed++
	}

	s.log.Infof("Swept %d artifact(s) from %s", removed, dir)
	return removed, nil
}

func (s *Sweeper) eligible(name string) bool {
	if name == runLogName {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range artifactExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
