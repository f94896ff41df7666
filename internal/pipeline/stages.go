package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/b3flow/ibovscan/internal/cleanup"
	"github.com/b3flow/ibovscan/internal/convert"
	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/export"
	"github.com/b3flow/ibovscan/internal/logger"
	"github.com/b3flow/ibovscan/internal/storage"
	"github.com/b3flow/ibovscan/pkg/scraper"
)

// ScrapeStage runs the browser traversal and exports the dataset to CSV.
// A zero-record dataset still exports; downstream stages decide what an
// empty day means.
type ScrapeStage struct {
	Config *scraper.Config
	Log    *logger.Logger

	// newScraper is swappable for tests.
	newScraper func(cfg *scraper.Config) (*scraper.Scraper, error)
}

// NewScrapeStage builds the scrape stage.
func NewScrapeStage(cfg *scraper.Config, log *logger.Logger) *ScrapeStage {
	return &ScrapeStage{
		Config: cfg,
		Log:    log,
		newScraper: func(cfg *scraper.Config) (*scraper.Scraper, error) {
			return scraper.New(cfg)
		},
	}
}

func (s *ScrapeStage) Name() string { return "scrape" }

func (s *ScrapeStage) Run(ctx context.Context, st *State) error {
	sc, err := s.newScraper(s.Config)
	if err != nil {
		return err
	}

	dataset, err := sc.Run(ctx)
	if err != nil {
		return err
	}
	st.Dataset = dataset

	st.CSVPath = filepath.Join(st.DataDir, export.Filename(st.StartedAt))
	return export.WriteCSV(st.CSVPath, dataset.Records)
}

// ConvertStage stages the exported CSV rows into the run's SQLite database.
type ConvertStage struct {
	Log *logger.Logger
}

func NewConvertStage(log *logger.Logger) *ConvertStage {
	return &ConvertStage{Log: log}
}

func (s *ConvertStage) Name() string { return "convert" }

func (s *ConvertStage) Run(ctx context.Context, st *State) error {
	st.DBPath = filepath.Join(st.DataDir, convert.StampedDBName(st.StartedAt))

	conv, err := convert.Open(st.DBPath, s.Log)
	if err != nil {
		return err
	}
	defer conv.Close()

	if st.CSVPath != "" {
		_, err = conv.ConvertFile(st.CSVPath)
		return err
	}
	_, err = conv.ConvertDir(st.DataDir)
	return err
}

// objectStore is the slice of the uploader the stage needs.
type objectStore interface {
	EnsureBucket(ctx context.Context) error
	UploadFile(ctx context.Context, path, prefix string) error
}

// UploadStage ships the run's artifacts into object storage under a
// date-stamped prefix.
type UploadStage struct {
	Config storage.S3Config
	Log    *logger.Logger

	// newStore is swappable for tests.
	newStore func(ctx context.Context) (objectStore, error)
}

func NewUploadStage(cfg storage.S3Config, log *logger.Logger) *UploadStage {
	s := &UploadStage{Config: cfg, Log: log}
	s.newStore = func(ctx context.Context) (objectStore, error) {
		return storage.NewUploader(ctx, s.Config, s.Log)
	}
	return s
}

func (s *UploadStage) Name() string { return "upload" }

func (s *UploadStage) Run(ctx context.Context, st *State) error {
	store, err := s.newStore(ctx)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	prefix := storage.DateFolder(st.StartedAt)
	uploaded, err := s.uploadArtifacts(ctx, store, st, prefix)
	st.Uploaded = uploaded
	if err != nil {
		return err
	}
	if uploaded == 0 {
		return apperrors.NewUpload("upload", fmt.Errorf("no artifacts to upload"))
	}
	return nil
}

// uploadArtifacts attempts every artifact: a failed transfer is logged and
// counted against the first error, never a reason to skip the rest.
func (s *UploadStage) uploadArtifacts(ctx context.Context, store objectStore, st *State, prefix string) (int, error) {
	uploaded := 0
	var firstErr error
	for _, path := range []string{st.CSVPath, st.DBPath} {
		if path == "" {
			continue
		}
		if err := store.UploadFile(ctx, path, prefix); err != nil {
			s.Log.WithError(err).Warnf("Upload failed for %s", filepath.Base(path))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		uploaded++
	}
	return uploaded, firstErr
}

// CleanupStage removes local artifacts after a successful upload.
type CleanupStage struct {
	Log       *logger.Logger
	Retention time.Duration
}

func NewCleanupStage(log *logger.Logger, retention time.Duration) *CleanupStage {
	return &CleanupStage{Log: log, Retention: retention}
}

func (s *CleanupStage) Name() string { return "cleanup" }

func (s *CleanupStage) Run(ctx context.Context, st *State) error {
	swept, err := cleanup.NewSweeper(s.Log, s.Retention).Sweep(st.DataDir)
	st.Swept = swept
	return err
}
