// Package pipeline chains the daily run: scrape, convert, upload, cleanup.
// Stages run in order and the first failure stops the chain; every run,
// failed or not, is appended to the local run history.
package pipeline

import (
	"context"
	"time"

	apperrors "github.com/b3flow/ibovscan/internal/errors"
	"github.com/b3flow/ibovscan/internal/logger"
	"github.com/b3flow/ibovscan/internal/storage"
	"github.com/b3flow/ibovscan/pkg/scraper"
)

// State carries artifacts between stages of one run.
type State struct {
	StartedAt time.Time
	DataDir   string

	Dataset  *scraper.Dataset
	CSVPath  string
	DBPath   string
	Uploaded int
	Swept    int
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

// Pipeline executes stages in order.
type Pipeline struct {
	stages []Stage
	log    *logger.Logger
	runlog *storage.RunLog
}

// New assembles a pipeline. The run log is optional; without it runs are
// not recorded.
func New(log *logger.Logger, runlog *storage.RunLog, stages ...Stage) *Pipeline {
	return &Pipeline{
		stages: stages,
		log:    log.WithComponent("pipeline"),
		runlog: runlog,
	}
}

// Run executes the stages and records the outcome. The returned error is
// the first stage failure, if any.
func (p *Pipeline) Run(ctx context.Context, dataDir string) error {
	st := &State{
		StartedAt: time.Now(),
		DataDir:   dataDir,
	}

	var failed string
	var runErr error

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			failed = stage.Name()
			runErr = apperrors.NewCancelled(stage.Name())
			break
		}

		start := time.Now()
		err := stage.Run(ctx, st)
		p.log.StageEvent(stage.Name(), time.Since(start), err)
		if err != nil {
			failed = stage.Name()
			runErr = err
			break
		}
	}

	p.record(st, failed, runErr)

	if runErr != nil {
		p.log.WithError(runErr).Errorf("Pipeline failed at stage %s", failed)
		return runErr
	}
	p.log.Infof("Pipeline completed in %s", time.Since(st.StartedAt).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) record(st *State, failed string, runErr error) {
	if p.runlog == nil {
		return
	}

	rec := storage.RunRecord{
		StartedAt:   st.StartedAt,
		Duration:    time.Since(st.StartedAt),
		CSVFile:     st.CSVPath,
		Uploaded:    st.Uploaded,
		FailedStage: failed,
	}
	if st.Dataset != nil {
		rec.Records = len(st.Dataset.Records)
		rec.Pages = st.Dataset.Summarize().PagesVisited
		rec.Reason = string(st.Dataset.Reason)
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := p.runlog.Append(rec); err != nil {
		p.log.WithError(err).Warn("Could not record run history")
	}
}
