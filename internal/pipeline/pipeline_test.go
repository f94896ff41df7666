package pipeline

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/b3flow/ibovscan/internal/logger"
	"github.com/b3flow/ibovscan/internal/storage"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.Disabled, Pretty: false, Output: io.Discard})
}

// recordingStage captures whether and in what order it ran.
type recordingStage struct {
	name string
	err  error
	ran  *[]string
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Run(ctx context.Context, st *State) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func TestPipeline_Run_InOrder(t *testing.T) {
	var ran []string
	p := New(quietLogger(), nil,
		&recordingStage{name: "scrape", ran: &ran},
		&recordingStage{name: "convert", ran: &ran},
		&recordingStage{name: "upload", ran: &ran},
	)

	if err := p.Run(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"scrape", "convert", "upload"}
	if len(ran) != len(want) {
		t.Fatalf("Ran %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Errorf("Stage %d = %s, want %s", i, ran[i], want[i])
		}
	}
}

func TestPipeline_Run_StopsOnFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("browser exploded")
	p := New(quietLogger(), nil,
		&recordingStage{name: "scrape", err: boom, ran: &ran},
		&recordingStage{name: "convert", ran: &ran},
	)

	err := p.Run(context.Background(), t.TempDir())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want the stage error", err)
	}
	if len(ran) != 1 {
		t.Errorf("Ran %v; later stages must not run after a failure", ran)
	}
}

func TestPipeline_Run_RecordsOutcome(t *testing.T) {
	dir := t.TempDir()
	runlog, err := storage.OpenRunLog(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer runlog.Close()

	var ran []string
	boom := errors.New("no bucket")
	p := New(quietLogger(), runlog,
		&recordingStage{name: "scrape", ran: &ran},
		&recordingStage{name: "upload", err: boom, ran: &ran},
	)

	if err := p.Run(context.Background(), dir); err == nil {
		t.Fatal("Run() error = nil, want failure")
	}

	runs, err := runlog.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatal("Failed run was not recorded")
	}
	if runs[0].FailedStage != "upload" {
		t.Errorf("FailedStage = %q, want upload", runs[0].FailedStage)
	}
	if runs[0].Succeeded() {
		t.Error("Recorded run should not report success")
	}
}

func TestPipeline_Run_CancelledContext(t *testing.T) {
	var ran []string
	p := New(quietLogger(), nil, &recordingStage{name: "scrape", ran: &ran})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Run(ctx, t.TempDir()); err == nil {
		t.Fatal("Run() error = nil, want cancellation error")
	}
	if len(ran) != 0 {
		t.Errorf("Ran %v; stages must not start under a cancelled context", ran)
	}
}
