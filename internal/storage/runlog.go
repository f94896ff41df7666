package storage

import (
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	apperrors "github.com/b3flow/ibovscan/internal/errors"
)

var runsBucket = []byte("runs")

// RunRecord is the persisted outcome of one pipeline run.
type RunRecord struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Records     int           `json:"records"`
	Pages       int           `json:"pages"`
	Reason      string        `json:"reason"`
	CSVFile     string        `json:"csv_file,omitempty"`
	Uploaded    int           `json:"uploaded"`
	FailedStage string        `json:"failed_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Succeeded reports whether the run completed without a failing stage.
func (r RunRecord) Succeeded() bool {
	return r.FailedStage == ""
}

// RunLog is an append-only local history of pipeline runs backed by bbolt.
type RunLog struct {
	db *bolt.DB
}

// OpenRunLog opens (or creates) the run history database.
func OpenRunLog(path string) (*RunLog, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, apperrors.NewStorage("open_runlog", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, apperrors.NewStorage("init_runlog", err)
	}

	return &RunLog{db: db}, nil
}

// DefaultRunLogPath places the history database alongside the data files.
func DefaultRunLogPath(dataDir string) string {
	return filepath.Join(dataDir, "runs.db")
}

// Close releases the database file.
func (l *RunLog) Close() error {
	return l.db.Close()
}

// Append stores one run record under a monotonically increasing key.
func (l *RunLog) Append(rec RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewStorage("marshal_run", err)
	}

	err = l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
	if err != nil {
		return apperrors.NewStorage("append_run", err)
	}
	return nil
}

// Recent returns up to n run records, newest first.
func (l *RunLog) Recent(n int) ([]RunRecord, error) {
	var records []RunRecord

	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(records) < n; k, v = c.Prev() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStorage("read_runs", err)
	}
	return records, nil
}
