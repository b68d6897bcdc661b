// Package report persists batch run results and turns them into exports and
// summaries. The results file is a single JSON document guarded by a lock
// file so overlapping runs cannot interleave writes.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"epgdoctor/internal/batch"
)

// ErrNoResults indicates nothing has been persisted yet.
var ErrNoResults = errors.New("no saved results")

// Store reads and writes the persisted results file.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore returns a store over the results file at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Save replaces the persisted results with the given run. The write goes
// through a temp file and rename so a crash never leaves a torn document.
func (s *Store) Save(result batch.Result) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire results lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

// Load returns the last persisted run, or ErrNoResults when none exists.
func (s *Store) Load() (batch.Result, error) {
	if err := s.lock.RLock(); err != nil {
		return batch.Result{}, fmt.Errorf("acquire results lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return batch.Result{}, ErrNoResults
		}
		return batch.Result{}, fmt.Errorf("read results: %w", err)
	}
	var result batch.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return batch.Result{}, fmt.Errorf("parse results: %w", err)
	}
	return result, nil
}

// Path returns the location of the results file.
func (s *Store) Path() string {
	return s.path
}
