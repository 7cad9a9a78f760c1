package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps reports as files in one directory. Reports older than ttl
// are treated as missing and removed by Purge. A zero ttl keeps them forever.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the directory reports are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path of the report for id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, Filename(id))
}

func (s *FileStore) Save(_ context.Context, id string, data []byte) error {
	if !ValidID(id) {
		return ErrInvalidID
	}

	tmp, err := os.CreateTemp(s.dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(id)); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func (s *FileStore) Open(_ context.Context, id string) ([]byte, error) {
	if !ValidID(id) {
		return nil, ErrReportNotFound
	}

	path := s.Path(id)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat report: %w", err)
	}
	if s.expired(info.ModTime()) {
		return nil, ErrReportNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

// Purge deletes expired reports and returns how many were removed.
func (s *FileStore) Purge(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, Filename("*")))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := os.Stat(path)
		if err != nil || !s.expired(info.ModTime()) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(path), err)
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) expired(modTime time.Time) bool {
	return s.ttl > 0 && s.now().Sub(modTime) > s.ttl
}
