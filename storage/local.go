package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drivebox/file-api/apperr"
)

// Local keeps content as flat files inside a single directory. Keys map
// 1:1 to file names; nothing nests.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory, %w", err)
	}

	return &Local{dir: dir}, nil
}

func (l *Local) Place(ctx context.Context, r io.Reader, declaredName string) (*Placement, error) {
	tmp, placement, err := spool(l.dir, r, declaredName)
	if err != nil {
		return nil, err
	}
	defer tmp.Close()

	// The rename is what makes the placement visible. A crash before it
	// leaves only a temp file the sweeper recognizes.
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, placement.Key)); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("%w: %v", apperr.ErrWriteFailure, err)
	}

	return placement, nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	f, err := os.Open(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, apperr.ErrNotFound
		}

		return nil, 0, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, stat.Size(), nil
}

func (l *Local) Remove(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// StaleKeys lists keys whose content hasn't been touched for at least age.
// Half-written temp files are skipped, the sweeper must never race an
// in-flight upload.
func (l *Local) StaleKeys(age time.Duration) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-age)
	keys := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".upload-") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			keys = append(keys, e.Name())
		}
	}

	return keys, nil
}
