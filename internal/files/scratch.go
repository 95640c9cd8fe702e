package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrTooLarge is returned by Save when the content exceeds the limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// Scratch is a private directory for one run. Remove deletes it with
// everything saved into it.
type Scratch struct {
	dir    string
	logger *slog.Logger
}

// NewScratch creates {root}/run-{uuid}.
func NewScratch(root string, logger *slog.Logger) (*Scratch, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch root: %w", err)
	}
	dir := filepath.Join(root, "run-"+uuid.New().String())
	if err := os.Mkdir(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	s := &Scratch{dir: dir, logger: logger.With(slog.String("component", "files"))}
	s.logger.Debug("scratch directory created", slog.String("dir", dir))
	return s, nil
}

// Dir returns the scratch directory.
func (s *Scratch) Dir() string { return s.dir }

// Path returns the path of name inside the scratch directory. Directory
// components of name are dropped.
func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Save copies r to name inside the scratch directory. limit <= 0 disables
// the size check.
func (s *Scratch) Save(name string, r io.Reader, limit int64) (string, error) {
	path := s.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	if limit > 0 && n > limit {
		os.Remove(path)
		return "", fmt.Errorf("%s: %w (%d bytes)", filepath.Base(path), ErrTooLarge, limit)
	}

	s.logger.Debug("file saved", slog.String("file", filepath.Base(path)), slog.Int64("bytes", n))
	return path, nil
}

// Remove deletes the scratch directory. It is safe to call more than once.
func (s *Scratch) Remove() error {
	if err := os.RemoveAll(s.dir); err != nil {
		s.logger.Warn("failed to remove scratch directory",
			slog.String("dir", s.dir),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
