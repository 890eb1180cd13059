package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var (
	// ErrNotDirectory is returned when the sink root is not a directory.
	ErrNotDirectory = errors.New("workspace is not a directory")

	// ErrOutsideRoot is returned for paths that would escape the sink root.
	ErrOutsideRoot = errors.New("path escapes the workspace")
)

// DirSink writes files below a root directory.
// It is safe for concurrent use as long as concurrent writes target
// different paths.
type DirSink struct {
	root string
}

// NewDirSink returns a sink rooted at root, which must be an existing
// directory.
func NewDirSink(root string) (*DirSink, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return &DirSink{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *DirSink) Root() string {
	return s.root
}

// resolve maps a slash-separated relative path to an absolute path below
// the root.
func (s *DirSink) resolve(rel string) (string, error) {
	if rel == "" {
		rel = "."
	}
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, rel)
	}
	return filepath.Join(s.root, local), nil
}

// MkdirAll creates the directory rel and any missing parents.
func (s *DirSink) MkdirAll(rel string) error {
	dir, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile creates or replaces the file rel with data, creating parent
// directories as needed.
func (s *DirSink) WriteFile(rel string, data []byte) error {
	target, err := s.resolve(rel)
	if err != nil {
		return err
	}
	return atomicWrite(target, data)
}

// atomicWrite writes data to a temporary file next to path and renames it
// into place.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, filePerm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}
