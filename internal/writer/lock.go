package writer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the lock file created in a locked output folder.
const LockFileName = ".firedocs.lock"

// ErrLocked is returned when another crawl holds the output folder.
var ErrLocked = errors.New("output folder is in use by another crawl")

// Lock is an exclusive, advisory lock on an output folder.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Lock acquires the lock of output folder rel without blocking.
// The folder is created if it does not exist.
func (s *DirSink) Lock(rel string) (*Lock, error) {
	if err := s.MkdirAll(rel); err != nil {
		return nil, err
	}
	dir, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, LockFileName)
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &Lock{flock: fl, path: path}, nil
}

// Unlock releases the lock. The lock file is left in place.
func (l *Lock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
