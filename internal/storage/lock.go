package storage

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the bibliography lock.
var ErrLocked = errors.New("bibliography is locked by another process")

// LockPath returns the lock file used to guard writes to path.
func LockPath(path string) string {
	return path + ".lock"
}

// Lock takes an exclusive advisory lock guarding writes to path. It does not
// wait: if the lock is held elsewhere ErrLocked is returned. Callers must
// Unlock the returned lock when done.
func Lock(path string) (*flock.Flock, error) {
	lock := flock.New(LockPath(path))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return lock, nil
}
