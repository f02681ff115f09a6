package config

import (
	"fmt"

	"github.com/gofrs/flock"
)

// AcquireInstanceLock takes the single-instance lock for launcherd without blocking.
// The returned release func must be called on exit.
func AcquireInstanceLock() (release func(), err error) {
	if err := EnsureGlobalDir(); err != nil {
		return nil, err
	}
	path, err := GlobalLockFile()
	if err != nil {
		return nil, err
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("launcher already running (lock held by another process)")
	}
	return func() { _ = fileLock.Unlock() }, nil
}
