package syncer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the directory lock.
var ErrLocked = errors.New("another ttrsync run is using this directory")

// lockPath maps an absolute sync directory to its lock file.
func lockPath(lockDir, dir string) string {
	sum := sha256.Sum256([]byte(dir))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

func acquireLock(lockDir, dir string) (*flock.Flock, error) {
	lock := flock.New(lockPath(lockDir, dir))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return lock, nil
}
