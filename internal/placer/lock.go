package placer

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/gajzzs/sampleload/internal/crypto"
)

// DefaultLockDir returns the directory holding per-destination build locks.
// Locks live on the host, never on the card.
func DefaultLockDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sampleload", "locks")
}

func lockFile(lockDir, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	h := crypto.NewHash()
	h.Write([]byte(filepath.Clean(abs)))
	return filepath.Join(lockDir, hex.EncodeToString(h.Sum(nil))[:16]+".lock"), nil
}

// acquireLock takes the exclusive build lock for root without blocking.
func acquireLock(lockDir, root string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path, err := lockFile(lockDir, root)
	if err != nil {
		return nil, err
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrBusy, root)
	}
	return lock, nil
}
