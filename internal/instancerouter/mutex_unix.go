//go:build !windows

package instancerouter

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// flockMutex is the POSIX stand-in for a system-global named mutex: an
// exclusive, non-blocking flock on a well-known lock file, following the
// same "derive a deterministic path from a stable name, let the OS own
// exclusivity" posture as backend/local's platform-specific files.
type flockMutex struct {
	path string
	file *os.File
}

// NewMutex returns the POSIX Mutex for a workspace's mutex name.
func NewMutex(name string) Mutex {
	return &flockMutex{path: filepath.Join(os.TempDir(), name+".lock")}
}

func (m *flockMutex) TryAcquire() (bool, error) {
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return false, errors.Wrapf(err, "open lock file %s", m.path)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return false, nil
		}
		return false, errors.Wrapf(err, "flock %s", m.path)
	}
	m.file = f
	return true, nil
}

func (m *flockMutex) Release() error {
	if m.file == nil {
		return nil
	}
	err := unix.Flock(int(m.file.Fd()), unix.LOCK_UN)
	closeErr := m.file.Close()
	_ = os.Remove(m.path)
	if err != nil {
		return errors.Wrapf(err, "unlock %s", m.path)
	}
	return closeErr
}
