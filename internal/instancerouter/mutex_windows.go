//go:build windows

package instancerouter

import (
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// winMutex wraps a real Win32 named mutex (CreateMutexW), the native
// system-global primitive backing per-workspace single-instance locking.
type winMutex struct {
	name   string
	handle windows.Handle
}

// NewMutex returns the Windows Mutex for a workspace's mutex name.
func NewMutex(name string) Mutex {
	return &winMutex{name: name}
}

func (m *winMutex) TryAcquire() (bool, error) {
	namePtr, err := syscall.UTF16PtrFromString(m.name)
	if err != nil {
		return false, errors.Wrapf(err, "encode mutex name %s", m.name)
	}
	// CreateMutex always sets its Windows error even on a successful call;
	// ERROR_ALREADY_EXISTS there (not a non-nil err of another kind) is how
	// "someone else already owns this name" is reported.
	handle, err := windows.CreateMutex(nil, false, namePtr)
	if handle == 0 {
		return false, errors.Wrapf(err, "create mutex %s", m.name)
	}
	if err == windows.ERROR_ALREADY_EXISTS {
		windows.CloseHandle(handle)
		return false, nil
	}
	m.handle = handle
	return true, nil
}

func (m *winMutex) Release() error {
	if m.handle == 0 {
		return nil
	}
	if err := windows.ReleaseMutex(m.handle); err != nil {
		windows.CloseHandle(m.handle)
		return errors.Wrapf(err, "release mutex %s", m.name)
	}
	return windows.CloseHandle(m.handle)
}
