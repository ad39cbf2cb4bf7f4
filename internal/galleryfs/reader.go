// Package galleryfs provides the narrow FileReader capability the loader
// needs: directory/file existence, byte reads, size, and last-write-time.
// It is deliberately a small interface, shaped after a local-disk backend's
// stat/read surface, so the loader can be driven by a fake in tests without
// touching a real filesystem.
package galleryfs

import (
	"io/fs"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Reader is the capability the IndexLoader depends on. It never exposes a
// write path — the index file is writer-owned and this module
// only ever reads it.
type Reader interface {
	// Exists reports whether path exists and, if so, whether it is a
	// directory. A non-existent path reports exists=false with a nil error.
	Exists(path string) (isDir bool, exists bool, err error)
	// ReadFile returns the full contents of path.
	ReadFile(path string) ([]byte, error)
	// Size returns the byte size of path.
	Size(path string) (int64, error)
	// ModTime returns the last-write-time of path.
	ModTime(path string) (time.Time, error)
}

// OSReader is the production Reader backed by the host filesystem.
type OSReader struct{}

var _ Reader = OSReader{}

// NewOSReader constructs the default, host-filesystem-backed Reader.
func NewOSReader() OSReader { return OSReader{} }

func (OSReader) Exists(path string) (isDir bool, exists bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, false, nil
		}
		return false, false, errors.Wrapf(err, "stat %s", path)
	}
	return info.IsDir(), true, nil
}

func (OSReader) ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapReadError(path, err)
	}
	return b, nil
}

func (OSReader) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", path)
	}
	return info.Size(), nil
}

func (OSReader) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "stat %s", path)
	}
	return info.ModTime(), nil
}

// IsPermissionDenied reports whether err represents a permission-denied
// condition as distinguished from any other I/O failure.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// IsNotExist reports whether err represents "file does not exist".
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func wrapReadError(path string, err error) error {
	return errors.Wrapf(err, "read %s", path)
}
