package galleryfs

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/pkg/errors"
)

// FakeEntry is one file or directory in a FakeReader.
type FakeEntry struct {
	IsDir   bool
	Content []byte
	ModTime time.Time
}

// FakeReader is an in-memory Reader for deterministic loader tests, playing
// the same role as rclone's injected backend.Fs fakes in its backend test
// suites.
type FakeReader struct {
	Entries map[string]FakeEntry
	// PermissionDenied, if set, names a path whose reads/stats fail with a
	// permission-denied error regardless of whether it's in Entries.
	PermissionDenied map[string]bool
	// Errors, if set, names a path whose reads/stats fail with a generic
	// I/O error regardless of whether it's in Entries.
	Errors map[string]error
}

var _ Reader = (*FakeReader)(nil)

// NewFakeReader builds an empty FakeReader.
func NewFakeReader() *FakeReader {
	return &FakeReader{Entries: map[string]FakeEntry{}}
}

// WithFile registers a regular file with the given content.
func (f *FakeReader) WithFile(path string, content []byte, modTime time.Time) *FakeReader {
	f.Entries[path] = FakeEntry{Content: content, ModTime: modTime}
	return f
}

// WithDir registers a directory.
func (f *FakeReader) WithDir(path string) *FakeReader {
	f.Entries[path] = FakeEntry{IsDir: true}
	return f
}

// WithPermissionDenied marks path as failing all reads with a
// permission-denied error.
func (f *FakeReader) WithPermissionDenied(path string) *FakeReader {
	if f.PermissionDenied == nil {
		f.PermissionDenied = map[string]bool{}
	}
	f.PermissionDenied[path] = true
	return f
}

// WithError marks path as failing all reads with err.
func (f *FakeReader) WithError(path string, err error) *FakeReader {
	if f.Errors == nil {
		f.Errors = map[string]error{}
	}
	f.Errors[path] = err
	return f
}

// errFakePermissionDenied wraps the stdlib permission sentinel so
// IsPermissionDenied treats fake and real readers identically.
var errFakePermissionDenied = fmt.Errorf("permission denied: %w", fs.ErrPermission)

func (f *FakeReader) checkFailure(path string) error {
	if f.PermissionDenied[path] {
		return errFakePermissionDenied
	}
	if err, ok := f.Errors[path]; ok {
		return err
	}
	return nil
}

func (f *FakeReader) Exists(path string) (isDir bool, exists bool, err error) {
	if err := f.checkFailure(path); err != nil {
		return false, false, err
	}
	e, ok := f.Entries[path]
	if !ok {
		return false, false, nil
	}
	return e.IsDir, true, nil
}

func (f *FakeReader) ReadFile(path string) ([]byte, error) {
	if err := f.checkFailure(path); err != nil {
		return nil, err
	}
	e, ok := f.Entries[path]
	if !ok {
		return nil, errors.Errorf("fake: %s does not exist", path)
	}
	return e.Content, nil
}

func (f *FakeReader) Size(path string) (int64, error) {
	if err := f.checkFailure(path); err != nil {
		return 0, err
	}
	e, ok := f.Entries[path]
	if !ok {
		return 0, errors.Errorf("fake: %s does not exist", path)
	}
	return int64(len(e.Content)), nil
}

func (f *FakeReader) ModTime(path string) (time.Time, error) {
	if err := f.checkFailure(path); err != nil {
		return time.Time{}, err
	}
	e, ok := f.Entries[path]
	if !ok {
		return time.Time{}, errors.Errorf("fake: %s does not exist", path)
	}
	return e.ModTime, nil
}

