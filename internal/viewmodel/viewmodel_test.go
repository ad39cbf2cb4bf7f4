package viewmodel

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecomfy/nextgallery/internal/galleryfs"
	"github.com/codecomfy/nextgallery/internal/galleryindex"
)

type fakeWindowState struct {
	visible bool
	focused bool
}

func (w *fakeWindowState) IsVisible() bool { return w.visible }
func (w *fakeWindowState) IsFocused() bool { return w.focused }

const testRoot = "/ws"

func testIndexPath() string {
	return filepath.Join(testRoot, galleryindex.IndexRelativePath)
}

func validIndexJSON() []byte {
	return []byte(`{"schema_version":"0.1","items":[{
		"job_id": "job-1",
		"created_at": "2024-01-02T03:04:05Z",
		"kind": "image",
		"files": [{"path": "a.png", "sha256": "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"}],
		"seed": 7
	}]}`)
}

func TestStartProjectsInitialLoad(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), validIndexJSON(), time.Unix(100, 0))
	var projected []galleryindex.LoadResult
	m := New(testRoot, reader, nil, func(r galleryindex.LoadResult) { projected = append(projected, r) })

	m.Start(context.Background())

	require.Len(t, projected, 1)
	assert.Equal(t, galleryindex.StateList, projected[0].State)
	assert.Equal(t, galleryindex.StateList, m.Current().State)
}

func TestTickSuppressedWhenNotVisible(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), validIndexJSON(), time.Unix(100, 0))
	window := &fakeWindowState{visible: false, focused: true}
	calls := 0
	m := New(testRoot, reader, window, func(r galleryindex.LoadResult) { calls++ })

	m.Tick(context.Background())

	assert.Equal(t, 0, calls)
}

func TestTickSkippedWhenModTimeUnchanged(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), validIndexJSON(), time.Unix(100, 0))
	window := &fakeWindowState{visible: true, focused: true}
	calls := 0
	m := New(testRoot, reader, window, func(r galleryindex.LoadResult) { calls++ })

	m.Start(context.Background())
	calls = 0

	m.Tick(context.Background())

	assert.Equal(t, 0, calls)
}

func TestTickReloadsWhenModTimeAdvances(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), validIndexJSON(), time.Unix(100, 0))
	window := &fakeWindowState{visible: true, focused: true}
	calls := 0
	m := New(testRoot, reader, window, func(r galleryindex.LoadResult) { calls++ })

	m.Start(context.Background())
	calls = 0

	reader.WithFile(testIndexPath(), validIndexJSON(), time.Unix(200, 0))
	m.Tick(context.Background())

	assert.Equal(t, 1, calls)
}

func TestBackoffSuspendsTimerPollingAfterThreeFailures(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), []byte("{"), time.Unix(100, 0))
	window := &fakeWindowState{visible: true, focused: true}
	calls := 0
	m := New(testRoot, reader, window, func(r galleryindex.LoadResult) { calls++ })

	m.Start(context.Background())
	assert.Equal(t, 1, m.consecutiveFailure)

	for i := 0; i < 5; i++ {
		reader.WithFile(testIndexPath(), []byte("{"), time.Unix(int64(200+i), 0))
		m.Tick(context.Background())
	}

	assert.True(t, m.backedOff)
	assert.GreaterOrEqual(t, m.consecutiveFailure, BackoffThreshold)

	callsBeforeFurtherTicks := calls
	reader.WithFile(testIndexPath(), []byte("{"), time.Unix(300, 0))
	m.Tick(context.Background())
	assert.Equal(t, callsBeforeFurtherTicks, calls, "backed-off Tick must not reload")
}

func TestFocusGainedResumesFromBackoff(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), []byte("{"), time.Unix(100, 0))
	window := &fakeWindowState{visible: true, focused: true}
	m := New(testRoot, reader, window, func(r galleryindex.LoadResult) {})

	m.Start(context.Background())
	for i := 0; i < 3; i++ {
		reader.WithFile(testIndexPath(), []byte("{"), time.Unix(int64(200+i), 0))
		m.Tick(context.Background())
	}
	require.True(t, m.backedOff)

	reader.WithFile(testIndexPath(), validIndexJSON(), time.Unix(500, 0))
	m.FocusGained(context.Background())

	assert.False(t, m.backedOff)
	assert.Equal(t, 0, m.consecutiveFailure)
	assert.Equal(t, galleryindex.StateList, m.Current().State)
}

func TestExplicitRefreshAlwaysReloadsRegardlessOfWindowState(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(testRoot).WithFile(testIndexPath(), validIndexJSON(), time.Unix(100, 0))
	window := &fakeWindowState{visible: false, focused: false}
	calls := 0
	m := New(testRoot, reader, window, func(r galleryindex.LoadResult) { calls++ })

	m.ExplicitRefresh(context.Background())

	assert.Equal(t, 1, calls)
}
