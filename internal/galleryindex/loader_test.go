package galleryindex

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codecomfy/nextgallery/internal/galleryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workspaceRoot = "/ws"

func indexPath() string {
	return filepath.Join(workspaceRoot, IndexRelativePath)
}

func TestLoadWorkspaceNotFound(t *testing.T) {
	reader := galleryfs.NewFakeReader()
	res := Load(context.Background(), workspaceRoot, reader, nil)
	assert.Equal(t, StateFatal, res.State)
	assert.Equal(t, ReasonWorkspaceNotFound, res.FatalReason)
}

func TestLoadWorkspaceNotDirectory(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithFile(workspaceRoot, []byte("not a dir"), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	assert.Equal(t, StateFatal, res.State)
	assert.Equal(t, ReasonWorkspaceNotDirectory, res.FatalReason)
}

// Scenario 2: empty workspace, no .codecomfy/ subtree.
func TestLoadEmptyWorkspace(t *testing.T) {
	reader := galleryfs.NewFakeReader().WithDir(workspaceRoot)
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateEmpty, res.State)
	assert.Equal(t, NoBanner, res.Banner)
}

// Scenario 3: corrupt index, single byte "{".
func TestLoadCorruptIndexNoLastKnownGood(t *testing.T) {
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), []byte("{"), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateEmpty, res.State)
	assert.Equal(t, SeverityWarning, res.Banner.Severity)
	assert.Equal(t, "Index is corrupt", res.Banner.Message)
}

func TestLoadCorruptIndexWithLastKnownGood(t *testing.T) {
	lkg := []JobRow{{JobID: "abc"}}
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), []byte("{"), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, lkg)
	require.Equal(t, StateList, res.State)
	assert.Equal(t, lkg, res.Items)
	assert.Equal(t, SeverityWarning, res.Banner.Severity)
	assert.Equal(t, "Index is corrupt", res.Banner.Message)
}

func TestLoadZeroByteIndex(t *testing.T) {
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), []byte{}, time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateEmpty, res.State)
	assert.Equal(t, "Index is empty/corrupt", res.Banner.Message)
}

func TestLoadPermissionDenied(t *testing.T) {
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithDir(indexPath()). // Exists() on it still fails: the permission-denied mark is checked first
		WithPermissionDenied(indexPath())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateEmpty, res.State)
	assert.Equal(t, "Cannot read index: permission denied", res.Banner.Message)
}

func validJSON(items string) []byte {
	return []byte(`{"schema_version":"0.1","items":[` + items + `]}`)
}

func goodItem(jobID string) string {
	return `{
		"job_id": "` + jobID + `",
		"created_at": "2024-01-02T03:04:05Z",
		"kind": "image",
		"files": [{"path": "a.png", "sha256": "` + sha256Fixture + `"}],
		"seed": 7
	}`
}

const sha256Fixture = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcd"

// Scenario 4: 5 items, 3 malformed -> List of 2, reversed, Info banner.
func TestLoadMalformedEntriesScenario(t *testing.T) {
	items := goodItem("job-1") + "," +
		`{"job_id": "", "created_at": "x", "kind": "image", "files": [], "seed": 1},` +
		goodItem("job-2") + "," +
		`{"job_id": "bad-kind", "created_at": "2024-01-02T03:04:05Z", "kind": "audio", "files": [{"path":"a","sha256":"` + sha256Fixture + `"}], "seed": 1},` +
		`{"job_id": "bad-file", "created_at": "2024-01-02T03:04:05Z", "kind": "image", "files": [{"path":"../a","sha256":"` + sha256Fixture + `"}], "seed": 1}`

	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), validJSON(items), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)

	require.Equal(t, StateList, res.State)
	require.Len(t, res.Items, 2)
	// Reversed: job-2 (appended second) displays before job-1.
	assert.Equal(t, "job-2", res.Items[0].JobID)
	assert.Equal(t, "job-1", res.Items[1].JobID)
	assert.Equal(t, SeverityInfo, res.Banner.Severity)
	assert.Equal(t, "3 item(s) couldn't be displayed", res.Banner.Message)
	assert.Equal(t, 3, res.Banner.SkippedCount)
}

// Scenario 5: unsupported major version.
func TestLoadUnsupportedVersionFatal(t *testing.T) {
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), []byte(`{"schema_version":"2.0","items":[]}`), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateFatal, res.State)
	assert.Equal(t, ReasonUnsupportedVersion, res.FatalReason)
}

func TestLoadEmptyItemsArray(t *testing.T) {
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), validJSON(""), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateEmpty, res.State)
	assert.Equal(t, NoBanner, res.Banner)
}

// All-malformed with no last-known-good: the Open Question resolution
// (SPEC_FULL.md §11) keeps the Warning banner rather than demoting to Info.
func TestLoadAllMalformedNoLastKnownGood(t *testing.T) {
	items := `{"job_id": "", "created_at": "x", "kind": "image", "files": [], "seed": 1}`
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), validJSON(items), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateEmpty, res.State)
	assert.Equal(t, SeverityWarning, res.Banner.Severity)
	assert.Equal(t, "All 1 entries in index are malformed", res.Banner.Message)
}

func TestLoadAllMalformedWithLastKnownGood(t *testing.T) {
	lkg := []JobRow{{JobID: "prior"}}
	items := `{"job_id": "", "created_at": "x", "kind": "image", "files": [], "seed": 1}`
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), validJSON(items), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, lkg)
	require.Equal(t, StateList, res.State)
	assert.Equal(t, lkg, res.Items)
	assert.Equal(t, SeverityWarning, res.Banner.Severity)
}

func TestLoadOptionalFieldFallbacks(t *testing.T) {
	items := `{
		"job_id": "job-1",
		"created_at": "2024-01-02T03:04:05Z",
		"kind": "VIDEO",
		"files": [{"path": "a.mp4", "sha256": "` + sha256Fixture + `"}],
		"seed": 42
	}`
	reader := galleryfs.NewFakeReader().
		WithDir(workspaceRoot).
		WithFile(indexPath(), validJSON(items), time.Now())
	res := Load(context.Background(), workspaceRoot, reader, nil)
	require.Equal(t, StateList, res.State)
	require.Len(t, res.Items, 1)
	row := res.Items[0]
	assert.Equal(t, KindVideo, row.Kind)
	assert.Equal(t, "(no prompt)", row.Prompt)
	assert.Equal(t, "unknown", row.PresetID)
	assert.False(t, row.Favorite)
	assert.Empty(t, row.Notes)
}

func TestFileRefValidation(t *testing.T) {
	badPath := "abc"
	sha := sha256Fixture
	assert.True(t, isValidFileRef(rawFileRef{Path: &badPath, SHA256: &sha}))

	dotdot := "../evil"
	assert.False(t, isValidFileRef(rawFileRef{Path: &dotdot, SHA256: &sha}))

	rooted := "/abs/path"
	assert.False(t, isValidFileRef(rawFileRef{Path: &rooted, SHA256: &sha}))

	badSha := "not-hex"
	assert.False(t, isValidFileRef(rawFileRef{Path: &badPath, SHA256: &badSha}))
}

func TestParseSchemaVersionDefaults(t *testing.T) {
	assert.Equal(t, schemaVersion{Major: 0, Minor: 1}, parseSchemaVersion(""))
	assert.Equal(t, schemaVersion{Major: 0, Minor: 1}, parseSchemaVersion("garbage"))
	assert.Equal(t, schemaVersion{Major: 0, Minor: 1}, parseSchemaVersion("0.1"))
	assert.True(t, parseSchemaVersion("2.0").unsupported())
	assert.False(t, parseSchemaVersion("0.9").unsupported())
}
