package galleryindex

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/codecomfy/nextgallery/internal/galleryfs"
	"github.com/codecomfy/nextgallery/internal/gallerylog"
)

// IndexRelativePath is the fixed location of the writer-owned index file
// relative to a workspace root.
const IndexRelativePath = ".codecomfy/outputs/index.json"

// Load is the pure (workspace_root, last_known_good) -> LoadResult state
// machine. It performs no writes and no I/O outside reader, and never
// mutates lastKnownGood's backing array.
func Load(ctx context.Context, root string, reader galleryfs.Reader, lastKnownGood []JobRow) LoadResult {
	log := gallerylog.FromContext(ctx)

	// Rule 1/2: workspace existence and directory-ness.
	isDir, exists, err := reader.Exists(root)
	if err != nil {
		// The loader's own contract never raises for content issues, but an
		// Exists failure on the workspace root itself is an environment
		// error identical in spirit to "not found".
		log.Warn("workspace root stat failed, treating as not found", "root", root, "error", err)
		return fatal(ReasonWorkspaceNotFound, "Workspace not found", lastKnownGood)
	}
	if !exists {
		return fatal(ReasonWorkspaceNotFound, "Workspace not found", lastKnownGood)
	}
	if !isDir {
		return fatal(ReasonWorkspaceNotDirectory, "Workspace path is not a directory", lastKnownGood)
	}

	indexPath := filepath.Join(root, IndexRelativePath)

	// Rule 3: missing index file (including a missing.codecomfy/ or
	// outputs/ subtree, which collapses into "file does not exist").
	_, indexExists, err := reader.Exists(indexPath)
	if err != nil && !galleryfs.IsNotExist(err) {
		if galleryfs.IsPermissionDenied(err) {
			return recoverWith("Cannot read index: permission denied", lastKnownGood)
		}
		return recoverWith(fmt.Sprintf("Cannot read index: %s", err), lastKnownGood)
	}
	if !indexExists {
		return LoadResult{State: StateEmpty, Banner: NoBanner, LastKnownGood: lastKnownGood}
	}

	// Rule 4/5: read failure, distinguishing permission-denied from other
	// I/O errors only in the log/banner text — both recover identically.
	raw, err := reader.ReadFile(indexPath)
	if err != nil {
		if galleryfs.IsPermissionDenied(err) {
			return recoverWith("Cannot read index: permission denied", lastKnownGood)
		}
		return recoverWith(fmt.Sprintf("Cannot read index: %s", err), lastKnownGood)
	}

	// Rule 6: zero-byte index.
	if len(raw) == 0 {
		return recoverWith("Index is empty/corrupt", lastKnownGood)
	}

	// Rule 7: JSON parse failure.
	var idx rawIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return recoverWith("Index is corrupt", lastKnownGood)
	}

	// Rule 8: unsupported schema version.
	version := parseSchemaVersion(idx.SchemaVersion)
	if version.unsupported() {
		return LoadResult{
			State: StateFatal,
			FatalReason: ReasonUnsupportedVersion,
			FatalMessage: fmt.Sprintf("This index was written by a newer version of the app (schema %s). Please upgrade.", idx.SchemaVersion),
			Banner: NoBanner,
			LastKnownGood: lastKnownGood,
		}
	}

	// Rule 9: parse items.
	var valid []JobRow
	skipped := 0
	for _, item := range idx.Items {
		row, ok := item.validate()
		if !ok {
			skipped++
			continue
		}
		valid = append(valid, row)
	}

	if len(valid) == 0 && skipped == 0 {
		return LoadResult{State: StateEmpty, Banner: NoBanner, LastKnownGood: lastKnownGood}
	}
	if len(valid) == 0 && skipped > 0 {
		return recoverWith(fmt.Sprintf("All %d entries in index are malformed", skipped), lastKnownGood)
	}

	displayed := reverse(valid)
	banner := NoBanner
	if skipped > 0 {
		banner = Banner{
			Severity: SeverityInfo,
			Message: fmt.Sprintf("%d item(s) couldn't be displayed", skipped),
			SkippedCount: skipped,
		}
	}
	return LoadResult{
		State: StateList,
		Items: displayed,
		Banner: banner,
		LastKnownGood: displayed,
	}
}

// recoverWith implements the recover(msg, lkg) helper: with a non-empty
// last-known-good, keep showing it with a Warning banner; otherwise report
// Empty with a Warning banner. Per the Open Question resolution in
// SPEC_FULL.md §11, this always keeps the Warning — it never demotes to
// Info/None just because there was no prior good state.
func recoverWith(msg string, lkg []JobRow) LoadResult {
	if len(lkg) > 0 {
		return LoadResult{
			State: StateList,
			Items: lkg,
			Banner: Banner{Severity: SeverityWarning, Message: msg},
			LastKnownGood: lkg,
		}
	}
	return LoadResult{
		State: StateEmpty,
		Banner: Banner{Severity: SeverityWarning, Message: msg},
		LastKnownGood: lkg,
	}
}

func fatal(reason FatalReason, msg string, lkg []JobRow) LoadResult {
	return LoadResult{State: StateFatal, FatalReason: reason, FatalMessage: msg, Banner: NoBanner, LastKnownGood: lkg}
}

// reverse returns a new slice with items in reverse order; the input is
// never mutated, and on-disk append order is never touched.
func reverse(items []JobRow) []JobRow {
	out := make([]JobRow, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
