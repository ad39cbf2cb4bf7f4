// Package galleryindex implements the data model and pure loader state
// machine: a (workspace_root, last_known_good) -> LoadResult function that
// reads exactly one writer-owned JSON file and never mutates it.
package galleryindex

import "time"

// Kind is the artifact kind of a JobRow.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// FileRef is one artifact file referenced by a JobRow.
type FileRef struct {
	RelativePath string `json:"path"`
	SHA256 string `json:"sha256"`
	ContentType string `json:"content_type,omitempty"`
	Width *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
	SizeBytes *int64 `json:"size_bytes,omitempty"`
}

// JobRow is one displayed entry, projected from one index item.
type JobRow struct {
	JobID string `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
	Kind Kind `json:"kind"`
	Files []FileRef `json:"files"`
	Seed int64 `json:"seed"`
	Prompt string `json:"prompt,omitempty"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	PresetID string `json:"preset_id,omitempty"`
	ElapsedSeconds *float64 `json:"elapsed_seconds,omitempty"`
	Tags []string `json:"tags,omitempty"`
	Favorite bool `json:"favorite,omitempty"`
	Notes string `json:"notes,omitempty"`
}

const (
	fallbackPrompt = "(no prompt)"
	fallbackPresetID = "unknown"
)

// Severity classifies a Banner's urgency.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityWarning
)

// Banner is the non-fatal, state-derived message surfaced with a List or
// Empty result.
type Banner struct {
	Severity Severity
	Message string
	SkippedCount int
}

// NoBanner is the zero-value "nothing to show" banner.
var NoBanner = Banner{Severity: SeverityNone}

// StateTag discriminates LoadResult.State's variants. Go has no native sum
// type, so LoadResult carries this tag plus the fields each variant uses
// (Items for List, FatalReason/FatalMessage for Fatal), not an inheritance
// hierarchy.
type StateTag int

const (
	StateLoading StateTag = iota
	StateEmpty
	StateList
	StateFatal
)

// FatalReason enumerates why a workspace cannot be rendered at all.
type FatalReason int

const (
	ReasonNone FatalReason = iota
	ReasonWorkspaceNotFound
	ReasonWorkspaceNotDirectory
	ReasonUnsupportedVersion
)

// LoadResult is the pure loader's full output: a tagged state, the banner to
// show alongside it, and the last-known-good snapshot callers should keep
// for the next call.
type LoadResult struct {
	State StateTag

	// Items is populated only when State == StateList; items are in
	// display order (newest first).
	Items []JobRow

	// FatalMessage/FatalReason are populated only when State == StateFatal.
	FatalMessage string
	FatalReason FatalReason

	Banner Banner

	// LastKnownGood is the snapshot callers should pass into the next Load
	// call. It equals Items when State == StateList, and is carried over
	// unchanged from the input otherwise (the loader never discards a good
	// snapshot except by replacing it with a newer one).
	LastKnownGood []JobRow
}
