package galleryindex

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// rawIndex mirrors the on-disk index.json shape before entry
// validation. Item fields are pointers (and json.Number for seed) so a
// missing field can be told apart from a zero value, and rawItem's
// UnmarshalJSON absorbs type drift inside one item, so a malformed entry is
// detected and skipped rather than failing the whole parse.
type rawIndex struct {
	SchemaVersion string `json:"schema_version"`
	UpdatedAt string `json:"updated_at"`
	Items []rawItem `json:"items"`
}

type rawItem struct {
	JobID *string `json:"job_id"`
	CreatedAt *string `json:"created_at"`
	Kind *string `json:"kind"`
	Files []rawFileRef `json:"files"`
	Seed *json.Number `json:"seed"`
	Prompt *string `json:"prompt"`
	NegativePrompt *string `json:"negative_prompt"`
	PresetID *string `json:"preset_id"`
	ElapsedSeconds *float64 `json:"elapsed_seconds"`
	Tags []string `json:"tags"`
	Favorite *bool `json:"favorite"`
	Notes *string `json:"notes"`
}

// UnmarshalJSON decodes one item without ever failing the enclosing index
// parse: an item with a field of the wrong JSON type decodes to the zero
// rawItem, which validate then rejects for its missing job_id.
func (it *rawItem) UnmarshalJSON(b []byte) error {
	type plain rawItem
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*it = rawItem{}
		return nil
	}
	*it = rawItem(p)
	return nil
}

type rawFileRef struct {
	Path *string `json:"path"`
	SHA256 *string `json:"sha256"`
	ContentType string `json:"content_type,omitempty"`
	Width *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
	SizeBytes *int64 `json:"size_bytes,omitempty"`
}

var sha256Pattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

func isValidFileRef(r rawFileRef) bool {
	if r.Path == nil || strings.TrimSpace(*r.Path) == "" {
		return false
	}
	if hasDotDotSegment(*r.Path) || isRootedPath(*r.Path) {
		return false
	}
	if r.SHA256 == nil || !sha256Pattern.MatchString(*r.SHA256) {
		return false
	}
	return true
}

func hasDotDotSegment(p string) bool {
	norm := strings.ReplaceAll(p, `\`, "/")
	for _, seg := range strings.Split(norm, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isRootedPath(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	// drive-letter rooted, e.g. "C:\..." or "C:/..."
	if len(p) >= 2 && p[1] == ':' {
		return true
	}
	return false
}

func toFileRef(r rawFileRef) FileRef {
	fr := FileRef{
		RelativePath: *r.Path,
		SHA256: strings.ToLower(*r.SHA256),
		ContentType: r.ContentType,
		Width: r.Width,
		Height: r.Height,
		SizeBytes: r.SizeBytes,
	}
	return fr
}

// validate converts a rawItem to a JobRow, applying the optional-field
// fallback mapping. It returns ok=false if any required field is missing
// or invalid.
func (it rawItem) validate() (JobRow, bool) {
	if it.JobID == nil || strings.TrimSpace(*it.JobID) == "" {
		return JobRow{}, false
	}
	if it.CreatedAt == nil {
		return JobRow{}, false
	}
	createdAt, ok := parseISO8601(*it.CreatedAt)
	if !ok {
		return JobRow{}, false
	}
	if it.Kind == nil {
		return JobRow{}, false
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(*it.Kind)))
	if kind != KindImage && kind != KindVideo {
		return JobRow{}, false
	}
	if len(it.Files) == 0 {
		return JobRow{}, false
	}
	var validFiles []FileRef
	for _, f := range it.Files {
		if isValidFileRef(f) {
			validFiles = append(validFiles, toFileRef(f))
		}
	}
	if len(validFiles) == 0 {
		return JobRow{}, false
	}
	if it.Seed == nil {
		return JobRow{}, false
	}
	seed, err := strconv.ParseInt(it.Seed.String(), 10, 64)
	if err != nil {
		return JobRow{}, false
	}

	row := JobRow{
		JobID: strings.TrimSpace(*it.JobID),
		CreatedAt: createdAt,
		Kind: kind,
		Files: validFiles,
		Seed: seed,
		Prompt: fallbackPrompt,
		PresetID: fallbackPresetID,
	}
	if it.Prompt != nil {
		row.Prompt = *it.Prompt
	}
	if it.NegativePrompt != nil {
		row.NegativePrompt = *it.NegativePrompt
	}
	if it.PresetID != nil {
		row.PresetID = *it.PresetID
	}
	row.ElapsedSeconds = it.ElapsedSeconds
	row.Tags = it.Tags
	if it.Favorite != nil {
		row.Favorite = *it.Favorite
	}
	if it.Notes != nil {
		row.Notes = *it.Notes
	}
	return row, true
}
