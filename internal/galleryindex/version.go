package galleryindex

import (
	"strconv"
	"strings"
	"time"
)

var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISO8601(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// schemaVersion is a parsed "major.minor" schema_version string. Missing or
// unparseable components default to (0, 1).
type schemaVersion struct {
	Major int
	Minor int
}

func parseSchemaVersion(s string) schemaVersion {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 2)
	major, ok := parsePositiveInt(parts[0])
	if !ok {
		return schemaVersion{Major: 0, Minor: 1}
	}
	minor := 1
	if len(parts) == 2 {
		if m, ok := parsePositiveInt(parts[1]); ok {
			minor = m
		}
	}
	return schemaVersion{Major: major, Minor: minor}
}

func parsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// unsupported reports whether this version is Fatal(UnsupportedVersion):
// major 0 is best-effort (unknown fields ignored); any major >= 1 is
// outside what this build understands.
func (v schemaVersion) unsupported() bool {
	return v.Major >= 1
}
