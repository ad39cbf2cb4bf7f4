// Package workspacekey derives the byte-stable 32-hex-char identity of a
// workspace from its filesystem path. The normalization pipeline below is
// contractual: every step, and the order they run in, is load-bearing — a
// reimplementation in another language must reproduce it exactly, or the
// two processes will compute different keys for the same workspace.
package workspacekey

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Key is a 32-character lowercase-hex workspace identifier.
type Key string

var (
	// ErrInvalidInput is returned when the path is empty, whitespace-only,
	// or contains a null byte.
	ErrInvalidInput = errors.New("workspacekey: invalid input path")
)

const keyLength = 32

// Normalize runs the canonicalization pipeline and returns the canon path.
// It never silently accepts an invalid input: failures are always a
// non-nil error, never an empty-string success.
func Normalize(path string) (string, error) {
	// Step 1: reject empty, whitespace-only, or null-byte input.
	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, 0) {
		return "", ErrInvalidInput
	}

	// Step 2: resolve to an absolute path using host OS semantics. This is
	// the authoritative boundary — it resolves ".", "..", and relative-to-CWD,
	// and on Windows normalizes the case of existing path segments.
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(ErrInvalidInput, err.Error())
	}

	// Step 3: backslashes become forward slashes.
	s := strings.ReplaceAll(abs, `\`, "/")

	// Step 4: defensive clamp — collapse any leading run of 3+ slashes to
	// exactly "//" (guards UNC edge cases where the OS resolver may emit
	// extra separators).
	s = clampLeadingSlashes(s)

	// Step 5: NFC normalize.
	s = norm.NFC.String(s)

	// Step 6: ASCII-only case fold, locale independent.
	s = foldASCII(s)

	// Step 7: trailing-slash rules.
	s = applyTrailingSlashRule(s)

	return s, nil
}

// ComputeKey normalizes path and derives its 32-hex-char workspace key.
func ComputeKey(path string) (Key, error) {
	canon, err := Normalize(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canon))
	hexSum := hex.EncodeToString(sum[:])
	return Key(hexSum[:keyLength]), nil
}

func clampLeadingSlashes(s string) string {
	n := 0
	for n < len(s) && s[n] == '/' {
		n++
	}
	if n >= 3 {
		return "//" + s[n:]
	}
	return s
}

// foldASCII lowercases ASCII A-Z only; it must not vary by locale (so it
// does not use strings.ToLower, which is Unicode-aware and could diverge
// across runtimes for some scripts).
func foldASCII(s string) string {
	b := []byte(s)
	for i, r := range b {
		if r >= 'A' && r <= 'Z' {
			b[i] = r - 'A' + 'a'
		}
	}
	return string(b)
}

// isUNCShareRoot reports whether s is exactly "//server/share" — begins
// with "//" and the remainder splits into exactly two non-empty segments.
func isUNCShareRoot(s string) bool {
	if !strings.HasPrefix(s, "//") {
		return false
	}
	rest := strings.TrimPrefix(s, "//")
	rest = strings.TrimSuffix(rest, "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return false
	}
	return parts[0] != "" && parts[1] != ""
}

func isBareDriveRoot(s string) bool {
	return len(s) == 2 && s[1] == ':' && isASCIILetter(rune(s[0]))
}

func isASCIILetter(r rune) bool {
	return unicode.IsLetter(r) && r < unicode.MaxASCII
}

func applyTrailingSlashRule(s string) string {
	switch {
	case isUNCShareRoot(s):
		return strings.TrimRight(s, "/")
	case isBareDriveRoot(s):
		return s + "/"
	case len(s) > 3:
		return strings.TrimSuffix(s, "/")
	default:
		return s
	}
}
