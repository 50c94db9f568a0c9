// --- START OF FINAL REVISED FILE pkg/util/util.go ---
package util

import (
	"path"
	"path/filepath"
	"strings"
)

// MatchesIgnore reports whether relPath (slash or OS separated, relative to
// the archive or directory root) is excluded by any gitignore-style pattern.
// It returns the first matching pattern.
//
// Supported forms: plain globs ("*.min.js") match the base name or any
// trailing run of path segments; a leading "/" anchors the pattern at the
// root; a trailing "/" or "/**" matches everything below a directory; a
// leading "**/" is equivalent to an unanchored pattern. This is a
// simplified matcher and does not implement negation.
func MatchesIgnore(patterns []string, relPath string) (string, bool) {
	rel := strings.TrimPrefix(path.Clean(filepath.ToSlash(relPath)), "/")
	if rel == "" || rel == "." {
		return "", false
	}
	for _, raw := range patterns {
		if matchPattern(strings.TrimSpace(raw), rel) {
			return raw, true
		}
	}
	return "", false
}

func matchPattern(pattern, rel string) bool {
	pattern = filepath.ToSlash(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return false
	}

	rooted := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	for strings.HasPrefix(pattern, "**/") {
		pattern = strings.TrimPrefix(pattern, "**/")
		rooted = false
	}
	dirOnly := false
	if strings.HasSuffix(pattern, "/**") {
		pattern, dirOnly = strings.TrimSuffix(pattern, "/**"), true
	}
	if strings.HasSuffix(pattern, "/") {
		pattern, dirOnly = strings.TrimSuffix(pattern, "/"), true
	}
	if pattern == "" {
		return false
	}

	segments := strings.Split(rel, "/")
	// Candidates are the path itself and each of its parent directories.
	// Directory-only patterns never match the final segment of a file path.
	last := len(segments)
	if dirOnly {
		last = len(segments) - 1
	}
	for end := last; end >= 1; end-- {
		if matchSegments(pattern, segments[:end], rooted) {
			return true
		}
	}
	return false
}

func matchSegments(pattern string, segments []string, rooted bool) bool {
	if rooted {
		ok, _ := path.Match(pattern, strings.Join(segments, "/"))
		return ok
	}
	for start := range segments {
		if ok, _ := path.Match(pattern, strings.Join(segments[start:], "/")); ok {
			return true
		}
	}
	return false
}

// --- END OF FINAL REVISED FILE pkg/util/util.go ---
