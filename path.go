package clipsave

import "strings"

// MaxPathDepth is the maximum number of segments a sanitized path may have.
const MaxPathDepth = 10

// SanitizeUserPath cleans a user-configured base path. Empty, "." and ".."
// segments are dropped, backslashes become forward slashes, and the result
// is truncated to MaxPathDepth segments.
func SanitizeUserPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	segments := make([]string, 0, MaxPathDepth)
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, seg)
		if len(segments) == MaxPathDepth {
			break
		}
	}
	return strings.Join(segments, "/")
}

// SanitizeGeneratedPath cleans a template-generated path. Nested directories
// are kept, but every ".." is turned into a separator and repeated
// separators are collapsed. The result is truncated to MaxPathDepth segments.
//
// SanitizeGeneratedPath is idempotent.
func SanitizeGeneratedPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.ReplaceAll(p, "..", "/")
	segments := make([]string, 0, MaxPathDepth)
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." {
			continue
		}
		segments = append(segments, seg)
		if len(segments) == MaxPathDepth {
			break
		}
	}
	return strings.Join(segments, "/")
}

// CombinePath joins a user-configured base path with a generated path using
// a single separator. Each side is cleaned with its own sanitizer; when one
// side is empty the other is returned on its own.
func CombinePath(base, generated string) string {
	b := SanitizeUserPath(base)
	g := SanitizeGeneratedPath(generated)
	switch {
	case b == "":
		return g
	case g == "":
		return b
	}
	return b + "/" + g
}

// IsSafePath reports whether p may be handed to an I/O call. It rejects NUL
// bytes, ".." segments anywhere but the first position, doubled separators,
// and paths deeper than MaxPathDepth.
func IsSafePath(p string) bool {
	if p == "" || strings.ContainsRune(p, 0) {
		return false
	}
	p = strings.ReplaceAll(p, `\`, "/")
	if strings.Contains(p, "//") {
		return false
	}
	depth := 0
	for i, seg := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		if seg == ".." && i > 0 {
			return false
		}
		if seg != "" {
			depth++
		}
	}
	return depth <= MaxPathDepth
}

// PathDir returns everything before the last separator of p, or "" when p
// has no directory component.
func PathDir(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}
