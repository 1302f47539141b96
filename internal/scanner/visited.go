package scanner

import "path/filepath"

// visitedSet records the canonical directories already handed to the
// extractor during one run. Not safe for concurrent use.
type visitedSet map[string]struct{}

func newVisitedSet() visitedSet {
	return make(visitedSet)
}

// add inserts path and reports whether it was new.
func (v visitedSet) add(path string) bool {
	if _, ok := v[path]; ok {
		return false
	}
	v[path] = struct{}{}
	return true
}

// canonicalize resolves path to an absolute, symlink-free form. On failure
// the raw string is returned unchanged.
func canonicalize(raw string) string {
	// filepath.Abs would turn "" into the working directory
	if raw == "" {
		return raw
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return raw
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return raw
	}
	return resolved
}
