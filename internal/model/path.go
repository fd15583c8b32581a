package model

import (
	"sort"
	"strconv"
	"strings"
)

// Segments splits a "."-joined dot-path into its parts. A numeric part
// addresses a sequence index. An empty path has no segments.
func Segments(path string) []string {
	if path == "" {
		return nil
	}

	return strings.Split(path, ".")
}

// GetPath walks data (as produced by decoding YAML/JSON into `any`) along
// path's segments and returns the value found there.
func GetPath(data any, path string) (any, bool) {
	return getSegments(data, Segments(path))
}

func getSegments(data any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return data, true
	}

	seg := segments[0]
	rest := segments[1:]

	switch v := data.(type) {
	case map[string]any:
		child, ok := v[seg]
		if !ok {
			return nil, false
		}

		return getSegments(child, rest)

	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}

		return getSegments(v[idx], rest)

	default:
		return nil, false
	}
}

// AsMap type-asserts v as map[string]any, returning nil, false otherwise.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)

	return m, ok
}

// AsSlice type-asserts v as []any, returning nil, false otherwise.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)

	return s, ok
}

// OrderedKeys returns the keys of a map[string]any decoded from YAML in
// sorted order. The decoded map does not keep document order, so callers
// that need document order should resolve it via the CST rather than this
// helper. OrderedKeys exists for the common case where only a stable (not
// necessarily source) order matters, e.g. test fixtures.
func OrderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
