package docstore

import (
	"fmt"
	"strings"
)

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split validates path and returns its segments.
func Split(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("docstore: empty path")
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return nil, fmt.Errorf("docstore: invalid path %q", path)
		}
		if strings.ContainsAny(p, "#$[]") {
			return nil, fmt.Errorf("docstore: invalid segment %q in path %q", p, path)
		}
	}
	return parts, nil
}

// Parent splits a path into its parent path and last segment. The parent
// of a single-segment path is "".
func Parent(path string) (parent, key string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// Related reports whether a change at changed is visible to a subscriber
// of watched: either path contains the other.
func Related(watched, changed string) bool {
	return within(changed, watched) || within(watched, changed)
}

func within(path, prefix string) bool {
	if prefix == "" || path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
