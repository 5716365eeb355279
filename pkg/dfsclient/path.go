package dfsclient

import (
	"strings"

	"github.com/marmos91/dfsclient/pkg/dfsclient/dfserr"
)

// RootPath returns the DFS root path.
func RootPath() string {
	return "/"
}

// JoinPath joins first with any additional components into an absolute,
// normalised path. Empty and duplicate separators collapse; a trailing
// separator is stripped except for the root itself. first must be
// non-empty.
func JoinPath(first string, more ...string) (string, error) {
	if first == "" {
		return "", dfserr.InvalidArgumentError("path: first component must not be empty")
	}

	parts := make([]string, 0, len(more)+1)
	parts = append(parts, first)
	parts = append(parts, more...)

	return normalizePath(strings.Join(parts, "/"))
}

// BasenamePath returns the final path component. Returns "" for the root
// path.
func BasenamePath(p string) string {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// DirName returns the parent directory of p. Returns "" for the root
// path, since root has no parent.
func DirName(p string) string {
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return ""
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx]
}

// RequireAbsolutePath fails with InvalidArgument if p does not begin with
// "/".
func RequireAbsolutePath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return dfserr.InvalidArgumentError("path must be absolute: " + p)
	}
	return nil
}

// normalizePath collapses empty/duplicate separators and strips a
// trailing separator, except for the root path. The result is always
// absolute regardless of whether p already carried a leading slash.
func normalizePath(p string) (string, error) {
	segments := strings.Split(p, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		kept = append(kept, seg)
	}

	if len(kept) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(kept, "/"), nil
}
