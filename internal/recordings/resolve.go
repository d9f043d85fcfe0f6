package recordings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for path resolution. Forbidden and NotFound are kept
// distinct all the way to the HTTP layer: a traversal attempt must never
// masquerade as a missing file.
var (
	// ErrNotFound means the path resolved inside the root but no file is there.
	ErrNotFound = errors.New("recording not found")
	// ErrForbidden means the path escapes its configured root.
	ErrForbidden = errors.New("path escapes configured root")
)

// Resolve maps a logical, client-supplied path to an absolute path strictly
// inside root. The containment check runs before any filesystem access, so
// an escaping path is rejected without reading anything outside the root.
func Resolve(root, logical string) (string, error) {
	abs, err := Sandbox(root, logical)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", ErrNotFound
	}
	return abs, nil
}

// Sandbox canonicalizes logical under root and verifies containment without
// requiring the target to exist. Used for HLS artifacts, whose files may be
// legitimately absent while the encoder is still producing them.
func Sandbox(root, logical string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", ErrForbidden
	}
	abs, err := filepath.Abs(filepath.Join(absRoot, logical))
	if err != nil {
		return "", ErrForbidden
	}
	if !contains(absRoot, abs) {
		return "", ErrForbidden
	}
	return abs, nil
}

// contains reports whether child is root itself or a descendant of it.
// A plain prefix check is not enough: /recordings-evil shares a string
// prefix with /recordings but is not inside it.
func contains(root, child string) bool {
	if child == root {
		return true
	}
	return strings.HasPrefix(child, root+string(filepath.Separator))
}
