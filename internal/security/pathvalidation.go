// Package security guards filesystem paths assembled from untrusted
// input. Export filenames arrive over HTTP and CLI flags; everything here
// exists to keep the resulting paths inside the configured export
// directory.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxFilenameLen caps sanitized filenames to keep joined paths well under
// filesystem limits.
const maxFilenameLen = 128

// SanitizeFilename makes a safe filename from an arbitrary string. Runs of
// characters outside ASCII letters, digits, dot, underscore and dash
// collapse to a single underscore; leading and trailing dots and
// underscores are trimmed. An input that sanitizes to nothing yields
// "export".
func SanitizeFilename(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		if b.Len() >= maxFilenameLen {
			break
		}
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-'
		if safe {
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		if !pendingSep {
			b.WriteByte('_')
			pendingSep = true
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "export"
	}
	return out
}

// ConfinePath joins an untrusted filename onto dir and returns the
// resulting absolute path, or an error when the result would land outside
// dir. Only the final path component of name is used, so traversal
// sequences never reach the join.
func ConfinePath(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no base directory configured")
	}
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", name)
	}

	joined, err := filepath.Abs(filepath.Join(dir, base))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if err := ValidateWithinDir(joined, dir); err != nil {
		return "", err
	}
	return joined, nil
}

// ValidateWithinDir reports whether path stays inside dir once symlinks
// and relative components are resolved. Symlinks in existing ancestors
// are followed, so a link pointing out of dir cannot smuggle a path past
// the check.
func ValidateWithinDir(path, dir string) error {
	canonicalPath, err := canonicalize(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	canonicalDir, err := canonicalize(dir)
	if err != nil {
		return fmt.Errorf("resolve base directory: %w", err)
	}

	rel, err := filepath.Rel(canonicalDir, canonicalPath)
	if err != nil {
		return fmt.Errorf("path is outside base directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("path %q escapes base directory %q", path, dir)
	}
	return nil
}

// canonicalize returns the absolute, symlink-resolved form of path. When
// the path itself does not exist yet, the nearest existing ancestor is
// resolved instead and the remaining components are re-joined onto it.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	for ancestor := filepath.Dir(abs); ; ancestor = filepath.Dir(ancestor) {
		resolved, err := filepath.EvalSymlinks(ancestor)
		if err == nil {
			rel, err := filepath.Rel(ancestor, abs)
			if err != nil {
				return "", err
			}
			return filepath.Join(resolved, rel), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		if ancestor == filepath.Dir(ancestor) {
			return abs, nil
		}
	}
}
