package paths

import (
	"path/filepath"
	"strings"
)

// Normalize converts a path to forward slashes and strips a leading "./".
// Context unit paths are compared as repo-relative slash paths regardless of
// the platform they were produced on.
func Normalize(path string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "./")
	return p
}

// Ext returns the lowercased file extension including the dot, or "".
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Stem returns the file name without directory or extension.
// "src/auth/login.ts" -> "login".
func Stem(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// Dir returns the slash-normalized parent directory of a path.
func Dir(path string) string {
	return filepath.ToSlash(filepath.Dir(Normalize(path)))
}

// Parts splits a normalized path into its components.
func Parts(path string) []string {
	p := Normalize(path)
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// TopLevel returns the first path component, or "" for bare file names.
// Used for active-module detection: "src/auth/login.ts" -> "src".
func TopLevel(path string) string {
	parts := Parts(path)
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
