// Package pathfilter excludes dependency and build artifacts from context:
// package directories, lock files, minified bundles, compiled objects, and
// oversized files. These bloat context without adding signal.
package pathfilter

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ctxgov/internal/paths"
	"ctxgov/internal/unit"
)

// MaxFileSize is the largest file worth including, in bytes.
const MaxFileSize = 100 * 1024

// ignoredDirectories are path components that always exclude a path.
var ignoredDirectories = map[string]bool{
	// JavaScript/Node.js
	"node_modules":     true,
	"bower_components": true,
	".npm":             true,
	".yarn":            true,
	".pnpm-store":      true,

	// Python
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"env":           true,
	".env":          true,
	"virtualenv":    true,
	".eggs":         true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".ruff_cache":   true,
	".tox":          true,
	".nox":          true,

	// JVM
	"target":  true,
	".gradle": true,
	".m2":     true,
	"build":   true,

	// Go, PHP, Ruby
	"vendor":  true,
	".bundle": true,

	// .NET
	"bin":      true,
	"obj":      true,
	"packages": true,

	// Build outputs
	"dist":   true,
	"out":    true,
	"output": true,
	".build": true,
	"_build": true,

	// IDE/editor
	".idea":   true,
	".vscode": true,
	".vs":     true,

	// Version control
	".git": true,
	".svn": true,
	".hg":  true,

	// OS artifacts
	".DS_Store": true,
	"Thumbs.db": true,

	// Coverage and test artifacts
	"coverage":    true,
	".coverage":   true,
	"htmlcov":     true,
	".nyc_output": true,

	// Logs and temp
	"logs":   true,
	"tmp":    true,
	"temp":   true,
	".tmp":   true,
	".temp":  true,
	".cache": true,
}

// ignoredDirGlobs match path components by wildcard (e.g. *.egg-info).
var ignoredDirGlobs = []*regexp.Regexp{
	regexp.MustCompile(`^.*\.egg-info$`),
	regexp.MustCompile(`^.*\.swp$`),
	regexp.MustCompile(`^.*\.swo$`),
	regexp.MustCompile(`^.*\.log$`),
}

// ignoredFilePatterns match filenames of generated or binary content.
var ignoredFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.min\.js$`),
	regexp.MustCompile(`\.min\.css$`),
	regexp.MustCompile(`\.bundle\.js$`),
	regexp.MustCompile(`\.map$`),
	regexp.MustCompile(`\.lock$`),
	regexp.MustCompile(`package-lock\.json$`),
	regexp.MustCompile(`yarn\.lock$`),
	regexp.MustCompile(`pnpm-lock\.yaml$`),
	regexp.MustCompile(`Gemfile\.lock$`),
	regexp.MustCompile(`Cargo\.lock$`),
	regexp.MustCompile(`poetry\.lock$`),
	regexp.MustCompile(`composer\.lock$`),
	regexp.MustCompile(`\.pyc$`),
	regexp.MustCompile(`\.pyo$`),
	regexp.MustCompile(`\.class$`),
	regexp.MustCompile(`\.o$`),
	regexp.MustCompile(`\.so$`),
	regexp.MustCompile(`\.dll$`),
	regexp.MustCompile(`\.exe$`),
	regexp.MustCompile(`\.bin$`),
	regexp.MustCompile(`\.wasm$`),
}

// passthroughTypes are unit types never filtered by path.
var passthroughTypes = map[string]bool{
	unit.TypeSystem:      true,
	unit.TypeMessage:     true,
	unit.TypeInstruction: true,
	unit.TypeError:       true,
}

// Filter excludes paths pointing at dependency or build artifacts.
type Filter struct {
	root         string
	extraDirs    map[string]bool
	extraFileRes []*regexp.Regexp
}

// New creates a filter. root anchors file-size checks; custom patterns
// ending in "/" are treated as directory names, all others as filename
// regexes. An unparseable custom regex is skipped.
func New(root string, customIgnores []string) *Filter {
	f := &Filter{root: root, extraDirs: make(map[string]bool)}
	for _, pattern := range customIgnores {
		if strings.HasSuffix(pattern, "/") {
			f.extraDirs[strings.TrimSuffix(pattern, "/")] = true
			continue
		}
		if re, err := regexp.Compile(pattern); err == nil {
			f.extraFileRes = append(f.extraFileRes, re)
		}
	}
	return f
}

// ShouldIgnore reports whether path should be excluded, and why.
func (f *Filter) ShouldIgnore(path string) (bool, string) {
	p := paths.Normalize(path)

	for _, part := range paths.Parts(p) {
		if ignoredDirectories[part] || f.extraDirs[part] {
			return true, "Ignored directory: " + part
		}
		for _, glob := range ignoredDirGlobs {
			if glob.MatchString(part) {
				return true, "Matches ignored pattern: " + part
			}
		}
	}

	filename := filepath.Base(p)
	for _, re := range ignoredFilePatterns {
		if re.MatchString(filename) {
			return true, "Matches ignored file pattern"
		}
	}
	for _, re := range f.extraFileRes {
		if re.MatchString(filename) {
			return true, "Matches custom ignore pattern"
		}
	}

	if f.root != "" {
		full := filepath.Join(f.root, filepath.FromSlash(p))
		if info, err := os.Stat(full); err == nil && !info.IsDir() && info.Size() > MaxFileSize {
			return true, fmt.Sprintf("File too large: %.1fKB > %.1fKB",
				float64(info.Size())/1024, float64(MaxFileSize)/1024)
		}
	}

	return false, ""
}

// FilteredPath records an excluded path and the reason.
type FilteredPath struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// FilterPaths splits paths into kept and filtered.
func (f *Filter) FilterPaths(pathList []string) ([]string, []FilteredPath) {
	kept := make([]string, 0, len(pathList))
	var filtered []FilteredPath
	for _, p := range pathList {
		if ignore, reason := f.ShouldIgnore(p); ignore {
			filtered = append(filtered, FilteredPath{Path: p, Reason: reason})
		} else {
			kept = append(kept, p)
		}
	}
	return kept, filtered
}

// FilteredUnit records an excluded unit and the reason.
type FilteredUnit struct {
	Unit   *unit.ContextUnit `json:"unit"`
	Reason string            `json:"reason"`
}

// FilterUnits splits units into kept and filtered. Non-file units (system
// prompts, messages, instructions, errors) always pass through.
func (f *Filter) FilterUnits(units []*unit.ContextUnit) ([]*unit.ContextUnit, []FilteredUnit) {
	kept := make([]*unit.ContextUnit, 0, len(units))
	var filtered []FilteredUnit
	for _, u := range units {
		if passthroughTypes[u.Type] {
			kept = append(kept, u)
			continue
		}
		if ignore, reason := f.ShouldIgnore(u.PathOrID()); ignore {
			filtered = append(filtered, FilteredUnit{Unit: u, Reason: reason})
		} else {
			kept = append(kept, u)
		}
	}
	return kept, filtered
}

// ScanDirectory walks root and returns relative paths of files that pass the
// filter, optionally restricted to the given extensions (with leading dot).
func (f *Filter) ScanDirectory(root string, extensions []string) ([]string, error) {
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(e)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if ignore, _ := f.ShouldIgnore(rel); ignore {
				return filepath.SkipDir
			}
			return nil
		}
		if len(extSet) > 0 && !extSet[paths.Ext(rel)] {
			return nil
		}
		if ignore, _ := f.ShouldIgnore(rel); !ignore {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// GitignorePatterns reads non-comment lines from root's .gitignore. A
// missing or unreadable file yields no patterns.
func GitignorePatterns(root string) []string {
	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns
}
