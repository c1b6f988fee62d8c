// Package workstate captures a point-in-time snapshot of repository work
// signals (changed files, staged files, current branch) used by relevance
// scoring. The snapshot is taken once per planning call and never refreshed
// mid-call; git being unavailable is not an error, it yields an empty
// snapshot and conservative downstream scoring.
package workstate

import (
	"os/exec"
	"strings"

	"ctxgov/internal/paths"
)

// Detected work intents derived from the current branch name. These are
// coarser than task intents: they describe what the repository state says
// the user is doing, not what the current request asks for.
const (
	IntentCoding        = "coding"
	IntentDebugging     = "debugging"
	IntentTesting       = "testing"
	IntentDocumentation = "documentation"
	IntentRefactoring   = "refactoring"
	IntentGeneral       = "general"
)

// Snapshot is the current work context detected from git.
type Snapshot struct {
	ChangedFiles   []string `json:"changedFiles"`
	StagedFiles    []string `json:"stagedFiles"`
	CurrentBranch  string   `json:"currentBranch"`
	ActiveModules  []string `json:"activeModules"`
	DetectedIntent string   `json:"detectedIntent"`
	GitAvailable   bool     `json:"gitAvailable"`
}

// Capture queries git in projectRoot and builds a snapshot. Any git failure
// degrades to an empty snapshot; Capture never returns an error.
func Capture(projectRoot string) *Snapshot {
	s := &Snapshot{DetectedIntent: IntentGeneral}

	changed, err := gitLines(projectRoot, "diff", "--name-only")
	if err != nil {
		return s
	}
	s.GitAvailable = true
	s.ChangedFiles = changed

	if staged, err := gitLines(projectRoot, "diff", "--staged", "--name-only"); err == nil {
		s.StagedFiles = staged
	}

	if branch, err := gitOutput(projectRoot, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		s.CurrentBranch = strings.TrimSpace(branch)
	}

	s.ActiveModules = detectModules(s.ChangedFiles, s.StagedFiles)
	s.DetectedIntent = detectIntent(s.CurrentBranch)
	return s
}

// Empty returns a snapshot with no signals, for tests and for callers that
// disable relevance scoring.
func Empty() *Snapshot {
	return &Snapshot{DetectedIntent: IntentGeneral}
}

// HasChanged reports whether path is in the unstaged change set.
func (s *Snapshot) HasChanged(path string) bool {
	return contains(s.ChangedFiles, paths.Normalize(path))
}

// HasStaged reports whether path is staged for commit.
func (s *Snapshot) HasStaged(path string) bool {
	return contains(s.StagedFiles, paths.Normalize(path))
}

func contains(list []string, path string) bool {
	for _, f := range list {
		if paths.Normalize(f) == path {
			return true
		}
	}
	return false
}

// detectModules derives active top-level modules from changed/staged paths.
func detectModules(changed, staged []string) []string {
	var modules []string
	seen := make(map[string]bool)
	for _, f := range append(append([]string{}, changed...), staged...) {
		mod := paths.TopLevel(f)
		if mod == "" || seen[mod] {
			continue
		}
		seen[mod] = true
		modules = append(modules, mod)
	}
	return modules
}

// detectIntent infers the work intent from the branch name.
func detectIntent(branch string) string {
	b := strings.ToLower(branch)
	switch {
	case containsAny(b, "fix", "bug", "hotfix"):
		return IntentDebugging
	case containsAny(b, "test", "spec"):
		return IntentTesting
	case containsAny(b, "feat", "feature", "add"):
		return IntentCoding
	case containsAny(b, "doc", "readme"):
		return IntentDocumentation
	case containsAny(b, "refactor", "cleanup"):
		return IntentRefactoring
	default:
		return IntentGeneral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// gitOutput runs a git command and returns its stdout.
func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// gitLines runs a git command and returns non-empty trimmed output lines.
func gitLines(dir string, args ...string) ([]string, error) {
	out, err := gitOutput(dir, args...)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
