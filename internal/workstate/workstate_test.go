package workstate

import (
	"reflect"
	"testing"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"fix/login-crash", IntentDebugging},
		{"hotfix-prod", IntentDebugging},
		{"test/coverage", IntentTesting},
		{"feat/new-cache", IntentCoding},
		{"add-retry-logic", IntentCoding},
		{"docs/update-readme", IntentDocumentation},
		{"refactor/split-module", IntentRefactoring},
		{"main", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			if got := detectIntent(tt.branch); got != tt.want {
				t.Errorf("detectIntent(%q) = %q, want %q", tt.branch, got, tt.want)
			}
		})
	}
}

func TestDetectModules(t *testing.T) {
	changed := []string{"src/auth/login.ts", "src/auth/session.ts", "docs/api.md"}
	staged := []string{"internal/config/config.go", "src/util/fmt.ts"}

	got := detectModules(changed, staged)
	want := []string{"src", "docs", "internal"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("detectModules = %v, want %v", got, want)
	}

	if mods := detectModules(nil, nil); mods != nil {
		t.Errorf("detectModules(nil, nil) = %v, want nil", mods)
	}
}

func TestHasChangedNormalizesPaths(t *testing.T) {
	s := &Snapshot{
		ChangedFiles: []string{"src/auth/login.ts"},
		StagedFiles:  []string{"./src/auth/session.ts"},
	}

	if !s.HasChanged("./src/auth/login.ts") {
		t.Error("dot-prefixed path should match changed file")
	}
	if s.HasChanged("src/auth/other.ts") {
		t.Error("unrelated path reported as changed")
	}
	if !s.HasStaged("src/auth/session.ts") {
		t.Error("normalized staged path should match")
	}
}

func TestEmpty(t *testing.T) {
	s := Empty()
	if s.GitAvailable {
		t.Error("empty snapshot reports git available")
	}
	if s.DetectedIntent != IntentGeneral {
		t.Errorf("intent = %q, want general", s.DetectedIntent)
	}
	if s.HasChanged("anything") || s.HasStaged("anything") {
		t.Error("empty snapshot matched a path")
	}
}

func TestCaptureOutsideRepo(t *testing.T) {
	s := Capture(t.TempDir())
	if s.GitAvailable {
		t.Skip("temp dir unexpectedly inside a git repository")
	}
	if s.DetectedIntent != IntentGeneral {
		t.Errorf("intent = %q, want general fallback", s.DetectedIntent)
	}
	if len(s.ChangedFiles) != 0 || len(s.StagedFiles) != 0 {
		t.Error("degraded snapshot carries file signals")
	}
}
