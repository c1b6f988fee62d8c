package paths

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/auth/login.ts", "src/auth/login.ts"},
		{"./src/auth/login.ts", "src/auth/login.ts"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext("src/Main.GO"); got != ".go" {
		t.Errorf("Ext = %q, want .go", got)
	}
	if got := Ext("Makefile"); got != "" {
		t.Errorf("Ext = %q, want empty", got)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/auth/login.ts", "login"},
		{"README.md", "README"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDir(t *testing.T) {
	if got := Dir("src/auth/login.ts"); got != "src/auth" {
		t.Errorf("Dir = %q, want src/auth", got)
	}
	if got := Dir("login.ts"); got != "." {
		t.Errorf("Dir = %q, want .", got)
	}
}

func TestParts(t *testing.T) {
	got := Parts("src/auth/login.ts")
	want := []string{"src", "auth", "login.ts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parts = %v, want %v", got, want)
	}
	if parts := Parts(""); parts != nil {
		t.Errorf("Parts(\"\") = %v, want nil", parts)
	}
}

func TestTopLevel(t *testing.T) {
	if got := TopLevel("src/auth/login.ts"); got != "src" {
		t.Errorf("TopLevel = %q, want src", got)
	}
	if got := TopLevel("README.md"); got != "" {
		t.Errorf("TopLevel = %q, want empty for bare file", got)
	}
}
