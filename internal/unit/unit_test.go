package unit

import "testing"

func intPtr(n int) *int { return &n }

func TestNormalize(t *testing.T) {
	raw := []RawUnit{
		{ID: "a", Type: "file", Content: "x", Path: "src/a.go", Priority: intPtr(80), Tokens: intPtr(10)},
		{Content: "no id or type"},
		{ID: "c", Type: "file", FilePath: "src/c.go"},
		{ID: "d", Priority: intPtr(150)},
		{ID: "e", Priority: intPtr(-5)},
		{ID: "f", Tokens: intPtr(-1)},
	}

	units := Normalize(raw)
	if len(units) != 6 {
		t.Fatalf("got %d units, want 6", len(units))
	}

	if units[0].ID != "a" || units[0].Priority != 80 || units[0].Tokens != 10 {
		t.Errorf("explicit fields not preserved: %+v", units[0])
	}
	if units[1].ID != "unit_1" {
		t.Errorf("missing id = %q, want unit_1", units[1].ID)
	}
	if units[1].Type != TypeUnknown {
		t.Errorf("missing type = %q, want unknown", units[1].Type)
	}
	if units[1].Priority != DefaultPriority {
		t.Errorf("missing priority = %d, want %d", units[1].Priority, DefaultPriority)
	}
	if units[2].Path != "src/c.go" {
		t.Errorf("file_path alias not applied: %q", units[2].Path)
	}
	if units[3].Priority != 100 || units[4].Priority != 0 {
		t.Errorf("priority not clamped: %d, %d", units[3].Priority, units[4].Priority)
	}
	if units[5].Tokens != 0 {
		t.Errorf("negative tokens = %d, want 0", units[5].Tokens)
	}
}

func TestIsFileLike(t *testing.T) {
	tests := []struct {
		unitType string
		want     bool
	}{
		{TypeSystem, false},
		{TypeMessage, false},
		{TypeInstruction, false},
		{TypeError, false},
		{TypeFile, true},
		{TypeReference, true},
		{TypeHistory, true},
		{TypeUnknown, true},
	}
	for _, tt := range tests {
		u := &ContextUnit{Type: tt.unitType}
		if got := u.IsFileLike(); got != tt.want {
			t.Errorf("IsFileLike(%s) = %v, want %v", tt.unitType, got, tt.want)
		}
	}
}

func TestPathOrID(t *testing.T) {
	withPath := &ContextUnit{ID: "u1", Path: "src/main.go"}
	if got := withPath.PathOrID(); got != "src/main.go" {
		t.Errorf("PathOrID = %q, want path", got)
	}
	withoutPath := &ContextUnit{ID: "node_modules/pkg/index.js"}
	if got := withoutPath.PathOrID(); got != "node_modules/pkg/index.js" {
		t.Errorf("PathOrID = %q, want id fallback", got)
	}
}

func TestTotalTokens(t *testing.T) {
	units := []*ContextUnit{{Tokens: 10}, {Tokens: 0}, {Tokens: 25}}
	if got := TotalTokens(units); got != 35 {
		t.Errorf("TotalTokens = %d, want 35", got)
	}
	if got := TotalTokens(nil); got != 0 {
		t.Errorf("TotalTokens(nil) = %d, want 0", got)
	}
}
