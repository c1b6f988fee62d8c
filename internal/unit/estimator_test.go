package unit

import (
	"strings"
	"testing"
)

func TestEstimate(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name        string
		content     string
		contentType string
		want        int
	}{
		{"empty content", "", "code", 0},
		{"code ratio", strings.Repeat("x", 350), "code", 100},
		{"prose ratio", strings.Repeat("x", 400), "prose", 100},
		{"json ratio", strings.Repeat("x", 300), "json", 100},
		{"unknown type uses default", strings.Repeat("x", 400), "nonsense", 100},
		{"short content floors at one", "ab", "prose", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Estimate(tt.content, tt.contentType); got != tt.want {
				t.Errorf("Estimate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateUnit(t *testing.T) {
	e := NewEstimator()

	provided := &ContextUnit{Type: TypeFile, Content: strings.Repeat("x", 1000), Tokens: 42}
	e.EstimateUnit(provided)
	if provided.Tokens != 42 {
		t.Errorf("caller-supplied count overwritten: %d", provided.Tokens)
	}

	missing := &ContextUnit{Type: TypeFile, Content: strings.Repeat("x", 350)}
	e.EstimateUnit(missing)
	if missing.Tokens != 100 {
		t.Errorf("file estimate = %d, want 100 (code ratio)", missing.Tokens)
	}

	unknownType := &ContextUnit{Type: "mystery", Content: strings.Repeat("x", 400)}
	e.EstimateUnit(unknownType)
	if unknownType.Tokens != 100 {
		t.Errorf("unknown type estimate = %d, want 100 (default ratio)", unknownType.Tokens)
	}
}

func TestEstimateBatch(t *testing.T) {
	e := NewEstimator()
	units := []*ContextUnit{
		{Type: TypeMessage, Content: strings.Repeat("x", 400)},
		{Type: TypeFile, Content: "y", Tokens: 7},
	}
	e.EstimateBatch(units)
	if units[0].Tokens != 100 {
		t.Errorf("batch estimate = %d, want 100", units[0].Tokens)
	}
	if units[1].Tokens != 7 {
		t.Errorf("batch overwrote supplied count: %d", units[1].Tokens)
	}
}
