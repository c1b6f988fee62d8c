package analyzer

import (
	"strings"
	"testing"

	"ctxgov/internal/pathfilter"
	"ctxgov/internal/unit"
)

func TestAnalyzeSummary(t *testing.T) {
	units := []*unit.ContextUnit{
		{ID: "a", Type: unit.TypeSystem, Content: "system", Priority: 100, Tokens: 100},
		{ID: "b", Type: unit.TypeFile, Content: "code", Priority: 50, Tokens: 300},
	}

	report := New(nil).Analyze(units)

	s := report.Summary
	if s.TotalUnits != 2 || s.TotalTokens != 400 {
		t.Errorf("summary = %+v, want 2 units / 400 tokens", s)
	}
	if s.AvgTokensPerUnit != 200 || s.AvgPriority != 75 {
		t.Errorf("averages = %d tokens / %d priority, want 200 / 75", s.AvgTokensPerUnit, s.AvgPriority)
	}
	if report.FilteredPackages.Message != "No package files filtered" {
		t.Errorf("filtered message = %q", report.FilteredPackages.Message)
	}
}

func TestAnalyzeUnitIssues(t *testing.T) {
	tests := []struct {
		name string
		u    *unit.ContextUnit
		want []string
	}{
		{
			"very large",
			&unit.ContextUnit{ID: "a", Type: unit.TypeFile, Content: "x", Priority: 50, Tokens: 4001},
			[]string{"very_large"},
		},
		{
			"missing token count",
			&unit.ContextUnit{ID: "b", Type: unit.TypeFile, Content: "content", Priority: 50},
			[]string{"missing_token_count"},
		},
		{
			"empty content",
			&unit.ContextUnit{ID: "c", Type: unit.TypeFile, Content: "   ", Priority: 50, Tokens: 1},
			[]string{"empty_content"},
		},
		{
			"low priority for type",
			&unit.ContextUnit{ID: "d", Type: unit.TypeMessage, Content: "hi", Priority: 40, Tokens: 5},
			[]string{"low_priority_for_type"},
		},
		{
			"clean unit",
			&unit.ContextUnit{ID: "e", Type: unit.TypeFile, Content: "ok", Priority: 50, Tokens: 10},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyses := analyzeUnits([]*unit.ContextUnit{tt.u})
			got := analyses[0].Issues
			if len(got) != len(tt.want) {
				t.Fatalf("issues = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("issue[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyzeUnknownTypeUsesFallbackProfile(t *testing.T) {
	analyses := analyzeUnits([]*unit.ContextUnit{
		{ID: "a", Type: "mystery", Content: "x", Priority: 50, Tokens: 10},
	})
	if analyses[0].BasePriority != 50 || analyses[0].MinKeepRatio != 0.2 {
		t.Errorf("fallback profile = %d/%v, want 50/0.2",
			analyses[0].BasePriority, analyses[0].MinKeepRatio)
	}
}

func TestFindDuplicates(t *testing.T) {
	content := strings.Repeat("duplicated paragraph ", 30)
	units := []*unit.ContextUnit{
		{ID: "orig", Type: unit.TypeFile, Content: content, Tokens: 150},
		{ID: "copy", Type: unit.TypeFile, Content: content, Tokens: 150},
		{ID: "other", Type: unit.TypeFile, Content: "something else entirely", Tokens: 10},
	}

	duplicates := findDuplicates(units)
	if len(duplicates) != 1 {
		t.Fatalf("got %d duplicates, want 1", len(duplicates))
	}
	d := duplicates[0]
	if d.UnitID != "copy" || d.DuplicateOf != "orig" || d.SavingsTokens != 150 {
		t.Errorf("duplicate = %+v", d)
	}
}

func TestFindOpportunities(t *testing.T) {
	units := []*unit.ContextUnit{
		{ID: "big_file", Type: unit.TypeFile, Priority: 50, Tokens: 3000},
		{ID: "old_history", Type: unit.TypeHistory, Priority: 40, Tokens: 1500},
		{ID: "junk1", Type: unit.TypeReference, Priority: 10, Tokens: 700},
		{ID: "junk2", Type: unit.TypeReference, Priority: 20, Tokens: 600},
	}

	opportunities := findOpportunities(units)

	byKind := make(map[string]Opportunity)
	for _, o := range opportunities {
		byKind[o.Opportunity] = o
	}

	if o, ok := byKind["summarize_large_file"]; !ok || o.PotentialSavings != 2500 {
		t.Errorf("summarize_large_file = %+v", o)
	}
	if o, ok := byKind["truncate_history"]; !ok || o.PotentialSavings != 1200 {
		t.Errorf("truncate_history = %+v", o)
	}
	if o, ok := byKind["prune_low_priority"]; !ok || o.PotentialSavings != 1300 {
		t.Errorf("prune_low_priority = %+v", o)
	}
}

func TestAnalyzeFiltersPackages(t *testing.T) {
	filter := pathfilter.New("", nil)
	units := []*unit.ContextUnit{
		{ID: "src/main.go", Type: unit.TypeFile, Content: "code", Priority: 50, Tokens: 100},
		{ID: "node_modules/lodash/lodash.js", Type: unit.TypeFile, Content: "lodash", Priority: 40, Tokens: 9000},
	}

	report := New(filter).Analyze(units)

	if report.FilteredPackages.Count != 1 {
		t.Fatalf("filtered count = %d, want 1", report.FilteredPackages.Count)
	}
	if report.Summary.TotalUnits != 1 {
		t.Errorf("summary units = %d, want 1 after filtering", report.Summary.TotalUnits)
	}
	if !strings.Contains(report.FilteredPackages.Message, "1 package/dependency") {
		t.Errorf("message = %q", report.FilteredPackages.Message)
	}
}

func TestTypeDistribution(t *testing.T) {
	units := []*unit.ContextUnit{
		{Type: unit.TypeFile, Tokens: 100},
		{Type: unit.TypeFile, Tokens: 200},
		{Type: unit.TypeMessage, Tokens: 50},
	}
	dist := typeDistribution(units)
	if dist["file"].Count != 2 || dist["file"].Tokens != 300 {
		t.Errorf("file stats = %+v", dist["file"])
	}
	if dist["message"].Count != 1 || dist["message"].Tokens != 50 {
		t.Errorf("message stats = %+v", dist["message"])
	}
}
