package governor

import (
	"errors"
	"strings"
	"testing"

	goverrors "ctxgov/internal/errors"
	"ctxgov/internal/logging"
	"ctxgov/internal/unit"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
}

func testUnits() []*unit.ContextUnit {
	return []*unit.ContextUnit{
		{ID: "system", Type: unit.TypeSystem, Content: "You are a helpful coding assistant.", Priority: 100, Tokens: 100},
		{ID: "user_request", Type: unit.TypeMessage, Content: "Help me implement a cache decorator.", Priority: 95, Tokens: 80},
		{ID: "example_file", Type: unit.TypeFile, Content: "def example():\n    pass\n", Path: "src/example.py", Priority: 50, Tokens: 120},
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.UseRelevanceScoring = false
	opts.ProjectRoot = ""
	return opts
}

func TestCreatePlanWithinBudget(t *testing.T) {
	engine := New(testLogger())
	opts := testOptions()
	opts.Budget = 5000

	plan, err := engine.CreatePlan(testUnits(), opts)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	if plan.PlanID == "" || len(plan.PlanID) != 8 {
		t.Errorf("plan id = %q, want 8 chars", plan.PlanID)
	}
	if plan.Version != PlanVersion {
		t.Errorf("version = %q, want %q", plan.Version, PlanVersion)
	}
	if plan.Fingerprint == "" {
		t.Error("fingerprint is empty")
	}

	alloc := plan.Recommendations.BudgetAllocation
	if alloc.SystemPrompt != SystemReserve {
		t.Errorf("system reserve = %d, want %d", alloc.SystemPrompt, SystemReserve)
	}
	if alloc.ResponseReserve != 1000 {
		t.Errorf("response reserve = %d, want 1000 (20%% of 5000)", alloc.ResponseReserve)
	}
	if alloc.Context != 5000-1000-SystemReserve {
		t.Errorf("context budget = %d, want %d", alloc.Context, 5000-1000-SystemReserve)
	}

	if len(plan.OptimizedContext) != 3 {
		t.Fatalf("got %d optimized units, want 3", len(plan.OptimizedContext))
	}
	for _, o := range plan.OptimizedContext {
		if o.Action != "keep" {
			t.Errorf("unit %q action = %q, want keep within budget", o.ID, o.Action)
		}
	}
	if plan.Statistics.TokensSaved != 0 {
		t.Errorf("tokens saved = %d, want 0", plan.Statistics.TokensSaved)
	}
	if !plan.QualityAssurance.QualityPreserved {
		t.Error("quality preserved = false")
	}
	if !plan.Validation.WithinBudget {
		t.Error("within budget = false")
	}
}

func TestCreatePlanEstimatesMissingTokens(t *testing.T) {
	engine := New(testLogger())
	units := []*unit.ContextUnit{
		{ID: "a", Type: unit.TypeMessage, Content: strings.Repeat("hello world ", 50), Priority: 90},
	}

	plan, err := engine.CreatePlan(units, testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Statistics.InputTokens == 0 {
		t.Error("input tokens = 0, want estimated tokens for unit without a count")
	}
}

func TestCreatePlanFiltersPackages(t *testing.T) {
	engine := New(testLogger())
	units := append(testUnits(), &unit.ContextUnit{
		ID: "dep", Type: unit.TypeFile, Path: "node_modules/lodash/lodash.js",
		Content: "lodash", Priority: 40, Tokens: 5000,
	})

	plan, err := engine.CreatePlan(units, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	pf := plan.InputSummary.PackagesFiltered
	if pf == nil || pf.Count != 1 {
		t.Fatalf("packages filtered = %+v, want count 1", pf)
	}
	if pf.TokensSaved != 5000 {
		t.Errorf("filter tokens saved = %d, want 5000", pf.TokensSaved)
	}
	for _, o := range plan.OptimizedContext {
		if o.ID == "dep" {
			t.Error("filtered unit appeared in optimized context")
		}
	}
	if plan.InputSummary.PreFilterTotalTokens <= plan.InputSummary.TotalTokens {
		t.Error("pre-filter total should exceed post-filter total")
	}
}

func TestCreatePlanHardCapUnderPressure(t *testing.T) {
	engine := New(testLogger())
	units := []*unit.ContextUnit{
		{ID: "sys", Type: unit.TypeSystem, Priority: 100, Tokens: 100, Content: "system"},
		{ID: "msg", Type: unit.TypeMessage, Priority: 90, Tokens: 80, Content: "message"},
		{ID: "hist", Type: unit.TypeHistory, Priority: 10, Tokens: 1000, Content: "history"},
	}
	opts := testOptions()
	// contextBudget = 2000 - 400 - 500 = 1100; total 1180 forces pruning.
	opts.Budget = 2000
	opts.Intent = "generic"
	opts.UseTieredArchitecture = false

	plan, err := engine.CreatePlan(units, opts)
	if err != nil {
		t.Fatal(err)
	}

	if plan.Statistics.OutputTokens < int(float64(1180)*0.60) {
		t.Errorf("output tokens = %d, cumulative reduction exceeded the 40%% cap", plan.Statistics.OutputTokens)
	}
	if !plan.QualityAssurance.QualityPreserved {
		t.Error("quality preserved = false under cap enforcement")
	}
}

func TestCreatePlanExplicitIntentSkipsClassification(t *testing.T) {
	engine := New(testLogger())
	opts := testOptions()
	opts.Intent = "debugging"

	plan, err := engine.CreatePlan(testUnits(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Constraints.Intent != "debugging" {
		t.Errorf("intent = %q, want debugging", plan.Constraints.Intent)
	}
	if plan.Explainability.IntentConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 for explicit intent", plan.Explainability.IntentConfidence)
	}
}

func TestCreatePlanControlVariantDisablesPruning(t *testing.T) {
	engine := New(testLogger())
	units := []*unit.ContextUnit{
		{ID: "sys", Type: unit.TypeSystem, Priority: 100, Tokens: 100, Content: "s"},
		{ID: "hist", Type: unit.TypeHistory, Priority: 10, Tokens: 3000, Content: "h"},
	}
	opts := testOptions()
	opts.Budget = 2000
	opts.ApplyPruning = false
	opts.ExperimentID = "exp-1"
	opts.ExperimentVariant = VariantControl

	plan, err := engine.CreatePlan(units, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range plan.OptimizedContext {
		if o.Action != "keep" {
			t.Errorf("unit %q action = %q, want keep in control variant", o.ID, o.Action)
		}
	}
	found := false
	for _, w := range plan.Warnings {
		if strings.Contains(w, "control variant") {
			found = true
		}
	}
	if !found {
		t.Errorf("want control-variant warning, got %v", plan.Warnings)
	}
	if !plan.Experiment.Enabled || plan.Experiment.Variant != VariantControl {
		t.Errorf("experiment section = %+v", plan.Experiment)
	}
}

func TestParseInput(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		units, err := ParseInput([]byte(`[{"id":"a","type":"file","content":"x","tokens":10}]`))
		if err != nil {
			t.Fatal(err)
		}
		if len(units) != 1 || units[0].ID != "a" {
			t.Fatalf("units = %+v", units)
		}
	})

	t.Run("wrapped object", func(t *testing.T) {
		units, err := ParseInput([]byte(`{"context_units":[{"id":"a","type":"file"}]}`))
		if err != nil {
			t.Fatal(err)
		}
		if len(units) != 1 {
			t.Fatalf("got %d units, want 1", len(units))
		}
	})

	t.Run("missing fields fail open", func(t *testing.T) {
		units, err := ParseInput([]byte(`[{"content":"orphan"}]`))
		if err != nil {
			t.Fatal(err)
		}
		if units[0].ID != "unit_0" || units[0].Type != unit.TypeUnknown {
			t.Errorf("defaults not applied: %+v", units[0])
		}
		if units[0].Priority != unit.DefaultPriority {
			t.Errorf("priority = %d, want %d", units[0].Priority, unit.DefaultPriority)
		}
	})

	t.Run("structurally invalid is a hard error", func(t *testing.T) {
		for _, input := range []string{`"just a string"`, `42`, `{"other":[]}`, `[42]`} {
			_, err := ParseInput([]byte(input))
			if err == nil {
				t.Errorf("ParseInput(%s) = nil error, want InputInvalid", input)
				continue
			}
			var govErr *goverrors.GovError
			if !errors.As(err, &govErr) || govErr.Code != goverrors.InputInvalid {
				t.Errorf("ParseInput(%s) error = %v, want InputInvalid code", input, err)
			}
		}
	})
}

func TestResolveVariant(t *testing.T) {
	if got := ResolveVariant("", VariantAuto, "key"); got != VariantOptimized {
		t.Errorf("no experiment = %q, want optimized", got)
	}
	if got := ResolveVariant("exp", VariantControl, ""); got != VariantControl {
		t.Errorf("explicit control = %q", got)
	}
	if got := ResolveVariant("exp", VariantOptimized, ""); got != VariantOptimized {
		t.Errorf("explicit optimized = %q", got)
	}

	// Auto assignment is deterministic for a stable key.
	first := ResolveVariant("exp", VariantAuto, "ticket-123")
	for i := 0; i < 10; i++ {
		if got := ResolveVariant("exp", VariantAuto, "ticket-123"); got != first {
			t.Fatal("auto assignment not deterministic for a stable key")
		}
	}
}

func TestSessionHygieneBands(t *testing.T) {
	tests := []struct {
		name         string
		messageCount int
		inputTokens  int
		budget       int
		want         string
	}{
		{"low pressure", 5, 100, 1000, "continue"},
		{"prepare at 35 percent", 5, 350, 1000, "prepare_checkpoint"},
		{"prepare at 25 messages", 25, 100, 1000, "prepare_checkpoint"},
		{"compact at 50 percent", 5, 500, 1000, "checkpoint_then_compact"},
		{"compact at 35 messages", 35, 100, 1000, "checkpoint_then_compact"},
		{"immediate at 80 percent", 5, 800, 1000, "checkpoint_then_compact_immediately"},
		{"immediate at 55 messages", 55, 100, 1000, "checkpoint_then_compact_immediately"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := sessionHygiene(tt.messageCount, tt.inputTokens, tt.inputTokens, tt.budget)
			if h.RecommendedAction != tt.want {
				t.Errorf("action = %q, want %q", h.RecommendedAction, tt.want)
			}
			if len(h.Playbook) == 0 {
				t.Error("playbook is empty")
			}
		})
	}
}

func TestDecisionFingerprintDeterministic(t *testing.T) {
	optimized := []OptimizedUnit{
		{ID: "a", Type: "file", Action: "keep", OriginalTokens: 10, Tokens: 10, Priority: 50, Reason: "r"},
		{ID: "b", Type: "history", Action: "prune", OriginalTokens: 20, Tokens: 0, Priority: 10, Reason: "r2"},
	}

	first, err := decisionFingerprint(optimized)
	if err != nil {
		t.Fatal(err)
	}
	again, err := decisionFingerprint(optimized)
	if err != nil {
		t.Fatal(err)
	}
	if first != again {
		t.Errorf("fingerprints differ: %q vs %q", first, again)
	}

	optimized[1].Tokens = 5
	changed, err := decisionFingerprint(optimized)
	if err != nil {
		t.Fatal(err)
	}
	if changed == first {
		t.Error("fingerprint unchanged after decision change")
	}
}
