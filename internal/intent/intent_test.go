package intent

import (
	"math"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		want    string
	}{
		{"debugging from error text", "TypeError: cannot read property\ntraceback follows", "", Debugging},
		{"code generation", "", "implement a cache decorator for the client", CodeGeneration},
		{"explanation", "", "what is the difference between these two functions", Explanation},
		{"search", "", "where is the retry logic defined", Search},
		{"planning", "", "how should i structure the migration, best approach", Planning},
		{"review", "", "review this diff and improve readability", Review},
		{"zero signal falls back to generic", "zzz qqq", "", Generic},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.content, tt.query)
			if result.Intent != tt.want {
				t.Errorf("intent = %q, want %q (scores %v)", result.Intent, tt.want, result.Scores)
			}
			if len(result.Strategy) == 0 {
				t.Error("strategy is empty")
			}
		})
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	c := NewClassifier()

	generic := c.Classify("nothing matches here zzz", "")
	if generic.Confidence != 0.5 {
		t.Errorf("generic confidence = %v, want 0.5", generic.Confidence)
	}

	strong := c.Classify(strings.Repeat("error: bug fix crash fail debug traceback exception ", 5), "")
	if strong.Confidence < 0.3 || strong.Confidence > 0.95 {
		t.Errorf("confidence = %v, want within (0.3, 0.95]", strong.Confidence)
	}
}

func TestClassifyQueryOutweighsContent(t *testing.T) {
	c := NewClassifier()
	// A short debugging query should beat weak generation signal in content.
	result := c.Classify("some new module", "fix the error: crash in startup, debug the traceback")
	if result.Intent != Debugging {
		t.Errorf("intent = %q, want debugging", result.Intent)
	}
}

func TestClassifyTruncatesLongContent(t *testing.T) {
	c := NewClassifier()
	// Signal beyond the analysis prefix must not influence the result.
	content := strings.Repeat("x", analysisPrefix) + " error: traceback exception crash"
	result := c.Classify(content, "")
	if result.Intent != Generic {
		t.Errorf("intent = %q, want generic when signal is past the prefix", result.Intent)
	}
}

func TestPriorityWeights(t *testing.T) {
	debugging := PriorityWeights(Debugging)
	if got := debugging["error"]; math.Abs(got-1.05) > 1e-9 {
		t.Errorf("debugging error weight = %v, want 1.05", got)
	}
	if got := debugging["message"]; got != 1.0 {
		t.Errorf("debugging message weight = %v, want 1.0", got)
	}

	generic := PriorityWeights(Generic)
	if got := generic["file"]; got != 0.8 {
		t.Errorf("generic file weight = %v, want base 0.8", got)
	}
}

func TestKnownIntents(t *testing.T) {
	names := KnownIntents()
	if len(names) != 7 {
		t.Fatalf("got %d intents, want 7", len(names))
	}
	if names[len(names)-1] != Generic {
		t.Errorf("last intent = %q, want generic", names[len(names)-1])
	}
	for _, name := range names {
		if !IsKnown(name) {
			t.Errorf("IsKnown(%q) = false", name)
		}
	}
	if IsKnown("nonsense") {
		t.Error("IsKnown(nonsense) = true")
	}
}
