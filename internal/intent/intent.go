// Package intent classifies task intent from context text and queries.
// The classified intent selects pruning strategy and type weighting.
package intent

import (
	"regexp"
	"strings"

	"ctxgov/internal/unit"
)

// Known intents. Generic is the zero-signal fallback.
const (
	CodeGeneration = "code_generation"
	Debugging      = "debugging"
	Explanation    = "explanation"
	Search         = "search"
	Planning       = "planning"
	Review         = "review"
	Generic        = "generic"
)

// analysisPrefix bounds how much combined text the classifier scans.
const analysisPrefix = 5000

// definition describes one intent's detection signals. Definitions are held
// in a fixed-order slice so max-score ties always resolve to the first
// declared intent.
type definition struct {
	name        string
	keywords    []string
	patterns    []*regexp.Regexp
	description string
}

var definitions = []definition{
	{
		name:        CodeGeneration,
		keywords:    []string{"implement", "create", "build", "write", "generate", "add", "new"},
		patterns:    compile(`implement\s+\w+`, `create\s+a\s+\w+`, `write\s+code`),
		description: "Creating new code or features",
	},
	{
		name:        Debugging,
		keywords:    []string{"error", "bug", "fix", "issue", "broken", "crash", "fail", "debug"},
		patterns:    compile(`error\s*:`, `traceback`, `exception`, `why\s+.*\s+not\s+working`),
		description: "Debugging and error resolution",
	},
	{
		name:        Explanation,
		keywords:    []string{"explain", "what", "how", "why", "understand", "describe", "tell"},
		patterns:    compile(`what\s+is\s+\w+`, `how\s+does\s+\w+`, `explain\s+\w+`),
		description: "Understanding and explanation",
	},
	{
		name:        Search,
		keywords:    []string{"find", "search", "locate", "where", "grep", "look"},
		patterns:    compile(`find\s+\w+`, `where\s+is\s+\w+`, `search\s+for`),
		description: "Finding code or information",
	},
	{
		name:        Planning,
		keywords:    []string{"plan", "design", "architect", "structure", "organize", "approach"},
		patterns:    compile(`how\s+should\s+i`, `best\s+approach`, `plan\s+to`),
		description: "Planning and design",
	},
	{
		name:        Review,
		keywords:    []string{"review", "check", "audit", "analyze", "improve", "refactor"},
		patterns:    compile(`review\s+\w+`, `check\s+\w+`, `improve\s+\w+`),
		description: "Code review and improvement",
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// strategies maps each intent to the context types it prioritizes, in order.
var strategies = map[string][]string{
	CodeGeneration: {unit.TypeFile, unit.TypeReference, unit.TypeSystem},
	Debugging:      {unit.TypeError, unit.TypeMessage, unit.TypeFile, unit.TypeToolOutput},
	Explanation:    {unit.TypeFile, unit.TypeReference, unit.TypeMessage},
	Search:         {unit.TypeFile, unit.TypeReference, unit.TypeToolOutput},
	Planning:       {unit.TypeMessage, unit.TypeSystem, unit.TypeReference},
	Review:         {unit.TypeFile, unit.TypeMessage, unit.TypeHistory},
	Generic:        {unit.TypeMessage, unit.TypeFile, unit.TypeSystem},
}

// Result is the outcome of a classification.
type Result struct {
	Intent     string             `json:"intent"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
	Strategy   []string           `json:"strategy"`
}

// Classifier scores text against the static intent table. It is stateless
// and safe for concurrent use.
type Classifier struct{}

// NewClassifier creates an intent classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify determines the task intent from content and an optional query.
// Keyword hits score 1.0, pattern hits 2.0; ties break toward the first
// declared intent. Zero signal everywhere yields generic at confidence 0.5.
func (c *Classifier) Classify(content string, query string) Result {
	text := query + " " + truncate(content, analysisPrefix)
	textLower := strings.ToLower(text)

	scores := make(map[string]float64, len(definitions))
	best := ""
	bestScore := 0.0
	total := 0.0

	for _, def := range definitions {
		score := 0.0
		for _, kw := range def.keywords {
			if strings.Contains(textLower, kw) {
				score += 1.0
			}
		}
		for _, p := range def.patterns {
			if p.MatchString(textLower) {
				score += 2.0
			}
		}
		scores[def.name] = score
		total += score
		// Strictly greater: the first intent in table order wins ties.
		if score > bestScore {
			bestScore = score
			best = def.name
		}
	}

	if bestScore == 0 {
		return Result{
			Intent:     Generic,
			Confidence: 0.5,
			Scores:     scores,
			Strategy:   strategies[Generic],
		}
	}

	confidence := bestScore/maxFloat(5, total) + 0.3
	if confidence > 0.95 {
		confidence = 0.95
	}

	return Result{
		Intent:     best,
		Confidence: round2(confidence),
		Scores:     scores,
		Strategy:   strategies[best],
	}
}

// PriorityWeights returns type weight multipliers for the given intent,
// combining base type weights with intent-specific boosts.
func PriorityWeights(intentName string) map[string]float64 {
	base := map[string]float64{
		unit.TypeSystem:     1.0,
		unit.TypeMessage:    1.0,
		unit.TypeFile:       0.8,
		unit.TypeError:      0.7,
		unit.TypeToolOutput: 0.7,
		unit.TypeReference:  0.5,
		unit.TypeHistory:    0.3,
	}

	boosts := map[string]map[string]float64{
		CodeGeneration: {unit.TypeFile: 1.3, unit.TypeReference: 1.2},
		Debugging:      {unit.TypeError: 1.5, unit.TypeToolOutput: 1.3, unit.TypeFile: 1.1},
		Explanation:    {unit.TypeFile: 1.2, unit.TypeReference: 1.3},
		Search:         {unit.TypeFile: 1.4, unit.TypeToolOutput: 1.2},
		Planning:       {unit.TypeReference: 1.3, unit.TypeHistory: 0.5},
		Review:         {unit.TypeFile: 1.3, unit.TypeHistory: 1.1},
	}

	intentBoosts := boosts[intentName]
	weights := make(map[string]float64, len(base))
	for t, w := range base {
		boost, ok := intentBoosts[t]
		if !ok {
			boost = 1.0
		}
		weights[t] = w * boost
	}
	return weights
}

// KnownIntents returns valid intent names in declaration order.
func KnownIntents() []string {
	names := make([]string, 0, len(definitions)+1)
	for _, def := range definitions {
		names = append(names, def.name)
	}
	return append(names, Generic)
}

// IsKnown reports whether name is a recognized intent.
func IsKnown(name string) bool {
	for _, n := range KnownIntents() {
		if n == name {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
