// Package tiering partitions context into three load tiers, independent of
// any token budget:
//
//	Tier 1: critical, always loaded at session start (rules, quick start)
//	Tier 2: contextual, loaded on demand (API docs, architecture)
//	Tier 3: reference, linked and never loaded (changelogs, full specs)
package tiering

import (
	"fmt"
	"regexp"
	"strings"

	"ctxgov/internal/unit"
)

// Load conditions per tier.
const (
	LoadAlways   = "always"
	LoadOnDemand = "on_demand"
	LoadNever    = "never_load_link_only"
)

// Token budgets per tier. Tier 3 is linked, never loaded.
var tierBudgets = map[int]int{
	1: 800,
	2: 1500,
	3: 0,
}

var tier1Patterns = compileAll(
	`critical\s*rules?`,
	`never\s+do`,
	`don'?t\s+ever`,
	`important\s*:`,
	`quick\s*start`,
	`getting\s*started`,
	`emergency`,
	`troubleshoot`,
	`common\s*issues?`,
	`overview`,
	`purpose`,
)

var tier2Patterns = compileAll(
	`api\s*(reference|docs|endpoints)`,
	`database\s*(schema|docs)`,
	`deployment\s*(guide|docs)`,
	`testing\s*(guide|patterns)`,
	`configuration`,
	`architecture`,
	`components?`,
	`modules?`,
)

var tier3Patterns = compileAll(
	`changelog`,
	`history`,
	`generated\s*docs?`,
	`complete\s*(api|reference)`,
	`full\s*(documentation|specs?)`,
	`detailed\s*troubleshooting`,
	`appendix`,
	`legacy`,
)

// fileTierEntry maps filename fragments to a tier. Entries are checked in
// declaration order and take precedence over content analysis.
type fileTierEntry struct {
	tier     int
	patterns []string
}

var fileTierTable = []fileTierEntry{
	{1, []string{"CLAUDE.md", "README.md", "QUICK_REF.md"}},
	{2, []string{"API.md", "DATABASE.md", "TESTING.md", "DEPLOYMENT.md", "ARCHITECTURE.md"}},
	{3, []string{"CHANGELOG.md", "HISTORY.md", "docs/troubleshooting/", "generated/"}},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile("(?i)"+p))
	}
	return compiled
}

// Classifier assigns context units to load tiers.
type Classifier struct{}

// NewClassifier creates a tier classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyContent returns the tier (1-3) for a content block. A filename
// match decides outright; otherwise pattern hit counts are compared with the
// precedence order 1 > 3 > 2 on ties, and zero signal defaults to tier 2.
func (c *Classifier) ClassifyContent(content string, filename string) int {
	filenameLower := strings.ToLower(filename)
	for _, entry := range fileTierTable {
		for _, p := range entry.patterns {
			if strings.Contains(filenameLower, strings.ToLower(p)) {
				return entry.tier
			}
		}
	}

	tier1 := countMatches(tier1Patterns, content)
	tier2 := countMatches(tier2Patterns, content)
	tier3 := countMatches(tier3Patterns, content)

	switch {
	case tier1 > tier2 && tier1 > tier3:
		return 1
	case tier3 > tier2:
		return 3
	case tier2 > 0:
		return 2
	default:
		return 2
	}
}

func countMatches(patterns []*regexp.Regexp, content string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(content) {
			n++
		}
	}
	return n
}

// TierGroup holds the units and token total for one tier.
type TierGroup struct {
	Units         []*unit.ContextUnit `json:"units"`
	TokenCount    int                 `json:"token_count"`
	Budget        int                 `json:"budget"`
	OverBudget    bool                `json:"over_budget,omitempty"`
	LoadCondition string              `json:"load_condition"`
}

// Optimization estimates startup savings when only tier 1 loads at session
// start.
type Optimization struct {
	CurrentStartupTokens   int     `json:"current_startup_tokens"`
	OptimizedStartupTokens int     `json:"optimized_startup_tokens"`
	TokensSavedPerSession  int     `json:"tokens_saved_per_session"`
	ReductionPercentage    float64 `json:"reduction_percentage"`
}

// Result is the output of classifying a unit list.
type Result struct {
	Tier1           *TierGroup    `json:"tier_1_critical"`
	Tier2           *TierGroup    `json:"tier_2_contextual"`
	Tier3           *TierGroup    `json:"tier_3_reference"`
	Optimization    *Optimization `json:"optimization"`
	Recommendations []string      `json:"recommendations"`
}

// TierTokens returns the token count for tier n (1-3).
func (r *Result) TierTokens(n int) int {
	switch n {
	case 1:
		return r.Tier1.TokenCount
	case 2:
		return r.Tier2.TokenCount
	case 3:
		return r.Tier3.TokenCount
	}
	return 0
}

// ClassifyUnits assigns every unit a tier in place and returns grouped
// totals plus the startup optimization estimate.
func (c *Classifier) ClassifyUnits(units []*unit.ContextUnit) *Result {
	groups := map[int][]*unit.ContextUnit{1: nil, 2: nil, 3: nil}
	tokens := map[int]int{1: 0, 2: 0, 3: 0}

	for _, u := range units {
		tier := c.ClassifyContent(u.Content, u.PathOrID())
		u.Tier = tier
		groups[tier] = append(groups[tier], u)
		count := u.Tokens
		if count == 0 {
			count = len(u.Content) / 4
		}
		tokens[tier] += count
	}

	currentTotal := tokens[1] + tokens[2] + tokens[3]
	saved := currentTotal - tokens[1]
	reduction := 0.0
	if currentTotal > 0 {
		reduction = float64(saved) / float64(currentTotal) * 100
	}

	result := &Result{
		Tier1: &TierGroup{
			Units:         groups[1],
			TokenCount:    tokens[1],
			Budget:        tierBudgets[1],
			OverBudget:    tokens[1] > tierBudgets[1],
			LoadCondition: LoadAlways,
		},
		Tier2: &TierGroup{
			Units:         groups[2],
			TokenCount:    tokens[2],
			Budget:        tierBudgets[2],
			LoadCondition: LoadOnDemand,
		},
		Tier3: &TierGroup{
			Units:         groups[3],
			TokenCount:    tokens[3],
			Budget:        tierBudgets[3],
			LoadCondition: LoadNever,
		},
		Optimization: &Optimization{
			CurrentStartupTokens:   currentTotal,
			OptimizedStartupTokens: tokens[1],
			TokensSavedPerSession:  saved,
			ReductionPercentage:    round1(reduction),
		},
	}
	result.Recommendations = recommendations(result)
	return result
}

func recommendations(r *Result) []string {
	var recs []string

	if r.Tier1.OverBudget {
		over := r.Tier1.TokenCount - r.Tier1.Budget
		recs = append(recs, fmt.Sprintf(
			"Tier 1 is over budget by %d tokens (%d/%d); move detailed content to tier 2 docs and link to them",
			over, r.Tier1.TokenCount, r.Tier1.Budget))
	}

	for _, u := range r.Tier2.Units {
		if u.Tokens > 1000 {
			recs = append(recs, fmt.Sprintf(
				"%q has %d tokens; consider moving to tier 3 (reference) and linking", u.ID, u.Tokens))
		}
	}

	return recs
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
