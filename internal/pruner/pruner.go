// Package pruner decides, for every context unit, whether to keep it
// verbatim, summarize it, or drop it, under a token budget.
//
// The pruner is built to never degrade output quality for the sake of strict
// budget compliance: protected content is never reduced, uncertain content is
// kept, and cumulative reduction is hard-capped at 40% of the input — a plan
// may legitimately exceed its budget when the alternative is quality loss.
package pruner

import (
	"fmt"
	"sort"
	"strings"

	"ctxgov/internal/intent"
	"ctxgov/internal/unit"
)

// Priority thresholds for pruning decisions.
const (
	PriorityCritical  = 90
	PriorityImportant = 70
	PriorityNormal    = 50
	PriorityLow       = 30
)

// MaxPruneRatio caps cumulative reduction at 40% of total input tokens.
// Beyond this, removing context measurably hurts output quality.
const MaxPruneRatio = 0.40

// recencyWindow is how many trailing message units are always kept.
const recencyWindow = 3

// protectedTypes are never reduced under any budget pressure.
var protectedTypes = map[string]bool{
	unit.TypeSystem:      true,
	unit.TypeInstruction: true,
	unit.TypeCurrentTask: true,
}

// intentProtected lists additional protected types per task intent.
var intentProtected = map[string]map[string]bool{
	intent.Debugging:      {"error": true, "traceback": true, "stack_trace": true, "exception": true},
	intent.CodeGeneration: {"specification": true, "requirements": true, "interface": true},
	intent.Explanation:    {"question": true, "query": true},
	intent.Review:         {"code": true, "diff": true, "changes": true},
}

// Pruning strategies by required reduction ratio.
const (
	StrategyNone                   = "none"
	StrategyMinimal                = "minimal"
	StrategyLight                  = "light"
	StrategyModerate               = "moderate"
	StrategyConservativeAggressive = "conservative_aggressive"
)

// Quality impact verdicts.
const (
	QualityNone        = "none"
	QualityMinimal     = "minimal"
	QualityLow         = "low"
	QualityModerate    = "moderate"
	QualitySignificant = "significant"
)

// Result is the outcome of a pruning pass.
type Result struct {
	Decisions          []unit.Decision `json:"decisions"`
	Strategy           string          `json:"strategy"`
	Threshold          float64         `json:"threshold"`
	Warnings           []string        `json:"warnings"`
	QualityImpact      string          `json:"quality_impact"`
	ActualReductionPct float64         `json:"actual_reduction_percentage"`
	QualityPreserved   bool            `json:"quality_preserved"`
}

// scoredUnit is the ephemeral per-call scoring record. Never mutated after
// creation.
type scoredUnit struct {
	unit       *unit.ContextUnit
	score      float64
	inputIndex int
}

// Pruner prunes context units based on budget and intent. Stateless; one
// instance may serve concurrent planning calls.
type Pruner struct{}

// New creates a Pruner.
func New() *Pruner {
	return &Pruner{}
}

// IsProtected reports whether the unit at input position index (of total
// units, under the given intent) is exempt from any token reduction, and why.
// Protection covers: universally protected types, intent-protected types,
// critical priority (>= 90), and the trailing message recency window.
func IsProtected(u *unit.ContextUnit, index, total int, intentName string) (bool, string) {
	if protectedTypes[u.Type] {
		return true, fmt.Sprintf("Protected (%s) - essential for output quality", u.Type)
	}
	if intentProtected[intentName][u.Type] {
		return true, fmt.Sprintf("Protected (%s) - essential for output quality", u.Type)
	}
	if u.Priority >= PriorityCritical {
		return true, fmt.Sprintf("Protected (%s) - essential for output quality", u.Type)
	}
	if isRecentMessage(u, index, total) {
		return true, "Recent message - contains current task context"
	}
	return false, ""
}

// isRecentMessage reports whether the unit is a message within the last
// recencyWindow input positions.
func isRecentMessage(u *unit.ContextUnit, index, total int) bool {
	return u.Type == unit.TypeMessage && index >= total-recencyWindow
}

// ProtectedTokens sums the tokens that can never be reduced under the given
// intent. Surfaced as a budget-infeasibility warning when it alone exceeds
// the budget.
func ProtectedTokens(units []*unit.ContextUnit, intentName string) int {
	protected := 0
	for i, u := range units {
		if ok, _ := IsProtected(u, i, len(units), intentName); ok {
			protected += u.Tokens
		}
	}
	return protected
}

// Prune decides an action for every unit under the budget. Decisions are
// returned in score-descending order (stable on input order) and always
// cover every input unit.
func (p *Pruner) Prune(units []*unit.ContextUnit, budget int, intentName string, query string) *Result {
	totalTokens := unit.TotalTokens(units)
	protectedTokens := ProtectedTokens(units, intentName)

	// Within budget: keep everything. The preferred outcome.
	if totalTokens <= budget {
		decisions := make([]unit.Decision, 0, len(units))
		for _, u := range units {
			decisions = append(decisions, unit.Decision{
				UnitID:         u.ID,
				Type:           u.Type,
				Action:         unit.ActionKeep,
				OriginalTokens: u.Tokens,
				FinalTokens:    u.Tokens,
				Priority:       u.Priority,
				Reason:         "Within budget - full quality preserved",
			})
		}
		return &Result{
			Decisions:        decisions,
			Strategy:         StrategyNone,
			Threshold:        0,
			Warnings:         []string{},
			QualityImpact:    QualityNone,
			QualityPreserved: true,
		}
	}

	scored := scoreUnits(units, intentName, query)

	reductionNeeded := totalTokens - budget
	reductionRatio := float64(reductionNeeded) / float64(totalTokens)
	maxAllowedReduction := float64(totalTokens) * MaxPruneRatio

	var warnings []string
	if float64(reductionNeeded) > maxAllowedReduction {
		warnings = append(warnings, fmt.Sprintf(
			"Requested %.0f%% reduction exceeds safe limit of %.0f%%; output quality will be preserved by keeping more context than budget allows",
			reductionRatio*100, MaxPruneRatio*100))
	}
	if protectedTokens > budget {
		warnings = append(warnings, fmt.Sprintf(
			"Protected context (%d tokens) exceeds budget (%d); cannot prune without risking output quality, recommend increasing budget",
			protectedTokens, budget))
	}

	var strategy string
	var threshold float64
	switch {
	case reductionRatio < 0.15:
		strategy, threshold = StrategyMinimal, 0.15
	case reductionRatio < 0.30:
		strategy, threshold = StrategyLight, 0.25
	case reductionRatio < 0.40:
		strategy, threshold = StrategyModerate, 0.35
	default:
		strategy, threshold = StrategyConservativeAggressive, 0.45
		warnings = append(warnings,
			"High reduction required - using conservative aggressive strategy to preserve essential context")
	}

	// Rank by score, descending; stable so ties preserve input order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	decisions := make([]unit.Decision, 0, len(scored))
	runningTokens := 0
	removedTokens := 0

	for _, su := range scored {
		u := su.unit
		tokens := u.Tokens

		var action unit.Action
		var finalTokens int
		var reason string

		protected, protectedReason := IsProtected(u, su.inputIndex, len(units), intentName)
		recentMsg := isRecentMessage(u, su.inputIndex, len(units))

		switch {
		// Rule 1/2: protected content (including recent messages) is never reduced.
		case protected && !recentMsg:
			action, finalTokens = unit.ActionKeep, tokens
			reason = protectedReason
		case recentMsg:
			action, finalTokens = unit.ActionKeep, tokens
			reason = "Recent message - contains current task context"

		// Rule 3: fits within remaining budget.
		case runningTokens+tokens <= budget:
			action, finalTokens = unit.ActionKeep, tokens
			reason = fmt.Sprintf("Score %.2f - within budget, quality preserved", su.score)

		// Rule 4: high value kept even slightly over budget.
		case su.score >= 0.7 && float64(runningTokens) < float64(budget)*0.95:
			action, finalTokens = unit.ActionKeep, tokens
			reason = fmt.Sprintf("High value (score %.2f) - kept for quality", su.score)
			if runningTokens+tokens > budget {
				warnings = append(warnings, fmt.Sprintf(
					"Kept high-value unit %q to preserve output quality", u.ID))
			}

		// Rule 5: large, moderately valuable content is summarized, not dropped.
		case tokens > 800 && su.score >= 0.4:
			action = unit.ActionSummarize
			finalTokens = summaryTokens(tokens)
			reason = fmt.Sprintf("Summarized to preserve key information (%d->%d)", tokens, finalTokens)

		// Rule 6: only clearly low-value content is pruned.
		case su.score < threshold && u.Priority < PriorityNormal:
			action, finalTokens = unit.ActionPrune, 0
			reason = fmt.Sprintf("Low value (score %.2f) - safe to prune", su.score)

		// Fail-safe default: uncertain value is kept.
		default:
			action, finalTokens = unit.ActionKeep, tokens
			reason = "Kept by default - uncertain value, preserving quality"
		}

		// Hard cap: the quality guarantee is enforced, not advisory. A
		// decision that would push cumulative removal past the cap is
		// downgraded - even an explicit prune.
		desiredRemoved := tokens - finalTokens
		if desiredRemoved < 0 {
			desiredRemoved = 0
		}
		remainingAllowance := int(maxAllowedReduction) - removedTokens
		if remainingAllowance < 0 {
			remainingAllowance = 0
		}
		if desiredRemoved > remainingAllowance {
			if remainingAllowance <= 0 {
				action, finalTokens = unit.ActionKeep, tokens
				reason = fmt.Sprintf("Kept to enforce max prune cap (%.0f%%)", MaxPruneRatio*100)
			} else {
				adjusted := tokens - remainingAllowance
				if adjusted < 0 {
					adjusted = 0
				}
				if adjusted < tokens {
					action = unit.ActionSummarize
				} else {
					action = unit.ActionKeep
				}
				finalTokens = adjusted
				reason = fmt.Sprintf("Adjusted to enforce max prune cap (%d->%d)", tokens, finalTokens)
			}
			desiredRemoved = tokens - finalTokens
		}

		if action != unit.ActionPrune {
			runningTokens += finalTokens
		}
		removedTokens += desiredRemoved

		decisions = append(decisions, unit.Decision{
			UnitID:         u.ID,
			Type:           u.Type,
			Action:         action,
			OriginalTokens: tokens,
			FinalTokens:    finalTokens,
			Priority:       u.Priority,
			Score:          round2(su.score),
			Reason:         reason,
		})
	}

	finalTotal := 0
	prunedCount := 0
	allPrunedLowPriority := true
	for _, d := range decisions {
		finalTotal += d.FinalTokens
		if d.Action == unit.ActionPrune {
			prunedCount++
			if d.Priority >= PriorityLow {
				allPrunedLowPriority = false
			}
		}
	}

	actualReduction := 0.0
	if totalTokens > 0 {
		actualReduction = float64(totalTokens-finalTotal) / float64(totalTokens)
	}

	var qualityImpact string
	switch {
	case actualReduction == 0:
		qualityImpact = QualityNone
	case prunedCount <= 2 && allPrunedLowPriority:
		qualityImpact = QualityMinimal
	case actualReduction < 0.25:
		qualityImpact = QualityLow
	case actualReduction <= MaxPruneRatio:
		qualityImpact = QualityModerate
		warnings = append(warnings, "Moderate pruning applied - review output for completeness")
	default:
		qualityImpact = QualitySignificant
		warnings = append(warnings,
			"Significant context removed - consider increasing budget for better output quality")
	}

	if finalTotal > budget {
		warnings = append(warnings, fmt.Sprintf(
			"Context (%d tokens) exceeds budget (%d) to preserve output quality; this is intentional",
			finalTotal, budget))
	}

	return &Result{
		Decisions:          decisions,
		Strategy:           strategy,
		Threshold:          threshold,
		Warnings:           warnings,
		QualityImpact:      qualityImpact,
		ActualReductionPct: round1(actualReduction * 100),
		QualityPreserved:   actualReduction <= MaxPruneRatio,
	}
}

// summaryTokens is the retained size when summarizing: 40% of the original,
// capped at 600 tokens.
func summaryTokens(tokens int) int {
	reduced := int(float64(tokens) * 0.4)
	if reduced > 600 {
		return 600
	}
	return reduced
}

// scoreUnits computes the ranking score for every unit, in input order.
func scoreUnits(units []*unit.ContextUnit, intentName string, query string) []scoredUnit {
	weights := scoringWeights[intentName]

	var queryTerms []string
	if query != "" {
		queryTerms = strings.Fields(strings.ToLower(query))
	}

	scored := make([]scoredUnit, 0, len(units))
	for i, u := range units {
		baseScore := float64(u.Priority) / 100.0

		typeWeight := 1.0
		if w, ok := weights[u.Type]; ok {
			typeWeight = w
		}

		recencyBonus := float64(i+1) / float64(len(units)) * 0.1

		sizePenalty := 0.0
		if u.Tokens > 5000 {
			sizePenalty = 0.2
		} else if u.Tokens > 3000 {
			sizePenalty = 0.1
		}

		relevanceBonus := 0.0
		if len(queryTerms) > 0 && u.Content != "" {
			contentLower := strings.ToLower(u.Content)
			matches := 0
			for _, term := range queryTerms {
				if strings.Contains(contentLower, term) {
					matches++
				}
			}
			relevanceBonus = float64(matches) * 0.05
			if relevanceBonus > 0.2 {
				relevanceBonus = 0.2
			}
		}

		// Upstream relevance signal: boost high relevance, lightly penalize
		// low relevance on low-priority units.
		relevanceAdjustment := 0.0
		if u.Relevance != nil {
			relevanceAdjustment = (u.Relevance.Score - 0.5) * 0.3
			if u.Relevance.Score < 0.25 && u.Priority < PriorityNormal {
				relevanceAdjustment -= 0.05
			}
		}

		score := baseScore*typeWeight + recencyBonus + relevanceBonus + relevanceAdjustment - sizePenalty
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}

		scored = append(scored, scoredUnit{
			unit:       u,
			score:      score,
			inputIndex: i,
		})
	}
	return scored
}

// scoringWeights are the pruner's intent-specific type weights. Distinct
// from intent.PriorityWeights: these bias the ranking order, not the
// protection rules.
var scoringWeights = map[string]map[string]float64{
	intent.CodeGeneration: {unit.TypeFile: 1.2, unit.TypeReference: 1.1, unit.TypeHistory: 0.5},
	intent.Debugging:      {unit.TypeError: 1.5, unit.TypeToolOutput: 1.3, unit.TypeFile: 1.0},
	intent.Explanation:    {unit.TypeFile: 1.1, unit.TypeReference: 1.2, unit.TypeMessage: 1.0},
	intent.Search:         {unit.TypeFile: 1.3, unit.TypeToolOutput: 1.1},
	intent.Review:         {unit.TypeFile: 1.2, unit.TypeHistory: 0.8},
	intent.Generic:        {},
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
