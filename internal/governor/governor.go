// Package governor orchestrates the planning pipeline: estimate, filter,
// score, tier, classify, select a model, prune under budget, and assemble
// the execution plan.
package governor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"ctxgov/internal/intent"
	"ctxgov/internal/logging"
	"ctxgov/internal/metrics"
	"ctxgov/internal/model"
	"ctxgov/internal/pathfilter"
	"ctxgov/internal/pruner"
	"ctxgov/internal/relevance"
	"ctxgov/internal/tiering"
	"ctxgov/internal/unit"
	"ctxgov/internal/workstate"
)

// Budget reserves. The system prompt reserve is fixed; the response reserve
// is a fraction of the total budget.
const (
	SystemReserve        = 500
	ResponseReserveRatio = 0.20
)

// Options configures one planning call.
type Options struct {
	Budget            int
	Intent            string // empty: auto-classify
	TargetModel       string
	Query             string
	PreferCostSavings bool

	AutoFilterPackages    bool
	UseTieredArchitecture bool
	UseRelevanceScoring   bool
	ApplyPruning          bool

	ProjectRoot   string
	CustomIgnores []string

	ExperimentID      string
	ExperimentVariant string
	AssignmentKey     string

	Catalog   *model.Catalog     // nil: default catalog
	Collector *metrics.Collector // nil: metrics disabled
}

// DefaultOptions returns the standard planning configuration.
func DefaultOptions() Options {
	return Options{
		Budget:                8000,
		TargetModel:           model.DefaultModel,
		PreferCostSavings:     true,
		AutoFilterPackages:    true,
		UseTieredArchitecture: true,
		UseRelevanceScoring:   true,
		ApplyPruning:          true,
		ExperimentVariant:     VariantOptimized,
	}
}

// Engine generates execution plans.
type Engine struct {
	logger *logging.Logger
}

// New creates a planning engine.
func New(logger *logging.Logger) *Engine {
	return &Engine{logger: logger}
}

// CreatePlan runs the full pipeline over the units and assembles a plan.
// The input slice is annotated in place (tokens, relevance, tier).
func (e *Engine) CreatePlan(units []*unit.ContextUnit, opts Options) (*ExecutionPlan, error) {
	planID := uuid.New().String()[:8]

	if opts.Collector != nil {
		opts.Collector.StartSession()
		opts.Collector.SetExperiment(opts.ExperimentID, opts.ExperimentVariant, opts.AssignmentKey)
	}

	// Estimate tokens before filtering so filtering savings are accurate.
	estimator := unit.NewEstimator()
	estimator.EstimateBatch(units)
	originalTotalTokens := unit.TotalTokens(units)

	var filteredUnits []pathfilter.FilteredUnit
	if opts.AutoFilterPackages {
		filter := pathfilter.New(opts.ProjectRoot, opts.CustomIgnores)
		units, filteredUnits = filter.FilterUnits(units)
	}
	filteredTokens := 0
	for _, fu := range filteredUnits {
		filteredTokens += fu.Unit.Tokens
	}
	totalInputTokens := unit.TotalTokens(units)

	var relevanceStats *relevance.WasteAnalysis
	if opts.UseRelevanceScoring {
		snapshot := workstate.Capture(opts.ProjectRoot)
		scorer := relevance.NewScorer(opts.ProjectRoot, snapshot)
		scorer.Annotate(units)
		relevanceStats = scorer.AnalyzeContextWaste(units)
	}

	var tierResult *tiering.Result
	if opts.UseTieredArchitecture {
		tierResult = tiering.NewClassifier().ClassifyUnits(units)
	}

	unitsByType := make(map[string]int)
	for _, u := range units {
		unitsByType[u.Type]++
	}
	messageCount := unitsByType[unit.TypeMessage] + unitsByType[unit.TypeInstruction]

	classifiedIntent := opts.Intent
	intentConfidence := 1.0
	if classifiedIntent == "" {
		var contents []string
		for _, u := range units {
			contents = append(contents, u.Content)
		}
		result := intent.NewClassifier().Classify(strings.Join(contents, " "), opts.Query)
		classifiedIntent = result.Intent
		intentConfidence = result.Confidence
	}

	selector := model.NewSelector()
	if opts.Catalog != nil {
		selector = model.NewSelectorWithCatalog(opts.Catalog)
	}
	modelRec := selector.Select(opts.TargetModel, classifiedIntent, totalInputTokens, opts.PreferCostSavings)

	responseReserve := int(float64(opts.Budget) * ResponseReserveRatio)
	contextBudget := opts.Budget - responseReserve - SystemReserve

	pruneBudget := contextBudget
	if !opts.ApplyPruning && totalInputTokens > pruneBudget {
		pruneBudget = totalInputTokens
	}
	pruneResult := pruner.New().Prune(units, pruneBudget, classifiedIntent, opts.Query)
	if !opts.ApplyPruning {
		pruneResult.Warnings = append(pruneResult.Warnings,
			"Experiment control variant: pruning disabled to measure baseline behavior")
	}

	optimized := make([]OptimizedUnit, 0, len(pruneResult.Decisions))
	for _, d := range pruneResult.Decisions {
		optimized = append(optimized, OptimizedUnit{
			ID:             d.UnitID,
			Type:           d.Type,
			Action:         string(d.Action),
			OriginalTokens: d.OriginalTokens,
			Tokens:         d.FinalTokens,
			Priority:       d.Priority,
			Reason:         d.Reason,
		})
	}

	finalTokens := 0
	unitsKept, unitsSummarized, unitsPruned := 0, 0, 0
	for _, o := range optimized {
		switch o.Action {
		case string(unit.ActionKeep):
			unitsKept++
			finalTokens += o.Tokens
		case string(unit.ActionSummarize):
			unitsSummarized++
			finalTokens += o.Tokens
		case string(unit.ActionPrune):
			unitsPruned++
		}
	}
	pruningTokensSaved := totalInputTokens - finalTokens
	overallTokensSaved := originalTotalTokens - finalTokens
	reductionPct := 0.0
	if originalTotalTokens > 0 {
		reductionPct = float64(overallTokensSaved) / float64(originalTotalTokens) * 100
	}

	plan := &ExecutionPlan{
		PlanID:    planID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Version:   PlanVersion,
		InputSummary: &InputSummary{
			TotalUnits:           len(units),
			TotalTokens:          totalInputTokens,
			PreFilterTotalTokens: originalTotalTokens,
			UnitsByType:          unitsByType,
			PackagesFiltered:     describePackagesFiltered(filteredUnits, filteredTokens, originalTotalTokens),
		},
		Constraints: &Constraints{
			TokenBudget: opts.Budget,
			TargetModel: opts.TargetModel,
			Intent:      classifiedIntent,
		},
		Experiment: &Experiment{
			Enabled:       opts.ExperimentID != "",
			ID:            opts.ExperimentID,
			Variant:       opts.ExperimentVariant,
			AssignmentKey: opts.AssignmentKey,
		},
		Recommendations: &Recommendations{
			Model: &ModelRecommendation{
				Recommended:         modelRec.RecommendedModel,
				Original:            modelRec.OriginalModel,
				Reason:              modelRec.Reason,
				CostSavingsEstimate: modelRec.CostSavingsEstimate,
				Alternatives:        modelRec.Alternatives,
			},
			BudgetAllocation: &BudgetAllocation{
				SystemPrompt:    SystemReserve,
				Context:         contextBudget,
				ResponseReserve: responseReserve,
			},
		},
		OptimizedContext: optimized,
		Statistics: &Statistics{
			InputTokens:         originalTotalTokens,
			PostFilterTokens:    totalInputTokens,
			OutputTokens:        finalTokens,
			TokensSaved:         overallTokensSaved,
			ReductionPercentage: round1(reductionPct),
			UnitsKept:           unitsKept,
			UnitsSummarized:     unitsSummarized,
			UnitsPruned:         unitsPruned,
		},
		SavingsBreakdown: buildSavingsBreakdown(
			originalTotalTokens, totalInputTokens, finalTokens,
			filteredTokens, pruningTokensSaved, overallTokensSaved,
			tierResult, relevanceStats,
		),
		Validation: &Validation{
			TotalTokens:     finalTokens + SystemReserve,
			WithinBudget:    finalTokens+SystemReserve <= opts.Budget-responseReserve,
			BudgetRemaining: contextBudget - finalTokens,
		},
		Explainability: &Explainability{
			StrategyUsed:     pruneResult.Strategy,
			IntentConfidence: round2(intentConfidence),
			PruningThreshold: pruneResult.Threshold,
		},
		QualityAssurance: &QualityAssurance{
			QualityImpact:           pruneResult.QualityImpact,
			QualityPreserved:        pruneResult.QualityPreserved,
			ProtectedTypesKept:      true,
			FailSafeDefaultsApplied: true,
			Recommendation:          qualityRecommendation(pruneResult.QualityImpact, reductionPct),
		},
		SessionHygiene: sessionHygiene(messageCount, totalInputTokens, finalTokens, contextBudget),
		Warnings:       pruneResult.Warnings,
	}

	if tierResult != nil {
		plan.TieredArchitecture = newTieredStats(tierResult)
	} else {
		plan.TieredArchitecture = &TieredStats{Enabled: false, Reason: "Disabled by configuration"}
	}
	if relevanceStats != nil {
		plan.RelevanceAnalysis = &RelevanceStats{Enabled: true, WasteAnalysis: relevanceStats}
	} else {
		plan.RelevanceAnalysis = &RelevanceStats{Enabled: false, Reason: "Disabled by configuration"}
	}

	fingerprint, err := decisionFingerprint(optimized)
	if err != nil {
		plan.Warnings = append(plan.Warnings, "Failed to compute plan fingerprint: "+err.Error())
	} else {
		plan.Fingerprint = fingerprint
	}

	if opts.Collector != nil {
		e.recordMetrics(plan, opts, tierResult, relevanceStats, pruneResult, classifiedIntent,
			originalTotalTokens, totalInputTokens, finalTokens,
			filteredTokens, pruningTokensSaved, overallTokensSaved)
	}

	e.logger.Info("Execution plan generated", map[string]interface{}{
		"planId":       planID,
		"intent":       classifiedIntent,
		"model":        modelRec.RecommendedModel,
		"inputTokens":  originalTotalTokens,
		"outputTokens": finalTokens,
		"reductionPct": plan.Statistics.ReductionPercentage,
	})

	return plan, nil
}

func (e *Engine) recordMetrics(
	plan *ExecutionPlan,
	opts Options,
	tierResult *tiering.Result,
	relevanceStats *relevance.WasteAnalysis,
	pruneResult *pruner.Result,
	classifiedIntent string,
	baselineTokens, postFilterTokens, outputTokens int,
	filteredTokens, pruningTokensSaved, overallTokensSaved int,
) {
	tier1, tier2, tier3 := 0, 0, 0
	if tierResult != nil {
		tier1, tier2, tier3 = tierResult.TierTokens(1), tierResult.TierTokens(2), tierResult.TierTokens(3)
	}
	highRel, lowRel := 0, 0
	if relevanceStats != nil {
		if hc, ok := relevanceStats.ByCategory[relevance.CategoryHigh]; ok {
			highRel = hc.Tokens
		}
		lowRel = relevanceStats.WastedTokens
	}

	opts.Collector.RecordTokens(outputTokens, tier1, tier2, tier3, highRel, lowRel)
	opts.Collector.RecordPlanMetrics(metrics.PlanMetrics{
		Intent:                   classifiedIntent,
		Budget:                   opts.Budget,
		BaselineTokens:           baselineTokens,
		PostFilterTokens:         postFilterTokens,
		OutputTokens:             outputTokens,
		PackageFilterTokensSaved: filteredTokens,
		PruningTokensSaved:       pruningTokensSaved,
		OverallTokensSaved:       overallTokensSaved,
		PackageFilterPct:         plan.SavingsBreakdown.PackageFiltering.PercentageOfBaseline,
		PruningPct:               plan.SavingsBreakdown.PruningAndSummarization.PercentageOfBaseline,
		OverallPct:               plan.SavingsBreakdown.Overall.PercentageOfBaseline,
		WithinBudget:             plan.Validation.WithinBudget,
	})

	session, err := opts.Collector.EndSession(pruneResult.QualityPreserved)
	if err != nil {
		plan.Warnings = append(plan.Warnings, "Metrics disabled: "+err.Error())
		return
	}
	plan.Metrics = &PlanSessionMetrics{
		SessionID:            session.SessionID,
		EstimatedCostUSD:     session.EstimatedCostUSD,
		SavingsVsBaselineUSD: session.SavingsVsBaselineUSD,
	}
}

func describePackagesFiltered(filtered []pathfilter.FilteredUnit, filteredTokens, baseline int) *PackagesFiltered {
	if len(filtered) == 0 {
		return nil
	}
	pct := 0.0
	if baseline > 0 {
		pct = float64(filteredTokens) / float64(baseline) * 100
	}
	examples := make([]string, 0, 5)
	for _, fu := range filtered {
		if len(examples) == 5 {
			break
		}
		examples = append(examples, fu.Unit.PathOrID())
	}
	return &PackagesFiltered{
		Count:               len(filtered),
		TokensSaved:         filteredTokens,
		ReductionPercentage: round1(pct),
		Examples:            examples,
	}
}

func buildSavingsBreakdown(
	baseline, postFilter, final int,
	filteredTokens, pruningSaved, overallSaved int,
	tierResult *tiering.Result,
	relevanceStats *relevance.WasteAnalysis,
) *SavingsBreakdown {
	pctOf := func(saved, total int) float64 {
		if total <= 0 {
			return 0
		}
		return round1(float64(saved) / float64(total) * 100)
	}

	b := &SavingsBreakdown{
		BaselineTokens:     baseline,
		AfterFilterTokens:  postFilter,
		AfterPruningTokens: final,
		PackageFiltering: &StageSavings{
			TokensSaved:          filteredTokens,
			PercentageOfBaseline: pctOf(filteredTokens, baseline),
		},
		PruningAndSummarization: &StageSavings{
			TokensSaved:            pruningSaved,
			PercentageOfBaseline:   pctOf(pruningSaved, baseline),
			PercentageOfPostFilter: pctOf(pruningSaved, postFilter),
		},
		Overall: &StageSavings{
			TokensSaved:          overallSaved,
			PercentageOfBaseline: pctOf(overallSaved, baseline),
		},
		TieredStartup:  &TieredStartupSavings{},
		RelevanceWaste: &RelevanceWasteSavings{},
	}

	if tierResult != nil {
		b.TieredStartup = &TieredStartupSavings{
			Enabled:             true,
			CurrentTokens:       tierResult.Optimization.CurrentStartupTokens,
			OptimizedTokens:     tierResult.Optimization.OptimizedStartupTokens,
			TokensSaved:         tierResult.Optimization.TokensSavedPerSession,
			ReductionPercentage: tierResult.Optimization.ReductionPercentage,
		}
	}
	if relevanceStats != nil {
		b.RelevanceWaste = &RelevanceWasteSavings{
			Enabled:         true,
			WastedTokens:    relevanceStats.WastedTokens,
			WastePercentage: relevanceStats.WastePercentage,
		}
	}
	return b
}

func qualityRecommendation(qualityImpact string, reductionPct float64) string {
	switch qualityImpact {
	case pruner.QualityNone:
		return "Full context preserved - optimal output quality expected"
	case pruner.QualityMinimal:
		return "Minimal pruning applied - output quality should be unaffected"
	case pruner.QualityLow:
		return "Light pruning applied - output quality preserved"
	case pruner.QualityModerate:
		return fmt.Sprintf("Moderate reduction (%.0f%%) - review output for completeness", reductionPct)
	default:
		return fmt.Sprintf("Significant reduction (%.0f%%) - consider increasing budget for better output quality", reductionPct)
	}
}

// decisionFingerprint digests the canonical JSON (RFC 8785) of the decision
// set. Identical inputs yield identical fingerprints.
func decisionFingerprint(optimized []OptimizedUnit) (string, error) {
	raw, err := json.Marshal(optimized)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:8]), nil
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
