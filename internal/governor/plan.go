package governor

import (
	"ctxgov/internal/relevance"
	"ctxgov/internal/tiering"
)

// PlanVersion is the plan schema version.
const PlanVersion = "1.0"

// ExecutionPlan is the serializable planning output.
type ExecutionPlan struct {
	PlanID      string `json:"plan_id"`
	CreatedAt   string `json:"created_at"`
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint"`

	InputSummary    *InputSummary    `json:"input_summary"`
	Constraints     *Constraints     `json:"constraints"`
	Experiment      *Experiment      `json:"experiment"`
	Recommendations *Recommendations `json:"recommendations"`

	OptimizedContext []OptimizedUnit `json:"optimized_context"`

	Statistics       *Statistics       `json:"statistics"`
	SavingsBreakdown *SavingsBreakdown `json:"savings_breakdown"`
	Validation       *Validation       `json:"validation"`
	Explainability   *Explainability   `json:"explainability"`

	TieredArchitecture *TieredStats    `json:"tiered_architecture"`
	RelevanceAnalysis  *RelevanceStats `json:"relevance_analysis"`

	QualityAssurance *QualityAssurance `json:"quality_assurance"`
	SessionHygiene   *SessionHygiene   `json:"session_hygiene"`

	Metrics *PlanSessionMetrics `json:"metrics,omitempty"`

	Warnings []string `json:"warnings"`
}

// InputSummary describes the input before optimization.
type InputSummary struct {
	TotalUnits           int               `json:"total_units"`
	TotalTokens          int               `json:"total_tokens"`
	PreFilterTotalTokens int               `json:"pre_filter_total_tokens"`
	UnitsByType          map[string]int    `json:"units_by_type"`
	PackagesFiltered     *PackagesFiltered `json:"packages_filtered"`
}

// PackagesFiltered summarizes dependency files removed by the path filter.
type PackagesFiltered struct {
	Count               int      `json:"count"`
	TokensSaved         int      `json:"tokens_saved"`
	ReductionPercentage float64  `json:"reduction_percentage"`
	Examples            []string `json:"examples"`
}

// Constraints echoes the planning constraints.
type Constraints struct {
	TokenBudget int    `json:"token_budget"`
	TargetModel string `json:"target_model"`
	Intent      string `json:"intent"`
}

// Experiment carries A/B experiment metadata.
type Experiment struct {
	Enabled       bool   `json:"enabled"`
	ID            string `json:"id,omitempty"`
	Variant       string `json:"variant"`
	AssignmentKey string `json:"assignment_key,omitempty"`
}

// Recommendations holds the model choice and budget split.
type Recommendations struct {
	Model            *ModelRecommendation `json:"model"`
	BudgetAllocation *BudgetAllocation    `json:"budget_allocation"`
}

// ModelRecommendation is the selector's verdict.
type ModelRecommendation struct {
	Recommended         string   `json:"recommended"`
	Original            string   `json:"original"`
	Reason              string   `json:"reason"`
	CostSavingsEstimate string   `json:"cost_savings_estimate,omitempty"`
	Alternatives        []string `json:"alternatives"`
}

// BudgetAllocation is the reserve split actually applied.
type BudgetAllocation struct {
	SystemPrompt    int `json:"system_prompt"`
	Context         int `json:"context"`
	ResponseReserve int `json:"response_reserve"`
}

// OptimizedUnit is one per-unit decision in the plan.
type OptimizedUnit struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Action         string  `json:"action"`
	OriginalTokens int     `json:"original_tokens"`
	Tokens         int     `json:"tokens"`
	Priority       int     `json:"priority"`
	Reason         string  `json:"reason"`
}

// Statistics is the headline token accounting.
type Statistics struct {
	InputTokens         int     `json:"input_tokens"`
	PostFilterTokens    int     `json:"post_filter_tokens"`
	OutputTokens        int     `json:"output_tokens"`
	TokensSaved         int     `json:"tokens_saved"`
	ReductionPercentage float64 `json:"reduction_percentage"`
	UnitsKept           int     `json:"units_kept"`
	UnitsSummarized     int     `json:"units_summarized"`
	UnitsPruned         int     `json:"units_pruned"`
}

// StageSavings is one stage's contribution to the savings breakdown.
type StageSavings struct {
	TokensSaved             int     `json:"tokens_saved"`
	PercentageOfBaseline    float64 `json:"percentage_of_baseline"`
	PercentageOfPostFilter  float64 `json:"percentage_of_post_filter,omitempty"`
}

// TieredStartupSavings reports session-start savings from tier 1 loading.
type TieredStartupSavings struct {
	Enabled             bool    `json:"enabled"`
	CurrentTokens       int     `json:"current_tokens"`
	OptimizedTokens     int     `json:"optimized_tokens"`
	TokensSaved         int     `json:"tokens_saved"`
	ReductionPercentage float64 `json:"reduction_percentage"`
}

// RelevanceWasteSavings reports the low-relevance token share.
type RelevanceWasteSavings struct {
	Enabled         bool    `json:"enabled"`
	WastedTokens    int     `json:"wasted_tokens"`
	WastePercentage float64 `json:"waste_percentage"`
}

// SavingsBreakdown attributes token savings to pipeline stages.
type SavingsBreakdown struct {
	BaselineTokens          int                    `json:"baseline_tokens"`
	AfterFilterTokens       int                    `json:"after_filter_tokens"`
	AfterPruningTokens      int                    `json:"after_pruning_tokens"`
	PackageFiltering        *StageSavings          `json:"package_filtering"`
	PruningAndSummarization *StageSavings          `json:"pruning_and_summarization"`
	Overall                 *StageSavings          `json:"overall"`
	TieredStartup           *TieredStartupSavings  `json:"tiered_startup"`
	RelevanceWaste          *RelevanceWasteSavings `json:"relevance_waste"`
}

// Validation checks the plan against the budget.
type Validation struct {
	TotalTokens     int  `json:"total_tokens"`
	WithinBudget    bool `json:"within_budget"`
	BudgetRemaining int  `json:"budget_remaining"`
}

// Explainability records how the plan was derived.
type Explainability struct {
	StrategyUsed     string  `json:"strategy_used"`
	IntentConfidence float64 `json:"intent_confidence"`
	PruningThreshold float64 `json:"pruning_threshold"`
}

// TieredStats is the tiered-architecture section of a plan.
type TieredStats struct {
	Enabled                bool     `json:"enabled"`
	Reason                 string   `json:"reason,omitempty"`
	Tier1Tokens            int      `json:"tier_1_tokens,omitempty"`
	Tier2Tokens            int      `json:"tier_2_tokens,omitempty"`
	Tier3Tokens            int      `json:"tier_3_tokens,omitempty"`
	CurrentStartupTokens   int      `json:"current_startup_tokens,omitempty"`
	OptimizedStartupTokens int      `json:"optimized_startup_tokens,omitempty"`
	TokensSavedPerSession  int      `json:"tokens_saved_per_session,omitempty"`
	ReductionPercentage    float64  `json:"reduction_percentage,omitempty"`
	Recommendations        []string `json:"recommendations,omitempty"`
}

// RelevanceStats is the relevance-analysis section of a plan.
type RelevanceStats struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
	*relevance.WasteAnalysis
}

// QualityAssurance is the quality-preservation section of a plan.
type QualityAssurance struct {
	QualityImpact           string `json:"quality_impact"`
	QualityPreserved        bool   `json:"quality_preserved"`
	ProtectedTypesKept      bool   `json:"protected_types_kept"`
	FailSafeDefaultsApplied bool   `json:"fail_safe_defaults_applied"`
	Recommendation          string `json:"recommendation"`
}

// SessionHygiene recommends proactive compact/reset actions.
type SessionHygiene struct {
	MessageCountEstimate           int      `json:"message_count_estimate"`
	InputContextUtilizationPct     float64  `json:"input_context_utilization_pct"`
	OptimizedContextUtilizationPct float64  `json:"optimized_context_utilization_pct"`
	RecommendedAction              string   `json:"recommended_action"`
	Playbook                       []string `json:"playbook"`
	TokenHygieneHabits             []string `json:"token_hygiene_habits"`
}

// PlanSessionMetrics links the plan to its recorded metrics session.
type PlanSessionMetrics struct {
	SessionID            string  `json:"session_id"`
	EstimatedCostUSD     float64 `json:"estimated_cost_usd"`
	SavingsVsBaselineUSD float64 `json:"savings_vs_baseline_usd"`
}

// newTieredStats converts a tiering result into the plan section.
func newTieredStats(r *tiering.Result) *TieredStats {
	return &TieredStats{
		Enabled:                true,
		Tier1Tokens:            r.Tier1.TokenCount,
		Tier2Tokens:            r.Tier2.TokenCount,
		Tier3Tokens:            r.Tier3.TokenCount,
		CurrentStartupTokens:   r.Optimization.CurrentStartupTokens,
		OptimizedStartupTokens: r.Optimization.OptimizedStartupTokens,
		TokensSavedPerSession:  r.Optimization.TokensSavedPerSession,
		ReductionPercentage:    r.Optimization.ReductionPercentage,
		Recommendations:        r.Recommendations,
	}
}
