// Package metrics tracks context optimization outcomes per planning session
// and reports aggregate cost savings and target compliance over time.
package metrics

import (
	"fmt"
	"time"

	"ctxgov/internal/storage"
)

// Operational targets the reports grade against.
const (
	TargetTier1TokensMax = 800
	TargetReductionRatio = 0.60
)

// costPer1K is the reference input price (claude-3-sonnet) used for savings
// estimates.
const costPer1K = 0.003

// Collector records session metrics into a store. One collector tracks at
// most one active session.
type Collector struct {
	store *storage.Store

	current *storage.SessionMetrics
	started time.Time
}

// NewCollector creates a collector over an open store.
func NewCollector(store *storage.Store) *Collector {
	return &Collector{store: store}
}

// StartSession begins tracking a new session and returns its id.
func (c *Collector) StartSession() string {
	now := time.Now().UTC()
	id := fmt.Sprintf("session_%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
	c.current = &storage.SessionMetrics{
		SessionID:        id,
		Timestamp:        now.Format(time.RFC3339),
		Variant:          "optimized",
		Intent:           "generic",
		QualityPreserved: true,
		WithinBudget:     true,
	}
	c.started = now
	return id
}

func (c *Collector) ensureSession() {
	if c.current == nil {
		c.StartSession()
	}
}

// SetExperiment attaches experiment metadata to the active session.
func (c *Collector) SetExperiment(experimentID, variant, assignmentKey string) {
	c.ensureSession()
	c.current.ExperimentID = experimentID
	if variant != "" {
		c.current.Variant = variant
	}
	c.current.AssignmentKey = assignmentKey
}

// RecordTokens records token usage per tier and relevance bucket.
func (c *Collector) RecordTokens(total, tier1, tier2, tier3, highRelevance, lowRelevance int) {
	c.ensureSession()
	c.current.TotalTokens = total
	c.current.Tier1Tokens = tier1
	c.current.Tier2Tokens = tier2
	c.current.Tier3Tokens = tier3
	c.current.HighRelevanceTokens = highRelevance
	c.current.LowRelevanceTokens = lowRelevance
}

// PlanMetrics is the per-plan token accounting recorded for later analysis.
type PlanMetrics struct {
	Intent                   string
	Budget                   int
	BaselineTokens           int
	PostFilterTokens         int
	OutputTokens             int
	PackageFilterTokensSaved int
	PruningTokensSaved       int
	OverallTokensSaved       int
	PackageFilterPct         float64
	PruningPct               float64
	OverallPct               float64
	WithinBudget             bool
}

// RecordPlanMetrics records plan-level accounting on the active session.
func (c *Collector) RecordPlanMetrics(pm PlanMetrics) {
	c.ensureSession()
	c.current.Intent = pm.Intent
	c.current.Budget = pm.Budget
	c.current.BaselineTokens = pm.BaselineTokens
	c.current.PostFilterTokens = pm.PostFilterTokens
	c.current.OutputTokens = pm.OutputTokens
	c.current.PackageFilterTokensSaved = pm.PackageFilterTokensSaved
	c.current.PruningTokensSaved = pm.PruningTokensSaved
	c.current.OverallTokensSaved = pm.OverallTokensSaved
	c.current.PackageFilterPct = round2(pm.PackageFilterPct)
	c.current.PruningPct = round2(pm.PruningPct)
	c.current.OverallPct = round2(pm.OverallPct)
	c.current.WithinBudget = pm.WithinBudget
}

// EndSession computes costs, persists the session, and returns its metrics.
func (c *Collector) EndSession(qualityPreserved bool) (*storage.SessionMetrics, error) {
	if c.current == nil {
		return nil, fmt.Errorf("no active session")
	}
	m := c.current

	billable := m.OutputTokens
	if billable <= 0 {
		billable = m.TotalTokens
	}
	baseline := m.BaselineTokens
	if baseline <= 0 {
		baseline = m.TotalTokens
	}

	m.QualityPreserved = qualityPreserved
	m.EstimatedCostUSD = round6(float64(billable) / 1000 * costPer1K)
	m.SavingsVsBaselineUSD = round6(float64(baseline-billable) / 1000 * costPer1K)

	if err := c.store.SaveSession(m); err != nil {
		return nil, err
	}
	c.current = nil
	return m, nil
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func round6(f float64) float64 {
	if f < 0 {
		return -float64(int(-f*1e6+0.5)) / 1e6
	}
	return float64(int(f*1e6+0.5)) / 1e6
}
