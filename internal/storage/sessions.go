package storage

import (
	"fmt"
	"time"
)

// SessionMetrics is one planning session's recorded metrics.
type SessionMetrics struct {
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`

	TotalTokens int `json:"total_tokens"`
	Tier1Tokens int `json:"tier1_tokens"`
	Tier2Tokens int `json:"tier2_tokens"`
	Tier3Tokens int `json:"tier3_tokens"`

	HighRelevanceTokens int `json:"high_relevance_tokens"`
	LowRelevanceTokens  int `json:"low_relevance_tokens"`

	QualityPreserved bool `json:"quality_preserved"`

	EstimatedCostUSD     float64 `json:"estimated_cost_usd"`
	SavingsVsBaselineUSD float64 `json:"savings_vs_baseline_usd"`

	ExperimentID  string `json:"experiment_id"`
	Variant       string `json:"variant"`
	AssignmentKey string `json:"assignment_key"`
	Intent        string `json:"intent"`
	Budget        int    `json:"budget"`

	BaselineTokens           int     `json:"baseline_tokens"`
	PostFilterTokens         int     `json:"post_filter_tokens"`
	OutputTokens             int     `json:"output_tokens"`
	PackageFilterTokensSaved int     `json:"package_filter_tokens_saved"`
	PruningTokensSaved       int     `json:"pruning_tokens_saved"`
	OverallTokensSaved       int     `json:"overall_tokens_saved"`
	PackageFilterPct         float64 `json:"package_filter_pct"`
	PruningPct               float64 `json:"pruning_pct"`
	OverallPct               float64 `json:"overall_pct"`
	WithinBudget             bool    `json:"within_budget"`
}

// SaveSession stores one session row.
func (s *Store) SaveSession(m *SessionMetrics) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO sessions (
			session_id, timestamp,
			total_tokens, tier1_tokens, tier2_tokens, tier3_tokens,
			high_relevance_tokens, low_relevance_tokens,
			quality_preserved, estimated_cost_usd, savings_vs_baseline_usd,
			experiment_id, variant, assignment_key, intent, budget,
			baseline_tokens, post_filter_tokens, output_tokens,
			package_filter_tokens_saved, pruning_tokens_saved, overall_tokens_saved,
			package_filter_pct, pruning_pct, overall_pct, within_budget
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.Timestamp,
		m.TotalTokens, m.Tier1Tokens, m.Tier2Tokens, m.Tier3Tokens,
		m.HighRelevanceTokens, m.LowRelevanceTokens,
		boolToInt(m.QualityPreserved), m.EstimatedCostUSD, m.SavingsVsBaselineUSD,
		m.ExperimentID, m.Variant, m.AssignmentKey, m.Intent, m.Budget,
		m.BaselineTokens, m.PostFilterTokens, m.OutputTokens,
		m.PackageFilterTokensSaved, m.PruningTokensSaved, m.OverallTokensSaved,
		m.PackageFilterPct, m.PruningPct, m.OverallPct, boolToInt(m.WithinBudget),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", m.SessionID, err)
	}
	return nil
}

// LoadSessions returns sessions from the last N days, newest first.
func (s *Store) LoadSessions(days int) ([]*SessionMetrics, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	rows, err := s.conn.Query(`
		SELECT
			session_id, timestamp,
			total_tokens, tier1_tokens, tier2_tokens, tier3_tokens,
			high_relevance_tokens, low_relevance_tokens,
			quality_preserved, estimated_cost_usd, savings_vs_baseline_usd,
			experiment_id, variant, assignment_key, intent, budget,
			baseline_tokens, post_filter_tokens, output_tokens,
			package_filter_tokens_saved, pruning_tokens_saved, overall_tokens_saved,
			package_filter_pct, pruning_pct, overall_pct, within_budget
		FROM sessions
		WHERE timestamp >= ?
		ORDER BY timestamp DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*SessionMetrics
	for rows.Next() {
		var m SessionMetrics
		var qualityPreserved, withinBudget int
		if err := rows.Scan(
			&m.SessionID, &m.Timestamp,
			&m.TotalTokens, &m.Tier1Tokens, &m.Tier2Tokens, &m.Tier3Tokens,
			&m.HighRelevanceTokens, &m.LowRelevanceTokens,
			&qualityPreserved, &m.EstimatedCostUSD, &m.SavingsVsBaselineUSD,
			&m.ExperimentID, &m.Variant, &m.AssignmentKey, &m.Intent, &m.Budget,
			&m.BaselineTokens, &m.PostFilterTokens, &m.OutputTokens,
			&m.PackageFilterTokensSaved, &m.PruningTokensSaved, &m.OverallTokensSaved,
			&m.PackageFilterPct, &m.PruningPct, &m.OverallPct, &withinBudget,
		); err != nil {
			return nil, err
		}
		m.QualityPreserved = qualityPreserved != 0
		m.WithinBudget = withinBudget != 0
		sessions = append(sessions, &m)
	}
	return sessions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
