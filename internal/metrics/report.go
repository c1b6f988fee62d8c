package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// TargetStatus grades one operational target.
type TargetStatus struct {
	Target string `json:"target"`
	Actual string `json:"actual"`
	Met    bool   `json:"met"`
}

// Summary aggregates session metrics over a period.
type Summary struct {
	PeriodDays           int                     `json:"period_days"`
	SessionCount         int                     `json:"session_count"`
	TotalTokens          int                     `json:"total_tokens"`
	TotalCostUSD         float64                 `json:"total_cost_usd"`
	TotalSavingsUSD      float64                 `json:"total_savings_usd"`
	AvgTokensPerSession  int                     `json:"avg_tokens_per_session"`
	AvgCostPerSession    float64                 `json:"avg_cost_per_session"`
	TargetStatus         map[string]TargetStatus `json:"target_status"`
	QualityPreservedRate string                  `json:"quality_preserved_rate"`
	Message              string                  `json:"message,omitempty"`
}

// GetSummary aggregates the last N days of sessions.
func (c *Collector) GetSummary(days int) (*Summary, error) {
	sessions, err := c.store.LoadSessions(days)
	if err != nil {
		return nil, err
	}

	if len(sessions) == 0 {
		return &Summary{
			PeriodDays: days,
			Message:    "No metrics recorded yet",
		}, nil
	}

	totalTokens := 0
	totalCost := 0.0
	totalSavings := 0.0
	tier1Tokens := 0
	preserved := 0
	for _, m := range sessions {
		totalTokens += m.TotalTokens
		totalCost += m.EstimatedCostUSD
		totalSavings += m.SavingsVsBaselineUSD
		tier1Tokens += m.Tier1Tokens
		if m.QualityPreserved {
			preserved++
		}
	}

	n := len(sessions)
	avgTier1 := float64(tier1Tokens) / float64(n)

	return &Summary{
		PeriodDays:          days,
		SessionCount:        n,
		TotalTokens:         totalTokens,
		TotalCostUSD:        round4(totalCost),
		TotalSavingsUSD:     round4(totalSavings),
		AvgTokensPerSession: totalTokens / n,
		AvgCostPerSession:   round6(totalCost / float64(n)),
		TargetStatus: map[string]TargetStatus{
			"tier1_tokens": {
				Target: fmt.Sprintf("<%d", TargetTier1TokensMax),
				Actual: fmt.Sprintf("%.0f", avgTier1),
				Met:    avgTier1 < TargetTier1TokensMax,
			},
		},
		QualityPreservedRate: fmt.Sprintf("%.0f%%", float64(preserved)/float64(n)*100),
	}, nil
}

// GenerateReport renders a human-readable metrics report.
func (c *Collector) GenerateReport(days int) (string, error) {
	summary, err := c.GetSummary(days)
	if err != nil {
		return "", err
	}
	if summary.SessionCount == 0 {
		return "No metrics recorded yet.", nil
	}

	var b strings.Builder
	divider := strings.Repeat("=", 60)
	fmt.Fprintln(&b, divider)
	fmt.Fprintln(&b, "CONTEXT OPTIMIZATION METRICS")
	fmt.Fprintln(&b, divider)
	fmt.Fprintf(&b, "Period: last %d days\n", summary.PeriodDays)
	fmt.Fprintf(&b, "Sessions: %d\n\n", summary.SessionCount)
	fmt.Fprintln(&b, "Cost analysis")
	fmt.Fprintf(&b, "  Total tokens: %d\n", summary.TotalTokens)
	fmt.Fprintf(&b, "  Total cost: $%.4f\n", summary.TotalCostUSD)
	fmt.Fprintf(&b, "  Total savings: $%.4f\n", summary.TotalSavingsUSD)
	fmt.Fprintf(&b, "  Avg per session: $%.6f\n\n", summary.AvgCostPerSession)
	fmt.Fprintln(&b, "Target status")

	names := make([]string, 0, len(summary.TargetStatus))
	for name := range summary.TargetStatus {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := summary.TargetStatus[name]
		mark := "FAIL"
		if status.Met {
			mark = "OK"
		}
		fmt.Fprintf(&b, "  [%s] %s: %s (target: %s)\n", mark, name, status.Actual, status.Target)
	}
	fmt.Fprintf(&b, "\nQuality preserved: %s\n", summary.QualityPreservedRate)
	fmt.Fprintln(&b, divider)
	return b.String(), nil
}

// DayTrend is one day's aggregate in a trend series.
type DayTrend struct {
	Date       string  `json:"date"`
	Sessions   int     `json:"sessions"`
	Tokens     int     `json:"tokens"`
	CostUSD    float64 `json:"cost_usd"`
	SavingsUSD float64 `json:"savings_usd"`
}

// GetTrend groups sessions by day over the last N days, oldest first.
func (c *Collector) GetTrend(days int) ([]DayTrend, error) {
	sessions, err := c.store.LoadSessions(days)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]*DayTrend)
	for _, m := range sessions {
		date := m.Timestamp
		if len(date) >= 10 {
			date = date[:10]
		}
		d, ok := daily[date]
		if !ok {
			d = &DayTrend{Date: date}
			daily[date] = d
		}
		d.Sessions++
		d.Tokens += m.TotalTokens
		d.CostUSD += m.EstimatedCostUSD
		d.SavingsUSD += m.SavingsVsBaselineUSD
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	trend := make([]DayTrend, 0, len(dates))
	for _, date := range dates {
		d := daily[date]
		d.CostUSD = round4(d.CostUSD)
		d.SavingsUSD = round4(d.SavingsUSD)
		trend = append(trend, *d)
	}
	return trend, nil
}

func round4(f float64) float64 {
	if f < 0 {
		return -float64(int(-f*1e4+0.5)) / 1e4
	}
	return float64(int(f*1e4+0.5)) / 1e4
}
