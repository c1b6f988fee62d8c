// Package analyzer inspects context structure for optimization
// opportunities: oversized units, duplicates, low-priority token sinks, and
// dependency files that slipped into context.
package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ctxgov/internal/pathfilter"
	"ctxgov/internal/unit"
)

// typeProfile captures the expected priority band and minimum keep ratio per
// context type.
type typeProfile struct {
	basePriority int
	minKeepRatio float64
}

var typeProfiles = map[string]typeProfile{
	unit.TypeSystem:     {100, 1.0},
	unit.TypeMessage:    {90, 0.9},
	unit.TypeError:      {85, 0.8},
	unit.TypeFile:       {50, 0.2},
	unit.TypeReference:  {40, 0.1},
	unit.TypeHistory:    {30, 0.1},
	unit.TypeToolOutput: {60, 0.3},
	unit.TypeUnknown:    {50, 0.2},
}

// UnitAnalysis is the per-unit report entry.
type UnitAnalysis struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Tokens        int      `json:"tokens"`
	Priority      int      `json:"priority"`
	ContentLength int      `json:"content_length"`
	BasePriority  int      `json:"base_priority"`
	MinKeepRatio  float64  `json:"min_keep_ratio"`
	Issues        []string `json:"issues"`
}

// Duplicate marks a unit whose content repeats an earlier unit.
type Duplicate struct {
	UnitID        string `json:"unit_id"`
	DuplicateOf   string `json:"duplicate_of"`
	SavingsTokens int    `json:"savings_tokens"`
}

// TypeStats aggregates count and tokens for one type.
type TypeStats struct {
	Count  int `json:"count"`
	Tokens int `json:"tokens"`
}

// Opportunity describes a concrete optimization with estimated savings.
type Opportunity struct {
	UnitID           string `json:"unit_id,omitempty"`
	Opportunity      string `json:"opportunity"`
	PotentialSavings int    `json:"potential_savings"`
	Description      string `json:"description"`
}

// Summary holds top-level statistics.
type Summary struct {
	TotalUnits         int `json:"total_units"`
	TotalTokens        int `json:"total_tokens"`
	TotalContentLength int `json:"total_content_length"`
	AvgTokensPerUnit   int `json:"avg_tokens_per_unit"`
	AvgPriority        int `json:"avg_priority"`
}

// FilteredPackages reports automatically excluded dependency files.
type FilteredPackages struct {
	Count   int                       `json:"count"`
	Units   []pathfilter.FilteredUnit `json:"units"`
	Message string                    `json:"message"`
}

// Report is the full analysis output.
type Report struct {
	Summary          *Summary             `json:"summary"`
	Units            []UnitAnalysis       `json:"units"`
	Duplicates       []Duplicate          `json:"duplicates"`
	TypeDistribution map[string]TypeStats `json:"type_distribution"`
	Opportunities    []Opportunity        `json:"optimization_opportunities"`
	FilteredPackages *FilteredPackages    `json:"filtered_packages"`
}

// Analyzer analyzes context units. A nil filter disables package filtering.
type Analyzer struct {
	filter *pathfilter.Filter
}

// New creates an analyzer.
func New(filter *pathfilter.Filter) *Analyzer {
	return &Analyzer{filter: filter}
}

// Analyze inspects the units and returns a structured report.
func (a *Analyzer) Analyze(units []*unit.ContextUnit) *Report {
	var filtered []pathfilter.FilteredUnit
	if a.filter != nil {
		units, filtered = a.filter.FilterUnits(units)
	}

	report := &Report{
		Summary:          summarize(units),
		Units:            analyzeUnits(units),
		Duplicates:       findDuplicates(units),
		TypeDistribution: typeDistribution(units),
		Opportunities:    findOpportunities(units),
		FilteredPackages: describeFiltered(filtered),
	}
	return report
}

func summarize(units []*unit.ContextUnit) *Summary {
	s := &Summary{TotalUnits: len(units)}
	totalPriority := 0
	for _, u := range units {
		s.TotalTokens += u.Tokens
		s.TotalContentLength += len(u.Content)
		totalPriority += u.Priority
	}
	if len(units) > 0 {
		s.AvgTokensPerUnit = s.TotalTokens / len(units)
		s.AvgPriority = totalPriority / len(units)
	}
	return s
}

func analyzeUnits(units []*unit.ContextUnit) []UnitAnalysis {
	results := make([]UnitAnalysis, 0, len(units))
	for _, u := range units {
		profile, ok := typeProfiles[u.Type]
		if !ok {
			profile = typeProfiles[unit.TypeUnknown]
		}

		var issues []string
		if u.Tokens > 4000 {
			issues = append(issues, "very_large")
		}
		if u.Tokens == 0 && u.Content != "" {
			issues = append(issues, "missing_token_count")
		}
		if strings.TrimSpace(u.Content) == "" {
			issues = append(issues, "empty_content")
		}
		if u.Priority < profile.basePriority-20 {
			issues = append(issues, "low_priority_for_type")
		}

		results = append(results, UnitAnalysis{
			ID:            u.ID,
			Type:          u.Type,
			Tokens:        u.Tokens,
			Priority:      u.Priority,
			ContentLength: len(u.Content),
			BasePriority:  profile.basePriority,
			MinKeepRatio:  profile.minKeepRatio,
			Issues:        issues,
		})
	}
	return results
}

// findDuplicates hashes a content prefix plus length as a cheap similarity
// key. Exact near-duplicates collide; unrelated content does not.
func findDuplicates(units []*unit.ContextUnit) []Duplicate {
	var duplicates []Duplicate
	seen := make(map[string]string)

	for _, u := range units {
		prefix := u.Content
		if len(prefix) > 500 {
			prefix = prefix[:500]
		}
		sum := sha256.Sum256([]byte(prefix + fmt.Sprint(len(u.Content))))
		key := hex.EncodeToString(sum[:4])

		if original, ok := seen[key]; ok {
			duplicates = append(duplicates, Duplicate{
				UnitID:        u.ID,
				DuplicateOf:   original,
				SavingsTokens: u.Tokens,
			})
		} else {
			seen[key] = u.ID
		}
	}
	return duplicates
}

func typeDistribution(units []*unit.ContextUnit) map[string]TypeStats {
	dist := make(map[string]TypeStats)
	for _, u := range units {
		stats := dist[u.Type]
		stats.Count++
		stats.Tokens += u.Tokens
		dist[u.Type] = stats
	}
	return dist
}

func findOpportunities(units []*unit.ContextUnit) []Opportunity {
	var opportunities []Opportunity

	for _, u := range units {
		if u.Type == unit.TypeFile && u.Tokens > 2000 {
			opportunities = append(opportunities, Opportunity{
				UnitID:           u.ID,
				Opportunity:      "summarize_large_file",
				PotentialSavings: u.Tokens - 500,
				Description:      fmt.Sprintf("File %s has %d tokens, consider summarizing", u.ID, u.Tokens),
			})
		} else if u.Type == unit.TypeHistory && u.Tokens > 1000 {
			opportunities = append(opportunities, Opportunity{
				UnitID:           u.ID,
				Opportunity:      "truncate_history",
				PotentialSavings: u.Tokens - 300,
				Description:      fmt.Sprintf("History %s has %d tokens, consider truncating older entries", u.ID, u.Tokens),
			})
		}
	}

	lowPriorityTokens := 0
	for _, u := range units {
		if u.Priority < 30 {
			lowPriorityTokens += u.Tokens
		}
	}
	if lowPriorityTokens > 1000 {
		opportunities = append(opportunities, Opportunity{
			Opportunity:      "prune_low_priority",
			PotentialSavings: lowPriorityTokens,
			Description:      fmt.Sprintf("%d tokens in low-priority units could be pruned", lowPriorityTokens),
		})
	}

	return opportunities
}

func describeFiltered(filtered []pathfilter.FilteredUnit) *FilteredPackages {
	fp := &FilteredPackages{Count: len(filtered)}
	if len(filtered) == 0 {
		fp.Message = "No package files filtered"
		return fp
	}
	shown := filtered
	if len(shown) > 10 {
		shown = shown[:10]
	}
	fp.Units = shown
	fp.Message = fmt.Sprintf("Automatically filtered %d package/dependency files", len(filtered))
	return fp
}
