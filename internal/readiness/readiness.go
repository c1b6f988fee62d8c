// Package readiness re-runs fixed planning scenarios from YAML fixtures and
// asserts on plan fields. Used as a launch gate: a scenario failure means
// the engine's decision behavior drifted.
package readiness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"ctxgov/internal/pruner"
	"ctxgov/internal/unit"
)

// ScenarioUnit is one context unit in a scenario fixture.
type ScenarioUnit struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Content  string `yaml:"content"`
	Priority int    `yaml:"priority"`
	Tokens   int    `yaml:"tokens"`
}

// Expectations are the assertions a scenario makes about the prune result.
// All fields are optional; absent fields are not checked.
type Expectations struct {
	Actions          map[string]string `yaml:"actions"`
	FinalTokens      map[string]int    `yaml:"final_tokens"`
	ReductionPct     *float64          `yaml:"reduction_pct"`
	QualityPreserved *bool             `yaml:"quality_preserved"`
	Strategy         string            `yaml:"strategy"`
	QualityImpact    string            `yaml:"quality_impact"`
}

// Scenario is one fixed planning scenario.
type Scenario struct {
	Name   string         `yaml:"name"`
	Budget int            `yaml:"budget"`
	Intent string         `yaml:"intent"`
	Query  string         `yaml:"query"`
	Units  []ScenarioUnit `yaml:"units"`
	Expect Expectations   `yaml:"expect"`
}

// RunResult is the outcome of one scenario run.
type RunResult struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Failures []string `json:"failures,omitempty"`
}

// LoadScenario reads one scenario fixture.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	if s.Intent == "" {
		s.Intent = "generic"
	}
	return &s, nil
}

// LoadDir reads all *.yaml scenarios in a directory, sorted by filename.
func LoadDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Run executes a scenario against the pruner and checks its expectations.
func Run(s *Scenario) *RunResult {
	units := make([]*unit.ContextUnit, 0, len(s.Units))
	for _, su := range s.Units {
		units = append(units, &unit.ContextUnit{
			ID:       su.ID,
			Type:     su.Type,
			Content:  su.Content,
			Priority: su.Priority,
			Tokens:   su.Tokens,
		})
	}

	result := pruner.New().Prune(units, s.Budget, s.Intent, s.Query)

	decisions := make(map[string]unit.Decision, len(result.Decisions))
	for _, d := range result.Decisions {
		decisions[d.UnitID] = d
	}

	var failures []string
	fail := func(format string, args ...interface{}) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	for unitID, wantAction := range s.Expect.Actions {
		d, ok := decisions[unitID]
		if !ok {
			fail("no decision for unit %q", unitID)
			continue
		}
		if string(d.Action) != wantAction {
			fail("unit %q: action %s, want %s", unitID, d.Action, wantAction)
		}
	}
	for unitID, wantTokens := range s.Expect.FinalTokens {
		d, ok := decisions[unitID]
		if !ok {
			fail("no decision for unit %q", unitID)
			continue
		}
		if d.FinalTokens != wantTokens {
			fail("unit %q: final tokens %d, want %d", unitID, d.FinalTokens, wantTokens)
		}
	}
	if s.Expect.ReductionPct != nil && result.ActualReductionPct != *s.Expect.ReductionPct {
		fail("reduction %.1f%%, want %.1f%%", result.ActualReductionPct, *s.Expect.ReductionPct)
	}
	if s.Expect.QualityPreserved != nil && result.QualityPreserved != *s.Expect.QualityPreserved {
		fail("quality preserved %v, want %v", result.QualityPreserved, *s.Expect.QualityPreserved)
	}
	if s.Expect.Strategy != "" && result.Strategy != s.Expect.Strategy {
		fail("strategy %s, want %s", result.Strategy, s.Expect.Strategy)
	}
	if s.Expect.QualityImpact != "" && result.QualityImpact != s.Expect.QualityImpact {
		fail("quality impact %s, want %s", result.QualityImpact, s.Expect.QualityImpact)
	}

	return &RunResult{
		Name:     s.Name,
		Passed:   len(failures) == 0,
		Failures: failures,
	}
}

// RunAll executes every scenario and returns the results.
func RunAll(scenarios []*Scenario) []*RunResult {
	results := make([]*RunResult, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, Run(s))
	}
	return results
}
