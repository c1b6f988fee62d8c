package model

import (
	"fmt"
	"sort"
	"strings"
)

// Task complexity per intent, used for economy-tier upgrade decisions.
var intentComplexity = map[string]string{
	"code_generation": "high",
	"debugging":       "high",
	"explanation":     "medium",
	"search":          "low",
	"planning":        "high",
	"review":          "medium",
	"generic":         "medium",
}

// nameAlias maps loose model names to catalog keys. Checked in declaration
// order, first substring match wins.
type nameAlias struct {
	fragment string
	model    string
}

var nameAliases = []nameAlias{
	{"claude 3.5 sonnet", "claude-3-5-sonnet"},
	{"claude 3 5 sonnet", "claude-3-5-sonnet"},
	{"claude sonnet 4", "claude-sonnet-4"},
	{"claude opus 4", "claude-opus-4"},
	{"claude 3 sonnet", "claude-3-sonnet"},
	{"claude 3 haiku", "claude-3-haiku"},
	{"claude 3 opus", "claude-3-opus"},
	{"haiku", "claude-3-haiku"},
	{"opus", "claude-3-opus"},
	{"sonnet", "claude-3-sonnet"},
}

// Recommendation is the selector's output.
type Recommendation struct {
	RecommendedModel    string   `json:"recommended_model"`
	OriginalModel       string   `json:"original_model"`
	Reason              string   `json:"reason"`
	Alternatives        []string `json:"alternatives"`
	CostSavingsEstimate string   `json:"cost_savings_estimate,omitempty"`
}

// Selector recommends models from a catalog.
type Selector struct {
	catalog *Catalog
}

// NewSelector creates a selector over the default catalog.
func NewSelector() *Selector {
	return &Selector{catalog: DefaultCatalog()}
}

// NewSelectorWithCatalog creates a selector over a custom catalog.
func NewSelectorWithCatalog(c *Catalog) *Selector {
	return &Selector{catalog: c}
}

// Catalog returns the selector's catalog.
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// Select recommends a model. Context-window fit is checked first (above 80%
// utilization the requested model is replaced by the cheapest larger-window
// alternative); then a cheaper model meeting 90% of the required capability
// may be substituted; then economy-tier models are upgraded for
// high-complexity intents when a capability gap of at least 0.15 exists.
func (s *Selector) Select(requestedModel, intentName string, contextTokens int, preferCostSavings bool) Recommendation {
	requested := s.Normalize(requestedModel)
	requestedInfo := s.catalog.Get(requested)
	if requestedInfo == nil {
		requested = DefaultModel
		requestedInfo = s.catalog.Get(requested)
	}

	if float64(contextTokens) > float64(requestedInfo.ContextWindow)*0.8 {
		alternatives := s.largerContextModels(contextTokens)
		if len(alternatives) > 0 {
			rest := alternatives[1:]
			if len(rest) > 2 {
				rest = rest[:2]
			}
			return Recommendation{
				RecommendedModel: alternatives[0],
				OriginalModel:    requestedModel,
				Reason:           fmt.Sprintf("Context size (%d) exceeds %s effective limit", contextTokens, requestedModel),
				Alternatives:     rest,
			}
		}
	}

	complexity := intentComplexity[intentName]
	if complexity == "" {
		complexity = "medium"
	}
	requiredCapability := requestedInfo.Capability(intentName)

	if preferCostSavings {
		cheaper := s.cheaperAlternative(requested, intentName, contextTokens, requiredCapability*0.9)
		if cheaper != "" && cheaper != requested {
			savings := estimateSavingsPct(requestedInfo, s.catalog.Get(cheaper), contextTokens)
			return Recommendation{
				RecommendedModel:    cheaper,
				OriginalModel:       requestedModel,
				Reason:              fmt.Sprintf("Cost optimization: %s sufficient for %s", cheaper, intentName),
				Alternatives:        []string{requested},
				CostSavingsEstimate: fmt.Sprintf("%.1f%%", savings),
			}
		}
	}

	if complexity == "high" && requestedInfo.Tier == TierEconomy {
		if upgraded := s.upgradedModel(requested, intentName); upgraded != "" {
			return Recommendation{
				RecommendedModel: upgraded,
				OriginalModel:    requestedModel,
				Reason:           fmt.Sprintf("Task complexity (%s) may benefit from %s", intentName, upgraded),
				Alternatives:     []string{requested},
			}
		}
	}

	return Recommendation{
		RecommendedModel: requestedModel,
		OriginalModel:    requestedModel,
		Reason:           fmt.Sprintf("Requested model suitable for %s", intentName),
		Alternatives:     []string{},
	}
}

// Normalize maps a loose model name to a catalog key, falling back to
// DefaultModel for unrecognized names.
func (s *Selector) Normalize(name string) string {
	loose := strings.ToLower(name)
	loose = strings.ReplaceAll(loose, "-", " ")
	loose = strings.ReplaceAll(loose, "_", " ")

	for _, alias := range nameAliases {
		if strings.Contains(loose, alias.fragment) {
			if s.catalog.Get(alias.model) != nil {
				return alias.model
			}
		}
	}

	direct := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	if s.catalog.Get(direct) != nil {
		return direct
	}
	return DefaultModel
}

// largerContextModels lists models whose window covers minContext with 20%
// headroom, cheapest first.
func (s *Selector) largerContextModels(minContext int) []string {
	var suitable []string
	for _, name := range s.catalog.names {
		if float64(s.catalog.models[name].ContextWindow) >= float64(minContext)*1.2 {
			suitable = append(suitable, name)
		}
	}
	sort.SliceStable(suitable, func(i, j int) bool {
		return s.catalog.models[suitable[i]].CostPer1KInput < s.catalog.models[suitable[j]].CostPer1KInput
	})
	return suitable
}

// cheaperAlternative finds the most capable model that is cheaper than
// current, meets the capability floor, and fits the context with 10%
// headroom. Returns "" if none qualifies.
func (s *Selector) cheaperAlternative(current, intentName string, tokens int, minCapability float64) string {
	currentInfo := s.catalog.Get(current)
	if currentInfo == nil {
		return ""
	}

	var candidates []string
	for _, name := range s.catalog.names {
		if name == current {
			continue
		}
		info := s.catalog.models[name]
		if info.Capability(intentName) < minCapability {
			continue
		}
		if float64(info.ContextWindow) < float64(tokens)*1.1 {
			continue
		}
		if info.CostPer1KInput >= currentInfo.CostPer1KInput {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := s.catalog.models[candidates[i]], s.catalog.models[candidates[j]]
		ca, cb := a.Capability(intentName), b.Capability(intentName)
		if ca != cb {
			return ca > cb
		}
		return a.CostPer1KInput < b.CostPer1KInput
	})
	return candidates[0]
}

// upgradedModel finds the first model with a capability gap of at least 0.15
// over current for the intent. Returns "" if none exists.
func (s *Selector) upgradedModel(current, intentName string) string {
	currentInfo := s.catalog.Get(current)
	if currentInfo == nil {
		return ""
	}
	currentCapability := currentInfo.Capability(intentName)

	for _, name := range s.catalog.names {
		if name == current {
			continue
		}
		if s.catalog.models[name].Capability(intentName) > currentCapability+0.15 {
			return name
		}
	}
	return ""
}

func estimateSavingsPct(original, recommended *Info, tokens int) float64 {
	origCost := original.CostPer1KInput * float64(tokens) / 1000
	recCost := recommended.CostPer1KInput * float64(tokens) / 1000
	if origCost == 0 {
		return 0
	}
	return (origCost - recCost) / origCost * 100
}
