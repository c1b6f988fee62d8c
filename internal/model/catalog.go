// Package model recommends a model for a planning call based on context
// size, task intent, and cost. Selection is a pure table lookup over a
// catalog; no provider APIs are called.
package model

// Pricing tiers.
const (
	TierEconomy  = "economy"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// DefaultModel is the fallback when a requested model is unknown.
const DefaultModel = "claude-3-sonnet"

// Info describes one catalog entry.
type Info struct {
	ContextWindow   int                `json:"context_window" toml:"context_window"`
	MaxOutput       int                `json:"max_output" toml:"max_output"`
	CostPer1KInput  float64            `json:"cost_per_1k_input" toml:"cost_per_1k_input"`
	CostPer1KOutput float64            `json:"cost_per_1k_output" toml:"cost_per_1k_output"`
	Capabilities    map[string]float64 `json:"capabilities" toml:"capabilities"`
	Tier            string             `json:"tier" toml:"tier"`
}

// Capability returns the model's capability score for an intent, with a
// floor of 0.5 for intents the catalog does not rate.
func (i *Info) Capability(intentName string) float64 {
	if c, ok := i.Capabilities[intentName]; ok {
		return c
	}
	return 0.5
}

// Catalog is an ordered model table. Order matters: ties in selection
// resolve to the earlier entry.
type Catalog struct {
	names  []string
	models map[string]*Info
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{models: make(map[string]*Info)}
}

// DefaultCatalog returns the built-in model table.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Set("claude-sonnet-4", &Info{
		ContextWindow: 200000, MaxOutput: 64000,
		CostPer1KInput: 0.003, CostPer1KOutput: 0.015,
		Capabilities: map[string]float64{
			"code_generation": 0.95, "debugging": 0.95, "explanation": 0.95,
			"search": 0.80, "planning": 0.95, "review": 0.95, "generic": 0.90,
		},
		Tier: TierStandard,
	})
	c.Set("claude-opus-4", &Info{
		ContextWindow: 200000, MaxOutput: 32000,
		CostPer1KInput: 0.015, CostPer1KOutput: 0.075,
		Capabilities: map[string]float64{
			"code_generation": 1.0, "debugging": 1.0, "explanation": 1.0,
			"search": 0.85, "planning": 1.0, "review": 1.0, "generic": 0.95,
		},
		Tier: TierPremium,
	})
	c.Set("claude-3-5-sonnet", &Info{
		ContextWindow: 200000, MaxOutput: 8192,
		CostPer1KInput: 0.003, CostPer1KOutput: 0.015,
		Capabilities: map[string]float64{
			"code_generation": 0.95, "debugging": 0.95, "explanation": 0.90,
			"search": 0.75, "planning": 0.90, "review": 0.90, "generic": 0.85,
		},
		Tier: TierStandard,
	})
	c.Set("claude-3-sonnet", &Info{
		ContextWindow: 200000, MaxOutput: 4096,
		CostPer1KInput: 0.003, CostPer1KOutput: 0.015,
		Capabilities: map[string]float64{
			"code_generation": 0.85, "debugging": 0.85, "explanation": 0.85,
			"search": 0.70, "planning": 0.80, "review": 0.80, "generic": 0.80,
		},
		Tier: TierStandard,
	})
	c.Set("claude-3-haiku", &Info{
		ContextWindow: 200000, MaxOutput: 4096,
		CostPer1KInput: 0.00025, CostPer1KOutput: 0.00125,
		Capabilities: map[string]float64{
			"code_generation": 0.70, "debugging": 0.65, "explanation": 0.75,
			"search": 0.80, "planning": 0.60, "review": 0.65, "generic": 0.70,
		},
		Tier: TierEconomy,
	})
	c.Set("claude-3-opus", &Info{
		ContextWindow: 200000, MaxOutput: 4096,
		CostPer1KInput: 0.015, CostPer1KOutput: 0.075,
		Capabilities: map[string]float64{
			"code_generation": 0.95, "debugging": 0.95, "explanation": 0.95,
			"search": 0.80, "planning": 0.95, "review": 0.95, "generic": 0.90,
		},
		Tier: TierPremium,
	})
	return c
}

// Set adds or replaces a catalog entry. New names append to the order.
func (c *Catalog) Set(name string, info *Info) {
	if _, exists := c.models[name]; !exists {
		c.names = append(c.names, name)
	}
	c.models[name] = info
}

// Get returns the entry for name, or nil.
func (c *Catalog) Get(name string) *Info {
	return c.models[name]
}

// Names returns model names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// EstimateCost returns the dollar cost for a call with the given token
// counts, or 0 for an unknown model.
func (c *Catalog) EstimateCost(name string, inputTokens, outputTokens int) float64 {
	info := c.Get(name)
	if info == nil {
		return 0
	}
	return info.CostPer1KInput*float64(inputTokens)/1000 +
		info.CostPer1KOutput*float64(outputTokens)/1000
}
