// Package unit defines the context unit data model shared by the planning
// pipeline. Units are constructed from caller input at the start of a
// planning call, enriched in place by the relevance scorer and tier
// classifier, and consumed by the pruner. Nothing here persists across calls.
package unit

import (
	"fmt"
)

// Context unit types. Unknown types are accepted and treated conservatively.
const (
	TypeSystem      = "system"
	TypeInstruction = "instruction"
	TypeCurrentTask = "current_task"
	TypeMessage     = "message"
	TypeError       = "error"
	TypeFile        = "file"
	TypeToolOutput  = "tool_output"
	TypeReference   = "reference"
	TypeHistory     = "history"
	TypeUnknown     = "unknown"
)

// DefaultPriority is assigned when the caller does not supply one.
const DefaultPriority = 50

// Relevance is the score attached by the relevance scorer.
type Relevance struct {
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	Reason   string  `json:"reason"`
}

// ContextUnit is one fragment of candidate context.
type ContextUnit struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Path     string `json:"path,omitempty"`
	Priority int    `json:"priority"`
	Tokens   int    `json:"tokens"`

	// Relevance is attached by the relevance scorer; nil when scoring is
	// disabled or not yet run.
	Relevance *Relevance `json:"relevance,omitempty"`

	// Tier (1-3) is attached by the tier classifier; 0 means unclassified.
	Tier int `json:"tier,omitempty"`
}

// RawUnit is the wire form of a context unit as supplied by callers.
// Every field is optional; Normalize applies fail-open defaults.
type RawUnit struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Content  string `json:"content,omitempty"`
	Path     string `json:"path,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Priority *int   `json:"priority,omitempty"`
	Tokens   *int   `json:"tokens,omitempty"`
}

// Normalize converts raw caller input to ContextUnits, applying the fail-open
// defaults: missing id becomes unit_{index}, missing type becomes "unknown",
// missing priority becomes 50. Missing token counts stay zero; the governor
// estimates them before scoring. Malformed units never fail a planning call.
func Normalize(raw []RawUnit) []*ContextUnit {
	units := make([]*ContextUnit, 0, len(raw))
	for i, r := range raw {
		u := &ContextUnit{
			ID:       r.ID,
			Type:     r.Type,
			Content:  r.Content,
			Path:     r.Path,
			Priority: DefaultPriority,
		}
		if u.ID == "" {
			u.ID = fmt.Sprintf("unit_%d", i)
		}
		if u.Type == "" {
			u.Type = TypeUnknown
		}
		if u.Path == "" {
			u.Path = r.FilePath
		}
		if r.Priority != nil {
			u.Priority = clampPriority(*r.Priority)
		}
		if r.Tokens != nil && *r.Tokens >= 0 {
			u.Tokens = *r.Tokens
		}
		units = append(units, u)
	}
	return units
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// IsFileLike reports whether the unit refers to a path and should pass
// through the path filter. System prompts, messages, instructions, and
// errors are never path-filtered.
func (u *ContextUnit) IsFileLike() bool {
	switch u.Type {
	case TypeSystem, TypeMessage, TypeInstruction, TypeError:
		return false
	}
	return true
}

// PathOrID returns the unit's path, falling back to its id. File units are
// often submitted with the path as the id.
func (u *ContextUnit) PathOrID() string {
	if u.Path != "" {
		return u.Path
	}
	return u.ID
}

// TotalTokens sums token counts over a unit list.
func TotalTokens(units []*ContextUnit) int {
	total := 0
	for _, u := range units {
		total += u.Tokens
	}
	return total
}

// Action is a pruning decision action.
type Action string

const (
	// ActionKeep retains the unit verbatim
	ActionKeep Action = "keep"
	// ActionSummarize retains a reduced form of the unit
	ActionSummarize Action = "summarize"
	// ActionPrune drops the unit entirely
	ActionPrune Action = "prune"
)

// Decision records the pruning outcome for one unit. Invariants:
// FinalTokens <= OriginalTokens; prune implies FinalTokens == 0;
// keep implies FinalTokens == OriginalTokens.
type Decision struct {
	UnitID         string  `json:"unit_id"`
	Type           string  `json:"type"`
	Action         Action  `json:"action"`
	OriginalTokens int     `json:"original_tokens"`
	FinalTokens    int     `json:"final_tokens"`
	Priority       int     `json:"priority"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}
