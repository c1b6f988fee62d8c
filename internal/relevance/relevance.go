// Package relevance scores context fragments against the current work
// context: what the user is editing right now (git diff) ranks highest,
// related files rank in the middle, and generic project content ranks low.
// All scoring degrades gracefully when git signals are unavailable.
package relevance

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ctxgov/internal/paths"
	"ctxgov/internal/unit"
	"ctxgov/internal/workstate"
)

// Relevance categories.
const (
	CategoryHigh   = "high"
	CategoryMedium = "medium"
	CategoryLow    = "low"
	CategoryZero   = "zero"
)

// maxReadBytes bounds file reads during import detection.
const maxReadBytes = 100 * 1024

// Score is a relevance score with explanation.
type Score struct {
	Score    float64 `json:"score"`
	Category string  `json:"category"`
	Reason   string  `json:"reason"`
	FilePath string  `json:"filePath,omitempty"`
}

// fileWeights assigns base relevance by file extension. Source files carry
// more signal than docs or styling.
var fileWeights = map[string]float64{
	".md":     0.3,
	".json":   0.4,
	".yaml":   0.4,
	".yml":    0.4,
	".ts":     0.8,
	".tsx":    0.8,
	".js":     0.8,
	".jsx":    0.8,
	".py":     0.8,
	".java":   0.8,
	".go":     0.8,
	".rs":     0.8,
	".css":    0.5,
	".scss":   0.5,
	".html":   0.5,
	".sql":    0.6,
	".prisma": 0.7,
}

const defaultFileWeight = 0.5

// contentPattern ties a content regex to a work intent and base score.
// Patterns are evaluated in declaration order; the first match decides.
type contentPattern struct {
	re        *regexp.Regexp
	intent    string
	baseScore float64
}

var contentPatterns = []contentPattern{
	{regexp.MustCompile(`(?i)\b(error|exception|failed|crash)\b`), workstate.IntentDebugging, 0.9},
	{regexp.MustCompile(`(?i)\b(test|spec|describe)\b|it\(`), workstate.IntentTesting, 0.8},
	{regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK)\b`), "improvement", 0.7},
	{regexp.MustCompile(`(?i)\b(import|require)\b|from\s+['"]`), "dependency", 0.6},
	{regexp.MustCompile(`(?i)\b(function|class|def|const|let|var)\b`), "definition", 0.7},
}

// Scorer scores context relevance against a work-context snapshot. The
// snapshot is fixed at construction: one planning call sees one view of the
// repository.
type Scorer struct {
	projectRoot string
	snapshot    *workstate.Snapshot
}

// NewScorer creates a scorer over a captured snapshot. A nil snapshot is
// treated as empty (no git signals).
func NewScorer(projectRoot string, snapshot *workstate.Snapshot) *Scorer {
	if snapshot == nil {
		snapshot = workstate.Empty()
	}
	return &Scorer{projectRoot: projectRoot, snapshot: snapshot}
}

// Snapshot returns the work-context snapshot the scorer was built with.
func (s *Scorer) Snapshot() *workstate.Snapshot {
	return s.snapshot
}

// ScoreFile scores a file path against the work context. Precedence, first
// match wins: changed > staged > active module > same directory as a change >
// imports a changed file > intent-specific boost > extension base weight.
func (s *Scorer) ScoreFile(filePath string) Score {
	ctx := s.snapshot
	p := paths.Normalize(filePath)

	if ctx.HasChanged(p) {
		return Score{Score: 1.0, Category: CategoryHigh, Reason: "Currently modified (in git diff)", FilePath: p}
	}
	if ctx.HasStaged(p) {
		return Score{Score: 0.95, Category: CategoryHigh, Reason: "Staged for commit", FilePath: p}
	}

	for _, module := range ctx.ActiveModules {
		if strings.HasPrefix(p, module+"/") {
			return Score{Score: 0.8, Category: CategoryHigh, Reason: "In active module: " + module, FilePath: p}
		}
	}

	for _, changed := range ctx.ChangedFiles {
		if paths.Dir(p) == paths.Dir(changed) {
			return Score{Score: 0.7, Category: CategoryMedium, Reason: "Same directory as modified file: " + changed, FilePath: p}
		}
	}

	if imported := s.importsChangedFile(p); imported != "" {
		return Score{Score: 0.65, Category: CategoryMedium, Reason: "Likely imports: " + imported, FilePath: p}
	}

	ext := paths.Ext(p)
	if ctx.DetectedIntent == workstate.IntentTesting {
		lower := strings.ToLower(p)
		if strings.Contains(lower, "test") || strings.Contains(lower, "spec") {
			return Score{Score: 0.75, Category: CategoryMedium, Reason: "Test file relevant to testing intent", FilePath: p}
		}
	}
	if ctx.DetectedIntent == workstate.IntentDocumentation && ext == ".md" {
		return Score{Score: 0.7, Category: CategoryMedium, Reason: "Documentation file relevant to docs intent", FilePath: p}
	}

	weight, ok := fileWeights[ext]
	if !ok {
		weight = defaultFileWeight
	}
	return Score{
		Score:    weight * 0.5,
		Category: CategoryLow,
		Reason:   "Project file, not directly related to current work",
		FilePath: p,
	}
}

// ScoreContent scores a text block against the work context. A literal
// reference to a changed file dominates; otherwise the first matching content
// pattern decides, boosted 1.2x (capped at 1.0) when it matches the detected
// work intent and damped 0.8x when it does not.
func (s *Scorer) ScoreContent(content string) Score {
	ctx := s.snapshot

	for _, changed := range ctx.ChangedFiles {
		if strings.Contains(content, changed) || strings.Contains(content, paths.Stem(changed)) {
			return Score{Score: 0.9, Category: CategoryHigh, Reason: "References changed file: " + changed}
		}
	}

	for _, cp := range contentPatterns {
		if !cp.re.MatchString(content) {
			continue
		}
		if cp.intent == ctx.DetectedIntent {
			score := cp.baseScore * 1.2
			if score > 1.0 {
				score = 1.0
			}
			return Score{Score: score, Category: CategoryHigh, Reason: "Matches current intent: " + cp.intent}
		}
		return Score{Score: cp.baseScore * 0.8, Category: CategoryMedium, Reason: "Contains " + cp.intent + " content"}
	}

	return Score{Score: 0.3, Category: CategoryLow, Reason: "Generic content, no specific relevance signals"}
}

// ScoreUnit scores a unit by path when it has one, otherwise by content.
func (s *Scorer) ScoreUnit(u *unit.ContextUnit) Score {
	if u.IsFileLike() && u.PathOrID() != "" {
		return s.ScoreFile(u.PathOrID())
	}
	return s.ScoreContent(u.Content)
}

// Annotate attaches relevance scores to every unit in place.
func (s *Scorer) Annotate(units []*unit.ContextUnit) {
	for _, u := range units {
		score := s.ScoreUnit(u)
		u.Relevance = &unit.Relevance{
			Score:    score.Score,
			Category: score.Category,
			Reason:   score.Reason,
		}
	}
}

// importsChangedFile reports the first changed file whose name appears in
// the content of filePath. Reads are skipped for missing or oversized files.
func (s *Scorer) importsChangedFile(filePath string) string {
	if len(s.snapshot.ChangedFiles) == 0 {
		return ""
	}
	full := filepath.Join(s.projectRoot, filepath.FromSlash(filePath))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() || info.Size() > maxReadBytes {
		return ""
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return ""
	}
	content := string(data)
	for _, changed := range s.snapshot.ChangedFiles {
		if strings.Contains(content, paths.Stem(changed)) {
			return changed
		}
	}
	return ""
}

// CategoryTotals aggregates token counts and unit counts per category.
type CategoryTotals struct {
	Tokens int `json:"tokens"`
	Count  int `json:"count"`
}

// WasteAnalysis reports how much context is spent on low-value content.
type WasteAnalysis struct {
	TotalTokens     int                        `json:"total_tokens"`
	WastedTokens    int                        `json:"wasted_tokens"`
	WastePercentage float64                    `json:"waste_percentage"`
	ByCategory      map[string]*CategoryTotals `json:"by_category"`
	Recommendation  string                     `json:"recommendation"`
}

// AnalyzeContextWaste scores every unit and reports the token share sitting
// in low and zero relevance categories.
func (s *Scorer) AnalyzeContextWaste(units []*unit.ContextUnit) *WasteAnalysis {
	byCategory := map[string]*CategoryTotals{
		CategoryHigh:   {},
		CategoryMedium: {},
		CategoryLow:    {},
		CategoryZero:   {},
	}

	total := 0
	for _, u := range units {
		tokens := u.Tokens
		if tokens == 0 {
			tokens = len(u.Content) / 4
		}
		total += tokens

		category := CategoryZero
		if u.Content != "" || u.PathOrID() != "" {
			category = s.ScoreUnit(u).Category
		}
		byCategory[category].Tokens += tokens
		byCategory[category].Count++
	}

	wasted := byCategory[CategoryLow].Tokens + byCategory[CategoryZero].Tokens
	pct := 0.0
	if total > 0 {
		pct = float64(wasted) / float64(total) * 100
	}

	return &WasteAnalysis{
		TotalTokens:     total,
		WastedTokens:    wasted,
		WastePercentage: round1(pct),
		ByCategory:      byCategory,
		Recommendation:  wasteRecommendation(pct),
	}
}

func wasteRecommendation(pct float64) string {
	switch {
	case pct < 10:
		return "Excellent: context is highly relevant"
	case pct < 25:
		return "Good: minor optimization possible"
	case pct < 40:
		return "Moderate waste: consider filtering low-relevance items"
	default:
		return fmt.Sprintf("High waste (%.0f%%): filter aggressively to reduce costs", pct)
	}
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
