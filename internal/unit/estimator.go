package unit

// Estimator converts text to approximate token counts using per-content-type
// character ratios. The ratios match observed tokenizer density for each
// content class; exact counts are not required anywhere in the planner, only
// consistent ones.
type Estimator struct {
	ratios map[string]float64
}

// Character-to-token ratios by content type.
var defaultRatios = map[string]float64{
	"code":     3.5,
	"prose":    4.0,
	"json":     3.0,
	"markdown": 3.8,
	"default":  4.0,
}

// Unit types map to content classes for estimation.
var typeToContentType = map[string]string{
	TypeFile:       "code",
	TypeSystem:     "prose",
	TypeMessage:    "prose",
	TypeToolOutput: "json",
	TypeReference:  "markdown",
}

// NewEstimator creates an estimator with the default ratio table.
func NewEstimator() *Estimator {
	return &Estimator{ratios: defaultRatios}
}

// Estimate returns the approximate token count for content of the given
// content type ("code", "prose", "json", "markdown", or "default").
// Non-empty content always estimates to at least one token.
func (e *Estimator) Estimate(content string, contentType string) int {
	if content == "" {
		return 0
	}
	ratio, ok := e.ratios[contentType]
	if !ok {
		ratio = e.ratios["default"]
	}
	n := int(float64(len(content)) / ratio)
	if n < 1 {
		n = 1
	}
	return n
}

// EstimateUnit fills in the unit's token count from its content when the
// caller did not supply one. The unit's type selects the content class.
func (e *Estimator) EstimateUnit(u *ContextUnit) {
	if u.Tokens > 0 {
		return
	}
	contentType, ok := typeToContentType[u.Type]
	if !ok {
		contentType = "default"
	}
	u.Tokens = e.Estimate(u.Content, contentType)
}

// EstimateBatch fills in token counts for every unit missing one.
func (e *Estimator) EstimateBatch(units []*ContextUnit) {
	for _, u := range units {
		e.EstimateUnit(u)
	}
}
