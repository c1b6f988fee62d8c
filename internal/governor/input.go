package governor

import (
	"encoding/json"

	"github.com/kaptinlin/jsonschema"

	goverrors "ctxgov/internal/errors"
	"ctxgov/internal/unit"
)

// inputSchema accepts either a bare array of fragment-like records or an
// object wrapping one under "context_units". Structural violations are the
// engine's only hard input error; per-unit gaps fail open downstream.
const inputSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "oneOf": [
    {"$ref": "#/$defs/units"},
    {
      "type": "object",
      "properties": {"context_units": {"$ref": "#/$defs/units"}},
      "required": ["context_units"]
    }
  ],
  "$defs": {
    "units": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"},
          "content": {"type": "string"},
          "path": {"type": "string"},
          "file_path": {"type": "string"},
          "priority": {"type": "integer"},
          "tokens": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var compiledInputSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile([]byte(inputSchema))
	if err != nil {
		panic(err)
	}
	return schema
}

type wrappedInput struct {
	ContextUnits []unit.RawUnit `json:"context_units"`
}

// ParseInput validates and parses context units from JSON. The input may be
// a bare array or an object with a "context_units" field. A structurally
// invalid document is rejected with an InputInvalid error.
func ParseInput(data []byte) ([]*unit.ContextUnit, error) {
	result := compiledInputSchema.ValidateJSON(data)
	if !result.IsValid() {
		return nil, goverrors.NewGovError(
			goverrors.InputInvalid,
			"input must be a JSON array of context units or an object with a context_units array",
			nil,
			goverrors.GetSuggestedFixes(goverrors.InputInvalid),
		).WithDetails(result.Errors)
	}

	var raws []unit.RawUnit
	if err := json.Unmarshal(data, &raws); err != nil {
		var wrapped wrappedInput
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, goverrors.NewGovError(
				goverrors.InputInvalid,
				"failed to decode context units",
				err,
				goverrors.GetSuggestedFixes(goverrors.InputInvalid),
			)
		}
		raws = wrapped.ContextUnits
	}

	return unit.Normalize(raws), nil
}
