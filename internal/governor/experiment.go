package governor

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Experiment variants.
const (
	VariantOptimized = "optimized"
	VariantControl   = "control"
	VariantAuto      = "auto"
)

// ResolveVariant determines the experiment variant for a planning call.
// Without an experiment the engine always runs optimized. An explicit
// variant is honored. "auto" splits deterministically on
// sha256(experimentID:assignmentKey) when a stable key exists, and randomly
// per invocation otherwise.
func ResolveVariant(experimentID, requestedVariant, assignmentKey string) string {
	if experimentID == "" {
		return VariantOptimized
	}
	if requestedVariant == VariantControl || requestedVariant == VariantOptimized {
		return requestedVariant
	}

	if assignmentKey == "" {
		if uuid.New().ID()%2 == 0 {
			return VariantControl
		}
		return VariantOptimized
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", experimentID, assignmentKey)))
	if binary.BigEndian.Uint32(sum[:4])%2 == 0 {
		return VariantControl
	}
	return VariantOptimized
}
