package model

import (
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	goverrors "ctxgov/internal/errors"
)

// OverridesFile is the catalog override file, relative to the config dir.
const OverridesFile = "models.toml"

type overridesFile struct {
	Models map[string]Info `toml:"models"`
}

// LoadOverrides merges catalog entries from a TOML file into c. Entries for
// known models replace them; new names append to the catalog order sorted by
// name for determinism. A missing file is not an error.
func LoadOverrides(c *Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goverrors.NewGovError(
			goverrors.ConfigInvalid,
			"failed to read model overrides: "+path,
			err,
			goverrors.GetSuggestedFixes(goverrors.ConfigInvalid),
		)
	}

	var parsed overridesFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return goverrors.NewGovError(
			goverrors.ConfigInvalid,
			"invalid TOML in model overrides: "+path,
			err,
			goverrors.GetSuggestedFixes(goverrors.ConfigInvalid),
		)
	}

	names := make([]string, 0, len(parsed.Models))
	for name := range parsed.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := parsed.Models[name]
		if info.Tier == "" {
			info.Tier = TierStandard
		}
		c.Set(name, &info)
	}
	return nil
}
