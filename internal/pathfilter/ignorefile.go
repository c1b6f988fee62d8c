package pathfilter

import (
	"os"

	"github.com/BurntSushi/toml"

	goverrors "ctxgov/internal/errors"
)

// IgnoreFile is the custom ignore rules file, relative to the config dir.
const IgnoreFile = "filter.toml"

type ignoreFile struct {
	Ignore []string `toml:"ignore"`
}

// LoadCustomIgnores reads extra ignore patterns from a TOML file. Patterns
// ending in "/" name directories, others are filename regexes. A missing
// file yields no patterns.
func LoadCustomIgnores(path string) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var parsed ignoreFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return nil, goverrors.NewGovError(
			goverrors.ConfigInvalid,
			"invalid TOML in ignore rules: "+path,
			err,
			goverrors.GetSuggestedFixes(goverrors.ConfigInvalid),
		)
	}
	return parsed.Ignore, nil
}
