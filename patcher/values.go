package patcher

import (
	"errors"
	"os"

	"github.com/erraggy/patchkit/patcherrors"
	"go.yaml.in/yaml/v4"
)

// ParseOptionValues parses option values from YAML or JSON bytes.
// The document maps patch names to key-value maps:
//
//	theme:
//	  color: green
//	unlock-premium:
//	  tier: gold
func ParseOptionValues(data []byte) (OptionValues, error) {
	values := OptionValues{}

	// yaml.Unmarshal handles both YAML and JSON
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, &patcherrors.ParseError{Message: "invalid option values", Cause: err}
	}
	return values, nil
}

// ParseOptionValuesFile parses option values from a file path.
func ParseOptionValuesFile(path string) (OptionValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &patcherrors.ParseError{Path: path, Cause: err}
	}
	values, err := ParseOptionValues(data)
	if err != nil {
		var pe *patcherrors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &patcherrors.ParseError{Path: path, Cause: err}
	}
	return values, nil
}
