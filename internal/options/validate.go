// Package options provides shared validation for functional option sets.
package options

import "fmt"

// ValidateSingleInputSource ensures exactly one source is set.
// Each element of sources reports whether that source was supplied.
// noSourceMsg is returned when none is set and multiSourceMsg when more than one is.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	switch n := countSet(sources); {
	case n == 0:
		return fmt.Errorf("%s", noSourceMsg)
	case n > 1:
		return fmt.Errorf("%s", multiSourceMsg)
	}
	return nil
}

// ValidateAtMostOneSource ensures no more than one optional source is set.
func ValidateAtMostOneSource(multiSourceMsg string, sources ...bool) error {
	if countSet(sources) > 1 {
		return fmt.Errorf("%s", multiSourceMsg)
	}
	return nil
}

func countSet(sources []bool) int {
	n := 0
	for _, set := range sources {
		if set {
			n++
		}
	}
	return n
}
