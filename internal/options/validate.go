// Package options provides shared utilities for option validation.
package options

import "fmt"

// ValidateSingleInputSource ensures exactly one input source is specified.
// sources is a variadic list of booleans indicating whether each source is set.
// noSourceMsg is the error message when no source is specified.
// multiSourceMsg is the error message when multiple sources are specified.
func ValidateSingleInputSource(noSourceMsg, multiSourceMsg string, sources ...bool) error {
	count := CountSet(sources...)
	if count == 0 {
		return fmt.Errorf("%s", noSourceMsg)
	}
	if count > 1 {
		return fmt.Errorf("%s", multiSourceMsg)
	}
	return nil
}

// CountSet returns how many of flags are true.
func CountSet(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
