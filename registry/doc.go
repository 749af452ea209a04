// Package registry maps format identifiers to codecs.
//
// A Registry is built once, typically at process start, and is read-only
// afterwards, so it can be shared by any number of goroutines without
// locking. Identifiers are matched case-insensitively after trimming
// surrounding whitespace, and aliases resolve to their canonical format:
//
//	r := registry.Default()
//	c, err := r.Lookup("YML") // the YAML codec
//	if err != nil {
//	    // err is a *converrors.UnsupportedFormatError
//	}
//
// Formats are listed in registration order, which for the default registry
// is JSON, XML, CSV, YAML, TOML. The detector probes codecs in this order.
package registry
