// Package converter converts payloads between JSON, XML, CSV, YAML, and TOML.
//
// Every conversion goes through the intermediate value tree of package
// value: the source codec parses the payload, and the target codec
// serializes the tree. When source and target name the same format, the
// payload is returned unchanged without being parsed.
//
// # Quick Start
//
// Convert text with the package-level helpers:
//
//	out, err := converter.ConvertText(`{"name":"test"}`, "json", "yaml", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(out) // name: test
//
// Or use functional options, which also accept files and readers:
//
//	result, err := converter.ConvertWithOptions(
//		converter.WithFilePath("config.yaml.gz"),
//		converter.WithTargetFormat("toml"),
//	)
//
// A source format of "auto" (the default with options) detects the format
// from the filename and content; see package detector.
//
// # Errors
//
// Failures during parsing or serialization are returned as a
// *converrors.ConversionError naming both formats and wrapping the cause.
// Unknown format identifiers yield a *converrors.UnsupportedFormatError and
// failed detection a *converrors.DetectionError, both unwrapped. Use
// errors.As, or converrors.RootKind for the underlying category.
//
// # Reuse
//
// A Converter holds no per-call state and is safe for concurrent use:
//
//	c := converter.New()
//	c.Logger = logging.NewSlogAdapter(slog.Default())
//	a, _ := c.Convert(payloadA, "auto", "json", "a.yaml")
//	b, _ := c.Convert(payloadB, "csv", "json", "")
//
// # Related Packages
//
//   - [github.com/erraggy/dataconv/codec] - The per-format codecs
//   - [github.com/erraggy/dataconv/registry] - Format identifiers and aliases
//   - [github.com/erraggy/dataconv/detector] - Format detection
//   - [github.com/erraggy/dataconv/value] - The intermediate value tree
package converter
