// Package dataconv converts structured data between JSON, XML, CSV, YAML, and
// TOML.
//
// Every conversion parses the source payload into a small intermediate value
// tree and serializes that tree in the target format. The tree has seven
// shapes (null, bool, integer, float, string, sequence, and ordered mapping),
// so conversions keep key order and the integer/float distinction wherever
// the target format can express them.
//
// # Packages
//
//   - converter: Conversion engine and the public entry points
//   - codec: The five format codecs and their options
//   - registry: Format identifiers, aliases, MIME types, and extensions
//   - detector: Format detection from filename and content
//   - value: The intermediate value tree
//   - converrors: The error taxonomy shared by all packages
//   - logging: Structured logging interface and slog adapter
//
// # Quick Start
//
//	import "github.com/erraggy/dataconv/converter"
//
//	out, err := converter.ConvertText(`{"name": "test", "value": 123}`, "json", "yaml", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Print(out)
//	// name: test
//	// value: 123
//
// Pass "auto" as the source format to detect it from the filename extension
// and the content:
//
//	out, err := converter.Convert(data, "auto", "toml", "settings.yml")
//
// # Lossy Conversions
//
// Some shapes cannot survive every target. XML attributes are dropped when
// parsing, and XML values are always strings. TOML has no null, so null
// mapping entries are omitted and a null inside an array is an error. A
// non-mapping root is wrapped under a "data" key for TOML, and under a root
// element for XML.
//
// # Errors
//
// All failures are typed errors from package converrors. Conversion failures
// are wrapped in a *converrors.ConversionError that names both formats and
// keeps its cause for errors.Is and errors.As.
//
// # Command Line and MCP
//
// The dataconv command exposes the same operations on the command line and
// as a Model Context Protocol server (dataconv mcp).
package dataconv
