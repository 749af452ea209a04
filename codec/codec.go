package codec

import "github.com/erraggy/dataconv/value"

// Canonical format identifiers.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Codec converts between text in one format and the intermediate value tree.
//
// Implementations are stateless after construction and safe for concurrent
// use.
type Codec interface {
	// Format returns the canonical identifier, e.g. "json".
	Format() string

	// Parse decodes text. Malformed input yields a *converrors.SyntaxError.
	Parse(text string) (value.Value, error)

	// Serialize encodes v. Values the format cannot express yield a
	// *converrors.UnsupportedShapeError.
	Serialize(v value.Value) (string, error)

	// Validate reports whether text is well-formed for the format. It never
	// panics and never returns an error.
	Validate(text string) bool

	// MIMEType returns the media type, e.g. "application/json".
	MIMEType() string

	// FileExtension returns the preferred extension with its leading dot.
	FileExtension() string
}

// Defaults returns a fresh instance of each built-in codec in detection
// order: JSON, XML, CSV, YAML, TOML.
func Defaults() []Codec {
	return []Codec{NewJSON(), NewXML(), NewCSV(), NewYAML(), NewTOML()}
}
