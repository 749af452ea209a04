// Package codec implements the per-format parsers and serializers.
//
// Each format is a [Codec]: it parses text into a [value.Value], serializes a
// value back to text, and answers whether text is valid for the format. The
// five built-in codecs are [JSON], [XML], [CSV], [YAML], and [TOML].
//
// # Lossy shapes
//
// Not every value survives every format:
//
//   - XML drops attributes on parse and never infers types: every leaf is a
//     String. Non-mapping values are wrapped in a <root> element on output.
//   - CSV is a table of scalars; nested values are written as compact JSON
//     text and read back as strings.
//   - TOML requires a table at the root, so other values are written under a
//     "data" key. TOML has no null; null mapping entries are omitted and null
//     array elements are rejected.
//   - JSON cannot express NaN or infinities.
//
// When a value cannot be written at all, Serialize returns a
// *converrors.UnsupportedShapeError naming the offending path.
package codec
