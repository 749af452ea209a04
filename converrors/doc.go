// Package converrors provides the error types returned by dataconv.
//
// Every failure the library reports belongs to one of six categories. Each
// category has a struct type carrying the details and a sentinel for quick
// checks with errors.Is:
//
//   - SyntaxError (ErrSyntax): text is not well-formed for its format
//   - EncodingError (ErrEncoding): input bytes are not valid UTF-8
//   - UnsupportedShapeError (ErrUnsupportedShape): a value cannot be
//     expressed in the target format
//   - UnsupportedFormatError (ErrUnsupportedFormat): unknown format identifier
//   - DetectionError (ErrDetection): no format could be identified
//   - ConversionError (ErrConversion): a conversion failed; wraps the cause
//
// A ConversionError keeps its cause, so both the outer and inner categories
// can be inspected:
//
//	_, err := converter.ConvertText(`{"a":`, "json", "yaml", "")
//	var convErr *converrors.ConversionError
//	if errors.As(err, &convErr) {
//	    fmt.Println(convErr.Source, convErr.Target)
//	}
//	if errors.Is(err, converrors.ErrSyntax) {
//	    // the source document was malformed
//	}
package converrors
