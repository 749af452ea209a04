package converrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrSyntax indicates malformed text for the named format.
	ErrSyntax = errors.New("syntax error")

	// ErrEncoding indicates input bytes that are not valid UTF-8.
	ErrEncoding = errors.New("encoding error")

	// ErrUnsupportedShape indicates a value the target format cannot express.
	ErrUnsupportedShape = errors.New("unsupported shape")

	// ErrUnsupportedFormat indicates an unknown format identifier.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDetection indicates that no format could be identified.
	ErrDetection = errors.New("detection failed")

	// ErrConversion indicates a failed conversion.
	ErrConversion = errors.New("conversion error")
)

// SyntaxError reports text that a codec could not parse.
type SyntaxError struct {
	// Format is the canonical identifier of the codec that failed
	Format string
	// Line is the 1-based line of the failure (0 if unknown)
	Line int
	// Column is the 1-based column of the failure (0 if unknown)
	Column int
	// Message describes the failure
	Message string
	// Cause is the underlying parser error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Format != "" {
		b.WriteString(e.Format)
		b.WriteByte(' ')
	}
	b.WriteString("syntax error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chaining.
func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// EncodingError reports input bytes that are not valid UTF-8.
type EncodingError struct {
	// Offset is the byte offset of the first invalid sequence
	Offset int
	// Message describes the failure
	Message string
}

// Error returns a human-readable error message.
func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("encoding error at byte %d", e.Offset)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// UnsupportedShapeError reports a value that cannot be expressed in a format.
type UnsupportedShapeError struct {
	// Format is the canonical identifier of the target codec
	Format string
	// Path locates the offending value, e.g. "$.items[2]"
	Path string
	// Message describes why the value cannot be written
	Message string
}

// Error returns a human-readable error message.
func (e *UnsupportedShapeError) Error() string {
	msg := "unsupported shape"
	if e.Format != "" {
		msg = e.Format + " " + msg
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnsupportedShapeError) Is(target error) bool {
	return target == ErrUnsupportedShape
}

// UnsupportedFormatError reports a format identifier the registry does not know.
type UnsupportedFormatError struct {
	// Format is the identifier as given by the caller
	Format string
	// Role is "source" or "target" when known
	Role string
	// Known lists the accepted identifiers
	Known []string
}

// Error returns a human-readable error message.
func (e *UnsupportedFormatError) Error() string {
	msg := "unsupported "
	if e.Role != "" {
		msg += e.Role + " "
	}
	msg += fmt.Sprintf("format %q", e.Format)
	if len(e.Known) > 0 {
		msg += " (supported: " + strings.Join(e.Known, ", ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DetectionError reports that no codec accepted a payload.
type DetectionError struct {
	// Filename is the hint that was supplied, if any
	Filename string
	// Tried lists the formats that were probed, in order
	Tried []string
}

// Error returns a human-readable error message.
func (e *DetectionError) Error() string {
	msg := "could not detect format"
	if e.Filename != "" {
		msg += fmt.Sprintf(" of %q", e.Filename)
	}
	if len(e.Tried) > 0 {
		msg += " (tried " + strings.Join(e.Tried, ", ") + ")"
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *DetectionError) Is(target error) bool {
	return target == ErrDetection
}

// ConversionError reports a failed conversion between two formats.
type ConversionError struct {
	// Source is the source format identifier ("auto" if detection failed)
	Source string
	// Target is the target format identifier
	Target string
	// Cause is the underlying failure
	Cause error
}

// Error returns a human-readable error message.
func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("converting %s to %s failed", orUnknown(e.Source), orUnknown(e.Target))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
