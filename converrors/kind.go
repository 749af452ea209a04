package converrors

import "errors"

// Kind names an error category. It is stable text suitable for log
// attributes and machine-readable output.
type Kind string

const (
	KindSyntax            Kind = "syntax"
	KindEncoding          Kind = "encoding"
	KindUnsupportedShape  Kind = "unsupported_shape"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindDetection         Kind = "detection"
	KindConversion        Kind = "conversion"
	KindUnknown           Kind = "unknown"
)

// KindOf returns the category of the outermost categorized error in err's
// chain, or KindUnknown. It returns "" for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k := kindOf(e); k != KindUnknown {
			return k
		}
	}
	return KindUnknown
}

// RootKind returns the category of the innermost categorized error in err's
// chain. For a ConversionError wrapping a SyntaxError it returns KindSyntax.
func RootKind(err error) Kind {
	if err == nil {
		return ""
	}
	found := KindUnknown
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k := kindOf(e); k != KindUnknown {
			found = k
		}
	}
	return found
}

func kindOf(err error) Kind {
	switch err.(type) {
	case *SyntaxError:
		return KindSyntax
	case *EncodingError:
		return KindEncoding
	case *UnsupportedShapeError:
		return KindUnsupportedShape
	case *UnsupportedFormatError:
		return KindUnsupportedFormat
	case *DetectionError:
		return KindDetection
	case *ConversionError:
		return KindConversion
	}
	return KindUnknown
}
