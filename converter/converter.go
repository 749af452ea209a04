package converter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erraggy/dataconv/converrors"
	"github.com/erraggy/dataconv/detector"
	"github.com/erraggy/dataconv/internal/input"
	"github.com/erraggy/dataconv/internal/textenc"
	"github.com/erraggy/dataconv/logging"
	"github.com/erraggy/dataconv/registry"
	"github.com/erraggy/dataconv/value"
)

// FormatAuto requests format detection for the source payload.
const FormatAuto = "auto"

// Request describes a single conversion.
type Request struct {
	// Payload is the raw input. It must be UTF-8; a leading byte order mark
	// is ignored.
	Payload []byte
	// SourceFormat names the input format, or "auto" (or empty) to detect it
	SourceFormat string
	// TargetFormat names the output format
	TargetFormat string
	// Filename is an optional hint for detection; only its extension is used
	Filename string
}

// Result contains the outcome of a conversion.
type Result struct {
	// Output is the converted text
	Output string
	// SourceFormat is the canonical identifier of the input format
	SourceFormat string
	// TargetFormat is the canonical identifier of the output format
	TargetFormat string
	// Detected is true if SourceFormat was found by detection
	Detected bool
	// Identity is true if source and target matched and the payload was
	// passed through without parsing
	Identity bool
	// InputSize is the payload size in bytes
	InputSize int
	// OutputSize is the output size in bytes
	OutputSize int
	// Duration is the wall time of the conversion
	Duration time.Duration
	// Stats describes the intermediate value. It is zero for identity
	// conversions.
	Stats value.Stats
}

// Converter converts payloads between registered formats.
type Converter struct {
	// Registry resolves format identifiers.
	// Defaults to registry.Default() if nil.
	Registry *registry.Registry
	// Logger is the structured logger for debug output and failures.
	// Defaults to a no-op logger if nil.
	Logger logging.Logger
	// MaxInputSize rejects payloads larger than this many bytes.
	// Zero means no limit.
	MaxInputSize int64
}

// New creates a new Converter instance with default settings
func New() *Converter {
	return &Converter{}
}

func (c *Converter) registry() *registry.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return registry.Default()
}

func (c *Converter) log() logging.Logger {
	return logging.OrNop(c.Logger)
}

func (c *Converter) detector() *detector.Detector {
	return detector.New(detector.WithRegistry(c.registry()), detector.WithLogger(c.Logger))
}

// Convert is a convenience function that converts payload with a default
// Converter. It's equivalent to calling New().Convert.
//
// Example:
//
//	out, err := converter.Convert(data, "json", "yaml", "")
func Convert(payload []byte, source, target, filename string) (string, error) {
	return New().Convert(payload, source, target, filename)
}

// ConvertText is a convenience function that converts text with a default
// Converter.
func ConvertText(text, source, target, filename string) (string, error) {
	return New().ConvertText(text, source, target, filename)
}

// Validate is a convenience function that reports whether payload is
// well-formed in format. Unknown formats are not an error; they yield false.
func Validate(payload []byte, format string) bool {
	return New().Validate(payload, format)
}

// DetectFormat is a convenience function that detects the format of payload.
func DetectFormat(payload []byte, filename string) (string, error) {
	return New().DetectFormat(payload, filename)
}

// ListFormats returns the canonical identifiers of the built-in formats in
// detection order.
func ListFormats() []string {
	return New().ListFormats()
}

// MIMEType returns the media type of a built-in format.
func MIMEType(format string) (string, error) {
	return New().MIMEType(format)
}

// FileExtension returns the preferred file extension of a built-in format.
func FileExtension(format string) (string, error) {
	return New().FileExtension(format)
}

// Convert converts payload from source to target and returns the output
// text. source may be "auto".
func (c *Converter) Convert(payload []byte, source, target, filename string) (string, error) {
	res, err := c.Run(Request{Payload: payload, SourceFormat: source, TargetFormat: target, Filename: filename})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// ConvertText is like Convert for a payload that is already text.
func (c *Converter) ConvertText(text, source, target, filename string) (string, error) {
	return c.Convert([]byte(text), source, target, filename)
}

func isAuto(format string) bool {
	f := strings.TrimSpace(format)
	return f == "" || strings.EqualFold(f, FormatAuto)
}

// Run performs the conversion described by req.
//
// With an explicit source format, the source and then the target identifier
// are resolved first, and an unknown one fails with a
// *converrors.UnsupportedFormatError. With "auto", the payload is detected
// first and a *converrors.DetectionError is returned unchanged. All other
// failures are wrapped in a *converrors.ConversionError.
func (c *Converter) Run(req Request) (*Result, error) {
	start := time.Now()
	reg := c.registry()
	res := &Result{InputSize: len(req.Payload)}

	var err error
	detect := isAuto(req.SourceFormat)
	if !detect {
		if res.SourceFormat, err = resolve(reg, req.SourceFormat, "source"); err != nil {
			return nil, err
		}
		if res.TargetFormat, err = resolve(reg, req.TargetFormat, "target"); err != nil {
			return nil, err
		}
	}

	if c.MaxInputSize > 0 && int64(len(req.Payload)) > c.MaxInputSize {
		return nil, c.fail(req, res, fmt.Errorf("%w: %d bytes, limit is %d", input.ErrTooLarge, len(req.Payload), c.MaxInputSize))
	}
	text, err := textenc.Decode(req.Payload)
	if err != nil {
		return nil, c.fail(req, res, err)
	}

	if detect {
		if res.SourceFormat, err = c.detector().Detect(text, req.Filename); err != nil {
			c.log().Warn("conversion failed", "kind", converrors.KindOf(err), "filename", req.Filename, "error", err)
			return nil, err
		}
		res.Detected = true
		if res.TargetFormat, err = resolve(reg, req.TargetFormat, "target"); err != nil {
			return nil, err
		}
	}

	if res.SourceFormat == res.TargetFormat {
		res.Identity = true
		res.Output = text
		res.OutputSize = len(text)
		res.Duration = time.Since(start)
		c.log().Debug("identity conversion", "format", res.SourceFormat, "size", res.InputSize)
		return res, nil
	}

	// Both identifiers were resolved above.
	src, _ := reg.Lookup(res.SourceFormat)
	dst, _ := reg.Lookup(res.TargetFormat)

	v, err := src.Parse(text)
	if err != nil {
		return nil, c.fail(req, res, err)
	}
	out, err := dst.Serialize(v)
	if err != nil {
		return nil, c.fail(req, res, err)
	}

	res.Output = out
	res.OutputSize = len(out)
	res.Stats = value.Measure(v)
	res.Duration = time.Since(start)
	c.log().Debug("conversion completed",
		"source", res.SourceFormat,
		"target", res.TargetFormat,
		"detected", res.Detected,
		"input_size", res.InputSize,
		"output_size", res.OutputSize,
		"nodes", res.Stats.Nodes,
		"depth", res.Stats.Depth,
		"duration", res.Duration,
	)
	return res, nil
}

// fail wraps cause in a ConversionError, preferring resolved identifiers
// over the ones in the request.
func (c *Converter) fail(req Request, res *Result, cause error) error {
	source, target := res.SourceFormat, res.TargetFormat
	if source == "" {
		source = strings.ToLower(strings.TrimSpace(req.SourceFormat))
		if source == "" {
			source = FormatAuto
		}
	}
	if target == "" {
		target = strings.ToLower(strings.TrimSpace(req.TargetFormat))
	}
	err := &converrors.ConversionError{Source: source, Target: target, Cause: cause}
	c.log().Warn("conversion failed",
		"kind", converrors.RootKind(err),
		"source", source,
		"target", target,
		"error", cause,
	)
	return err
}

// resolve returns the canonical identifier for id, tagging an unknown
// identifier with its role.
func resolve(reg *registry.Registry, id, role string) (string, error) {
	format, err := reg.Canonical(id)
	if err != nil {
		var ufe *converrors.UnsupportedFormatError
		if errors.As(err, &ufe) {
			ufe.Role = role
		}
		return "", err
	}
	return format, nil
}

// Parse decodes payload into the intermediate value and returns it with the
// canonical format. format may be "auto". Errors are returned as the codec
// reports them, without a ConversionError wrapper.
func (c *Converter) Parse(payload []byte, format, filename string) (value.Value, string, error) {
	reg := c.registry()
	var err error
	if !isAuto(format) {
		if format, err = resolve(reg, format, "source"); err != nil {
			return nil, "", err
		}
	}
	if c.MaxInputSize > 0 && int64(len(payload)) > c.MaxInputSize {
		return nil, "", fmt.Errorf("converter: %w: %d bytes, limit is %d", input.ErrTooLarge, len(payload), c.MaxInputSize)
	}
	text, err := textenc.Decode(payload)
	if err != nil {
		return nil, "", err
	}
	if isAuto(format) {
		if format, err = c.detector().Detect(text, filename); err != nil {
			return nil, "", err
		}
	}
	cd, _ := reg.Lookup(format)
	v, err := cd.Parse(text)
	if err != nil {
		return nil, format, err
	}
	return v, format, nil
}

// Validate reports whether payload is well-formed in format. Unknown formats
// and payloads that are not UTF-8 yield false.
func (c *Converter) Validate(payload []byte, format string) bool {
	cd, err := c.registry().Lookup(format)
	if err != nil {
		return false
	}
	text, err := textenc.Decode(payload)
	if err != nil {
		return false
	}
	return cd.Validate(text)
}

// DetectFormat returns the canonical format of payload. A payload that is not
// UTF-8 yields a *converrors.EncodingError.
func (c *Converter) DetectFormat(payload []byte, filename string) (string, error) {
	text, err := textenc.Decode(payload)
	if err != nil {
		return "", err
	}
	return c.detector().Detect(text, filename)
}

// ListFormats returns the canonical identifiers in registry order.
func (c *Converter) ListFormats() []string {
	return c.registry().Formats()
}

// Descriptors returns the registry's format descriptors.
func (c *Converter) Descriptors() []registry.Descriptor {
	return c.registry().Descriptors()
}

// MIMEType returns the media type of format.
func (c *Converter) MIMEType(format string) (string, error) {
	return c.registry().MIMEType(format)
}

// FileExtension returns the preferred file extension of format.
func (c *Converter) FileExtension(format string) (string, error) {
	return c.registry().FileExtension(format)
}
