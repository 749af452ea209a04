package converter

import (
	"errors"
	"fmt"
	"io"

	"github.com/erraggy/dataconv/internal/input"
	"github.com/erraggy/dataconv/internal/options"
	"github.com/erraggy/dataconv/logging"
	"github.com/erraggy/dataconv/registry"
)

// Option is a function that configures a conversion operation
type Option func(*convertConfig) error

// convertConfig holds configuration for a conversion operation
type convertConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte
	text     *string

	sourceFormat string
	targetFormat string
	filename     *string

	registry     *registry.Registry
	jsonComments bool
	logger       logging.Logger
	maxInputSize int64
}

// ConvertWithOptions converts a payload using functional options.
// Exactly one input source and a target format are required. The source
// format defaults to "auto".
//
// File and reader inputs compressed with gzip, zstd, or xz are decompressed
// before conversion, and the compression suffix is dropped from the
// filename hint.
//
// Example:
//
//	result, err := converter.ConvertWithOptions(
//	    converter.WithFilePath("data.csv"),
//	    converter.WithTargetFormat("json"),
//	)
func ConvertWithOptions(opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("converter: invalid options: %w", err)
	}

	c := &Converter{
		Registry:     cfg.registry,
		Logger:       cfg.logger,
		MaxInputSize: cfg.maxInputSize,
	}

	req := Request{
		SourceFormat: cfg.sourceFormat,
		TargetFormat: cfg.targetFormat,
	}

	// Route to the appropriate loader based on input source
	switch {
	case cfg.filePath != nil:
		p, err := input.ReadFile(*cfg.filePath, cfg.maxInputSize)
		if err != nil {
			return nil, fmt.Errorf("converter: reading %s: %w", *cfg.filePath, err)
		}
		req.Payload, req.Filename = p.Data, p.Filename
	case cfg.reader != nil:
		name := ""
		if cfg.filename != nil {
			name = *cfg.filename
		}
		p, err := input.Read(cfg.reader, name, cfg.maxInputSize)
		if err != nil {
			return nil, fmt.Errorf("converter: reading input: %w", err)
		}
		req.Payload, req.Filename = p.Data, p.Filename
	case cfg.bytes != nil:
		req.Payload = cfg.bytes
	case cfg.text != nil:
		req.Payload = []byte(*cfg.text)
	default:
		// Should never reach here due to validation in applyOptions
		return nil, errors.New("converter: no input source specified")
	}

	if cfg.filename != nil && cfg.reader == nil {
		req.Filename = *cfg.filename
	}

	return c.Run(req)
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*convertConfig, error) {
	cfg := &convertConfig{
		sourceFormat: FormatAuto,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource(
		"must specify an input source (use WithFilePath, WithReader, WithBytes, or WithText)",
		"must specify exactly one input source",
		cfg.filePath != nil, cfg.reader != nil, cfg.bytes != nil, cfg.text != nil,
	); err != nil {
		return nil, err
	}

	if cfg.targetFormat == "" {
		return nil, errors.New("must specify a target format (use WithTargetFormat)")
	}

	if cfg.jsonComments {
		if cfg.registry != nil {
			return nil, errors.New("WithJSONComments cannot be combined with WithRegistry")
		}
		cfg.registry = registry.NewWithJSONComments()
	}

	return cfg, nil
}

// WithFilePath specifies a file as the input source. Its base name is used
// as the filename hint unless WithFilename is also given.
func WithFilePath(path string) Option {
	return func(cfg *convertConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *convertConfig) error {
		if r == nil {
			return errors.New("reader cannot be nil")
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *convertConfig) error {
		if data == nil {
			return errors.New("bytes cannot be nil")
		}
		cfg.bytes = data
		return nil
	}
}

// WithText specifies a string as the input source
func WithText(text string) Option {
	return func(cfg *convertConfig) error {
		cfg.text = &text
		return nil
	}
}

// WithSourceFormat sets the source format identifier or alias.
// Default: "auto"
func WithSourceFormat(format string) Option {
	return func(cfg *convertConfig) error {
		cfg.sourceFormat = format
		return nil
	}
}

// WithTargetFormat sets the target format identifier or alias (required)
func WithTargetFormat(format string) Option {
	return func(cfg *convertConfig) error {
		cfg.targetFormat = format
		return nil
	}
}

// WithFilename sets the filename hint used by format detection
func WithFilename(name string) Option {
	return func(cfg *convertConfig) error {
		cfg.filename = &name
		return nil
	}
}

// WithRegistry sets the registry used to resolve formats.
// Default: registry.Default()
func WithRegistry(r *registry.Registry) Option {
	return func(cfg *convertConfig) error {
		if r == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = r
		return nil
	}
}

// WithJSONComments accepts // and /* */ comments and trailing commas in JSON
// input. It cannot be combined with WithRegistry.
func WithJSONComments() Option {
	return func(cfg *convertConfig) error {
		cfg.jsonComments = true
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(l logging.Logger) Option {
	return func(cfg *convertConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithMaxInputSize rejects inputs larger than n bytes after decompression.
// Default: 0 (unlimited)
func WithMaxInputSize(n int64) Option {
	return func(cfg *convertConfig) error {
		if n < 0 {
			return fmt.Errorf("max input size cannot be negative: %d", n)
		}
		cfg.maxInputSize = n
		return nil
	}
}
