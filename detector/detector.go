// Package detector infers the format of a payload from its filename and
// content.
//
// Detection is ordered and the first match wins:
//
//  1. If a filename hint is given and its extension names a registered
//     format (".yml" counts as YAML), that codec validates the content and
//     its format is returned on success.
//  2. Otherwise every registered codec is probed in registry order, which for
//     the default registry is JSON, XML, CSV, YAML, TOML. CSV comes before
//     YAML because almost any plain text is a valid YAML scalar.
//  3. If nothing validates, detection fails with a *converrors.DetectionError.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/erraggy/dataconv/converrors"
	"github.com/erraggy/dataconv/logging"
	"github.com/erraggy/dataconv/registry"
)

// Detector infers payload formats. It is safe for concurrent use.
type Detector struct {
	registry *registry.Registry
	logger   logging.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithRegistry sets the registry whose codecs are probed.
// Default: registry.Default()
func WithRegistry(r *registry.Registry) Option {
	return func(d *Detector) {
		if r != nil {
			d.registry = r
		}
	}
}

// WithLogger sets the logger for probe results, which are logged at debug
// level.
func WithLogger(l logging.Logger) Option {
	return func(d *Detector) { d.logger = logging.OrNop(l) }
}

// New returns a Detector.
func New(opts ...Option) *Detector {
	d := &Detector{registry: registry.Default(), logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect is a convenience function that detects the format of content with
// the default registry. filename may be empty.
func Detect(content, filename string) (string, error) {
	return New().Detect(content, filename)
}

// Detect returns the canonical identifier of the format of content. filename
// is an optional hint; only its extension is used.
func (d *Detector) Detect(content, filename string) (string, error) {
	var tried []string

	hinted, ok := FormatFromFilename(d.registry, filename)
	if ok {
		tried = append(tried, hinted)
		if d.probe(hinted, content) {
			d.logger.Debug("format detected from filename", "filename", filename, "format", hinted)
			return hinted, nil
		}
	}

	for _, c := range d.registry.Codecs() {
		format := strings.ToLower(c.Format())
		if ok && format == hinted {
			continue
		}
		tried = append(tried, format)
		if d.probe(format, content) {
			d.logger.Debug("format detected from content", "format", format, "probes", len(tried))
			return format, nil
		}
	}

	return "", &converrors.DetectionError{Filename: filename, Tried: tried}
}

func (d *Detector) probe(format, content string) bool {
	c, err := d.registry.Lookup(format)
	if err != nil {
		return false
	}
	ok := c.Validate(content)
	d.logger.Debug("detection probe", "format", format, "valid", ok)
	return ok
}

// FormatFromFilename returns the canonical format named by the extension of
// filename, if r knows it.
func FormatFromFilename(r *registry.Registry, filename string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), ".")
	if ext == "" {
		return "", false
	}
	format, err := r.Canonical(ext)
	if err != nil {
		return "", false
	}
	return format, true
}
