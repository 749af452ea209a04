package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/erraggy/dataconv/codec"
	"github.com/erraggy/dataconv/converrors"
)

// Descriptor describes a registered format.
type Descriptor struct {
	// Format is the canonical identifier
	Format string `json:"format"`
	// Aliases are additional identifiers that resolve to Format
	Aliases []string `json:"aliases,omitempty"`
	// MIMEType is the media type of the format
	MIMEType string `json:"mime_type"`
	// Extension is the preferred file extension, including the leading dot
	Extension string `json:"extension"`
}

// Registry resolves format identifiers to codecs.
type Registry struct {
	codecs  []codec.Codec
	names   map[string]codec.Codec
	aliases map[string][]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		names:   make(map[string]codec.Codec),
		aliases: make(map[string][]string),
	}
}

// standardAliases lists the aliases attached by NewStandard.
var standardAliases = map[string][]string{
	codec.FormatYAML: {"yml"},
}

// NewStandard returns a registry holding codecs in the given order, with the
// standard aliases attached ("yml" for YAML). It panics if two codecs claim
// the same identifier.
func NewStandard(codecs ...codec.Codec) *Registry {
	r := New()
	for _, c := range codecs {
		if err := r.Register(c, standardAliases[c.Format()]...); err != nil {
			panic(err)
		}
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewStandard(codec.Defaults()...)
})

// Default returns the shared registry of the built-in codecs. It is built on
// first use.
func Default() *Registry {
	return defaultRegistry()
}

// NewWithJSONComments returns a standard registry of the built-in codecs
// whose JSON codec accepts comments and trailing commas.
func NewWithJSONComments() *Registry {
	return NewStandard(
		codec.NewJSON(codec.WithJSONComments()),
		codec.NewXML(),
		codec.NewCSV(),
		codec.NewYAML(),
		codec.NewTOML(),
	)
}

// Register adds c under its canonical identifier and any aliases.
// Register is not safe for concurrent use; finish registration before
// sharing the registry.
func (r *Registry) Register(c codec.Codec, aliases ...string) error {
	if c == nil {
		return fmt.Errorf("registry: codec cannot be nil")
	}
	format := normalize(c.Format())
	if format == "" {
		return fmt.Errorf("registry: codec has an empty format identifier")
	}
	ids := append([]string{format}, aliases...)
	for i, id := range ids {
		id = normalize(id)
		if id == "" {
			return fmt.Errorf("registry: empty alias for %s", format)
		}
		if _, taken := r.names[id]; taken || slices.Contains(ids[:i], id) {
			return fmt.Errorf("registry: identifier %q is already registered", id)
		}
		ids[i] = id
	}

	r.codecs = append(r.codecs, c)
	for _, id := range ids {
		r.names[id] = c
	}
	if len(ids) > 1 {
		r.aliases[format] = ids[1:]
	}
	return nil
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Lookup returns the codec registered under id or one of its aliases.
// Unknown identifiers yield a *converrors.UnsupportedFormatError.
func (r *Registry) Lookup(id string) (codec.Codec, error) {
	if c, ok := r.names[normalize(id)]; ok {
		return c, nil
	}
	return nil, &converrors.UnsupportedFormatError{Format: id, Known: r.Formats()}
}

// Has reports whether id names a registered format or alias.
func (r *Registry) Has(id string) bool {
	_, ok := r.names[normalize(id)]
	return ok
}

// Canonical returns the canonical identifier for id.
func (r *Registry) Canonical(id string) (string, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	return normalize(c.Format()), nil
}

// Formats returns the canonical identifiers in registration order.
func (r *Registry) Formats() []string {
	out := make([]string, len(r.codecs))
	for i, c := range r.codecs {
		out[i] = normalize(c.Format())
	}
	return out
}

// Codecs returns the registered codecs in registration order.
func (r *Registry) Codecs() []codec.Codec {
	return slices.Clone(r.codecs)
}

// Describe returns the descriptor for id.
func (r *Registry) Describe(id string) (Descriptor, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return Descriptor{}, err
	}
	return r.describe(c), nil
}

// Descriptors returns a descriptor per format, in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.codecs))
	for i, c := range r.codecs {
		out[i] = r.describe(c)
	}
	return out
}

func (r *Registry) describe(c codec.Codec) Descriptor {
	format := normalize(c.Format())
	return Descriptor{
		Format:    format,
		Aliases:   slices.Clone(r.aliases[format]),
		MIMEType:  c.MIMEType(),
		Extension: c.FileExtension(),
	}
}

// MIMEType returns the media type of the format named by id.
func (r *Registry) MIMEType(id string) (string, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	return c.MIMEType(), nil
}

// FileExtension returns the preferred file extension of the format named by
// id, including the leading dot.
func (r *Registry) FileExtension(id string) (string, error) {
	c, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	return c.FileExtension(), nil
}
