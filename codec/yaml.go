package codec

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/erraggy/dataconv/value"
	"go.yaml.in/yaml/v4"
)

// maxAliasExpansion bounds the number of nodes produced by expanding
// aliases, which guards against exponential "billion laughs" documents.
const maxAliasExpansion = 1_000_000

// YAML is the codec for YAML 1.2 documents. Only the first document of a
// stream is converted. Anchors and aliases are expanded and merge keys applied;
// timestamps and binary scalars are kept as strings.
type YAML struct {
	indent int
}

// YAMLOption configures a YAML codec.
type YAMLOption func(*YAML)

// WithYAMLIndent sets the indentation width used by Serialize. The default
// is 2.
func WithYAMLIndent(spaces int) YAMLOption {
	return func(c *YAML) { c.indent = spaces }
}

// NewYAML returns a YAML codec.
func NewYAML(opts ...YAMLOption) *YAML {
	c := &YAML{indent: 2}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format implements Codec.
func (c *YAML) Format() string { return FormatYAML }

// MIMEType implements Codec.
func (c *YAML) MIMEType() string { return "application/x-yaml" }

// FileExtension implements Codec.
func (c *YAML) FileExtension() string { return ".yaml" }

// Validate implements Codec.
func (c *YAML) Validate(text string) bool {
	_, err := c.Parse(text)
	return err == nil
}

// Parse implements Codec. An empty document is Null. Documents after the
// first are checked for well-formedness but not converted.
func (c *YAML) Parse(text string) (value.Value, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return value.Null{}, nil
		}
		return nil, yamlSyntaxError(err)
	}
	for {
		var rest yaml.Node
		err := dec.Decode(&rest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, yamlSyntaxError(err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return value.Null{}, nil
	}
	b := &yamlBuilder{budget: maxAliasExpansion}
	return b.node(doc.Content[0], 0)
}

func yamlSyntaxError(err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	line, col := positionFromMessage(msg)
	return syntaxErr(FormatYAML, line, col, msg, err)
}

type yamlBuilder struct {
	budget int
}

func (b *yamlBuilder) node(n *yaml.Node, aliasDepth int) (value.Value, error) {
	if aliasDepth > 0 {
		b.budget--
		if b.budget < 0 {
			return nil, syntaxErr(FormatYAML, n.Line, n.Column, "alias expansion exceeds limit", nil)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null{}, nil
		}
		return b.node(n.Content[0], aliasDepth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, syntaxErr(FormatYAML, n.Line, n.Column, "unknown anchor "+strconv.Quote(n.Value), nil)
		}
		return b.node(n.Alias, aliasDepth+1)
	case yaml.SequenceNode:
		seq := make(value.Sequence, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := b.node(item, aliasDepth)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	case yaml.MappingNode:
		return b.mapping(n, aliasDepth)
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, syntaxErr(FormatYAML, n.Line, n.Column, "unexpected node", nil)
}

// mapping builds a Mapping. Merged keys ("<<") never override keys written
// explicitly in the mapping, and earlier merge sources win over later ones.
func (b *yamlBuilder) mapping(n *yaml.Node, aliasDepth int) (value.Value, error) {
	m := value.NewMapping(len(n.Content) / 2)
	var merged []*value.Mapping
	explicit := map[string]bool{}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			sources, err := b.mergeSources(valNode, aliasDepth)
			if err != nil {
				return nil, err
			}
			merged = append(merged, sources...)
			continue
		}
		key, err := yamlKey(keyNode)
		if err != nil {
			return nil, err
		}
		v, err := b.node(valNode, aliasDepth)
		if err != nil {
			return nil, err
		}
		explicit[key] = true
		m.Set(key, v)
	}

	if len(merged) == 0 {
		return m, nil
	}
	out := value.NewMapping(m.Len())
	for _, src := range merged {
		for k, v := range src.All() {
			if !explicit[k] && !out.Has(k) {
				out.Set(k, v)
			}
		}
	}
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out, nil
}

func (b *yamlBuilder) mergeSources(n *yaml.Node, aliasDepth int) ([]*value.Mapping, error) {
	v, err := b.node(n, aliasDepth)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *value.Mapping:
		return []*value.Mapping{x}, nil
	case value.Sequence:
		out := make([]*value.Mapping, 0, len(x))
		for _, item := range x {
			m, ok := item.(*value.Mapping)
			if !ok {
				return nil, syntaxErr(FormatYAML, n.Line, n.Column, "merge sequence must contain only mappings", nil)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, syntaxErr(FormatYAML, n.Line, n.Column, "merge value must be a mapping or a sequence of mappings", nil)
}

func yamlKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", syntaxErr(FormatYAML, n.Line, n.Column, "mapping keys must be scalars", nil)
	}
	if n.ShortTag() == "!!null" {
		return "null", nil
	}
	return n.Value, nil
}

func yamlScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool", "!!int", "!!float":
		var x any
		if err := n.Decode(&x); err != nil {
			return nil, syntaxErr(FormatYAML, n.Line, n.Column, err.Error(), err)
		}
		v, err := value.FromAny(x)
		if err != nil {
			return nil, syntaxErr(FormatYAML, n.Line, n.Column, err.Error(), err)
		}
		return v, nil
	}
	return value.String(n.Value), nil
}

// Serialize implements Codec. Output uses block style throughout.
func (c *YAML) Serialize(v value.Value) (string, error) {
	root, err := yamlNode("$", v)
	if err != nil {
		return "", err
	}

	buf := getBuffer()
	defer putBuffer(buf)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(c.indent)
	if err := enc.Encode(root); err != nil {
		return "", yamlEncodeError(err)
	}
	if err := enc.Close(); err != nil {
		return "", yamlEncodeError(err)
	}
	return buf.String(), nil
}

func yamlEncodeError(err error) error {
	return shapeErr(FormatYAML, "$", strings.TrimPrefix(err.Error(), "yaml: "))
}

func scalarNode(tag, v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}

func yamlNode(path string, v value.Value) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil, value.Null:
		return scalarNode("!!null", "null"), nil
	case value.Bool:
		return scalarNode("!!bool", strconv.FormatBool(bool(x))), nil
	case value.Integer:
		return scalarNode("!!int", strconv.FormatInt(int64(x), 10)), nil
	case value.Float:
		return scalarNode("!!float", yamlFloat(float64(x))), nil
	case value.String:
		return scalarNode("!!str", string(x)), nil
	case value.Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, len(x))}
		for i, item := range x {
			child, err := yamlNode(value.IndexPath(path, i), item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *value.Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*x.Len())}
		for k, item := range x.All() {
			child, err := yamlNode(value.KeyPath(path, k), item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, scalarNode("!!str", k), child)
		}
		return node, nil
	}
	return nil, shapeErr(FormatYAML, path, "unknown value type")
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return value.FormatFloat(f)
}
