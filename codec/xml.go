package codec

import (
	"encoding/xml"
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
	"github.com/erraggy/dataconv/value"
)

const (
	// xmlTextKey holds the character data of an element that also has
	// child elements.
	xmlTextKey = "#text"
	// xmlItemTag names elements emitted for sequences nested directly in
	// sequences, and for the items of a root-level sequence.
	xmlItemTag = "item"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`
)

// XML is the codec for XML 1.0 documents.
//
// Parsing maps the root element to a single-key Mapping. Child elements become
// nested entries; siblings sharing a tag collapse into a Sequence. Leaf text
// is trimmed and kept as a String, and an empty element becomes Null.
// Attributes, comments, and processing instructions are discarded.
type XML struct {
	indent   string
	rootName string
}

// XMLOption configures an XML codec.
type XMLOption func(*XML)

// WithXMLIndent sets the indentation used by Serialize. The default is two
// spaces.
func WithXMLIndent(indent string) XMLOption {
	return func(c *XML) { c.indent = indent }
}

// WithXMLRootName sets the element that wraps values without a natural
// single root. The default is "root".
func WithXMLRootName(name string) XMLOption {
	return func(c *XML) { c.rootName = name }
}

// NewXML returns an XML codec.
func NewXML(opts ...XMLOption) *XML {
	c := &XML{indent: "  ", rootName: "root"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format implements Codec.
func (c *XML) Format() string { return FormatXML }

// MIMEType implements Codec.
func (c *XML) MIMEType() string { return "application/xml" }

// FileExtension implements Codec.
func (c *XML) FileExtension() string { return ".xml" }

// Validate implements Codec.
func (c *XML) Validate(text string) bool {
	_, err := c.document(text)
	return err == nil
}

// Parse implements Codec.
func (c *XML) Parse(text string) (value.Value, error) {
	root, err := c.document(text)
	if err != nil {
		return nil, err
	}
	m := value.NewMapping(1)
	m.Set(xmlName(root), xmlElement(root))
	return m, nil
}

// document parses text and returns its single root element.
func (c *XML) document(text string) (*xmlquery.Node, error) {
	doc, err := xmlquery.ParseWithOptions(strings.NewReader(text), xmlquery.ParserOptions{WithLineNumbers: true})
	if err != nil {
		var se *xml.SyntaxError
		if errors.As(err, &se) {
			return nil, syntaxErr(FormatXML, se.Line, 0, se.Msg, err)
		}
		line, col := positionFromMessage(err.Error())
		return nil, syntaxErr(FormatXML, line, col, strings.TrimPrefix(err.Error(), "xmlquery: "), err)
	}

	// Character data ahead of the first element is attached as a sibling of
	// the document node rather than as a child.
	var root *xmlquery.Node
	check := func(n *xmlquery.Node) error {
		switch n.Type {
		case xmlquery.ElementNode:
			if root != nil {
				return syntaxErr(FormatXML, n.LineNumber, 0, "document has more than one root element", nil)
			}
			root = n
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(n.Data) != "" {
				return syntaxErr(FormatXML, n.LineNumber, 0, "text outside the root element", nil)
			}
		}
		return nil
	}
	for top := doc; top != nil; top = top.NextSibling {
		if top.Type != xmlquery.DocumentNode {
			if err := check(top); err != nil {
				return nil, err
			}
			continue
		}
		for n := top.FirstChild; n != nil; n = n.NextSibling {
			if err := check(n); err != nil {
				return nil, err
			}
		}
	}
	if root == nil {
		return nil, syntaxErr(FormatXML, 0, 0, "document has no root element", nil)
	}
	return root, nil
}

func xmlName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func xmlElement(n *xmlquery.Node) value.Value {
	var (
		text     strings.Builder
		children *value.Mapping
	)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(child.Data)
		case xmlquery.ElementNode:
			if children == nil {
				children = value.NewMapping(0)
			}
			name := xmlName(child)
			v := xmlElement(child)
			// Element values are never sequences, so an existing Sequence
			// means the tag has already repeated.
			if prev, ok := children.Get(name); ok {
				seq, isSeq := prev.(value.Sequence)
				if !isSeq {
					seq = value.Sequence{prev}
				}
				children.Set(name, append(seq, v))
				continue
			}
			children.Set(name, v)
		}
	}

	trimmed := strings.TrimSpace(text.String())
	if children == nil {
		if trimmed == "" {
			return value.Null{}
		}
		return value.String(trimmed)
	}
	if trimmed != "" {
		children.Set(xmlTextKey, value.String(trimmed))
	}
	return children
}

// Serialize implements Codec.
//
// A Mapping with exactly one non-sequence entry becomes the document root.
// Any other value is wrapped in the configured root element. Sequence values
// repeat their key once per item; sequences nested in sequences, and a
// sequence at the root, use <item> elements.
func (c *XML) Serialize(v value.Value) (string, error) {
	name, path, content := c.rootOf(v)
	root, err := xmlBuild(path, name, content)
	if err != nil {
		return "", err
	}

	buf := getBuffer()
	defer putBuffer(buf)
	buf.WriteString(xmlHeader)
	opts := []xmlquery.OutputOption{xmlquery.WithOutputSelf(), xmlquery.WithEmptyTagSupport()}
	if c.indent != "" {
		opts = append(opts, xmlquery.WithIndentation(c.indent))
	} else {
		buf.WriteByte('\n')
	}
	if err := root.WriteWithOptions(buf, opts...); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return xmlNamedEntities.Replace(buf.String()), nil
}

// xmlNamedEntities rewrites the numeric quote escapes xmlquery emits. A
// literal "&#34;" in the input is already written as "&amp;#34;".
var xmlNamedEntities = strings.NewReplacer("&#34;", "&quot;", "&#39;", "&apos;")

func (c *XML) rootOf(v value.Value) (name, path string, content value.Value) {
	if m, ok := v.(*value.Mapping); ok && m.Len() == 1 {
		k, inner := m.At(0)
		if _, isSeq := inner.(value.Sequence); !isSeq && k != xmlTextKey {
			return k, value.KeyPath("$", k), inner
		}
	}
	return c.rootName, "$", v
}

func xmlBuild(path, name string, v value.Value) (*xmlquery.Node, error) {
	if err := checkXMLName(path, name); err != nil {
		return nil, err
	}
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}

	switch x := v.(type) {
	case nil, value.Null:
	case value.Sequence:
		for i, item := range x {
			child, err := xmlBuild(value.IndexPath(path, i), xmlItemTag, item)
			if err != nil {
				return nil, err
			}
			xmlquery.AddChild(n, child)
		}
	case *value.Mapping:
		for k, item := range x.All() {
			childPath := value.KeyPath(path, k)
			if k == xmlTextKey {
				if err := xmlAddText(n, childPath, item); err != nil {
					return nil, err
				}
				continue
			}
			if seq, ok := item.(value.Sequence); ok {
				for i, elem := range seq {
					child, err := xmlBuild(value.IndexPath(childPath, i), k, elem)
					if err != nil {
						return nil, err
					}
					xmlquery.AddChild(n, child)
				}
				continue
			}
			child, err := xmlBuild(childPath, k, item)
			if err != nil {
				return nil, err
			}
			xmlquery.AddChild(n, child)
		}
	default:
		if err := xmlAddText(n, path, v); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func xmlAddText(n *xmlquery.Node, path string, v value.Value) error {
	var text string
	switch x := v.(type) {
	case nil, value.Null:
		return nil
	case value.Bool:
		text = strconv.FormatBool(bool(x))
	case value.Integer:
		text = strconv.FormatInt(int64(x), 10)
	case value.Float:
		text = value.FormatFloat(float64(x))
	case value.String:
		text = string(x)
	default:
		return shapeErr(FormatXML, path, "text content must be a scalar, got "+v.Kind().String())
	}
	if i := strings.IndexFunc(text, func(r rune) bool { return !isXMLChar(r) }); i >= 0 {
		r, _ := utf8.DecodeRuneInString(text[i:])
		return shapeErr(FormatXML, path, "character "+strconv.QuoteRune(r)+" is not allowed in XML")
	}
	xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
	return nil
}

func checkXMLName(path, name string) error {
	if strings.ContainsRune(name, ':') {
		return shapeErr(FormatXML, path, strconv.Quote(name)+" uses a namespace prefix, which is not supported")
	}
	if !isXMLName(name) {
		return shapeErr(FormatXML, path, strconv.Quote(name)+" is not a valid XML element name")
	}
	return nil
}

// isXMLName reports whether s is a valid unprefixed XML element name.
func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || r == '·' || unicode.IsDigit(r) ||
			unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
