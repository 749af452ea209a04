package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/erraggy/dataconv/value"
	"github.com/tidwall/jsonc"
)

// maxJSONDepth bounds container nesting while parsing.
const maxJSONDepth = 10000

// JSON is the codec for RFC 8259 JSON.
type JSON struct {
	comments bool
	indent   string
}

// JSONOption configures a JSON codec.
type JSONOption func(*JSON)

// WithJSONComments makes Parse and Validate accept // and /* */ comments and
// trailing commas.
func WithJSONComments() JSONOption {
	return func(c *JSON) { c.comments = true }
}

// WithJSONIndent sets the indentation used by Serialize. The default is two
// spaces.
func WithJSONIndent(indent string) JSONOption {
	return func(c *JSON) { c.indent = indent }
}

// NewJSON returns a JSON codec.
func NewJSON(opts ...JSONOption) *JSON {
	c := &JSON{indent: "  "}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format implements Codec.
func (c *JSON) Format() string { return FormatJSON }

// MIMEType implements Codec.
func (c *JSON) MIMEType() string { return "application/json" }

// FileExtension implements Codec.
func (c *JSON) FileExtension() string { return ".json" }

// Validate implements Codec.
func (c *JSON) Validate(text string) bool {
	_, err := c.Parse(text)
	return err == nil
}

// Parse implements Codec. Object keys keep their source order; a repeated key
// keeps its first position and its last value.
func (c *JSON) Parse(text string) (value.Value, error) {
	src := text
	if c.comments {
		src = string(jsonc.ToJSON([]byte(text)))
	}

	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	p := &jsonParser{dec: dec}

	v, err := p.value(0)
	if err != nil {
		return nil, p.syntaxError(src, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, p.syntaxError(src, err)
	}
	return v, nil
}

type jsonParser struct {
	dec *json.Decoder
}

func (p *jsonParser) value(depth int) (value.Value, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}
	return p.fromToken(tok, depth)
}

func (p *jsonParser) fromToken(tok json.Token, depth int) (value.Value, error) {
	switch t := tok.(type) {
	case nil:
		return value.Null{}, nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case json.Number:
		return jsonNumber(t), nil
	case json.Delim:
		if depth >= maxJSONDepth {
			return nil, errors.New("exceeded max nesting depth")
		}
		switch t {
		case '{':
			return p.object(depth + 1)
		case '[':
			return p.array(depth + 1)
		}
	}
	return nil, errors.New("unexpected token")
}

func (p *jsonParser) object(depth int) (value.Value, error) {
	m := value.NewMapping(0)
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key must be a string")
		}
		v, err := p.value(depth)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
}

func (p *jsonParser) array(depth int) (value.Value, error) {
	seq := value.Sequence{}
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return seq, nil
		}
		v, err := p.fromToken(tok, depth)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
}

func (p *jsonParser) syntaxError(src string, err error) error {
	offset := int(p.dec.InputOffset())
	msg := err.Error()
	var se *json.SyntaxError
	switch {
	case errors.As(err, &se):
		offset = int(se.Offset)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		offset = len(src)
		msg = "unexpected end of input"
	}
	line, col := lineCol(src, offset)
	return syntaxErr(FormatJSON, line, col, msg, err)
}

// jsonNumber maps a number literal to Integer when it has no fraction or
// exponent and fits in 64 bits, and to Float otherwise.
func jsonNumber(n json.Number) value.Value {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.Integer(i)
		}
	}
	// Out-of-range literals become ±Inf rather than failing.
	f, _ := strconv.ParseFloat(s, 64)
	return value.Float(f)
}

// Serialize implements Codec. Output is indented, keeps mapping order, and
// leaves non-ASCII and HTML characters unescaped.
func (c *JSON) Serialize(v value.Value) (string, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	w := newJSONWriter(buf, false)
	if err := w.write("$", v); err != nil {
		return "", err
	}
	if c.indent == "" {
		return buf.String(), nil
	}

	out := getBuffer()
	defer putBuffer(out)
	if err := json.Indent(out, buf.Bytes(), "", c.indent); err != nil {
		return "", err
	}
	return out.String(), nil
}

// compactJSON renders v on one line. Non-finite floats are written as NaN,
// Infinity, and -Infinity so that it never fails.
func compactJSON(v value.Value) string {
	buf := getBuffer()
	defer putBuffer(buf)
	_ = newJSONWriter(buf, true).write("$", v)
	return buf.String()
}

type jsonWriter struct {
	buf          *bytes.Buffer
	scratch      bytes.Buffer
	enc          *json.Encoder
	allowSpecial bool
}

func newJSONWriter(buf *bytes.Buffer, allowSpecial bool) *jsonWriter {
	w := &jsonWriter{buf: buf, allowSpecial: allowSpecial}
	w.enc = json.NewEncoder(&w.scratch)
	w.enc.SetEscapeHTML(false)
	return w
}

func (w *jsonWriter) write(path string, v value.Value) error {
	switch x := v.(type) {
	case nil, value.Null:
		w.buf.WriteString("null")
	case value.Bool:
		w.buf.WriteString(strconv.FormatBool(bool(x)))
	case value.Integer:
		w.buf.WriteString(strconv.FormatInt(int64(x), 10))
	case value.Float:
		return w.float(path, float64(x))
	case value.String:
		w.str(string(x))
	case value.Sequence:
		w.buf.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			if err := w.write(value.IndexPath(path, i), item); err != nil {
				return err
			}
		}
		w.buf.WriteByte(']')
	case *value.Mapping:
		w.buf.WriteByte('{')
		first := true
		for k, item := range x.All() {
			if !first {
				w.buf.WriteByte(',')
			}
			first = false
			w.str(k)
			w.buf.WriteByte(':')
			if err := w.write(value.KeyPath(path, k), item); err != nil {
				return err
			}
		}
		w.buf.WriteByte('}')
	default:
		return shapeErr(FormatJSON, path, "unknown value type")
	}
	return nil
}

func (w *jsonWriter) float(path string, f float64) error {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		if !w.allowSpecial {
			return shapeErr(FormatJSON, path, "non-finite number "+value.FormatFloat(f)+" has no JSON representation")
		}
		switch {
		case math.IsNaN(f):
			w.buf.WriteString("NaN")
		case f > 0:
			w.buf.WriteString("Infinity")
		default:
			w.buf.WriteString("-Infinity")
		}
		return nil
	}
	w.buf.WriteString(value.FormatFloat(f))
	return nil
}

// str writes s as a JSON string literal.
func (w *jsonWriter) str(s string) {
	w.scratch.Reset()
	_ = w.enc.Encode(s)
	w.buf.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte{'\n'}))
}
