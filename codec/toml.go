package codec

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/erraggy/dataconv/value"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// tomlWrapKey holds non-table values, since a TOML document is always a table.
const tomlWrapKey = "data"

// TOML is the codec for TOML v1.0 documents.
//
// Dates and times parse to Strings in TOML's textual form. Mapping order is
// preserved in both directions, except that TOML requires plain keys to be
// written before sub-tables.
type TOML struct{}

// NewTOML returns a TOML codec.
func NewTOML() *TOML { return &TOML{} }

// Format implements Codec.
func (c *TOML) Format() string { return FormatTOML }

// MIMEType implements Codec.
func (c *TOML) MIMEType() string { return "application/toml" }

// FileExtension implements Codec.
func (c *TOML) FileExtension() string { return ".toml" }

// Validate implements Codec.
func (c *TOML) Validate(text string) bool {
	_, err := c.Parse(text)
	return err == nil
}

// Parse implements Codec. The result is always a Mapping.
func (c *TOML) Parse(text string) (value.Value, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(text), &data); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			line, col := de.Position()
			return nil, syntaxErr(FormatTOML, line, col, strings.TrimPrefix(de.Error(), "toml: "), err)
		}
		msg := strings.TrimPrefix(err.Error(), "toml: ")
		line, col := tomlRedefinition(text)
		if line == 0 {
			line, col = positionFromMessage(msg)
		}
		return nil, syntaxErr(FormatTOML, line, col, msg, err)
	}
	order := tomlKeyOrder([]byte(text))
	return tomlValue(order, nil, data)
}

// tomlOrder records the source order of keys for each table path. Array
// indexes are not part of the path, so all tables of an array share one order.
type tomlOrder map[string][]string

func tomlPathKey(path []string) string { return strings.Join(path, "\x00") }

func (o tomlOrder) add(path []string, key string) {
	pk := tomlPathKey(path)
	if !slices.Contains(o[pk], key) {
		o[pk] = append(o[pk], key)
	}
}

// addPath registers every segment of full under its parent.
func (o tomlOrder) addPath(full []string) {
	for i := range full {
		o.add(full[:i], full[i])
	}
}

// tomlKeyOrder scans the expression stream of a document that has already
// decoded successfully.
func tomlKeyOrder(doc []byte) tomlOrder {
	order := tomlOrder{}
	var p unstable.Parser
	p.Reset(doc)

	var table []string
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = tomlKeyParts(expr.Key())
			order.addPath(table)
		case unstable.KeyValue:
			order.keyValue(table, expr)
		}
	}
	return order
}

func (o tomlOrder) keyValue(base []string, kv *unstable.Node) {
	full := append(slices.Clone(base), tomlKeyParts(kv.Key())...)
	o.addPath(full)
	o.nested(full, kv.Value())
}

// nested records keys of inline tables, including those inside arrays.
func (o tomlOrder) nested(path []string, n *unstable.Node) {
	switch n.Kind {
	case unstable.InlineTable:
		it := n.Children()
		for it.Next() {
			o.keyValue(path, it.Node())
		}
	case unstable.Array:
		it := n.Children()
		for it.Next() {
			o.nested(path, it.Node())
		}
	}
}

// tomlRedefinition returns the position of the first key or table header
// that defines a path a second time, or 0, 0 if there is none. go-toml
// reports redefinitions without a position.
func tomlRedefinition(text string) (line, col int) {
	var p unstable.Parser
	p.Reset([]byte(text))

	defined := map[string]bool{}
	var table []string
	for p.NextExpression() {
		expr := p.Expression()
		var full []string
		switch expr.Kind {
		case unstable.ArrayTable:
			table = tomlKeyParts(expr.Key())
			// Each header starts a new element, so its keys may repeat.
			prefix := tomlPathKey(table) + "\x00"
			for k := range defined {
				if strings.HasPrefix(k, prefix) {
					delete(defined, k)
				}
			}
			continue
		case unstable.Table:
			table = tomlKeyParts(expr.Key())
			full = table
		case unstable.KeyValue:
			full = append(slices.Clone(table), tomlKeyParts(expr.Key())...)
		default:
			continue
		}
		pk := tomlPathKey(full)
		if defined[pk] {
			it := expr.Key()
			if it.Next() {
				return lineCol(text, int(it.Node().Raw.Offset))
			}
			return 0, 0
		}
		defined[pk] = true
	}
	return 0, 0
}

func tomlKeyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// mergeKeyOrder returns keys in source order, with any extra keys from data
// appended sorted.
func mergeKeyOrder(sourceKeys []string, data map[string]any) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]bool, len(sourceKeys))
	for _, k := range sourceKeys {
		if _, ok := data[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range data {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func tomlValue(order tomlOrder, path []string, x any) (value.Value, error) {
	switch t := x.(type) {
	case map[string]any:
		keys := mergeKeyOrder(order[tomlPathKey(path)], t)
		m := value.NewMapping(len(keys))
		for _, k := range keys {
			v, err := tomlValue(order, append(slices.Clone(path), k), t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	case []any:
		seq := make(value.Sequence, 0, len(t))
		for _, item := range t {
			v, err := tomlValue(order, path, item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	}
	v, err := value.FromAny(x)
	if err != nil {
		return nil, syntaxErr(FormatTOML, 0, 0, err.Error(), err)
	}
	return v, nil
}

// Serialize implements Codec. A non-Mapping root is written under the key
// "data". Null mapping entries are omitted because TOML has no null; a Null
// inside an array cannot be omitted and is rejected.
func (c *TOML) Serialize(v value.Value) (string, error) {
	root, ok := v.(*value.Mapping)
	if !ok {
		root = value.NewMapping(1)
		root.Set(tomlWrapKey, v)
	}
	exp := !tomlHasMarker(root)
	data, err := tomlGo("$", root, exp)
	if err != nil {
		return "", err
	}

	buf := getBuffer()
	defer putBuffer(buf)
	enc := toml.NewEncoder(buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(data); err != nil {
		return "", shapeErr(FormatTOML, "$", strings.TrimPrefix(err.Error(), "toml: "))
	}
	if exp {
		return tomlExpPattern.ReplaceAllString(buf.String(), "$1"), nil
	}
	return buf.String(), nil
}

// tomlExpMarker tags floats that pass through the encoder as literal strings,
// since the encoder writes every float in full decimal (1e300 takes 301
// digits). Serialize strips the quotes and the tag afterwards.
const tomlExpMarker = "dataconv:exp-float:"

var tomlExpPattern = regexp.MustCompile(`'` + regexp.QuoteMeta(tomlExpMarker) + `([^']*)'`)

// tomlExpFloat is the exponent form of a float, as value.FormatFloat writes it.
type tomlExpFloat string

// MarshalText implements encoding.TextMarshaler.
func (f tomlExpFloat) MarshalText() ([]byte, error) {
	return []byte(tomlExpMarker + string(f)), nil
}

// tomlHasMarker reports whether a key or string in v contains tomlExpMarker,
// in which case floats are left to the encoder.
func tomlHasMarker(v value.Value) bool {
	found := false
	_ = value.Walk(v, func(path string, n value.Value) error {
		s, ok := n.(value.String)
		if strings.Contains(path, tomlExpMarker) || (ok && strings.Contains(string(s), tomlExpMarker)) {
			found = true
			return errTomlMarkerFound
		}
		return nil
	})
	return found
}

var errTomlMarkerFound = errors.New("marker found")

// tomlGo converts v into a Go value for the encoder. Mappings become
// struct values with one field per key, because the encoder writes struct
// fields in declaration order but sorts map keys. Mappings whose keys cannot
// be expressed as struct tags fall back to maps.
func tomlGo(path string, v value.Value, exp bool) (any, error) {
	switch x := v.(type) {
	case nil, value.Null:
		return nil, shapeErr(FormatTOML, path, "null has no TOML representation")
	case value.Bool:
		return bool(x), nil
	case value.Integer:
		return int64(x), nil
	case value.Float:
		if f := value.FormatFloat(float64(x)); exp && strings.Contains(f, "e") {
			return tomlExpFloat(f), nil
		}
		return float64(x), nil
	case value.String:
		return string(x), nil
	case value.Sequence:
		out := make([]any, 0, len(x))
		for i, item := range x {
			g, err := tomlGo(value.IndexPath(path, i), item, exp)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	case *value.Mapping:
		return tomlTable(path, x, exp)
	}
	return nil, shapeErr(FormatTOML, path, "unknown value type")
}

func tomlTable(path string, m *value.Mapping, exp bool) (any, error) {
	keys := make([]string, 0, m.Len())
	vals := make([]any, 0, m.Len())
	for k, item := range m.All() {
		if value.IsNull(item) {
			continue
		}
		g, err := tomlGo(value.KeyPath(path, k), item, exp)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		vals = append(vals, g)
	}

	if slices.ContainsFunc(keys, func(k string) bool { return !tomlTagSafe(k) }) {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			out[k] = vals[i]
		}
		return out, nil
	}

	fields := make([]reflect.StructField, len(keys))
	for i, k := range keys {
		fields[i] = reflect.StructField{
			Name: "F" + strconv.Itoa(i),
			Type: reflect.TypeOf(vals[i]),
			Tag:  reflect.StructTag(fmt.Sprintf("toml:%q", k)),
		}
	}
	sv := reflect.New(reflect.StructOf(fields)).Elem()
	for i, val := range vals {
		sv.Field(i).Set(reflect.ValueOf(val))
	}
	return sv.Interface(), nil
}

// tomlTagSafe reports whether key survives as a struct tag name for the
// encoder: non-empty, no tag option separator, and only letters, digits,
// spaces, and punctuation other than quotes and backslash.
func tomlTagSafe(key string) bool {
	if key == "" || key == "-" {
		return false
	}
	for _, r := range key {
		switch {
		case strings.ContainsRune("!#$%&()*+-./:;<=>?@[]^_{|}~ ", r):
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			return false
		}
	}
	return true
}
