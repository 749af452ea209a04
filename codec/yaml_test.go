package codec

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/erraggy/dataconv/converrors"
	"github.com/erraggy/dataconv/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLParse(t *testing.T) {
	c := NewYAML()

	t.Run("mapping keeps order", func(t *testing.T) {
		got, err := c.Parse("name: test\nvalue: 123\nlist:\n  - a\n  - 2\n")
		require.NoError(t, err)
		want := mapping(
			"name", value.String("test"),
			"value", value.Integer(123),
			"list", value.Sequence{value.String("a"), value.Integer(2)},
		)
		assert.True(t, value.EqualOrdered(want, got), "got %v", got)
	})

	t.Run("scalar tags", func(t *testing.T) {
		src := strings.Join([]string{
			"bool: true",
			"float: 1.5",
			"null: ~",
			"hex: 0x1F",
			"inf: .inf",
			"quoted: '123'",
			"date: 2001-12-14",
			"big: 9223372036854775808",
			"text: hello world",
		}, "\n")
		got, err := c.Parse(src)
		require.NoError(t, err)
		m := got.(*value.Mapping)

		get := func(k string) value.Value {
			v, ok := m.Get(k)
			require.True(t, ok, "missing %q", k)
			return v
		}
		assert.Equal(t, value.Bool(true), get("bool"))
		assert.Equal(t, value.Float(1.5), get("float"))
		assert.Equal(t, value.Null{}, get("null"))
		assert.Equal(t, value.Integer(31), get("hex"))
		assert.Equal(t, value.Float(math.Inf(1)), get("inf"))
		assert.Equal(t, value.String("123"), get("quoted"))
		assert.Equal(t, value.String("2001-12-14"), get("date"))
		assert.Equal(t, value.Float(9223372036854775808), get("big"))
		assert.Equal(t, value.String("hello world"), get("text"))
	})

	t.Run("duplicate keys are last-wins", func(t *testing.T) {
		got, err := c.Parse("a: 1\nb: 2\na: 3\n")
		require.NoError(t, err)
		assert.True(t, value.EqualOrdered(mapping("a", value.Integer(3), "b", value.Integer(2)), got))
	})

	t.Run("null key", func(t *testing.T) {
		got, err := c.Parse("~: 1\n")
		require.NoError(t, err)
		assert.Equal(t, mapping("null", value.Integer(1)), got)
	})

	t.Run("anchors and aliases", func(t *testing.T) {
		got, err := c.Parse("x: &v [1, 2]\ny: *v\n")
		require.NoError(t, err)
		want := mapping(
			"x", value.Sequence{value.Integer(1), value.Integer(2)},
			"y", value.Sequence{value.Integer(1), value.Integer(2)},
		)
		assert.True(t, value.EqualOrdered(want, got))
	})

	t.Run("merge keys", func(t *testing.T) {
		src := `base: &base
  a: 1
  b: 2
other: &other
  b: 20
  c: 30
derived:
  <<: [*base, *other]
  b: 3
`
		got, err := c.Parse(src)
		require.NoError(t, err)
		derived, _ := got.(*value.Mapping).Get("derived")
		want := mapping("a", value.Integer(1), "b", value.Integer(3), "c", value.Integer(30))
		assert.True(t, value.Equal(want, derived), "got %v", derived)
	})

	t.Run("alias expansion is bounded", func(t *testing.T) {
		var b strings.Builder
		b.WriteString(`a: &a ["lol","lol","lol","lol","lol","lol","lol","lol","lol","lol"]` + "\n")
		prev := "a"
		for _, name := range []string{"b", "c", "d", "e", "f", "g", "h", "i"} {
			refs := strings.TrimSuffix(strings.Repeat("*"+prev+",", 10), ",")
			b.WriteString(name + ": &" + name + " [" + refs + "]\n")
			prev = name
		}
		_, err := c.Parse(b.String())
		var se *converrors.SyntaxError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Contains(t, se.Message, "alias expansion")
	})

	t.Run("empty document is null", func(t *testing.T) {
		got, err := c.Parse("")
		require.NoError(t, err)
		assert.Equal(t, value.Null{}, got)
	})

	t.Run("only the first document is converted", func(t *testing.T) {
		got, err := c.Parse("a: 1\n---\nb: 2\n")
		require.NoError(t, err)
		assert.True(t, value.Equal(mapping("a", value.Integer(1)), got))
	})

	t.Run("syntax errors", func(t *testing.T) {
		for name, src := range map[string]string{
			"unclosed flow":            "a: [1, 2\nb: 3\n",
			"tab indent":               "a:\n\tb: 1\n",
			"bad indent":               "a: 1\n  b: 2\n",
			"text after flow sequence": "[a]\nb",
			"toml tables":              "[server]\nport = 8080\n\n[client]\nretries = 3\n",
			"broken second document":   "a: 1\n---\nb: [\n",
		} {
			t.Run(name, func(t *testing.T) {
				assert.False(t, c.Validate(src))
				_, err := c.Parse(src)
				var se *converrors.SyntaxError
				require.True(t, errors.As(err, &se), "got %v", err)
				assert.Equal(t, "yaml", se.Format)
				assert.Positive(t, se.Line)
			})
		}
	})

	t.Run("collection keys are rejected", func(t *testing.T) {
		_, err := c.Parse("? [a, b]\n: 1\n")
		assert.ErrorIs(t, err, converrors.ErrSyntax)
	})
}

func TestYAMLSerialize(t *testing.T) {
	c := NewYAML()

	t.Run("block mapping", func(t *testing.T) {
		out, err := c.Serialize(mapping("name", value.String("test"), "value", value.Integer(123)))
		require.NoError(t, err)
		assert.Equal(t, "name: test\nvalue: 123\n", out)
	})

	t.Run("indent", func(t *testing.T) {
		out, err := NewYAML(WithYAMLIndent(4)).Serialize(mapping("a", mapping("b", value.Integer(1))))
		require.NoError(t, err)
		assert.Equal(t, "a:\n    b: 1\n", out)
	})

	t.Run("empty collections and null", func(t *testing.T) {
		out, err := c.Serialize(value.NewMapping(0))
		require.NoError(t, err)
		assert.Equal(t, "{}\n", out)

		out, err = c.Serialize(value.Sequence{})
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)

		out, err = c.Serialize(value.Null{})
		require.NoError(t, err)
		assert.Equal(t, "null\n", out)
	})

	t.Run("ambiguous strings stay strings", func(t *testing.T) {
		v := mapping(
			"num", value.String("123"),
			"bool", value.String("true"),
			"null", value.String("null"),
			"float", value.String("1.5"),
			"merge", value.String("<<"),
			"empty", value.String(""),
		)
		out, err := c.Serialize(v)
		require.NoError(t, err)
		assert.NotContains(t, out, "num: 123\n")
		back, err := c.Parse(out)
		require.NoError(t, err)
		assert.True(t, value.EqualOrdered(v, back), "got %v from\n%s", back, out)
	})

	t.Run("round trip", func(t *testing.T) {
		v := mapping(
			"int", value.Integer(-42),
			"float", value.Float(2),
			"tiny", value.Float(1e-9),
			"nan", value.Float(math.NaN()),
			"ninf", value.Float(math.Inf(-1)),
			"multi", value.String("line one\nline two\n"),
			"nested", value.Sequence{
				mapping("k", value.Bool(false)),
				value.Sequence{value.Null{}, value.String("x: y")},
			},
		)
		out, err := c.Serialize(v)
		require.NoError(t, err)
		back, err := c.Parse(out)
		require.NoError(t, err)
		assert.True(t, value.EqualOrdered(v, back), "got %v from\n%s", back, out)
	})
}
