package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/erraggy/dataconv/converrors"
	"github.com/erraggy/dataconv/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLParse(t *testing.T) {
	c := NewTOML()

	t.Run("source key order", func(t *testing.T) {
		src := `title = "x"
zeta = 1
alpha = 2.0
point = { y = 2, x = 1 }
dotted.c = true
dotted.b = false

[owner]
name = "y"
dob = 1979-05-27T07:32:00-08:00

[[items]]
b = 1
a = 2

[[items]]
b = 3
a = 4
`
		got, err := c.Parse(src)
		require.NoError(t, err)
		want := mapping(
			"title", value.String("x"),
			"zeta", value.Integer(1),
			"alpha", value.Float(2),
			"point", mapping("y", value.Integer(2), "x", value.Integer(1)),
			"dotted", mapping("c", value.Bool(true), "b", value.Bool(false)),
			"owner", mapping("name", value.String("y"), "dob", value.String("1979-05-27T07:32:00-08:00")),
			"items", value.Sequence{
				mapping("b", value.Integer(1), "a", value.Integer(2)),
				mapping("b", value.Integer(3), "a", value.Integer(4)),
			},
		)
		assert.True(t, value.EqualOrdered(want, got), "got %v", got)
	})

	t.Run("local dates and times are strings", func(t *testing.T) {
		got, err := c.Parse("d = 1979-05-27\nt = 07:32:00\ndt = 1979-05-27T07:32:00\n")
		require.NoError(t, err)
		want := mapping(
			"d", value.String("1979-05-27"),
			"t", value.String("07:32:00"),
			"dt", value.String("1979-05-27T07:32:00"),
		)
		assert.True(t, value.EqualOrdered(want, got), "got %v", got)
	})

	t.Run("special floats", func(t *testing.T) {
		got, err := c.Parse("a = nan\nb = -inf\n")
		require.NoError(t, err)
		want := mapping("a", value.Float(math.NaN()), "b", value.Float(math.Inf(-1)))
		assert.True(t, value.Equal(want, got))
	})

	t.Run("empty document", func(t *testing.T) {
		got, err := c.Parse("")
		require.NoError(t, err)
		assert.Equal(t, 0, got.(*value.Mapping).Len())
	})

	t.Run("redefined key reports its position", func(t *testing.T) {
		_, err := c.Parse("a = 1\n  a = 2\n")
		var se *converrors.SyntaxError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, 2, se.Line)
		assert.Equal(t, 3, se.Column)
		assert.Contains(t, se.Message, "already defined")
	})

	t.Run("array tables repeat keys", func(t *testing.T) {
		got, err := c.Parse("[[p]]\nn = 1\n[[p]]\nn = 2\n")
		require.NoError(t, err)
		want := mapping("p", value.Sequence{
			mapping("n", value.Integer(1)),
			mapping("n", value.Integer(2)),
		})
		assert.True(t, value.Equal(want, got), "got %v", got)
	})

	t.Run("syntax errors", func(t *testing.T) {
		tests := []struct {
			name string
			src  string
			line int
		}{
			{"missing value", "a = \n", 1},
			{"double equals", "a = 1\nb = = 2\n", 2},
			{"duplicate key", "a = 1\na = 2\n", 2},
			{"duplicate key in table", "[t]\nk = 1\n\nk = 2\n", 4},
			{"duplicate table", "[a]\nx = 1\n[b]\n[a]\n", 4},
			{"json", `{"a": 1}`, 1},
			{"yaml", "a: 1\n", 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.False(t, c.Validate(tt.src))
				_, err := c.Parse(tt.src)
				var se *converrors.SyntaxError
				require.True(t, errors.As(err, &se), "got %v", err)
				assert.Equal(t, "toml", se.Format)
				assert.Equal(t, tt.line, se.Line)
			})
		}
	})
}

func TestTOMLSerialize(t *testing.T) {
	c := NewTOML()

	t.Run("tables after keys", func(t *testing.T) {
		out, err := c.Serialize(mapping(
			"owner", mapping("name", value.String("y")),
			"title", value.String("x"),
		))
		require.NoError(t, err)
		assert.Equal(t, "title = 'x'\n\n[owner]\nname = 'y'\n", out)
	})

	t.Run("key order is kept", func(t *testing.T) {
		out, err := c.Serialize(mapping("zeta", value.Integer(1), "alpha", value.Integer(2)))
		require.NoError(t, err)
		assert.Equal(t, "zeta = 1\nalpha = 2\n", out)
	})

	t.Run("extreme floats use exponents", func(t *testing.T) {
		in := mapping(
			"big", value.Float(1e300),
			"small", value.Float(-2.5e-10),
			"plain", value.Float(0.5),
			"list", value.Sequence{value.Float(1e22)},
		)
		out, err := c.Serialize(in)
		require.NoError(t, err)
		assert.Equal(t, "big = 1e+300\nsmall = -2.5e-10\nplain = 0.5\nlist = [1e+22]\n", out)

		back, err := c.Parse(out)
		require.NoError(t, err)
		assert.True(t, value.Equal(in, back), "got %v", back)
	})

	t.Run("strings that look like float tags are kept", func(t *testing.T) {
		in := mapping("note", value.String(tomlExpMarker+"1"), "big", value.Float(1e30))
		out, err := c.Serialize(in)
		require.NoError(t, err)
		assert.Contains(t, out, "note = '"+tomlExpMarker+"1'")

		back, err := c.Parse(out)
		require.NoError(t, err)
		assert.True(t, value.Equal(in, back), "got %v", back)
	})

	t.Run("non-mapping root is wrapped", func(t *testing.T) {
		out, err := c.Serialize(value.Sequence{value.Integer(1), value.Integer(2)})
		require.NoError(t, err)
		assert.Equal(t, "data = [1, 2]\n", out)
	})

	t.Run("null entries are omitted", func(t *testing.T) {
		out, err := c.Serialize(mapping("a", value.Null{}, "b", value.Integer(1)))
		require.NoError(t, err)
		assert.Equal(t, "b = 1\n", out)
	})

	t.Run("null in an array is rejected", func(t *testing.T) {
		_, err := c.Serialize(mapping("a", value.Sequence{value.Integer(1), value.Null{}}))
		var se *converrors.UnsupportedShapeError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, "toml", se.Format)
		assert.Equal(t, "$.a[1]", se.Path)
	})

	t.Run("null root is an empty document", func(t *testing.T) {
		out, err := c.Serialize(value.Null{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("keys that cannot be struct tags", func(t *testing.T) {
		v := mapping(`say "hi"`, value.Integer(1), "b", value.Integer(2), `back\slash`, value.Bool(true))
		out, err := c.Serialize(v)
		require.NoError(t, err)
		back, err := c.Parse(out)
		require.NoError(t, err)
		assert.True(t, value.Equal(v, back), "got %v from\n%s", back, out)
	})

	t.Run("round trip", func(t *testing.T) {
		v := mapping(
			"name", value.String("it's \"quoted\"\nand multi-line"),
			"count", value.Integer(-3),
			"ratio", value.Float(0.5),
			"inf", value.Float(math.Inf(1)),
			"mixed", value.Sequence{value.Integer(1), value.String("a"), value.Sequence{value.Bool(true)}},
			"empty", value.Sequence{},
			"server", mapping(
				"host", value.String("localhost"),
				"ports", value.Sequence{value.Integer(80), value.Integer(443)},
			),
			"items", value.Sequence{
				mapping("id", value.Integer(1)),
				mapping("id", value.Integer(2), "tags", value.Sequence{value.String("x")}),
			},
		)
		out, err := c.Serialize(v)
		require.NoError(t, err)
		back, err := c.Parse(out)
		require.NoError(t, err)
		assert.True(t, value.EqualOrdered(v, back), "got %v from\n%s", back, out)
	})
}

func TestTOMLTagSafe(t *testing.T) {
	assert.True(t, tomlTagSafe("plain_key"))
	assert.True(t, tomlTagSafe("with space"))
	assert.True(t, tomlTagSafe("ключ"))
	assert.False(t, tomlTagSafe(""))
	assert.False(t, tomlTagSafe("-"))
	assert.False(t, tomlTagSafe("a,b"))
	assert.False(t, tomlTagSafe(`a"b`))
	assert.False(t, tomlTagSafe(`a\b`))
}
