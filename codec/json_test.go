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

func TestJSONParse(t *testing.T) {
	c := NewJSON()

	t.Run("scalars", func(t *testing.T) {
		tests := []struct {
			in   string
			want value.Value
		}{
			{"null", value.Null{}},
			{"true", value.Bool(true)},
			{"42", value.Integer(42)},
			{"-7", value.Integer(-7)},
			{"1.0", value.Float(1)},
			{"2e3", value.Float(2000)},
			{"9223372036854775808", value.Float(9223372036854775808)},
			{`"héllo"`, value.String("héllo")},
		}
		for _, tt := range tests {
			t.Run(tt.in, func(t *testing.T) {
				got, err := c.Parse(tt.in)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("object keeps key order", func(t *testing.T) {
		got, err := c.Parse(`{"z": 1, "a": [true, null], "m": {}}`)
		require.NoError(t, err)
		m := got.(*value.Mapping)
		assert.Equal(t, []string{"z", "a", "m"}, m.Keys())
		a, _ := m.Get("a")
		assert.Equal(t, value.Sequence{value.Bool(true), value.Null{}}, a)
	})

	t.Run("duplicate keys are last-wins", func(t *testing.T) {
		got, err := c.Parse(`{"a": 1, "b": 2, "a": 3}`)
		require.NoError(t, err)
		m := got.(*value.Mapping)
		assert.Equal(t, []string{"a", "b"}, m.Keys())
		a, _ := m.Get("a")
		assert.Equal(t, value.Integer(3), a)
	})

	t.Run("syntax errors carry position", func(t *testing.T) {
		tests := []struct {
			name string
			in   string
			line int
		}{
			{"truncated", "{\n  \"a\": ", 2},
			{"bad token", "{\n\n  \"a\": nope}", 3},
			{"trailing data", `{"a": 1} {"b": 2}`, 1},
			{"empty", "", 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := c.Parse(tt.in)
				require.Error(t, err)
				var se *converrors.SyntaxError
				require.True(t, errors.As(err, &se), "got %T", err)
				assert.Equal(t, "json", se.Format)
				assert.Equal(t, tt.line, se.Line)
				assert.Positive(t, se.Column)
			})
		}
	})

	t.Run("comments need the option", func(t *testing.T) {
		src := "{\n  // comment\n  \"a\": 1, /* inline */\n}"
		assert.False(t, c.Validate(src))

		got, err := NewJSON(WithJSONComments()).Parse(src)
		require.NoError(t, err)
		v, _ := got.(*value.Mapping).Get("a")
		assert.Equal(t, value.Integer(1), v)
	})
}

func TestJSONSerialize(t *testing.T) {
	c := NewJSON()

	t.Run("indented and ordered", func(t *testing.T) {
		m := value.NewMapping(2)
		m.Set("name", value.String("test"))
		m.Set("value", value.Integer(123))
		out, err := c.Serialize(m)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"name\": \"test\",\n  \"value\": 123\n}", out)
	})

	t.Run("no HTML or unicode escaping", func(t *testing.T) {
		out, err := c.Serialize(value.String("<a & b> ✓"))
		require.NoError(t, err)
		assert.Equal(t, `"<a & b> ✓"`, out)
	})

	t.Run("integral floats stay floats", func(t *testing.T) {
		out, err := c.Serialize(value.Sequence{value.Float(2), value.Integer(2)})
		require.NoError(t, err)
		assert.Equal(t, "[\n  2.0,\n  2\n]", out)
	})

	t.Run("empty containers", func(t *testing.T) {
		out, err := c.Serialize(value.NewMapping(0))
		require.NoError(t, err)
		assert.Equal(t, "{}", out)
		out, err = c.Serialize(value.Sequence{})
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
	})

	t.Run("NaN is unsupported", func(t *testing.T) {
		m := value.NewMapping(1)
		m.Set("x", value.Sequence{value.Float(math.NaN())})
		_, err := c.Serialize(m)
		require.Error(t, err)
		var se *converrors.UnsupportedShapeError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "$.x[0]", se.Path)
	})

	t.Run("custom indent", func(t *testing.T) {
		out, err := NewJSON(WithJSONIndent("")).Serialize(value.Sequence{value.Integer(1), value.Integer(2)})
		require.NoError(t, err)
		assert.Equal(t, "[1,2]", out)
	})
}

func TestCompactJSON(t *testing.T) {
	m := value.NewMapping(2)
	m.Set("b", value.Float(math.Inf(-1)))
	m.Set("a", value.Sequence{value.Float(math.NaN()), value.String("x\"y")})
	assert.Equal(t, `{"b":-Infinity,"a":[NaN,"x\"y"]}`, compactJSON(m))
}

func TestJSONDepthLimit(t *testing.T) {
	deep := strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1)
	_, err := NewJSON().Parse(deep)
	assert.ErrorIs(t, err, converrors.ErrSyntax)
}
