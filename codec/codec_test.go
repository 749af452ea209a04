package codec

import (
	"math"
	"testing"

	"github.com/erraggy/dataconv/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	codecs := Defaults()
	require.Len(t, codecs, 5)

	want := []struct {
		format, mime, ext string
	}{
		{FormatJSON, "application/json", ".json"},
		{FormatXML, "application/xml", ".xml"},
		{FormatCSV, "text/csv", ".csv"},
		{FormatYAML, "application/x-yaml", ".yaml"},
		{FormatTOML, "application/toml", ".toml"},
	}
	for i, w := range want {
		t.Run(w.format, func(t *testing.T) {
			c := codecs[i]
			assert.Equal(t, w.format, c.Format())
			assert.Equal(t, w.mime, c.MIMEType())
			assert.Equal(t, w.ext, c.FileExtension())
		})
	}
}

// sample is a tree every format except XML and CSV can carry without loss.
func sample() *value.Mapping {
	return mapping(
		"name", value.String("dataconv"),
		"version", value.Integer(3),
		"ratio", value.Float(0.75),
		"whole", value.Float(10),
		"enabled", value.Bool(true),
		"tags", value.Sequence{value.String("a"), value.String("ü"), value.String("")},
		"limits", mapping(
			"max", value.Integer(math.MaxInt64),
			"min", value.Integer(math.MinInt64),
		),
		"matrix", value.Sequence{
			value.Sequence{value.Integer(1), value.Integer(2)},
			value.Sequence{},
		},
		"people", value.Sequence{
			mapping("first", value.String("Ada"), "born", value.Integer(1815)),
			mapping("first", value.String("Alan"), "born", value.Integer(1912)),
		},
	)
}

func TestRoundTrip(t *testing.T) {
	withNull := sample()
	withNull.Set("nothing", value.Null{})

	// TOML writes plain keys before tables, so only membership survives.
	tests := []struct {
		name    string
		codec   Codec
		in      value.Value
		ordered bool
	}{
		{"json mapping", NewJSON(), withNull, true},
		{"json sequence", NewJSON(), value.Sequence{value.Null{}, value.Float(-0.5), value.String("<&>")}, true},
		{"json scalar", NewJSON(), value.String("just a string"), true},
		{"yaml mapping", NewYAML(), withNull, true},
		{"yaml sequence", NewYAML(), value.Sequence{value.Null{}, value.Float(1e300), value.String("- not a list")}, true},
		{"yaml scalar", NewYAML(), value.Integer(7), true},
		{"toml mapping", NewTOML(), sample(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.codec.Serialize(tt.in)
			require.NoError(t, err)
			require.True(t, tt.codec.Validate(text), "serialized output does not validate:\n%s", text)

			back, err := tt.codec.Parse(text)
			require.NoError(t, err)
			if tt.ordered {
				assert.True(t, value.EqualOrdered(tt.in, back), "got %v from\n%s", back, text)
			} else {
				assert.True(t, value.Equal(tt.in, back), "got %v from\n%s", back, text)
			}
		})
	}
}

func TestCSVTotality(t *testing.T) {
	c := NewCSV()
	for _, v := range []value.Value{
		nil,
		value.Null{},
		value.Bool(true),
		value.Integer(1),
		value.Float(math.NaN()),
		value.String("x"),
		value.Sequence{},
		value.NewMapping(0),
		sample(),
		value.Sequence{sample(), value.Integer(1)},
		value.Sequence{value.Sequence{value.Sequence{}}},
	} {
		_, err := c.Serialize(v)
		assert.NoError(t, err, "value %v", v)
	}
}

func TestValidateNeverPanics(t *testing.T) {
	inputs := []string{"", "\x00", "{", "<", "a,b\n\"", "a: [", "[[", "\ufeff{}", "<?xml version=\"1.0\"?>"}
	for _, c := range Defaults() {
		for _, in := range inputs {
			assert.NotPanics(t, func() { c.Validate(in) }, "%s on %q", c.Format(), in)
		}
	}
}
