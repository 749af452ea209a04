package codec

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/erraggy/dataconv/value"
)

// csvDataColumn is the header used when a value has no tabular shape.
const csvDataColumn = "data"

var csvFloatPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// CSV is the codec for comma-separated tables with a header row.
//
// Parse yields a Sequence of Mappings, one per record, keyed by header. Cells
// are typed by inference: base-10 integers become Integer, decimal numbers
// become Float, empty cells become Null, and everything else stays a String.
type CSV struct {
	comma rune
}

// CSVOption configures a CSV codec.
type CSVOption func(*CSV)

// WithCSVDelimiter sets the field delimiter. The default is ','.
func WithCSVDelimiter(r rune) CSVOption {
	return func(c *CSV) { c.comma = r }
}

// NewCSV returns a CSV codec.
func NewCSV(opts ...CSVOption) *CSV {
	c := &CSV{comma: ','}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format implements Codec.
func (c *CSV) Format() string { return FormatCSV }

// MIMEType implements Codec.
func (c *CSV) MIMEType() string { return "text/csv" }

// FileExtension implements Codec.
func (c *CSV) FileExtension() string { return ".csv" }

func (c *CSV) reader(text string) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = c.comma
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	return r
}

// Validate implements Codec. Besides parsing, it requires a header of at
// least two columns. Single-column text is too ambiguous to claim, and is left
// for other formats. Records may be ragged, as Parse accepts them.
func (c *CSV) Validate(text string) bool {
	r := c.reader(text)
	header, err := r.Read()
	if err != nil || len(header) < 2 {
		return false
	}
	for {
		if _, err := r.Read(); err != nil {
			return errors.Is(err, io.EOF)
		}
	}
}

// Parse implements Codec. Records shorter than the header omit the missing
// keys; longer records name the extra cells field_<n> by 1-based column. A
// header that repeats a name keeps the last column with that name.
func (c *CSV) Parse(text string) (value.Value, error) {
	r := c.reader(text)
	rows := value.Sequence{}

	first, err := r.Read()
	if errors.Is(err, io.EOF) {
		return rows, nil
	}
	if err != nil {
		return nil, csvSyntaxError(err)
	}
	header := append([]string(nil), first...)

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, csvSyntaxError(err)
		}
		row := value.NewMapping(len(header))
		for i, cell := range rec {
			key := "field_" + strconv.Itoa(i+1)
			if i < len(header) {
				key = header[i]
			}
			row.Set(key, inferCell(cell))
		}
		rows = append(rows, row)
	}
}

func csvSyntaxError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return syntaxErr(FormatCSV, pe.Line, pe.Column, pe.Err.Error(), err)
	}
	return syntaxErr(FormatCSV, 0, 0, err.Error(), err)
}

func inferCell(s string) value.Value {
	if s == "" {
		return value.Null{}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Integer(i)
	}
	if csvFloatPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return value.Float(f)
		}
	}
	return value.String(s)
}

// Serialize implements Codec. It never fails; every value has a tabular
// rendering:
//
//   - a non-empty Sequence of Mappings is one row per mapping, with the
//     union of keys in first-seen order as the header;
//   - a Mapping whose values are all Sequences of the same length is read
//     as columns;
//   - any other non-empty Mapping is a single row;
//   - anything else is a single "data" column, one row per sequence item.
//
// Empty sequences and mappings produce empty output. Nested values are
// written as compact JSON and Null as an empty cell.
func (c *CSV) Serialize(v value.Value) (string, error) {
	header, rows := csvTable(v)
	if len(header) == 0 {
		return "", nil
	}

	buf := getBuffer()
	defer putBuffer(buf)
	w := csv.NewWriter(buf)
	w.Comma = c.comma
	if err := w.Write(header); err != nil {
		return "", err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i := range record {
			record[i] = csvCell(row[i])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func csvTable(v value.Value) ([]string, [][]value.Value) {
	switch x := v.(type) {
	case value.Sequence:
		if len(x) == 0 {
			return nil, nil
		}
		if header, ok := csvRecordHeader(x); ok {
			rows := make([][]value.Value, len(x))
			for i, item := range x {
				m := item.(*value.Mapping)
				row := make([]value.Value, len(header))
				for j, k := range header {
					row[j], _ = m.Get(k)
				}
				rows[i] = row
			}
			return header, rows
		}
		rows := make([][]value.Value, len(x))
		for i, item := range x {
			rows[i] = []value.Value{item}
		}
		return []string{csvDataColumn}, rows
	case *value.Mapping:
		if x.Len() == 0 {
			return nil, nil
		}
		if n, ok := csvColumnLength(x); ok {
			rows := make([][]value.Value, n)
			for i := range rows {
				row := make([]value.Value, x.Len())
				for j := 0; j < x.Len(); j++ {
					_, col := x.At(j)
					row[j] = col.(value.Sequence)[i]
				}
				rows[i] = row
			}
			return x.Keys(), rows
		}
		row := make([]value.Value, x.Len())
		for j := 0; j < x.Len(); j++ {
			_, row[j] = x.At(j)
		}
		return x.Keys(), [][]value.Value{row}
	}
	return []string{csvDataColumn}, [][]value.Value{{v}}
}

// csvRecordHeader returns the union of keys when every item is a Mapping.
func csvRecordHeader(seq value.Sequence) ([]string, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	var header []string
	seen := map[string]bool{}
	for _, item := range seq {
		m, ok := item.(*value.Mapping)
		if !ok {
			return nil, false
		}
		for k := range m.All() {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	return header, true
}

// csvColumnLength reports the shared length when every value is a Sequence.
func csvColumnLength(m *value.Mapping) (int, bool) {
	n := -1
	for _, v := range m.All() {
		seq, ok := v.(value.Sequence)
		if !ok || (n >= 0 && len(seq) != n) {
			return 0, false
		}
		n = len(seq)
	}
	return n, n >= 0
}

func csvCell(v value.Value) string {
	switch x := v.(type) {
	case nil, value.Null:
		return ""
	case value.Bool:
		return strconv.FormatBool(bool(x))
	case value.Integer:
		return strconv.FormatInt(int64(x), 10)
	case value.Float:
		return value.FormatFloat(float64(x))
	case value.String:
		return string(x)
	}
	return compactJSON(v)
}
