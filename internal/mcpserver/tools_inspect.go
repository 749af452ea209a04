package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/erraggy/dataconv/converter"
	"github.com/erraggy/dataconv/value"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxScalarText bounds the scalar text returned per node.
const maxScalarText = 200

type inspectInput struct {
	Input      payloadInput `json:"input"                 jsonschema:"The document to inspect"`
	From       string       `json:"from,omitempty"        jsonschema:"Source format or auto. Default: auto"`
	PathPrefix string       `json:"path_prefix,omitempty" jsonschema:"Only list nodes at or below this JSON path\\, e.g. $.items[0]"`
	Kind       string       `json:"kind,omitempty"        jsonschema:"Only list nodes of this kind: null\\, bool\\, integer\\, float\\, string\\, sequence\\, or mapping"`
	GroupBy    string       `json:"group_by,omitempty"    jsonschema:"Return counts grouped by kind instead of nodes"`
	Offset     int          `json:"offset,omitempty"      jsonschema:"Skip this many matching nodes"`
	Limit      int          `json:"limit,omitempty"       jsonschema:"Maximum nodes to return"`
}

type inspectNode struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
	Size  int    `json:"size,omitempty"`
}

type inspectStats struct {
	Nodes     int `json:"nodes"`
	Depth     int `json:"depth"`
	Mappings  int `json:"mappings"`
	Sequences int `json:"sequences"`
	Scalars   int `json:"scalars"`
}

type inspectOutput struct {
	Format   string        `json:"format"`
	Stats    inspectStats  `json:"stats"`
	Matched  int           `json:"matched"`
	Returned int           `json:"returned"`
	Nodes    []inspectNode `json:"nodes,omitempty"`
	Groups   []groupCount  `json:"groups,omitempty"`
}

func handleInspect(_ context.Context, _ *mcp.CallToolRequest, input inspectInput) (*mcp.CallToolResult, inspectOutput, error) {
	if input.GroupBy != "" && !strings.EqualFold(input.GroupBy, "kind") {
		return errResult(fmt.Errorf("invalid group_by value %q; valid values: kind", input.GroupBy)), inspectOutput{}, nil
	}
	if input.Kind != "" && !isKindName(input.Kind) {
		return errResult(fmt.Errorf("invalid kind %q", input.Kind)), inspectOutput{}, nil
	}
	from := input.From
	if from == "" {
		from = converter.FormatAuto
	}

	payload, err := input.Input.load()
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}
	root, format, err := newConverter("inspect").Parse(payload.data, from, payload.filename)
	if err != nil {
		return errResult(err), inspectOutput{}, nil
	}

	var matched []inspectNode
	_ = value.Walk(root, func(path string, v value.Value) error {
		if input.PathPrefix != "" && !underPath(path, input.PathPrefix) {
			return nil
		}
		if input.Kind != "" && !strings.EqualFold(v.Kind().String(), input.Kind) {
			return nil
		}
		matched = append(matched, describeNode(path, v))
		return nil
	})

	s := value.Measure(root)
	output := inspectOutput{
		Format:  format,
		Stats:   inspectStats(s),
		Matched: len(matched),
	}

	if input.GroupBy != "" {
		output.Groups = groupAndSort(matched, func(n inspectNode) string { return n.Kind })
		return nil, output, nil
	}

	page := paginate(matched, input.Offset, input.Limit)
	output.Nodes = makeSlice[inspectNode](len(page))
	output.Nodes = append(output.Nodes, page...)
	output.Returned = len(page)
	return nil, output, nil
}

func describeNode(path string, v value.Value) inspectNode {
	n := inspectNode{Path: path, Kind: v.Kind().String()}
	switch x := v.(type) {
	case *value.Mapping:
		n.Size = x.Len()
	case value.Sequence:
		n.Size = len(x)
	case value.String:
		n.Value = truncate(string(x))
	case fmt.Stringer:
		n.Value = x.String()
	}
	return n
}

// underPath reports whether path equals prefix or lies below it.
func underPath(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '.' || rest[0] == '['
}

func isKindName(name string) bool {
	for k := value.KindNull; k <= value.KindMapping; k++ {
		if strings.EqualFold(k.String(), name) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	if len(s) <= maxScalarText {
		return s
	}
	cut := maxScalarText
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
