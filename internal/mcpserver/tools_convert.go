package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/erraggy/dataconv/converter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type convertInput struct {
	Input  payloadInput `json:"input"            jsonschema:"The document to convert"`
	From   string       `json:"from,omitempty"   jsonschema:"Source format (json\\, xml\\, csv\\, yaml\\, toml) or auto. Default: auto"`
	To     string       `json:"to"               jsonschema:"Target format (json\\, xml\\, csv\\, yaml\\, or toml)"`
	Output string       `json:"output,omitempty" jsonschema:"File path to write the converted document. If omitted the document is returned inline."`
}

type convertOutput struct {
	SourceFormat string `json:"source_format"`
	TargetFormat string `json:"target_format"`
	Detected     bool   `json:"detected,omitempty"`
	Identity     bool   `json:"identity,omitempty"`
	InputSize    int    `json:"input_size"`
	OutputSize   int    `json:"output_size"`
	Nodes        int    `json:"nodes,omitempty"`
	Cached       bool   `json:"cached,omitempty"`
	WrittenTo    string `json:"written_to,omitempty"`
	Document     string `json:"document,omitempty"`
}

func handleConvert(_ context.Context, _ *mcp.CallToolRequest, input convertInput) (*mcp.CallToolResult, convertOutput, error) {
	if input.To == "" {
		return errResult(fmt.Errorf("target format is required")), convertOutput{}, nil
	}
	from := input.From
	if from == "" {
		from = converter.FormatAuto
	}

	payload, err := input.Input.load()
	if err != nil {
		return errResult(err), convertOutput{}, nil
	}

	var key string
	if cfg.CacheEnabled {
		key = makeCacheKey(payload, from, input.To)
	}

	output, hit := convertOutput{}, false
	if key != "" {
		output, hit = convertCache.get(key)
	}
	if hit {
		output.Cached = true
	} else {
		result, err := newConverter("convert").Run(converter.Request{
			Payload:      payload.data,
			SourceFormat: from,
			TargetFormat: input.To,
			Filename:     payload.filename,
		})
		if err != nil {
			return errResult(err), convertOutput{}, nil
		}
		output = convertOutput{
			SourceFormat: result.SourceFormat,
			TargetFormat: result.TargetFormat,
			Detected:     result.Detected,
			Identity:     result.Identity,
			InputSize:    result.InputSize,
			OutputSize:   result.OutputSize,
			Nodes:        result.Stats.Nodes,
			Document:     result.Output,
		}
		if key != "" {
			convertCache.putWithTTL(key, output, cfg.CacheTTL)
		}
	}

	if input.Output != "" {
		if err := os.WriteFile(input.Output, []byte(output.Document), 0o644); err != nil { //nolint:gosec // G306: output is a user-facing document
			return errResult(fmt.Errorf("failed to write output file: %w", err)), convertOutput{}, nil
		}
		output.WrittenTo = input.Output
		output.Document = ""
	}

	return nil, output, nil
}
