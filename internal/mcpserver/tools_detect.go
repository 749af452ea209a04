package mcpserver

import (
	"context"

	"github.com/erraggy/dataconv/detector"
	"github.com/erraggy/dataconv/registry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type detectInput struct {
	Input payloadInput `json:"input" jsonschema:"The document to inspect"`
}

type detectOutput struct {
	Format      string `json:"format"`
	ByExtension bool   `json:"by_extension"`
	MIMEType    string `json:"mime_type"`
	Extension   string `json:"extension"`
}

func handleDetectFormat(_ context.Context, _ *mcp.CallToolRequest, input detectInput) (*mcp.CallToolResult, detectOutput, error) {
	payload, err := input.Input.load()
	if err != nil {
		return errResult(err), detectOutput{}, nil
	}

	format, err := newConverter("detect_format").DetectFormat(payload.data, payload.filename)
	if err != nil {
		return errResult(err), detectOutput{}, nil
	}
	hinted, ok := detector.FormatFromFilename(formats, payload.filename)

	d, err := formats.Describe(format)
	if err != nil {
		return errResult(err), detectOutput{}, nil
	}
	return nil, detectOutput{
		Format:      format,
		ByExtension: ok && hinted == format,
		MIMEType:    d.MIMEType,
		Extension:   d.Extension,
	}, nil
}

type listFormatsInput struct{}

type listFormatsOutput struct {
	Formats []registry.Descriptor `json:"formats"`
}

func handleListFormats(_ context.Context, _ *mcp.CallToolRequest, _ listFormatsInput) (*mcp.CallToolResult, listFormatsOutput, error) {
	return nil, listFormatsOutput{Formats: formats.Descriptors()}, nil
}

type formatInfoInput struct {
	Format string `json:"format" jsonschema:"Format identifier or alias"`
}

func handleFormatInfo(_ context.Context, _ *mcp.CallToolRequest, input formatInfoInput) (*mcp.CallToolResult, registry.Descriptor, error) {
	d, err := formats.Describe(input.Format)
	if err != nil {
		return errResult(err), registry.Descriptor{}, nil
	}
	return nil, d, nil
}
