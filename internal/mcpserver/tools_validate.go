package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/erraggy/dataconv/converrors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateInput struct {
	Input  payloadInput `json:"input"  jsonschema:"The document to validate"`
	Format string       `json:"format" jsonschema:"Format to validate against (json\\, xml\\, csv\\, yaml\\, or toml)"`
}

type validateOutput struct {
	Format    string          `json:"format"`
	Valid     bool            `json:"valid"`
	Error     string          `json:"error,omitempty"`
	ErrorKind converrors.Kind `json:"error_kind,omitempty"`
	Line      int             `json:"line,omitempty"`
	Column    int             `json:"column,omitempty"`
}

func handleValidate(_ context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	if input.Format == "" {
		return errResult(fmt.Errorf("format is required")), validateOutput{}, nil
	}
	format, err := formats.Canonical(input.Format)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	payload, err := input.Input.load()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	// Parse rather than Validate so an invalid document reports its position.
	_, _, err = newConverter("validate").Parse(payload.data, format, payload.filename)
	output := validateOutput{Format: format, Valid: err == nil}
	if err != nil {
		output.Error = sanitizeError(err)
		output.ErrorKind = converrors.RootKind(err)
		var se *converrors.SyntaxError
		if errors.As(err, &se) {
			output.Line, output.Column = se.Line, se.Column
		}
	}
	return nil, output, nil
}
