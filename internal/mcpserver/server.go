// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes dataconv capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"sync/atomic"

	"github.com/erraggy/dataconv"
	"github.com/erraggy/dataconv/converrors"
	"github.com/erraggy/dataconv/converter"
	"github.com/erraggy/dataconv/logging"
	"github.com/erraggy/dataconv/registry"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `dataconv MCP server: converts, validates, detects, and inspects JSON, XML, CSV, YAML, and TOML documents.

Configuration: All defaults are configurable via DATACONV_* environment variables set in your MCP client config.

Key settings:
- DATACONV_CACHE_ENABLED (default: true): cache convert results per session
- DATACONV_CACHE_TTL (default: 15m): cache TTL for convert results
- DATACONV_CACHE_MAX_SIZE (default: 32): maximum cached results
- DATACONV_MAX_INPUT_SIZE (default: 10485760): maximum payload size in bytes
- DATACONV_JSON_COMMENTS (default: false): accept comments and trailing commas in JSON input
- DATACONV_INSPECT_LIMIT (default: 100): default node limit for inspect

Formats: json, xml, csv, yaml (alias yml), toml. Pass from="auto" (the default) to detect the source format from the filename extension and content. Conversion failures carry an error_kind: syntax, encoding, unsupported_shape, unsupported_format, detection, or conversion.`

// serverLogger is the base logger for tool calls. It discards output until
// Run installs a real one.
var serverLogger atomic.Pointer[slog.Logger]

func init() {
	serverLogger.Store(slog.New(slog.DiscardHandler))
}

// formats is the registry shared by all tools.
var formats = newRegistry(cfg.JSONComments)

func newRegistry(jsonComments bool) *registry.Registry {
	if !jsonComments {
		return registry.Default()
	}
	return registry.NewWithJSONComments()
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled. A nil logger writes JSON to stderr.
func Run(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	serverLogger.Store(logger)

	if cfg.CacheEnabled {
		convertCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "dataconv", Version: dataconv.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	logger.Info("mcp server starting", "version", dataconv.Version(), "cache", cfg.CacheEnabled)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Convert a document between JSON, XML, CSV, YAML, and TOML. The source format defaults to auto-detection from the filename extension and content. Returns the converted document inline, or writes it to output when given. Lossy cases: XML attributes are dropped, TOML omits null mapping entries, and non-mapping roots are wrapped for XML and TOML.",
	}, handleConvert)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Check whether a document is well-formed in the given format. Returns valid=true, or the syntax error with line and column when known.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_format",
		Description: "Detect the format of a document. A recognized filename extension is tried first; otherwise the content is probed as JSON, XML, CSV, YAML, then TOML.",
	}, handleDetectFormat)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_formats",
		Description: "List the supported formats with their aliases, MIME types, and file extensions.",
	}, handleListFormats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_info",
		Description: "Describe one format by identifier or alias: canonical name, aliases, MIME type, and file extension.",
	}, handleFormatInfo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect",
		Description: "Parse a document and list the nodes of its intermediate value tree with JSON paths, kinds, and scalar values. Use path_prefix to focus on a subtree, kind to filter, and offset/limit to paginate. Use group_by=kind for counts instead of nodes. Default limit is configurable via DATACONV_INSPECT_LIMIT.",
	}, handleInspect)
}

// newConverter returns a converter wired to the shared registry and a
// logger tagged for one tool call.
func newConverter(tool string) *converter.Converter {
	c := converter.New()
	c.Registry = formats
	c.Logger = callLogger(tool)
	c.MaxInputSize = cfg.MaxInputSize
	return c
}

// callLogger returns a logger carrying the tool name and a fresh call_id.
func callLogger(tool string) logging.Logger {
	return logging.NewSlogAdapter(serverLogger.Load()).With("tool", tool, "call_id", uuid.NewString())
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.InspectLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.InspectLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// toolError is the JSON body of an error result.
type toolError struct {
	Error     string          `json:"error"`
	ErrorKind converrors.Kind `json:"error_kind"`
}

// errResult creates an MCP error result from an error. The text content is a
// JSON object carrying the sanitized message and the innermost error kind.
func errResult(err error) *mcp.CallToolResult {
	body, mErr := json.Marshal(toolError{Error: sanitizeError(err), ErrorKind: converrors.RootKind(err)})
	if mErr != nil {
		body = []byte(sanitizeError(errors.Join(err, mErr)))
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[keyFn(item)]++
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}
