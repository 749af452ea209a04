package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/erraggy/dataconv"
	"github.com/erraggy/dataconv/converrors"
	"github.com/erraggy/dataconv/converter"
	"github.com/erraggy/dataconv/internal/cliutil"
	"github.com/erraggy/dataconv/internal/input"
	"github.com/erraggy/dataconv/internal/mcpserver"
	"github.com/erraggy/dataconv/logging"
	"github.com/erraggy/dataconv/registry"
	"github.com/erraggy/dataconv/value"
)

// InputFlags are shared by the commands that read a document.
type InputFlags struct {
	Input        string `arg:"" optional:"" default:"-" help:"Input file, or - for stdin. gzip, zstd, and xz are decompressed."`
	Filename     string `help:"Filename hint for format detection, e.g. when reading stdin."`
	MaxSize      string `name:"max-size" default:"64MiB" env:"DATACONV_MAX_INPUT_SIZE" help:"Reject inputs larger than this after decompression (0 for no limit)."`
	JSONComments bool   `name:"json-comments" env:"DATACONV_JSON_COMMENTS" help:"Accept comments and trailing commas in JSON input."`
}

func (f *InputFlags) limit() (int64, error) {
	if f.MaxSize == "" || f.MaxSize == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(f.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("invalid --max-size: %w", err)
	}
	return int64(n), nil //nolint:gosec // G115: sizes above 8 EiB are not meaningful
}

// load reads the input named by the flags.
func (f *InputFlags) load(env *runEnv) (*input.Payload, error) {
	limit, err := f.limit()
	if err != nil {
		return nil, err
	}
	if f.Input == "-" {
		return input.Read(env.stdin, f.Filename, limit)
	}
	p, err := input.ReadFile(f.Input, limit)
	if err != nil {
		return nil, err
	}
	if f.Filename != "" {
		p.Filename = f.Filename
	}
	return p, nil
}

// converter builds a converter for the flags.
func (f *InputFlags) converter(env *runEnv) *converter.Converter {
	c := converter.New()
	c.Logger = logging.NewSlogAdapter(env.logger)
	if f.JSONComments {
		c.Registry = registry.NewWithJSONComments()
	}
	return c
}

// name returns a display name for the input.
func (f *InputFlags) name() string {
	if f.Input == "-" {
		if f.Filename != "" {
			return f.Filename
		}
		return "<stdin>"
	}
	return f.Input
}

// ConvertCmd converts a document.
type ConvertCmd struct {
	InputFlags `embed:""`

	From   string `short:"f" default:"auto" help:"Source format, or auto to detect it."`
	To     string `short:"t" required:"" help:"Target format (json, xml, csv, yaml, toml)."`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout."`
	Color  string `enum:"auto,always,never" default:"auto" env:"DATACONV_COLOR" help:"Highlight output on terminals (auto, always, never)."`
	Quiet  bool   `short:"q" help:"Do not print the summary line."`
}

func (c *ConvertCmd) Run(env *runEnv) error {
	p, err := c.load(env)
	if err != nil {
		return err
	}

	res, err := c.converter(env).Run(converter.Request{
		Payload:      p.Data,
		SourceFormat: c.From,
		TargetFormat: c.To,
		Filename:     p.Filename,
	})
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := os.WriteFile(c.Output, []byte(res.Output), 0o644); err != nil { //nolint:gosec // G306: output is a user-facing document
			return fmt.Errorf("writing output: %w", err)
		}
	} else {
		mode, err := cliutil.ParseColorMode(c.Color)
		if err != nil {
			return err
		}
		if cliutil.ShouldColor(mode, env.stdout) {
			if err := cliutil.Highlight(env.stdout, res.Output, res.TargetFormat); err != nil {
				return err
			}
		} else if err := cliutil.WriteOutput(env.stdout, res.Output); err != nil {
			return err
		}
	}

	if !c.Quiet {
		cliutil.Writef(env.stderr, "%s\n", summary(c.name(), p, res))
	}
	return nil
}

// summary describes a finished conversion on one line.
func summary(name string, p *input.Payload, res *converter.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s → %s, %s → %s", name, res.SourceFormat, res.TargetFormat,
		humanize.Bytes(uint64(res.InputSize)), humanize.Bytes(uint64(res.OutputSize))) //nolint:gosec // G115: sizes are non-negative
	if p.Compression != input.None {
		fmt.Fprintf(&b, " (%s, %s compressed)", p.Compression, humanize.Bytes(uint64(p.RawSize))) //nolint:gosec // G115: sizes are non-negative
	}
	switch {
	case res.Identity:
		b.WriteString(", unchanged")
	case res.Detected:
		b.WriteString(", detected")
	}
	return b.String()
}

// ValidateCmd checks a document.
type ValidateCmd struct {
	InputFlags `embed:""`

	Format string `short:"F" required:"" help:"Format to validate against."`
}

func (c *ValidateCmd) Run(env *runEnv) error {
	p, err := c.load(env)
	if err != nil {
		return err
	}
	_, format, err := c.converter(env).Parse(p.Data, c.Format, p.Filename)
	if err != nil {
		if converrors.KindOf(err) == converrors.KindUnsupportedFormat {
			return err
		}
		return fmt.Errorf("%s is not valid %s: %w", c.name(), strings.ToLower(c.Format), err)
	}
	cliutil.Writef(env.stdout, "%s: valid %s\n", c.name(), format)
	return nil
}

// DetectCmd prints the detected format.
type DetectCmd struct {
	InputFlags `embed:""`
}

func (c *DetectCmd) Run(env *runEnv) error {
	p, err := c.load(env)
	if err != nil {
		return err
	}
	format, err := c.converter(env).DetectFormat(p.Data, p.Filename)
	if err != nil {
		return err
	}
	cliutil.Writef(env.stdout, "%s\n", format)
	return nil
}

// FormatsCmd lists the registry.
type FormatsCmd struct {
	JSON bool `help:"Print the list as JSON."`
}

func (c *FormatsCmd) Run(env *runEnv) error {
	descs := registry.Default().Descriptors()
	if c.JSON {
		enc := json.NewEncoder(env.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	}

	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	cliutil.Writef(tw, "FORMAT\tALIASES\tMIME TYPE\tEXTENSION\n")
	for _, d := range descs {
		aliases := strings.Join(d.Aliases, ",")
		if aliases == "" {
			aliases = "-"
		}
		cliutil.Writef(tw, "%s\t%s\t%s\t%s\n", d.Format, aliases, d.MIMEType, d.Extension)
	}
	return tw.Flush()
}

// InspectCmd dumps the intermediate value.
type InspectCmd struct {
	InputFlags `embed:""`

	From string `short:"f" default:"auto" help:"Source format, or auto to detect it."`
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

func (c *InspectCmd) Run(env *runEnv) error {
	p, err := c.load(env)
	if err != nil {
		return err
	}
	v, format, err := c.converter(env).Parse(p.Data, c.From, p.Filename)
	if err != nil {
		return err
	}
	s := value.Measure(v)
	cliutil.Writef(env.stdout, "format: %s\nnodes: %d, depth: %d, mappings: %d, sequences: %d, scalars: %d\n\n",
		format, s.Nodes, s.Depth, s.Mappings, s.Sequences, s.Scalars)
	dumper.Fdump(env.stdout, v)
	return nil
}

// MCPCmd runs the MCP server.
type MCPCmd struct{}

func (c *MCPCmd) Run(env *runEnv) error {
	handler := slog.NewJSONHandler(env.stderr, &slog.HandlerOptions{Level: env.level})
	err := mcpserver.Run(env.ctx, slog.New(handler))
	if errors.Is(err, env.ctx.Err()) {
		return nil
	}
	return err
}

// VersionCmd prints build information.
type VersionCmd struct {
	Short bool `help:"Print only the version."`
}

func (c *VersionCmd) Run(env *runEnv) error {
	if c.Short {
		cliutil.Writef(env.stdout, "%s\n", dataconv.Version())
		return nil
	}
	cliutil.Writef(env.stdout, "dataconv %s\n%s\n", dataconv.Version(), dataconv.BuildInfo())
	return nil
}
