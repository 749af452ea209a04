// Command dataconv converts structured data between JSON, XML, CSV, YAML, and
// TOML, and serves the same operations over MCP.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/erraggy/dataconv/internal/cliutil"
)

// CLI defines the command-line interface.
type CLI struct {
	Verbose bool `help:"Enable debug logging on stderr." short:"v" env:"DATACONV_VERBOSE"`

	Convert  ConvertCmd  `cmd:"" help:"Convert a document to another format."`
	Validate ValidateCmd `cmd:"" help:"Check that a document is well-formed."`
	Detect   DetectCmd   `cmd:"" help:"Print the detected format of a document."`
	Formats  FormatsCmd  `cmd:"" help:"List the supported formats."`
	Inspect  InspectCmd  `cmd:"" help:"Dump the intermediate value tree of a document."`
	MCP      MCPCmd      `cmd:"" name:"mcp" help:"Run the MCP server over stdio."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

// runEnv carries the process streams and shared services to commands.
type runEnv struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	level  slog.Level
}

// exitCode is panicked by kong's exit hook so run can recover it.
type exitCode int

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and executes the selected command, returning the process
// exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("dataconv"),
		kong.Description("Convert structured data between JSON, XML, CSV, YAML, and TOML."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		cliutil.Writef(stderr, "Error: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		cliutil.Writef(stderr, "Error: %v\n", err)
		return 2
	}

	env := &runEnv{
		ctx:    ctx,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: cliutil.NewLogger(stderr, cli.Verbose),
		level:  slog.LevelInfo,
	}
	if cli.Verbose {
		env.level = slog.LevelDebug
	}
	if err := kctx.Run(env); err != nil {
		cliutil.Writef(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
