// Command wasmbin inspects and edits WebAssembly modules without
// re-encoding the parts it does not touch.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/wasmbin/codec"
	"github.com/wippyai/wasmbin/wasm"
)

type command struct {
	name    string
	usage   string
	summary string
	run     func(a *app, args []string) error
}

// commands is filled in init: the command functions refer back to it for
// their usage lines.
var commands []command

func init() {
	commands = []command{
		{"dump", "dump [--section KIND] [--custom NAME] [--force] FILE", "print the module tree", (*app).dump},
		{"roundtrip", "roundtrip [--eager] [--parallel] FILE", "decode and re-encode, compare bytes", (*app).roundtrip},
		{"build-id", "build-id [--content] [-o OUT] FILE", "append a build_id custom section", (*app).buildID},
		{"validate", "validate FILE", "decode every section and compile with wazero", (*app).validate},
		{"browse", "browse FILE", "interactive section browser", (*app).browse},
	}
}

// app carries the streams and logger shared by every command.
type app struct {
	out     io.Writer
	errOut  io.Writer
	log     *zap.Logger
	styled  bool
	verbose bool
}

func main() {
	a := &app{out: os.Stdout, errOut: os.Stderr, styled: isTerminal(os.Stdout)}
	if err := a.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		a.printUsage()
		if len(args) == 0 {
			return fmt.Errorf("no command")
		}
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, args[1:])
		}
	}
	a.printUsage()
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *app) printUsage() {
	var b strings.Builder
	b.WriteString("Usage: wasmbin COMMAND [flags] FILE\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-10s %s\n", c.name, c.summary)
	}
	b.WriteString("\nFILE may be raw, gzip or zstd compressed; - reads stdin.\n")
	fmt.Fprint(a.errOut, b.String())
}

// flags returns a flag set carrying the options every command accepts.
func (a *app) flags(c string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(c, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "log decoder events to stderr")
	fs.Usage = func() {
		for _, cmd := range commands {
			if cmd.name == c {
				fmt.Fprintf(a.errOut, "Usage: wasmbin %s\n", cmd.usage)
			}
		}
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and returns the single file argument.
func (a *app) parse(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", fmt.Errorf("%s: expected one file, got %d", fs.Name(), fs.NArg())
	}
	if err := a.setupLogger(); err != nil {
		return "", err
	}
	return fs.Arg(0), nil
}

func (a *app) setupLogger() error {
	if !a.verbose {
		a.log = zap.NewNop()
		return nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.log = log
	wasm.SetLogger(log.Named("wasm"))
	codec.SetLogger(log.Named("codec"))
	return nil
}

// load reads and decodes the module at path.
func (a *app) load(path string, opts codec.Options) ([]byte, *wasm.Module, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := wasm.DecodeWithOptions(data, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	a.log.Debug("loaded", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, m, nil
}
