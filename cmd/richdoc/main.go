// Package main is the entry point for the richdoc log-replay tool.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dshills/richdoc/internal/codec"
	"github.com/dshills/richdoc/internal/schema"
	"github.com/dshills/richdoc/internal/transform"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.SchemaPath == "" {
		opts.SchemaPath = cfg.SchemaPath
	}
	normalize := true
	if cfg.Normalize != nil {
		normalize = *cfg.Normalize
	}
	if opts.NoNormalize {
		normalize = false
	}
	showTree := opts.Print || cfg.Print

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	docData, err := os.ReadFile(opts.DocPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading document: %v\n", err)
		return 1
	}
	state, err := codec.DecodeState(docData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var sch *schema.Schema
	if opts.SchemaPath != "" {
		sch, err = schema.Load(opts.SchemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	t := transform.New(transform.WithSchema(sch), transform.WithLogger(logger))

	if opts.OpsPath != "" {
		opsData, err := os.ReadFile(opts.OpsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading operations: %v\n", err)
			return 1
		}
		ops, err := codec.DecodeLog(opsData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		state, err = t.Apply(state, ops...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: applying operations: %v\n", err)
			return 1
		}
		if normalize {
			state, err = t.Normalize(state, state.Doc.Root())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: normalizing: %v\n", err)
				return 1
			}
		}
	}

	out, err := codec.EncodeState(state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.OutPath != "" {
		if err := os.WriteFile(opts.OutPath, append(out, '\n'), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing output: %v\n", err)
			return 1
		}
	} else {
		fmt.Println(string(out))
	}

	if showTree {
		if err := printTree(os.Stderr, state.Doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

// Options are the resolved command-line settings.
type Options struct {
	DocPath     string
	OpsPath     string
	SchemaPath  string
	ConfigPath  string
	OutPath     string
	NoNormalize bool
	Print       bool
}

func parseFlags() Options {
	var opts Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.DocPath, "doc", "", "Path to the document JSON file")
	flag.StringVar(&opts.OpsPath, "ops", "", "Path to the operation log (JSON array or one record per line)")
	flag.StringVar(&opts.SchemaPath, "schema", "", "Path to a YAML schema file")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.OutPath, "out", "", "Write the resulting state here instead of stdout")
	flag.BoolVar(&opts.NoNormalize, "no-normalize", false, "Skip the post-replay normalization pass")
	flag.BoolVar(&opts.Print, "print", false, "Print a colored tree summary to stderr")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Richdoc - structured document log replay\n\n")
		fmt.Fprintf(os.Stderr, "Usage: richdoc -doc file.json [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  richdoc -doc doc.json                     Validate and re-emit a document\n")
		fmt.Fprintf(os.Stderr, "  richdoc -doc doc.json -ops edits.jsonl    Replay an operation log\n")
		fmt.Fprintf(os.Stderr, "  richdoc -doc doc.json -schema rules.yaml  Normalize against a schema\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Richdoc %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.DocPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -doc is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	return opts
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
