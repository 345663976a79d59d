package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/reoring/dbgen"
)

type cmdCompile struct {
	outPath    string
	configPath string
	manifest   string
	noValidate bool
	debug      bool

	set func(name string) bool
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile [flags] SCHEMA...",
		summary: "Compile schema documents into <doc>.h and <doc>.cpp",
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "output directory")
	flags.StringVar(&cmd.configPath, "config", "", "YAML config file")
	flags.StringVar(&cmd.manifest, "manifest", "", `also write a layout manifest ("json" or "bson")`)
	flags.BoolVar(&cmd.noValidate, "no-validate", false, "skip meta-schema validation")
	flags.BoolVar(&cmd.debug, "debug", false, "verbose development logging")
	cmd.set = func(name string) bool { return flags.Changed(name) }
}

// merge fills options not given on the command line from the config file.
func (cmd *cmdCompile) merge(cfg *fileConfig, argv []string) []string {
	if !cmd.set("output") {
		cmd.outPath = cfg.Output
	}
	if !cmd.set("manifest") {
		cmd.manifest = cfg.Manifest
	}
	if !cmd.set("no-validate") && cfg.Validate != nil {
		cmd.noValidate = !*cfg.Validate
	}
	if !cmd.set("debug") {
		cmd.debug = cfg.Debug
	}
	if len(argv) == 0 {
		argv = cfg.Schemas
	}
	return argv
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	if cmd.configPath != "" {
		cfg, err := loadConfig(cmd.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		argv = cmd.merge(cfg, argv)
	}
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dbgen compile -o DIR SCHEMA...")
		return exitUsage
	}
	if cmd.outPath == "" {
		fmt.Fprintln(os.Stderr, "no output directory (use --output or the config file)")
		return exitUsage
	}
	switch dbgen.ManifestFormat(cmd.manifest) {
	case dbgen.ManifestNone, dbgen.ManifestJSON, dbgen.ManifestBSON:
	default:
		fmt.Fprintf(os.Stderr, "Unsupported manifest format %q\n", cmd.manifest)
		return exitUsage
	}

	log, err := newLogger(cmd.debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	defer func() { _ = log.Sync() }()

	opts := []dbgen.Option{
		dbgen.WithLogger(log),
		dbgen.WithManifest(dbgen.ManifestFormat(cmd.manifest)),
	}
	if cmd.noValidate {
		opts = append(opts, dbgen.WithoutValidation())
	}
	res, err := dbgen.New(opts...).CompileFiles(ctx, argv...)
	if res != nil {
		printWarnings(res.Warnings)
	}
	if err != nil {
		printError(err)
		return exitFatal
	}
	if err := res.WriteOutputs(cmd.outPath); err != nil {
		printError(err)
		return exitFatal
	}
	for _, out := range res.Outputs {
		log.Infow("wrote outputs", "document", out.Document, "dir", cmd.outPath)
	}
	return exitOK
}

func printWarnings(ws []*dbgen.Warning) {
	for _, w := range ws {
		fmt.Fprintln(os.Stderr, w.String())
	}
}

// printError writes one line per diagnostic.
func printError(err error) {
	if list, ok := dbgen.AsErrors(err); ok {
		for _, e := range list {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

