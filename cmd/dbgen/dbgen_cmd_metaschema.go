package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/reoring/dbgen/metaschema"
)

type cmdMetaschema struct {
	outPath string
}

func (*cmdMetaschema) help() *commandHelp {
	return &commandHelp{
		usage:   "metaschema [-o FILE]",
		summary: "Print the JSON Schema that schema documents are validated against",
	}
}

func (cmd *cmdMetaschema) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write to FILE instead of stdout")
}

func (cmd *cmdMetaschema) run(_ context.Context, argv []string) int {
	if len(argv) > 0 {
		fmt.Fprintln(os.Stderr, "usage: dbgen metaschema [-o FILE]")
		return exitUsage
	}
	data, err := metaschema.Generate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	if cmd.outPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitFatal
		}
		return exitOK
	}
	if err := os.WriteFile(cmd.outPath, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	return exitOK
}
