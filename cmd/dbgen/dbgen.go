// Command dbgen compiles ConfigDB schema documents into C++ sources.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	minArgs int
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}

func execute(ctx context.Context, args []string) int {
	code := exitOK
	root := &cobra.Command{
		Use:           "dbgen COMMAND",
		Short:         "Generate ConfigDB database classes from JSON schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		fmt.Fprint(os.Stderr, cmd.UsageString())
		code = exitUsage
		return nil
	}

	commands := []command{
		&cmdCompile{},
		&cmdMetaschema{},
	}
	for _, cmd := range commands {
		cmd := cmd
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  cobra.MinimumNArgs(help.minArgs),
			RunE: func(_ *cobra.Command, args []string) error {
				code = cmd.run(ctx, args)
				return nil
			},
		}
		cmd.flags(cobraCmd.Flags())
		root.AddCommand(cobraCmd)
	}

	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		// flag and argument errors
		fmt.Fprintln(os.Stderr, "dbgen:", err)
		return exitUsage
	}
	return code
}
