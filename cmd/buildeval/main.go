package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1homsi/buildeval/cmd/buildeval/assemble"
	"github.com/1homsi/buildeval/cmd/buildeval/cmdutil"
	"github.com/1homsi/buildeval/cmd/buildeval/compare"
	"github.com/1homsi/buildeval/cmd/buildeval/generate"
	"github.com/1homsi/buildeval/cmd/buildeval/run"
	"github.com/1homsi/buildeval/internal/exitcode"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	opts := &cmdutil.Options{}
	root := &cobra.Command{
		Use:           "buildeval",
		Short:         "Score generated build descriptors against a golden dataset",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.Setup()
		},
	}
	opts.Bind(root)
	root.AddCommand(
		compare.Command(opts, version),
		generate.Command(opts),
		assemble.Command(opts),
		run.Command(opts, version),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildeval: %v\n", err)
	}
	os.Exit(exitcode.From(err))
}
