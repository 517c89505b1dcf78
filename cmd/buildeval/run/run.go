// Package run implements `buildeval run`, the whole pipeline: generate,
// save, compare, then the golden assembly check.
package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1homsi/buildeval/cmd/buildeval/assemble"
	"github.com/1homsi/buildeval/cmd/buildeval/cmdutil"
	"github.com/1homsi/buildeval/cmd/buildeval/compare"
	"github.com/1homsi/buildeval/cmd/buildeval/generate"
	"github.com/1homsi/buildeval/internal/exitcode"
)

func Command(root *cmdutil.Options, version string) *cobra.Command {
	var (
		out       = compare.Output{Version: version}
		build     bool
		skipCheck bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate build descriptors, compare them with the golden dataset and check assembly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := out.Validate(); err != nil {
				return err
			}
			cfg, err := root.Config()
			if err != nil {
				return err
			}
			c, err := generate.NewCompleter(cfg.Generation)
			if err != nil {
				return err
			}
			if _, err := generate.Generate(cmd.Context(), cfg, c); err != nil {
				return fmt.Errorf("cannot generate build files: %w", err)
			}

			w := cmd.OutOrStdout()
			gateErr := compare.Once(cmd.Context(), w, cfg, &out)
			if gateErr != nil && exitcode.From(gateErr) != exitcode.GateFailed {
				return gateErr
			}

			var checkErr error
			if !skipCheck && !out.JSON && !out.SARIF {
				fmt.Fprintln(w)
				checkErr = assemble.Run(cmd.Context(), w, cfg, build, false)
				if checkErr != nil && exitcode.From(checkErr) != exitcode.GateFailed {
					return checkErr
				}
			}
			if gateErr != nil {
				return gateErr
			}
			return checkErr
		},
	}
	out.Bind(cmd)
	cmd.Flags().BoolVar(&build, "assemble", false, "also run gradle over the generated project")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "skip the golden assembly check")
	return cmd
}
