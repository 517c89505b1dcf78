// Package assemble implements `buildeval assemble`.
package assemble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1homsi/buildeval/cmd/buildeval/cmdutil"
	assemblelib "github.com/1homsi/buildeval/internal/assemble"
	"github.com/1homsi/buildeval/internal/config"
	"github.com/1homsi/buildeval/internal/exitcode"
)

// NewBuilder builds the Gradle runner. Tests replace it.
var NewBuilder = func() *assemblelib.Builder { return assemblelib.NewBuilder() }

func Command(root *cmdutil.Options) *cobra.Command {
	var (
		build  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Smoke-check the golden build files and optionally build the generated project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.Config()
			if err != nil {
				return err
			}
			return Run(cmd.Context(), cmd.OutOrStdout(), cfg, build, asJSON)
		},
	}
	cmd.Flags().BoolVar(&build, "build", false, "copy the input codebase into the generated root and run gradle")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write results as JSON")
	return cmd
}

type result struct {
	Check *assemblelib.CheckResult `json:"check"`
	Build *assemblelib.BuildResult `json:"build,omitempty"`
}

// Run checks the golden output and, when build is set, assembles the
// generated tree. A failed check or build exits with the gate code.
func Run(ctx context.Context, w io.Writer, cfg config.Config, build, asJSON bool) error {
	check, err := assemblelib.Check(cfg.GoldenOutput())
	if err != nil {
		return err
	}
	res := result{Check: &check}
	if !asJSON {
		assemblelib.WriteCheck(w, check)
	}

	var failed []string
	if !check.Passed() {
		failed = append(failed, "golden files have syntax issues")
	}

	if build {
		br, err := NewBuilder().Build(ctx, cfg.InputCodebase(), cfg.GeneratedRoot)
		if errors.Is(err, assemblelib.ErrNoGradle) {
			slog.Warn("skipping project assembly", "err", err)
		} else if err != nil {
			return err
		} else {
			res.Build = &br
			if !br.Success {
				failed = append(failed, "project assembly failed")
			}
			if !asJSON {
				writeBuild(w, br)
			}
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return exitcode.Wrap(exitcode.GateFailed, errors.New(strings.Join(failed, "; ")))
	}
	return nil
}

func writeBuild(w io.Writer, br assemblelib.BuildResult) {
	if br.Success {
		fmt.Fprintln(w, "Project assembled successfully")
		return
	}
	fmt.Fprintln(w, "Project assembly failed")
	fmt.Fprintln(w, "--- Gradle Error ---")
	fmt.Fprintln(w, br.Stderr)
	fmt.Fprintln(w, "---------------------")
}
