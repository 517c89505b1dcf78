// Package compare implements `buildeval compare`.
package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1homsi/buildeval/cmd/buildeval/cmdutil"
	comparelib "github.com/1homsi/buildeval/internal/compare"
	"github.com/1homsi/buildeval/internal/config"
	"github.com/1homsi/buildeval/internal/exitcode"
	"github.com/1homsi/buildeval/internal/metrics"
	"github.com/1homsi/buildeval/internal/report"
)

// Output selects how a report is rendered.
type Output struct {
	JSON     bool
	SARIF    bool
	PromFile string
	Version  string
}

func (o *Output) Bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.JSON, "json", false, "write the report as JSON")
	f.BoolVar(&o.SARIF, "sarif", false, "write the report as SARIF 2.1.0")
	f.StringVar(&o.PromFile, "prom-file", "", "also export metrics to this Prometheus textfile")
}

func (o *Output) Validate() error {
	if o.JSON && o.SARIF {
		return errors.New("--json and --sarif are mutually exclusive")
	}
	return nil
}

// Write renders r to w and exports the textfile when requested.
func (o *Output) Write(w io.Writer, r report.MetricReport) error {
	switch {
	case o.JSON:
		if err := report.WriteJSON(w, r); err != nil {
			return err
		}
	case o.SARIF:
		if err := report.WriteSARIF(w, r, o.Version); err != nil {
			return err
		}
	default:
		report.WriteText(w, r)
	}
	if o.PromFile != "" {
		if err := metrics.WriteTextfile(o.PromFile, r); err != nil {
			return err
		}
		slog.Debug("metrics exported", "path", o.PromFile)
	}
	return nil
}

type options struct {
	out   Output
	gate  config.Gate
	watch bool
}

func Command(root *cmdutil.Options, version string) *cobra.Command {
	o := &options{out: Output{Version: version}}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare generated build descriptors against the golden dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.out.Validate(); err != nil {
				return err
			}
			cfg, err := root.Config()
			if err != nil {
				return err
			}
			applyGateFlags(cmd, &cfg.Gate, o.gate)
			if o.watch {
				return Watch(cmd.Context(), cfg, func(ctx context.Context) error {
					err := Once(ctx, cmd.OutOrStdout(), cfg, &o.out)
					if exitcode.From(err) == exitcode.GateFailed {
						slog.Warn("quality gate failed", "err", err)
						return nil
					}
					return err
				})
			}
			return Once(cmd.Context(), cmd.OutOrStdout(), cfg, &o.out)
		},
	}
	o.out.Bind(cmd)
	f := cmd.Flags()
	f.Float64Var(&o.gate.MinSimilarity, "min-similarity", 0, "fail when an artifact's similarity ratio is below this")
	f.Float64Var(&o.gate.MinF1, "min-f1", 0, "fail when a dependency-bearing artifact's F1 is below this")
	f.Float64Var(&o.gate.MinMatchPct, "min-match-pct", 0, "fail when an artifact's text match percentage is below this")
	f.BoolVarP(&o.watch, "watch", "w", false, "re-run the comparison whenever an artifact changes")
	return cmd
}

// applyGateFlags overrides the configured thresholds with the flags that
// were set explicitly.
func applyGateFlags(cmd *cobra.Command, gate *config.Gate, flags config.Gate) {
	if cmd.Flags().Changed("min-similarity") {
		gate.MinSimilarity = flags.MinSimilarity
	}
	if cmd.Flags().Changed("min-f1") {
		gate.MinF1 = flags.MinF1
	}
	if cmd.Flags().Changed("min-match-pct") {
		gate.MinMatchPct = flags.MinMatchPct
	}
}

// Once runs a single comparison, renders it and applies the quality gate.
func Once(ctx context.Context, w io.Writer, cfg config.Config, out *Output) error {
	r, err := comparelib.New(cfg).Run(ctx)
	if err != nil {
		return err
	}
	if err := out.Write(w, r); err != nil {
		return err
	}
	if failures := comparelib.CheckGate(r, cfg.Gate); len(failures) > 0 {
		return exitcode.Wrap(exitcode.GateFailed,
			fmt.Errorf("quality gate failed:\n  %s", strings.Join(failures, "\n  ")))
	}
	return nil
}
