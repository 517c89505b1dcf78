// Package generate implements `buildeval generate`.
package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/1homsi/buildeval/cmd/buildeval/cmdutil"
	"github.com/1homsi/buildeval/internal/codebase"
	"github.com/1homsi/buildeval/internal/config"
	generatelib "github.com/1homsi/buildeval/internal/generate"
)

// NewCompleter builds the model client. Tests replace it.
var NewCompleter = func(g config.Generation) (generatelib.Completer, error) {
	return generatelib.NewClient(g)
}

func Command(root *cmdutil.Options) *cobra.Command {
	var (
		model      string
		promptOnly bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate build descriptors for the input codebase with a language model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.Config()
			if err != nil {
				return err
			}
			if model != "" {
				cfg.Generation.Model = model
			}
			if promptOnly {
				source, err := codebase.Flatten(cfg.InputCodebase())
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), generatelib.Prompt(source))
				return err
			}
			c, err := NewCompleter(cfg.Generation)
			if err != nil {
				return err
			}
			_, err = Generate(cmd.Context(), cfg, c)
			return err
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "model name (overrides config)")
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "print the prompt instead of calling the model")
	return cmd
}

// Generate flattens the input codebase, asks c for the artifacts and saves
// them under the generated root. Blank artifacts are saved with a warning;
// a missing section stops before anything is written.
func Generate(ctx context.Context, cfg config.Config, c generatelib.Completer) (generatelib.Artifacts, error) {
	source, err := codebase.Flatten(cfg.InputCodebase())
	if err != nil {
		return generatelib.Artifacts{}, err
	}

	a, err := generatelib.New(c).Generate(ctx, source)
	if err != nil {
		return a, err
	}

	if blank := a.Blank(); len(blank) > 0 {
		slog.Warn("generated artifacts are empty",
			"artifacts", blank,
			"root_chars", len(a.Root),
			"module_chars", len(a.Module),
			"settings_chars", len(a.Settings))
	}

	if err := generatelib.Save(cfg.GeneratedRoot, a); err != nil {
		return a, err
	}
	slog.Info("generated files saved", "dir", cfg.GeneratedRoot)
	return a, nil
}
