// Package generate asks a language model for the build descriptors of a
// source codebase and writes them out.
package generate

import (
	"context"
	"fmt"
	"log/slog"
)

const previewLen = 200

type Generator struct {
	completer Completer
}

func New(c Completer) *Generator {
	return &Generator{completer: c}
}

// Generate prompts the model with source and parses the reply. An
// ErrIncomplete result still carries whatever sections were found.
func (g *Generator) Generate(ctx context.Context, source string) (Artifacts, error) {
	reply, err := g.completer.Complete(ctx, Prompt(source))
	if err != nil {
		return Artifacts{}, fmt.Errorf("generate: %w", err)
	}
	slog.Info("model response received", "chars", len(reply))
	slog.Debug("model response preview", "text", preview(reply))

	a, err := ParseResponse(reply)
	for _, f := range a.Files() {
		slog.Debug("artifact extracted", "path", f.Path, "chars", len(f.Content))
	}
	return a, err
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
