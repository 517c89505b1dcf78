// Package compare runs the comparison of every tracked artifact between the
// golden tree and the generated tree and assembles a report.MetricReport.
package compare

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1homsi/buildeval/internal/config"
	"github.com/1homsi/buildeval/internal/depextract"
	"github.com/1homsi/buildeval/internal/depset"
	"github.com/1homsi/buildeval/internal/linediff"
	"github.com/1homsi/buildeval/internal/report"
	"github.com/1homsi/buildeval/internal/textmetric"
)

// Comparator compares the artifacts listed in its configuration. The
// configuration is fixed at construction.
type Comparator struct {
	cfg       config.Config
	extractor depextract.Strategy
	log       *slog.Logger
	readFile  func(string) ([]byte, error)
	now       func() time.Time
}

type Option func(*Comparator)

// WithExtractor replaces the default pattern-based extractor.
func WithExtractor(s depextract.Strategy) Option {
	return func(c *Comparator) { c.extractor = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) { c.log = l }
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *Comparator) { c.readFile = fn }
}

func New(cfg config.Config, opts ...Option) *Comparator {
	c := &Comparator{
		cfg:       cfg,
		extractor: depextract.Default(),
		log:       slog.Default(),
		readFile:  os.ReadFile,
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run compares every tracked artifact in configuration order. An artifact
// that cannot be read gets a notice and the run continues. The only error
// is a cancelled ctx, checked between artifacts; the partial report is
// returned with it.
func (c *Comparator) Run(ctx context.Context) (report.MetricReport, error) {
	r := report.MetricReport{
		RunID:         uuid.NewString(),
		StartedAt:     c.now().UTC(),
		GoldenRoot:    c.cfg.GoldenRoot,
		GeneratedRoot: c.cfg.GeneratedRoot,
	}
	log := c.log.With("run", r.RunID)

	for _, a := range c.cfg.Artifacts {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		ar := c.artifact(log, a)
		r.Artifacts = append(r.Artifacts, ar)
	}
	return r, nil
}

func (c *Comparator) artifact(log *slog.Logger, a config.Artifact) report.ArtifactReport {
	goldenPath := c.cfg.GoldenPath(a.Path)
	generatedPath := c.cfg.GeneratedPath(a.Path)

	golden, err := c.readFile(goldenPath)
	if err != nil {
		log.Warn("golden artifact unreadable", "artifact", a.Path, "err", err)
		return skipped(a, goldenPath, generatedPath, notice("Golden", goldenPath, err))
	}
	generated, err := c.readFile(generatedPath)
	if err != nil {
		log.Warn("generated artifact unreadable", "artifact", a.Path, "err", err)
		return skipped(a, goldenPath, generatedPath, notice("Generated", generatedPath, err))
	}

	ar := c.Evaluate(a, normalizeNewlines(golden), normalizeNewlines(generated))
	ar.GoldenPath = goldenPath
	ar.GeneratedPath = generatedPath
	log.Debug("artifact compared",
		"artifact", a.Path,
		"similarity", ar.Similarity,
		"ngram", ar.NGram,
		"diff_lines", ar.DiffLines)
	return ar
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeNewlines reads b the way a text-mode open does: \r\n and lone
// \r both become \n before any metric sees the text.
func normalizeNewlines(b []byte) string {
	return newlines.Replace(string(b))
}

// Evaluate scores one artifact pair. It never fails: empty or malformed
// text only lowers the scores.
func (c *Comparator) Evaluate(a config.Artifact, golden, generated string) report.ArtifactReport {
	diff := linediff.AnalyzeFiles("golden/"+a.Path, "generated/"+a.Path, golden, generated)
	ar := report.ArtifactReport{
		Path:       a.Path,
		Role:       a.Role,
		Similarity: textmetric.Similarity(golden, generated),
		NGram:      textmetric.NGramScore(golden, generated),
		DiffLines:  diff.Count(),
		Diff:       diff,
	}

	if a.DependencyBearing() {
		g := c.extractor.Extract(golden)
		gen := c.extractor.Extract(generated)
		cmp := depset.Compare(g, gen)
		ar.Dependencies = &report.DependencyReport{
			Golden:     g,
			Generated:  gen,
			Comparison: cmp,
			Drift:      depset.FindDrift(cmp.Missing, cmp.Extra),
		}
	}

	for _, k := range a.KeyDependencies() {
		ar.KeyDeps = append(ar.KeyDeps, report.KeyDependency{
			Name:  k,
			Found: strings.Contains(generated, k),
		})
	}
	return ar
}

func skipped(a config.Artifact, goldenPath, generatedPath, msg string) report.ArtifactReport {
	return report.ArtifactReport{
		Path:          a.Path,
		Role:          a.Role,
		GoldenPath:    goldenPath,
		GeneratedPath: generatedPath,
		Notice:        msg,
	}
}

func notice(side, path string, err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("%s file not found: %s", side, path)
	}
	return fmt.Sprintf("%s file unreadable: %s: %v", side, path, err)
}
