package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1homsi/buildeval/internal/depset"
	"github.com/1homsi/buildeval/internal/linediff"
	"github.com/1homsi/buildeval/internal/report"
)

func sample() report.MetricReport {
	golden := depset.New("a:b:1.0", "c:d:2.0")
	generated := depset.New("a:b:1.0")
	return report.MetricReport{
		StartedAt: time.Unix(1700000000, 0),
		Artifacts: []report.ArtifactReport{
			{
				Path:       "build.gradle.kts",
				Similarity: 0.75,
				NGram:      0.5,
				DiffLines:  7,
				Diff:       linediff.Analyze("a\nb\nc\n", "a\nx\nc\n"),
				Dependencies: &report.DependencyReport{
					Golden:     golden,
					Generated:  generated,
					Comparison: depset.Compare(golden, generated),
				},
			},
			{
				Path:       "composeApp/build.gradle.kts",
				Similarity: 1,
				Diff:       linediff.Analyze("x", "x"),
				KeyDeps: []report.KeyDependency{
					{Name: "compose.runtime", Found: true},
					{Name: "compose.foundation", Found: false},
				},
			},
			{Path: "settings.gradle.kts", Notice: "Generated file not found: settings.gradle.kts"},
		},
	}
}

func TestRecord(t *testing.T) {
	m := New()
	m.Record(sample())

	assert.Equal(t, 0.75, testutil.ToFloat64(m.Similarity.WithLabelValues("build.gradle.kts")))
	assert.Equal(t, 86.0, testutil.ToFloat64(m.MatchPct.WithLabelValues("build.gradle.kts")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.DiffLines.WithLabelValues("build.gradle.kts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Precision.WithLabelValues("build.gradle.kts")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.Recall.WithLabelValues("build.gradle.kts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Missing.WithLabelValues("build.gradle.kts")))
	assert.Equal(t, 0.5, testutil.ToFloat64(m.KeyDeps.WithLabelValues("composeApp/build.gradle.kts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Skipped))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastRunTime))

	// Only the dependency-bearing artifact has an F1 series.
	assert.Equal(t, 1, testutil.CollectAndCount(m.F1))
	// Skipped artifacts get no series.
	assert.Equal(t, 2, testutil.CollectAndCount(m.Similarity))
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildeval.prom")
	require.NoError(t, WriteTextfile(path, sample()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `buildeval_text_similarity_ratio{artifact="build.gradle.kts"} 0.75`)
	assert.Contains(t, out, `buildeval_dependencies_f1{artifact="build.gradle.kts"}`)
	assert.Contains(t, out, "buildeval_artifacts_skipped 1")
}

func TestWriteTextfileBadDir(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), sample())
	assert.Error(t, err)
}
