package report

import (
	"time"

	"github.com/1homsi/buildeval/internal/depset"
	"github.com/1homsi/buildeval/internal/linediff"
)

// MetricReport is the outcome of one comparison run. It is rendered by the
// Write* functions and never persisted.
type MetricReport struct {
	RunID         string           `json:"run_id"`
	StartedAt     time.Time        `json:"started_at"`
	GoldenRoot    string           `json:"golden_root"`
	GeneratedRoot string           `json:"generated_root"`
	Artifacts     []ArtifactReport `json:"artifacts"`
}

// ArtifactReport holds the scores of one tracked artifact. When Notice is
// set the artifact could not be read and carries no scores.
type ArtifactReport struct {
	Path          string `json:"path"`
	Role          string `json:"role,omitempty"`
	GoldenPath    string `json:"golden_path"`
	GeneratedPath string `json:"generated_path"`
	Notice        string `json:"notice,omitempty"`

	Similarity float64         `json:"similarity"`
	NGram      float64         `json:"ngram"`
	DiffLines  int             `json:"diff_lines"`
	Diff       linediff.Result `json:"diff"`

	Dependencies *DependencyReport `json:"dependencies,omitempty"`
	KeyDeps      []KeyDependency   `json:"key_dependencies,omitempty"`
}

func (a ArtifactReport) Skipped() bool {
	return a.Notice != ""
}

// DependencyReport compares the dependency sets extracted from both variants.
type DependencyReport struct {
	Golden    depset.Set `json:"golden"`
	Generated depset.Set `json:"generated"`
	depset.Comparison
	Drift []depset.Drift `json:"drift,omitempty"`
}

func (d DependencyReport) Matched() bool {
	return d.Missing.Len() == 0 && d.Extra.Len() == 0
}

// KeyDependency records whether a required dependency string occurs in the
// generated text.
type KeyDependency struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// Summary aggregates the compared (non-skipped) artifacts of a run.
type Summary struct {
	Compared       int     `json:"compared"`
	Skipped        int     `json:"skipped"`
	MeanSimilarity float64 `json:"mean_similarity"`
	MeanNGram      float64 `json:"mean_ngram"`
	MeanMatchPct   float64 `json:"mean_match_pct"`
	// MeanF1 averages dependency-bearing artifacts only; DependencyArtifacts
	// is their count.
	MeanF1              float64 `json:"mean_f1"`
	DependencyArtifacts int     `json:"dependency_artifacts"`
}

func (r MetricReport) Summary() Summary {
	var s Summary
	for _, a := range r.Artifacts {
		if a.Skipped() {
			s.Skipped++
			continue
		}
		s.Compared++
		s.MeanSimilarity += a.Similarity
		s.MeanNGram += a.NGram
		s.MeanMatchPct += a.Diff.MatchPct
		if a.Dependencies != nil {
			s.DependencyArtifacts++
			s.MeanF1 += a.Dependencies.F1
		}
	}
	if s.Compared > 0 {
		n := float64(s.Compared)
		s.MeanSimilarity /= n
		s.MeanNGram /= n
		s.MeanMatchPct /= n
	}
	if s.DependencyArtifacts > 0 {
		s.MeanF1 /= float64(s.DependencyArtifacts)
	}
	return s
}
