package compare

import (
	"fmt"

	"github.com/1homsi/buildeval/internal/config"
	"github.com/1homsi/buildeval/internal/report"
)

// CheckGate lists every threshold violation in r. Skipped artifacts are not
// checked; a zero threshold is disabled.
func CheckGate(r report.MetricReport, g config.Gate) []string {
	var failures []string
	for _, a := range r.Artifacts {
		if a.Skipped() {
			continue
		}
		if g.MinSimilarity > 0 && a.Similarity < g.MinSimilarity {
			failures = append(failures, fmt.Sprintf("%s: similarity %.3f below %.3f", a.Path, a.Similarity, g.MinSimilarity))
		}
		if g.MinMatchPct > 0 && a.Diff.MatchPct < g.MinMatchPct {
			failures = append(failures, fmt.Sprintf("%s: text match %.0f%% below %.0f%%", a.Path, a.Diff.MatchPct, g.MinMatchPct))
		}
		if g.MinF1 > 0 && a.Dependencies != nil && a.Dependencies.F1 < g.MinF1 {
			failures = append(failures, fmt.Sprintf("%s: dependency F1 %.3f below %.3f", a.Path, a.Dependencies.F1, g.MinF1))
		}
	}
	return failures
}
