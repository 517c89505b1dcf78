package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// dependencyPreview bounds the extracted-dependency lists.
	dependencyPreview = 10
	// differencePreview bounds the missing and extra lists.
	differencePreview = 5
	separator         = "=================================================="
)

type styles struct {
	title lipgloss.Style
	bold  lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	dim   lipgloss.Style
}

// newStyles binds styles to w, so colour is only emitted when w is a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		bold:  r.NewStyle().Bold(true),
		good:  r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("1")),
		dim:   r.NewStyle().Faint(true),
	}
}

func (s styles) score(v float64) lipgloss.Style {
	switch {
	case v >= 0.8:
		return s.good
	case v >= 0.5:
		return s.warn
	default:
		return s.bad
	}
}

// WriteText renders r as the line-oriented human report.
func WriteText(w io.Writer, r MetricReport) {
	st := newStyles(w)
	fmt.Fprintln(w, st.title.Render("=== Build Descriptor Comparison ==="))
	if r.RunID != "" {
		fmt.Fprintf(w, "Run:            %s\n", r.RunID)
	}
	fmt.Fprintf(w, "Golden root:    %s\n", r.GoldenRoot)
	fmt.Fprintf(w, "Generated root: %s\n", r.GeneratedRoot)

	for _, a := range r.Artifacts {
		fmt.Fprintln(w)
		writeArtifact(w, st, a)
		fmt.Fprintln(w, separator)
	}

	s := r.Summary()
	fmt.Fprintf(w, "\n%s\n", st.bold.Render("Summary"))
	fmt.Fprintf(w, "Artifacts compared: %d, skipped: %d\n", s.Compared, s.Skipped)
	if s.Compared > 0 {
		fmt.Fprintf(w, "Mean similarity: %.3f, mean BLEU-like: %.3f, mean text match: %.0f%%\n",
			s.MeanSimilarity, s.MeanNGram, s.MeanMatchPct)
	}
	if s.DependencyArtifacts > 0 {
		fmt.Fprintf(w, "Mean dependency F1: %.3f\n", s.MeanF1)
	}
}

func writeArtifact(w io.Writer, st styles, a ArtifactReport) {
	name := a.Path
	if a.Role != "" {
		name = fmt.Sprintf("%s (%s)", a.Path, a.Role)
	}
	fmt.Fprintf(w, "File to compare: %s\n", st.bold.Render(name))
	fmt.Fprintf(w, "Golden file path: %s\n", a.GoldenPath)
	fmt.Fprintf(w, "Generated file path: %s\n", a.GeneratedPath)

	if a.Skipped() {
		fmt.Fprintln(w, st.warn.Render(a.Notice))
		return
	}

	fmt.Fprintf(w, "Similarity Ratio: %s\n", st.score(a.Similarity).Render(fmt.Sprintf("%.3f", a.Similarity)))
	fmt.Fprintf(w, "BLEU-like Score: %s\n", st.score(a.NGram).Render(fmt.Sprintf("%.3f", a.NGram)))

	if a.Diff.Empty() {
		fmt.Fprintf(w, "Text match: %s\n", st.good.Render("100%"))
	} else {
		pct := fmt.Sprintf("~%.0f%%", a.Diff.MatchPct)
		fmt.Fprintf(w, "Text match: %s (%d diff lines; +%d ~%d -%d)\n",
			st.score(a.Diff.MatchPct/100).Render(pct), a.DiffLines,
			a.Diff.Stats.Added, a.Diff.Stats.Changed, a.Diff.Stats.Deleted)
		fmt.Fprintln(w, "--- Differences ---")
		for _, l := range a.Diff.Preview {
			fmt.Fprintln(w, diffLine(st, l))
		}
		if a.Diff.Omitted > 0 {
			fmt.Fprintln(w, st.dim.Render(fmt.Sprintf("... and %d more differences", a.Diff.Omitted)))
		}
	}

	if d := a.Dependencies; d != nil {
		writeDependencies(w, st, d)
	}

	if len(a.KeyDeps) > 0 {
		found := 0
		for _, k := range a.KeyDeps {
			if k.Found {
				found++
			}
		}
		fmt.Fprintf(w, "Key dependencies found: %d/%d\n", found, len(a.KeyDeps))
		for _, k := range a.KeyDeps {
			if k.Found {
				fmt.Fprintf(w, "  %s %s\n", st.good.Render("✓"), k.Name)
			} else {
				fmt.Fprintf(w, "  %s %s\n", st.bad.Render("✗"), k.Name)
			}
		}
	}
}

func writeDependencies(w io.Writer, st styles, d *DependencyReport) {
	fmt.Fprintf(w, "Golden dependencies found (%d): [%s]\n",
		d.Golden.Len(), preview(d.Golden.List(), dependencyPreview))
	fmt.Fprintf(w, "Generated dependencies found (%d): [%s]\n",
		d.Generated.Len(), preview(d.Generated.List(), dependencyPreview))
	fmt.Fprintf(w, "Dependencies - Precision: %.3f, Recall: %.3f, F1: %.3f\n",
		d.Precision, d.Recall, d.F1)

	if d.Missing.Len() > 0 {
		fmt.Fprintf(w, "%s %s\n", st.bad.Render("Missing dependencies:"),
			preview(d.Missing.List(), differencePreview))
	}
	if d.Extra.Len() > 0 {
		fmt.Fprintf(w, "%s %s\n", st.warn.Render("Extra dependencies:"),
			preview(d.Extra.List(), differencePreview))
	}
	if d.Matched() {
		fmt.Fprintln(w, st.good.Render("All dependencies match!"))
	}
	if len(d.Drift) > 0 {
		fmt.Fprintln(w, "Version drift:")
		for _, dr := range d.Drift {
			fmt.Fprintf(w, "  %s %s → %s (%s)\n", dr.Module, dr.Golden, dr.Generated, dr.Direction)
		}
	}
}

func diffLine(st styles, l string) string {
	switch {
	case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
		return st.bold.Render(l)
	case strings.HasPrefix(l, "@@"):
		return st.title.Render(l)
	case strings.HasPrefix(l, "+"):
		return st.good.Render(l)
	case strings.HasPrefix(l, "-"):
		return st.bad.Render(l)
	}
	return l
}

func preview(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s, ... (+%d more)", strings.Join(items[:n], ", "), len(items)-n)
}
