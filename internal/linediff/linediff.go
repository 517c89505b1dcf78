// Package linediff computes a unified line diff between a golden text and a
// generated text and derives a coarse match percentage from its size.
package linediff

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

const (
	// PreviewLimit is the number of diff lines retained for reporting.
	PreviewLimit = 20
	// Context is the number of unchanged lines around each hunk.
	Context = 3
)

// Stats counts body lines of the diff. A deletion directly followed by an
// addition counts as one changed line.
type Stats struct {
	Added   int `json:"added"`
	Changed int `json:"changed"`
	Deleted int `json:"deleted"`
}

type Result struct {
	// Lines is the full unified diff, headers and hunk markers included.
	Lines    []string `json:"-"`
	MatchPct float64  `json:"match_pct"`
	Preview  []string `json:"preview,omitempty"`
	Omitted  int      `json:"omitted,omitempty"`
	Stats    Stats    `json:"stats"`
}

// Count is the number of diff lines, which drives MatchPct.
func (r Result) Count() int {
	return len(r.Lines)
}

func (r Result) Empty() bool {
	return len(r.Lines) == 0
}

// Analyze diffs golden against generated under the default file labels.
func Analyze(golden, generated string) Result {
	return AnalyzeFiles("golden", "generated", golden, generated)
}

// AnalyzeFiles diffs golden against generated, labelling the diff headers
// with fromFile and toFile.
func AnalyzeFiles(fromFile, toFile, golden, generated string) Result {
	lines := Unified(SplitLines(golden), SplitLines(generated), fromFile, toFile, Context)

	r := Result{
		Lines:    lines,
		MatchPct: MatchPercent(len(lines)),
		Stats:    stats(lines),
	}
	if len(lines) > PreviewLimit {
		r.Preview = lines[:PreviewLimit]
		r.Omitted = len(lines) - PreviewLimit
	} else {
		r.Preview = lines
	}
	return r
}

// MatchPercent is 100 for an empty diff and otherwise 100 minus two points
// per diff line, floored at 0. It ranks outputs; it is not an edit distance.
func MatchPercent(diffLines int) float64 {
	if diffLines == 0 {
		return 100
	}
	return float64(max(0, 100-2*diffLines))
}

// SplitLines splits s at \n, \r\n and \r, and at the remaining line
// boundaries \v, \f, \x1c, \x1d, \x1e, U+0085, U+2028 and U+2029. A
// trailing line break does not produce an empty final line, and an empty
// string has no lines.
func SplitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if i < start {
			continue
		}
		switch r {
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, s[start:i])
			start = i + utf8.RuneLen(r)
		case '\r':
			lines = append(lines, s[start:i])
			start = i + 1
			if start < len(s) && s[start] == '\n' {
				start++
			}
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// Unified renders the unified diff of a and b with n lines of context.
// Lines carry no terminators. Identical inputs produce no lines at all.
func Unified(a, b []string, fromFile, toFile string, n int) []string {
	var out []string
	m := difflib.NewMatcher(a, b)
	for _, group := range m.GetGroupedOpCodes(n) {
		if out == nil {
			out = append(out, "--- "+fromFile, "+++ "+toFile)
		}
		first, last := group[0], group[len(group)-1]
		out = append(out, fmt.Sprintf("@@ -%s +%s @@",
			formatRange(first.I1, last.I2), formatRange(first.J1, last.J2)))

		for _, c := range group {
			if c.Tag == 'e' {
				for _, line := range a[c.I1:c.I2] {
					out = append(out, " "+line)
				}
				continue
			}
			if c.Tag == 'r' || c.Tag == 'd' {
				for _, line := range a[c.I1:c.I2] {
					out = append(out, "-"+line)
				}
			}
			if c.Tag == 'r' || c.Tag == 'i' {
				for _, line := range b[c.J1:c.J2] {
					out = append(out, "+"+line)
				}
			}
		}
	}
	return out
}

// formatRange renders a hunk range: "start" for one line, "start,length"
// otherwise, with an empty range anchored on the line before it.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf("%d", beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}

func stats(lines []string) Stats {
	if len(lines) == 0 {
		return Stats{}
	}
	fd, err := diff.ParseFileDiff([]byte(strings.Join(lines, "\n") + "\n"))
	if err != nil {
		slog.Debug("parse unified diff for stats", "error", err)
		return countLines(lines)
	}
	st := fd.Stat()
	return Stats{Added: int(st.Added), Changed: int(st.Changed), Deleted: int(st.Deleted)}
}

// countLines mirrors diff.Hunk.Stat on the hunk bodies: a '-' line
// directly followed by a '+' line, or the reverse, counts as one change.
func countLines(lines []string) Stats {
	var st Stats
	var last byte
	// The first two lines are always the file headers.
	for _, l := range lines[2:] {
		if l == "" {
			last = 0
			continue
		}
		switch l[0] {
		case '-':
			if last == '+' {
				st.Added--
				st.Changed++
				last = 0
			} else {
				st.Deleted++
				last = '-'
			}
		case '+':
			if last == '-' {
				st.Deleted--
				st.Changed++
				last = 0
			} else {
				st.Added++
				last = '+'
			}
		default:
			last = 0
		}
	}
	return st
}
