// Package assemble checks that a build tree looks assemblable and runs the
// Gradle build over a generated tree. Results are informational; the
// comparison never depends on them.
package assemble

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RequiredFiles must exist at the top of a checked tree.
var RequiredFiles = []string{"build.gradle.kts", "settings.gradle.kts"}

type FileCheck struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Size  int64  `json:"size,omitempty"`
}

type Entry struct {
	Name string `json:"name"`
	Dir  bool   `json:"dir"`
}

type SyntaxCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// CheckResult is the smoke check of one tree. It passes when the root
// descriptor exists and every syntax check passes.
type CheckResult struct {
	Dir             string        `json:"dir"`
	Files           []FileCheck   `json:"files"`
	Entries         []Entry       `json:"entries"`
	DescriptorFound bool          `json:"descriptor_found"`
	Syntax          []SyntaxCheck `json:"syntax,omitempty"`
}

func (c CheckResult) Passed() bool {
	if !c.DescriptorFound {
		return false
	}
	for _, s := range c.Syntax {
		if !s.Passed {
			return false
		}
	}
	return true
}

// SyntaxChecks runs the textual plausibility checks on a root descriptor.
// They are substring heuristics, not a parse.
func SyntaxChecks(content string) []SyntaxCheck {
	return []SyntaxCheck{
		{"plugins block", strings.Contains(content, "plugins")},
		{"kotlin block", strings.Contains(content, "kotlin") || strings.Contains(content, "multiplatform")},
		{"android block", strings.Contains(content, "android")},
		{"braces balanced", strings.Count(content, "{") == strings.Count(content, "}")},
	}
}

// Check inspects dir. It fails only when dir cannot be listed.
func Check(dir string) (CheckResult, error) {
	res := CheckResult{Dir: dir}

	des, err := os.ReadDir(dir)
	if err != nil {
		return res, fmt.Errorf("check %s: %w", dir, err)
	}
	for _, de := range des {
		res.Entries = append(res.Entries, Entry{Name: de.Name(), Dir: de.IsDir()})
	}
	sort.Slice(res.Entries, func(i, j int) bool { return res.Entries[i].Name < res.Entries[j].Name })

	for _, name := range RequiredFiles {
		fc := FileCheck{Name: name}
		if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && !fi.IsDir() {
			fc.Found = true
			fc.Size = fi.Size()
		}
		res.Files = append(res.Files, fc)
	}

	data, err := os.ReadFile(filepath.Join(dir, RequiredFiles[0]))
	if err == nil {
		res.DescriptorFound = true
		res.Syntax = SyntaxChecks(string(data))
	}
	return res, nil
}

// WriteCheck renders c for humans.
func WriteCheck(w io.Writer, c CheckResult) {
	fmt.Fprintf(w, "Assembly check: %s\n", c.Dir)
	for _, f := range c.Files {
		if f.Found {
			fmt.Fprintf(w, "  ✓ Found: %s (%d bytes)\n", f.Name, f.Size)
		} else {
			fmt.Fprintf(w, "  ✗ Missing: %s\n", f.Name)
		}
	}

	fmt.Fprintln(w, "Contents:")
	for _, e := range c.Entries {
		if e.Dir {
			fmt.Fprintf(w, "  [DIR]  %s/\n", e.Name)
		} else {
			fmt.Fprintf(w, "  [FILE] %s\n", e.Name)
		}
	}

	if !c.DescriptorFound {
		fmt.Fprintf(w, "No %s found for validation\n", RequiredFiles[0])
		return
	}
	fmt.Fprintf(w, "Syntax checks for %s:\n", RequiredFiles[0])
	for _, s := range c.Syntax {
		mark := "✓"
		if !s.Passed {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, s.Name)
	}
	if c.Passed() {
		fmt.Fprintln(w, "Files pass basic validation")
	} else {
		fmt.Fprintln(w, "Files have syntax issues")
	}
}
