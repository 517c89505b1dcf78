package depextract

import (
	"fmt"
	"regexp"

	"github.com/1homsi/buildeval/languages"
	"gopkg.in/yaml.v3"
)

// Pattern is one compiled dependency-declaration idiom. Its single capture
// group is the dependency identifier.
type Pattern struct {
	ID    string
	Idiom string
	re    *regexp.Regexp
}

// Block is a compiled block pattern whose captured body is re-scanned.
type Block struct {
	ID     string
	re     *regexp.Regexp
	rescan *regexp.Regexp
}

// PatternSet holds the compiled extraction patterns for one dialect.
// It is loaded from a languages/*.yaml file via LoadPatterns.
type PatternSet struct {
	Name     string
	Patterns []Pattern
	Blocks   []Block
}

// rawPatternSet mirrors the YAML structure before regexes are compiled.
type rawPatternSet struct {
	Name     string       `yaml:"name"`
	Patterns []rawPattern `yaml:"patterns"`
	Blocks   []rawBlock   `yaml:"blocks"`
}

type rawPattern struct {
	ID         string `yaml:"id"`
	Idiom      string `yaml:"idiom"`
	Regex      string `yaml:"regex"`
	IgnoreCase bool   `yaml:"ignore_case"`
}

type rawBlock struct {
	ID         string `yaml:"id"`
	Regex      string `yaml:"regex"`
	Rescan     string `yaml:"rescan"`
	IgnoreCase bool   `yaml:"ignore_case"`
}

// LoadPatterns reads and compiles languages/<dialect>.yaml from the embedded FS.
// Every pattern must compile and expose exactly one capture group, and every
// block must reference a known pattern; anything else is an early error.
func LoadPatterns(dialect string) (*PatternSet, error) {
	data, err := languages.FS.ReadFile(dialect + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("load patterns for %q: %w", dialect, err)
	}
	return ParsePatterns(dialect+".yaml", data)
}

// ParsePatterns compiles a pattern table from YAML. name is used in errors.
func ParsePatterns(name string, data []byte) (*PatternSet, error) {
	var raw rawPatternSet
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	ps := &PatternSet{Name: raw.Name}
	byID := make(map[string]rawPattern, len(raw.Patterns))

	for _, rp := range raw.Patterns {
		if rp.ID == "" {
			return nil, fmt.Errorf("%s: pattern without id", name)
		}
		if _, dup := byID[rp.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate pattern id %q", name, rp.ID)
		}
		re, err := compile(rp.Regex, rp.IgnoreCase, name+" patterns."+rp.ID)
		if err != nil {
			return nil, err
		}
		byID[rp.ID] = rp
		ps.Patterns = append(ps.Patterns, Pattern{ID: rp.ID, Idiom: rp.Idiom, re: re})
	}

	for _, rb := range raw.Blocks {
		ref, ok := byID[rb.Rescan]
		if !ok {
			return nil, fmt.Errorf("%s: block %q rescans unknown pattern %q", name, rb.ID, rb.Rescan)
		}
		re, err := compile(rb.Regex, rb.IgnoreCase, name+" blocks."+rb.ID)
		if err != nil {
			return nil, err
		}
		// The body is re-scanned with the block's case sensitivity, not the
		// referenced pattern's.
		rescan, err := compile(ref.Regex, rb.IgnoreCase, name+" blocks."+rb.ID+".rescan")
		if err != nil {
			return nil, err
		}
		ps.Blocks = append(ps.Blocks, Block{ID: rb.ID, re: re, rescan: rescan})
	}

	return ps, nil
}

// MustLoadPatterns is like LoadPatterns but panics on error.
// Safe to call at package-init time since the YAML is embedded at compile time.
func MustLoadPatterns(dialect string) *PatternSet {
	ps, err := LoadPatterns(dialect)
	if err != nil {
		panic(fmt.Sprintf("buildeval: %v", err))
	}
	return ps
}

func compile(expr string, ignoreCase bool, location string) (*regexp.Regexp, error) {
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", location, err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("%s: want exactly 1 capture group, got %d", location, re.NumSubexp())
	}
	return re, nil
}
