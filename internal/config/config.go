// Package config holds the evaluation run configuration: where the golden
// and generated artifacts live, which artifacts are compared, generation
// parameters and quality-gate thresholds.
//
// A Config is built once at start-up (defaults, then an optional YAML file,
// then environment variables, then CLI flags) and is read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

const (
	// GoldenOutputDir is the directory under the golden root holding the
	// reference artifacts.
	GoldenOutputDir = "golden_output"
	// InputCodebaseDir is the directory under the golden root holding the
	// source codebase the artifacts are generated from.
	InputCodebaseDir = "input_codebase"

	RootDescriptor = "build.gradle.kts"
)

// DefaultKeyDependencies are checked in module descriptors that do not
// configure their own list.
var DefaultKeyDependencies = []string{
	"io.ktor:ktor-client-core",
	"compose.runtime",
	"compose.foundation",
}

// Artifact is one tracked file compared between the golden and generated
// trees. Path is relative to both roots.
type Artifact struct {
	Path string `yaml:"path" validate:"required"`
	Role string `yaml:"role,omitempty"`
	// Dependencies forces dependency extraction on or off. When unset, an
	// artifact is dependency-bearing if its path ends in build.gradle.kts.
	Dependencies *bool    `yaml:"dependencies,omitempty"`
	KeyDeps      []string `yaml:"key_deps,omitempty"`
}

// DependencyBearing reports whether dependency sets are extracted and compared.
func (a Artifact) DependencyBearing() bool {
	if a.Dependencies != nil {
		return *a.Dependencies
	}
	return strings.HasSuffix(filepath.ToSlash(a.Path), RootDescriptor)
}

// KeyDependencies returns the dependencies whose presence is checked in the
// generated text; nil means no check.
func (a Artifact) KeyDependencies() []string {
	if a.KeyDeps != nil {
		return a.KeyDeps
	}
	if strings.Contains(filepath.ToSlash(a.Path), "composeApp") {
		return DefaultKeyDependencies
	}
	return nil
}

// Label is the role when set, the path otherwise.
func (a Artifact) Label() string {
	if a.Role != "" {
		return a.Role
	}
	return a.Path
}

type Generation struct {
	Model       string  `yaml:"model" validate:"required"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=1"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	BaseURL     string  `yaml:"base_url,omitempty" validate:"omitempty,url"`
	// APIKey is only ever read from the environment.
	APIKey string `yaml:"-"`
}

// Gate holds the thresholds below which a comparison run fails. Zero
// disables a threshold.
type Gate struct {
	MinSimilarity float64 `yaml:"min_similarity" validate:"gte=0,lte=1"`
	MinF1         float64 `yaml:"min_f1" validate:"gte=0,lte=1"`
	MinMatchPct   float64 `yaml:"min_match_pct" validate:"gte=0,lte=100"`
}

type Config struct {
	GoldenRoot    string     `yaml:"golden_root" validate:"required"`
	GeneratedRoot string     `yaml:"generated_root" validate:"required"`
	Artifacts     []Artifact `yaml:"artifacts" validate:"min=1,dive"`
	Generation    Generation `yaml:"generation"`
	Gate          Gate       `yaml:"gate"`
}

// Default returns the configuration of the KMPWithTests dataset with the
// root build descriptor as the only tracked artifact.
func Default() Config {
	golden := filepath.Join("golden_dataset", "KMPWithTests")
	return Config{
		GoldenRoot:    golden,
		GeneratedRoot: filepath.Join(golden, "generated"),
		Artifacts: []Artifact{
			{Path: RootDescriptor, Role: "root build descriptor"},
		},
		Generation: Generation{
			Model:       "gpt-4o-mini",
			MaxTokens:   3000,
			Temperature: 0.7,
		},
	}
}

// Load returns Default overlaid with the YAML file at path (when path is
// not empty) and then with environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables resolved by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BUILDEVAL_GOLDEN_ROOT"); ok && v != "" {
		c.GoldenRoot = v
	}
	if v, ok := lookup("BUILDEVAL_GENERATED_ROOT"); ok && v != "" {
		c.GeneratedRoot = v
	}
	if v, ok := lookup("BUILDEVAL_MODEL"); ok && v != "" {
		c.Generation.Model = v
	}
	if v, ok := lookup("BUILDEVAL_MAX_TOKENS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: BUILDEVAL_MAX_TOKENS=%q: %v", ErrInvalid, v, err)
		}
		c.Generation.MaxTokens = n
	}
	if v, ok := lookup("OPENAI_BASE_URL"); ok && v != "" {
		c.Generation.BaseURL = v
	}
	if v, ok := lookup("OPENAI_API_KEY"); ok {
		c.Generation.APIKey = v
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and rejects duplicate artifact paths.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	seen := make(map[string]bool, len(c.Artifacts))
	for _, a := range c.Artifacts {
		p := filepath.Clean(a.Path)
		if seen[p] {
			return fmt.Errorf("%w: duplicate artifact %q", ErrInvalid, a.Path)
		}
		if filepath.IsAbs(p) || p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) {
			return fmt.Errorf("%w: artifact %q must be relative to the roots", ErrInvalid, a.Path)
		}
		seen[p] = true
	}
	return nil
}

// GoldenPath is the golden variant of artifact.
func (c Config) GoldenPath(artifact string) string {
	return filepath.Join(c.GoldenRoot, GoldenOutputDir, filepath.FromSlash(artifact))
}

// GeneratedPath is the generated variant of artifact.
func (c Config) GeneratedPath(artifact string) string {
	return filepath.Join(c.GeneratedRoot, filepath.FromSlash(artifact))
}

func (c Config) GoldenOutput() string {
	return filepath.Join(c.GoldenRoot, GoldenOutputDir)
}

func (c Config) InputCodebase() string {
	return filepath.Join(c.GoldenRoot, InputCodebaseDir)
}
