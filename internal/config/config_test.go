package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func TestDefaultTracksRootDescriptorOnly(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Artifacts, 1)
	assert.Equal(t, "build.gradle.kts", cfg.Artifacts[0].Path)
	assert.True(t, cfg.Artifacts[0].DependencyBearing())
	assert.Nil(t, cfg.Artifacts[0].KeyDependencies())
	assert.Equal(t, 3000, cfg.Generation.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Generation.Temperature, 1e-6)
}

func TestPaths(t *testing.T) {
	cfg := Config{GoldenRoot: "g", GeneratedRoot: "out"}
	assert.Equal(t, filepath.Join("g", "golden_output", "composeApp", "build.gradle.kts"), cfg.GoldenPath("composeApp/build.gradle.kts"))
	assert.Equal(t, filepath.Join("out", "build.gradle.kts"), cfg.GeneratedPath("build.gradle.kts"))
	assert.Equal(t, filepath.Join("g", "input_codebase"), cfg.InputCodebase())
	assert.Equal(t, filepath.Join("g", "golden_output"), cfg.GoldenOutput())
}

func TestArtifactRoles(t *testing.T) {
	off := false
	tests := []struct {
		name     string
		artifact Artifact
		deps     bool
		keyDeps  []string
	}{
		{"root descriptor", Artifact{Path: "build.gradle.kts"}, true, nil},
		{"module descriptor", Artifact{Path: "composeApp/build.gradle.kts"}, true, DefaultKeyDependencies},
		{"settings", Artifact{Path: "settings.gradle.kts"}, false, nil},
		{"forced off", Artifact{Path: "build.gradle.kts", Dependencies: &off}, false, nil},
		{"explicit key deps", Artifact{Path: "shared/build.gradle.kts", KeyDeps: []string{"x"}}, true, []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.deps, tt.artifact.DependencyBearing())
			assert.Equal(t, tt.keyDeps, tt.artifact.KeyDependencies())
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "root", Artifact{Path: "build.gradle.kts", Role: "root"}.Label())
	assert.Equal(t, "build.gradle.kts", Artifact{Path: "build.gradle.kts"}.Label())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildeval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
golden_root: data/golden
generated_root: data/out
artifacts:
  - path: build.gradle.kts
  - path: composeApp/build.gradle.kts
    role: module build descriptor
  - path: settings.gradle.kts
gate:
  min_f1: 0.8
`), 0600))

	t.Setenv("BUILDEVAL_GOLDEN_ROOT", "")
	t.Setenv("BUILDEVAL_GENERATED_ROOT", "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/golden", cfg.GoldenRoot)
	assert.Equal(t, "data/out", cfg.GeneratedRoot)
	require.Len(t, cfg.Artifacts, 3)
	assert.Equal(t, "module build descriptor", cfg.Artifacts[1].Role)
	assert.Equal(t, 0.8, cfg.Gate.MinF1)
	assert.Equal(t, 3000, cfg.Generation.MaxTokens, "defaults survive a partial file")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("artifacts: [\n"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"BUILDEVAL_GOLDEN_ROOT":    "/data/golden",
		"BUILDEVAL_GENERATED_ROOT": "/data/out",
		"BUILDEVAL_MODEL":          "gpt-4o",
		"BUILDEVAL_MAX_TOKENS":     "4096",
		"OPENAI_API_KEY":           "sk-test",
		"OPENAI_BASE_URL":          "http://localhost:11434/v1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/data/golden", cfg.GoldenRoot)
	assert.Equal(t, "/data/out", cfg.GeneratedRoot)
	assert.Equal(t, "gpt-4o", cfg.Generation.Model)
	assert.Equal(t, 4096, cfg.Generation.MaxTokens)
	assert.Equal(t, "sk-test", cfg.Generation.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Generation.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{"BUILDEVAL_MAX_TOKENS": "lots"}))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no artifacts", func(c *Config) { c.Artifacts = nil }},
		{"empty artifact path", func(c *Config) { c.Artifacts = []Artifact{{Path: ""}} }},
		{"duplicate artifact", func(c *Config) {
			c.Artifacts = []Artifact{{Path: "build.gradle.kts"}, {Path: "./build.gradle.kts"}}
		}},
		{"escaping artifact", func(c *Config) { c.Artifacts = []Artifact{{Path: "../build.gradle.kts"}} }},
		{"no golden root", func(c *Config) { c.GoldenRoot = "" }},
		{"similarity above 1", func(c *Config) { c.Gate.MinSimilarity = 1.5 }},
		{"negative match pct", func(c *Config) { c.Gate.MinMatchPct = -1 }},
		{"zero max tokens", func(c *Config) { c.Generation.MaxTokens = 0 }},
		{"bad base url", func(c *Config) { c.Generation.BaseURL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
