package assemble

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assemblelib "github.com/1homsi/buildeval/internal/assemble"
	"github.com/1homsi/buildeval/internal/config"
	"github.com/1homsi/buildeval/internal/exitcode"
)

func dataset(t *testing.T, descriptor string) config.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"golden_output/build.gradle.kts":    descriptor,
		"golden_output/settings.gradle.kts": `include(":composeApp")`,
		"input_codebase/gradle.properties":  "kotlin.code.style=official",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg := config.Default()
	cfg.GoldenRoot = root
	cfg.GeneratedRoot = filepath.Join(root, "generated")
	return cfg
}

const descriptor = "plugins {\n    alias(libs.plugins.androidApplication) apply false\n    alias(libs.plugins.kotlinMultiplatform) apply false\n}\n"

func stubBuilder(t *testing.T, err error) {
	t.Helper()
	orig := NewBuilder
	NewBuilder = func() *assemblelib.Builder {
		return assemblelib.NewBuilder(assemblelib.WithRunner(
			func(context.Context, string, string, ...string) (string, error) { return "boom", err },
		))
	}
	t.Cleanup(func() { NewBuilder = orig })
}

func TestRunCheckPasses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), &buf, dataset(t, descriptor), false, false))
	assert.Contains(t, buf.String(), "Files pass basic validation")
}

func TestRunCheckFails(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), &buf, dataset(t, "plugins {"), false, false)
	assert.Equal(t, exitcode.GateFailed, exitcode.From(err))
}

func TestRunBuildJSON(t *testing.T) {
	stubBuilder(t, nil)
	cfg := dataset(t, descriptor)

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), &buf, cfg, true, true))

	var res struct {
		Check assemblelib.CheckResult `json:"check"`
		Build assemblelib.BuildResult `json:"build"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.True(t, res.Check.DescriptorFound)
	assert.True(t, res.Build.Success)
	assert.FileExists(t, filepath.Join(cfg.GeneratedRoot, "gradle.properties"))
}

func TestRunBuildWithoutGradle(t *testing.T) {
	stubBuilder(t, exec.ErrNotFound)
	var buf bytes.Buffer
	assert.NoError(t, Run(context.Background(), &buf, dataset(t, descriptor), true, false))
}
