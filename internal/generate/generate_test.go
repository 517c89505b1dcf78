package generate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1homsi/buildeval/internal/config"
)

const fullResponse = `Here are your files.
[ROOT_BUILD_START]
plugins {
    alias(libs.plugins.kotlinMultiplatform) apply false
}
[ROOT_BUILD_END]

[APP_BUILD_START]
kotlin { jvm() }
[APP_BUILD_END]

[SETTINGS_START]
rootProject.name = "KMPWithTests"
[SETTINGS_END]

[GRADLEW_START]
@echo off
[GRADLEW_END]
`

func TestPromptContainsSourceAndMarkers(t *testing.T) {
	p := Prompt("// --- FILE: App.kt ---\n\nfun main() {}")
	assert.Contains(t, p, "fun main() {}")
	for _, m := range Markers {
		assert.Contains(t, p, m)
	}
}

func TestParseResponse(t *testing.T) {
	a, err := ParseResponse(fullResponse)
	require.NoError(t, err)
	assert.Equal(t, "plugins {\n    alias(libs.plugins.kotlinMultiplatform) apply false\n}", a.Root)
	assert.Equal(t, "kotlin { jvm() }", a.Module)
	assert.Equal(t, `rootProject.name = "KMPWithTests"`, a.Settings)
	assert.Equal(t, "@echo off", a.Wrapper)
	assert.Empty(t, a.Blank())
}

func TestParseResponseMissingEndTakesRest(t *testing.T) {
	a, err := ParseResponse("[ROOT_BUILD_START] r [APP_BUILD_START] m [APP_BUILD_END] [SETTINGS_START] s\n")
	require.NoError(t, err)
	assert.Equal(t, "r [APP_BUILD_START] m [APP_BUILD_END] [SETTINGS_START] s", a.Root)
	assert.Equal(t, "m", a.Module)
	assert.Equal(t, "s", a.Settings)
	assert.Empty(t, a.Wrapper)
}

func TestParseResponseRepeatedStart(t *testing.T) {
	a, err := ParseResponse("[ROOT_BUILD_START] first [ROOT_BUILD_START] second [ROOT_BUILD_END] [APP_BUILD_START][APP_BUILD_END] [SETTINGS_START][SETTINGS_END]")
	require.NoError(t, err)
	assert.Equal(t, "first", a.Root)
	assert.Equal(t, []string{ModuleDescriptor, SettingsDescriptor}, a.Blank())
}

func TestParseResponseIncomplete(t *testing.T) {
	a, err := ParseResponse("[ROOT_BUILD_START]\nroot\n[ROOT_BUILD_END]")
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), ModuleDescriptor)
	assert.Contains(t, err.Error(), SettingsDescriptor)
	assert.NotContains(t, err.Error(), "missing "+RootDescriptor)
	assert.Equal(t, "root", a.Root)
}

func TestParseResponseEmpty(t *testing.T) {
	_, err := ParseResponse("")
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestFilesOmitsMissingWrapper(t *testing.T) {
	files := Artifacts{Root: "r", Module: "m", Settings: "s"}.Files()
	require.Len(t, files, 3)
	assert.Equal(t, ModuleDescriptor, files[1].Path)
}

type stubCompleter struct {
	reply  string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestGenerate(t *testing.T) {
	stub := &stubCompleter{reply: fullResponse}
	a, err := New(stub).Generate(context.Background(), "SOURCE")
	require.NoError(t, err)
	assert.Contains(t, stub.prompt, "SOURCE")
	assert.Equal(t, "kotlin { jvm() }", a.Module)
}

func TestGenerateCompleterError(t *testing.T) {
	_, err := New(&stubCompleter{err: errors.New("rate limited")}).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateIncomplete(t *testing.T) {
	_, err := New(&stubCompleter{reply: "sorry"}).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	stale := filepath.Join(dir, "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	require.NoError(t, Save(dir, Artifacts{Root: "r", Module: "m", Settings: "s", Wrapper: "w"}))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "output directory is recreated")
	for path, want := range map[string]string{
		RootDescriptor:     "r",
		ModuleDescriptor:   "m",
		SettingsDescriptor: "s",
		WrapperScript:      "w",
	} {
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestNewClientNeedsKey(t *testing.T) {
	_, err := NewClient(config.Default().Generation)
	assert.Error(t, err)
}

func TestClientComplete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`)
	}))
	defer srv.Close()

	g := config.Default().Generation
	g.APIKey = "sk-test"
	g.BaseURL = srv.URL + "/v1"
	c, err := NewClient(g)
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 3000, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "prompt text", got.Messages[0].Content)
}

func TestClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	g := config.Default().Generation
	g.BaseURL = srv.URL
	c, err := NewClient(g)
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), "x")
	assert.Error(t, err)
}
