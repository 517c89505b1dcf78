package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Task is the Gradle task that assembles the app module.
const Task = ":composeApp:assembleDebug"

// ErrNoGradle means neither a wrapper script nor a gradle binary could be
// started.
var ErrNoGradle = errors.New("no gradle available")

const wrapperProperties = `distributionBase=GRADLE_USER_HOME
distributionPath=wrapper/dists
distributionUrl=https\://services.gradle.org/distributions/gradle-8.1-bin.zip
networkTimeout=10000
zipStoreBase=GRADLE_USER_HOME
zipStorePath=wrapper/dists`

// Runner runs name with args in dir and returns its standard error.
type Runner func(ctx context.Context, dir, name string, args ...string) (stderr string, err error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

type BuildResult struct {
	Command []string `json:"command"`
	Success bool     `json:"success"`
	Stderr  string   `json:"stderr,omitempty"`
}

type Builder struct {
	run  Runner
	goos string
}

type BuildOption func(*Builder)

func WithRunner(r Runner) BuildOption {
	return func(b *Builder) { b.run = r }
}

func NewBuilder(opts ...BuildOption) *Builder {
	b := &Builder{run: ExecRunner, goos: runtime.GOOS}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build copies the source tree into generatedRoot, keeping any
// build.gradle.kts already there, adds a wrapper properties file when
// missing and runs Task. A failed build is a result, not an error; the
// error is reserved for setup failures and ErrNoGradle.
func (b *Builder) Build(ctx context.Context, inputCodebase, generatedRoot string) (BuildResult, error) {
	if err := copyTree(inputCodebase, generatedRoot); err != nil {
		return BuildResult{}, err
	}
	if err := ensureWrapperProperties(generatedRoot); err != nil {
		return BuildResult{}, err
	}

	name := b.wrapper(generatedRoot)
	if name == "" {
		slog.Info("gradle wrapper not found, falling back to system gradle")
		name = "gradle"
	}
	res := BuildResult{Command: []string{name, Task, "--stacktrace"}}
	slog.Info("assembling project", "dir", generatedRoot, "command", res.Command)

	stderr, err := b.run(ctx, generatedRoot, name, Task, "--stacktrace")
	res.Stderr = stderr
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, fmt.Errorf("%w: %v", ErrNoGradle, err)
	}
	res.Success = true
	return res, nil
}

// wrapper returns the path of the platform's wrapper script in dir, or ""
// when there is none.
func (b *Builder) wrapper(dir string) string {
	script := "gradlew"
	if b.goos == "windows" {
		script = "gradlew.bat"
	}
	path := filepath.Join(dir, script)
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return ""
	}
	return path
}

func ensureWrapperProperties(root string) error {
	dir := filepath.Join(root, "gradle", "wrapper")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("wrapper dir: %w", err)
	}
	path := filepath.Join(dir, "gradle-wrapper.properties")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(wrapperProperties), 0o644); err != nil {
		return fmt.Errorf("wrapper properties: %w", err)
	}
	return nil
}

// copyTree copies src into dst. An existing build.gradle.kts in dst is
// kept; every other file is overwritten.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("copy %s: %w", src, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if d.Name() == "build.gradle.kts" {
			if _, err := os.Stat(target); err == nil {
				slog.Debug("keeping existing build file", "path", target)
				return nil
			}
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, fi.ModTime(), fi.ModTime())
}
