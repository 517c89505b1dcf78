// Package logging configures the process-wide slog logger. Logs always go
// to stderr (or the writer given to SetOutput) so reports on stdout stay
// machine-readable.
package logging

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	output io.Writer = os.Stderr
	format           = FormatAuto
)

func init() {
	// Enable verbose logging if the environment asks for it; --verbose
	// overrides this through SetVerbose.
	if os.Getenv("BUILDEVAL_VERBOSE") == "1" {
		level.Set(slog.LevelDebug)
	}
	install()
}

// Setup selects the handler format and verbosity and installs the result
// as the slog default.
func Setup(verbose bool, logFormat string) {
	mu.Lock()
	defer mu.Unlock()
	if logFormat != "" {
		format = strings.ToLower(logFormat)
	}
	if verbose {
		level.Set(slog.LevelDebug)
	}
	install()
}

// SetVerbose enables or disables debug logging at runtime.
func SetVerbose(enabled bool) {
	if enabled {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// Verbose reports whether debug logging is enabled.
func Verbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput redirects log output (useful for testing).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	install()
}

func install() {
	slog.SetDefault(slog.New(newHandler(output, format)))
}

func newHandler(w io.Writer, f string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatText:
		return slog.NewTextHandler(w, opts)
	}
	if isTerminal(w) {
		return tint.NewHandler(w, &tint.Options{
			Level:   level,
			NoColor: runtime.GOOS == "windows",
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		})
	}
	return slog.NewTextHandler(w, opts)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
