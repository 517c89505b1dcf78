package generate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrIncomplete means the response lacks a required artifact section.
var ErrIncomplete = errors.New("incomplete generation")

// Relative paths of the generated artifacts.
const (
	RootDescriptor     = "build.gradle.kts"
	ModuleDescriptor   = "composeApp/build.gradle.kts"
	SettingsDescriptor = "settings.gradle.kts"
	WrapperScript      = "gradlew.bat"
)

// Artifacts is one complete generation. Wrapper is optional.
type Artifacts struct {
	Root     string
	Module   string
	Settings string
	Wrapper  string
}

type File struct {
	Path    string
	Content string
}

// Files lists the artifacts with their output paths. The wrapper script is
// only included when it was generated.
func (a Artifacts) Files() []File {
	files := []File{
		{Path: RootDescriptor, Content: a.Root},
		{Path: ModuleDescriptor, Content: a.Module},
		{Path: SettingsDescriptor, Content: a.Settings},
	}
	if a.Wrapper != "" {
		files = append(files, File{Path: WrapperScript, Content: a.Wrapper})
	}
	return files
}

// Blank lists the required artifacts whose content is only whitespace.
func (a Artifacts) Blank() []string {
	var out []string
	for _, f := range a.Files()[:3] {
		if strings.TrimSpace(f.Content) == "" {
			out = append(out, f.Path)
		}
	}
	return out
}

// ParseResponse extracts the artifact sections from a model response. A
// section runs from its start marker to its end marker, or to the next
// occurrence of the start marker, or to the end of the text, whichever
// comes first. Content is trimmed. A missing start marker for the root,
// module or settings section is an ErrIncomplete naming every missing
// section.
func ParseResponse(text string) (Artifacts, error) {
	for _, m := range Markers {
		slog.Debug("response marker", "marker", m, "found", strings.Contains(text, m))
	}

	var (
		a       Artifacts
		missing []string
		ok      bool
	)
	if a.Root, ok = section(text, RootStart, RootEnd); !ok {
		missing = append(missing, RootDescriptor)
	}
	if a.Module, ok = section(text, ModuleStart, ModuleEnd); !ok {
		missing = append(missing, ModuleDescriptor)
	}
	if a.Settings, ok = section(text, SettingsStart, SettingsEnd); !ok {
		missing = append(missing, SettingsDescriptor)
	}
	a.Wrapper, _ = section(text, WrapperStart, WrapperEnd)

	if len(missing) > 0 {
		return a, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return a, nil
}

func section(text, start, end string) (string, bool) {
	_, rest, found := strings.Cut(text, start)
	if !found {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, start)
	rest, _, _ = strings.Cut(rest, end)
	return strings.TrimSpace(rest), true
}
