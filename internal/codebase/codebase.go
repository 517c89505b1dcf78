// Package codebase flattens a source tree into the single text block that
// is handed to the generator.
package codebase

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrEmpty is returned when the tree holds no readable text file.
var ErrEmpty = errors.New("no text files found")

var (
	ignoredDirs = map[string]bool{
		"build":   true,
		".gradle": true,
		".idea":   true,
		"gradle":  true,
	}
	ignoredExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".jar", ".zip", ".bin"}
)

// File is one text file of the tree. Path is slash-separated and relative
// to the root.
type File struct {
	Path    string
	Content string
}

// Collect walks root in lexical order and returns every text file outside
// the build and IDE directories. Files that are not valid UTF-8 are
// skipped with a warning.
func Collect(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ignoredFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			slog.Warn("skipped non-text file", "path", rel)
			return nil
		}
		files = append(files, File{Path: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Flatten joins every file collected under root as
//
//	// --- FILE: <path> ---
//
//	<content>
//
// with a blank line between files.
func Flatten(root string) (string, error) {
	files, err := Collect(root)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%s: %w", root, ErrEmpty)
	}
	slog.Info("collected source files", "root", root, "files", len(files))
	return Join(files), nil
}

func Join(files []File) string {
	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = fmt.Sprintf("// --- FILE: %s ---\n\n%s", f.Path, f.Content)
	}
	return strings.Join(parts, "\n\n")
}

func ignoredFile(name string) bool {
	for _, ext := range ignoredExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
