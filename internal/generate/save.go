package generate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Reset removes dir and creates it again empty.
func Reset(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("reset %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("reset %s: %w", dir, err)
	}
	return nil
}

// Save recreates dir and writes every artifact below it.
func Save(dir string, a Artifacts) error {
	if err := Reset(dir); err != nil {
		return err
	}
	for _, f := range a.Files() {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("save %s: %w", f.Path, err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("save %s: %w", f.Path, err)
		}
	}
	return nil
}
