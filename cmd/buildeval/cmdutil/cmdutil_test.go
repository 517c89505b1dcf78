package cmdutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1homsi/buildeval/internal/logging"
)

func TestBindAndConfig(t *testing.T) {
	t.Setenv("BUILDEVAL_GOLDEN_ROOT", "")
	t.Setenv("BUILDEVAL_GENERATED_ROOT", "")

	path := filepath.Join(t.TempDir(), "buildeval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("golden_root: from-file\ngenerated_root: out-file\n"), 0o600))

	var o Options
	root := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	o.Bind(root)
	root.SetArgs([]string{"--config", path, "--generated-root", "out-flag"})
	require.NoError(t, root.Execute())

	cfg, err := o.Config()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GoldenRoot)
	assert.Equal(t, "out-flag", cfg.GeneratedRoot)
}

func TestSetupRejectsUnknownFormat(t *testing.T) {
	o := Options{LogFormat: "xml"}
	assert.Error(t, o.Setup())
}

func TestSetupJSON(t *testing.T) {
	t.Cleanup(func() { logging.Setup(false, logging.FormatAuto) })
	o := Options{LogFormat: logging.FormatJSON}
	assert.NoError(t, o.Setup())
}
