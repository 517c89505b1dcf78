// Package cmdutil holds the flags and set-up shared by every buildeval
// subcommand.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1homsi/buildeval/internal/config"
	"github.com/1homsi/buildeval/internal/logging"
)

// Options are the persistent root flags.
type Options struct {
	ConfigPath    string
	GoldenRoot    string
	GeneratedRoot string
	Verbose       bool
	LogFormat     string
}

// Bind registers the persistent flags on root.
func (o *Options) Bind(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVarP(&o.ConfigPath, "config", "c", "", "YAML config file")
	f.StringVar(&o.GoldenRoot, "golden-root", "", "golden dataset root (overrides config)")
	f.StringVar(&o.GeneratedRoot, "generated-root", "", "generated artifacts root (overrides config)")
	f.BoolVarP(&o.Verbose, "verbose", "v", false, "enable debug logging")
	f.StringVar(&o.LogFormat, "log-format", logging.FormatAuto, "log format: auto, text or json")
}

// Setup installs the logger selected by the flags.
func (o *Options) Setup() error {
	switch o.LogFormat {
	case logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown --log-format %q", o.LogFormat)
	}
	logging.Setup(o.Verbose, o.LogFormat)
	return nil
}

// Config loads the configuration and applies the root flag overrides.
func (o *Options) Config() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.GoldenRoot != "" {
		cfg.GoldenRoot = o.GoldenRoot
	}
	if o.GeneratedRoot != "" {
		cfg.GeneratedRoot = o.GeneratedRoot
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
