// Package cli implements the dannet-gateway command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuhumcst/DanNet-sub001/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // optional YAML configuration file
	StorePath  string // overrides the configured store path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gateway CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dannet-gateway",
		Short: "DanNet query gateway",
		Long: "A safety-constrained SPARQL endpoint for the DanNet wordnet.\n\n" +
			"Untrusted queries are length-gated, parsed, checked against the\n" +
			"read-only policy, result-bounded, and executed under a deadline\n" +
			"inside a scoped read transaction.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the gateway configuration file")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "path to the triple store (overrides the configuration)")

	// Add subcommands
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewPrefixesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// resolveConfigNoStore loads the configuration for commands that never
// open the store.
func resolveConfigNoStore(opts *RootOptions) (config.Config, error) {
	if opts.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(opts.ConfigPath)
}

// resolveConfig merges the configuration file, defaults, and flag
// overrides into the effective configuration.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
	if cfg.Store.Path == "" {
		return config.Config{}, fmt.Errorf("no store path: set store.path in the configuration or pass --store")
	}
	return cfg, nil
}
