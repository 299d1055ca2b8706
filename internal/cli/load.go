package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuhumcst/DanNet-sub001/internal/store"
)

// LoadSummary holds the result of an import.
type LoadSummary struct {
	File       string `json:"file"`
	Statements int    `json:"statements"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <ntriples-file>",
		Short: "Import N-Triples data into the triple store",
		Long: `Import an N-Triples file into the store, creating the database if it
does not exist yet. The import runs in a single transaction: a malformed
line aborts the whole import and leaves the store unchanged.

This is the only command that opens the store writable; the query
pipeline never does.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLoad(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}

	f, err := os.Open(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "open input", err)
	}
	defer f.Close()

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer s.Close()

	formatter.VerboseLog("importing %s into %s", file, cfg.Store.Path)
	count, err := s.ImportNTriples(cmd.Context(), f)
	if err != nil {
		_ = formatter.Error("IMPORT_FAILED", err.Error())
		return WrapExitError(ExitQueryError, "import failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(LoadSummary{File: file, Statements: count})
	}
	fmt.Fprintf(formatter.Writer, "imported %d statement(s)\n", count)
	return nil
}
