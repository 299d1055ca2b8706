package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuhumcst/DanNet-sub001/internal/gateway"
	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
	"github.com/kuhumcst/DanNet-sub001/internal/store"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "query [sparql]",
		Short: "Execute a read query against the triple store",
		Long: `Execute a SPARQL read query (SELECT, ASK, CONSTRUCT, or DESCRIBE).

The query passes through the full gateway pipeline: length gate, prefix
expansion, read-only validation, result bounding, and deadline-scoped
execution. Mutations are rejected. Pass the query as an argument, via
--file, or as "-" to read standard input.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readQueryText(cmd, args, fromFile)
			if err != nil {
				return err
			}
			return runQuery(rootOpts, text, cmd)
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read the query from a file")
	return cmd
}

// readQueryText resolves the query text from the argument, --file, or stdin.
func readQueryText(cmd *cobra.Command, args []string, fromFile string) (string, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "read query file", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", NewExitError(ExitCommandError, "no query given: pass it as an argument, via --file, or as \"-\" for stdin")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", WrapExitError(ExitCommandError, "read query from stdin", err)
		}
		return string(data), nil
	}
	return args[0], nil
}

func runQuery(opts *RootOptions, text string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}

	s, err := store.OpenReadOnly(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer s.Close()

	exec, err := gateway.NewExecutor(s, cfg.GatewayLimits(), prefix.Default(), queryLogger(opts, cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "create executor", err)
	}

	resp, err := exec.Execute(cmd.Context(), text)
	if err != nil {
		return outputQueryError(formatter, err)
	}

	formatter.VerboseLog("execution %s finished in %s", resp.ExecutionID, resp.Elapsed)
	if err := formatter.WriteResult(resp.Result); err != nil {
		return WrapExitError(ExitCommandError, "write result", err)
	}
	return nil
}

// queryLogger builds the executor's logger: structured text on stderr in
// verbose mode, silent otherwise.
func queryLogger(opts *RootOptions, errWriter io.Writer) *slog.Logger {
	if !opts.Verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(errWriter, nil))
}

// outputQueryError renders a gateway rejection and maps it to an exit code.
func outputQueryError(formatter *OutputFormatter, err error) error {
	code := gateway.CodeOf(err)
	if code == "" {
		_ = formatter.Error("UNKNOWN", err.Error())
		return WrapExitError(ExitQueryError, "query failed", err)
	}

	_ = formatter.Error(string(code), err.Error())
	if code == gateway.ErrCodeEngineFailure {
		return WrapExitError(ExitCommandError, "query failed", err)
	}
	return WrapExitError(ExitQueryError, fmt.Sprintf("query rejected (%s)", code), err)
}
