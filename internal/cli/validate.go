package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kuhumcst/DanNet-sub001/internal/gateway"
	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// ValidationResult holds the outcome of validating one query.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Form       string   `json:"form,omitempty"`       // SELECT, ASK, CONSTRUCT, DESCRIBE
	Projection []string `json:"projection,omitempty"` // SELECT variables
	Limit      *int64   `json:"limit,omitempty"`      // effective limit after bounding
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <sparql>",
		Short: "Validate a query without executing it",
		Long: `Run a query through the gateway's validation pipeline without touching
the store: length gate, prefix expansion, parsing, read-only policy, and
result bounding. Reports the query form and the effective limit, or the
precise rejection.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateQuery(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateQuery(opts *RootOptions, text string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Validation needs no store; limits come from the configuration file
	// when one is given, defaults otherwise.
	limits := gateway.DefaultLimits()
	if opts.ConfigPath != "" {
		cfg, err := resolveConfigNoStore(opts)
		if err != nil {
			return WrapExitError(ExitCommandError, "configuration", err)
		}
		limits = cfg.GatewayLimits()
	}

	validator := gateway.NewValidator(limits, prefix.Default())
	q, err := validator.Validate(text)
	if err != nil {
		code := gateway.CodeOf(err)
		_ = formatter.Error(string(code), err.Error())
		return WrapExitError(ExitQueryError, fmt.Sprintf("query rejected (%s)", code), err)
	}

	if q.Kind == queryir.KindSelect {
		gateway.Bound(q, limits.MaxResults)
	}

	result := ValidationResult{
		Valid: true,
		Form:  q.Kind.String(),
		Limit: q.Limit,
	}
	if q.Kind == queryir.KindSelect {
		result.Projection = q.ProjectedVars()
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "valid %s query\n", result.Form)
	if len(result.Projection) > 0 {
		fmt.Fprintf(formatter.Writer, "projection: ?%s\n", strings.Join(result.Projection, " ?"))
	}
	if result.Limit != nil {
		fmt.Fprintf(formatter.Writer, "effective limit: %d\n", *result.Limit)
	}
	return nil
}
