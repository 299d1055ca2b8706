package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
)

// NewPrefixesCommand creates the prefixes command.
func NewPrefixesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefixes",
		Short: "List the prefixes expanded into every query",
		Long: `List the well-known namespace prefixes the gateway prepends to every
query. A PREFIX declaration inside a query shadows the ambient one.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefixes(rootOpts, cmd)
		},
	}

	return cmd
}

func runPrefixes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg := prefix.Default()
	if formatter.Format == "json" {
		payload := make(map[string]string)
		for _, p := range reg.Prefixes() {
			ns, _ := reg.Lookup(p)
			payload[p] = ns
		}
		return formatter.Success(payload)
	}

	for _, p := range reg.Prefixes() {
		ns, _ := reg.Lookup(p)
		fmt.Fprintf(formatter.Writer, "PREFIX %s: <%s>\n", p, ns)
	}
	return nil
}
