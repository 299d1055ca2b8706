// Command dannet-gateway is a safety-constrained SPARQL endpoint for the
// DanNet wordnet.
package main

import (
	"fmt"
	"os"

	"github.com/kuhumcst/DanNet-sub001/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
