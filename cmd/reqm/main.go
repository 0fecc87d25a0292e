// Command reqm compiles, completes and inspects requirement rewrite systems.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/reqm/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reqm: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
