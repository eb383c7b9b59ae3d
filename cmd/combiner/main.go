// Command combiner is the Pack Combiner CLI: it runs the ingestion and
// resolution pipeline over a working directory of packs and writes the
// combined result to its output tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combiner",
		Short: "Combine multiple Cobblemon resource/data packs into one",
		Long: `combiner ingests every pack archive or directory found in a working
directory, resolves conflicting entities under the CHOOSE or MERGE policy,
and exports the result as a single combined pack.`,
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newSettingsCommand())
	cmd.AddCommand(newLoadOrderCommand())
	return cmd
}
