// Command drumcore is the CLI entry point: run the engine headless or
// monitored, load a kit directory, and inspect saved pattern banks.
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
	root := &cobra.Command{
		Use:   "drumcore",
		Short: "A two-core embedded drum machine, ported to a desktop Go process",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newLoadKitCmd())
	root.AddCommand(newBankCmd())
	return root
}
