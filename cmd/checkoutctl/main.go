// Command checkoutctl validates checkout input and polls payment status
// from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

// errNotValid makes the process exit with status 2 after printing a result
var errNotValid = errors.New("input is not valid")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errNotValid) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "checkoutctl",
		Short:         "Validate checkout input and poll payment status",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("output", "o", formatText, "Output format (text, json, yaml)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(payloadCmd())
	rootCmd.AddCommand(challengeCmd())
	rootCmd.AddCommand(pollCmd())

	return rootCmd
}
