// Package cli implements the nearlink command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nearlink",
	Short: "nearlink — proximity peer registry",
	Long: `nearlink is the registry server behind proximity chat clients.
Peers register a profile and a geolocation over HTTP, then query for
nearby peers to open direct connections with.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
