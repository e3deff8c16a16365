// Package cmd provides the command-line interface for the coupler.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "coupler",
	Short: "Coupler CLI inspects and validates multi-rate coupling setups.",
	Long: `Coupler CLI can perform common tasks related to setting up coupled ` +
		`runs: computing the weight schedule between two component rates ` +
		`(schedule) and validating a run configuration (validate).`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env next to the working directory may carry defaults such as
	// COUPLER_CONFIG.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
