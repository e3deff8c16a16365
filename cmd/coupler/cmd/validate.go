package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/esmlab/coupler/coupling"
	"github.com/esmlab/coupler/exchange"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config]",
	Short: "Validate a run configuration",
	Long: `Validate loads a YAML run configuration, checks it, and builds the ` +
		`exchange registry it declares, reporting every transfer's history ` +
		`depth. With no argument the COUPLER_CONFIG environment variable ` +
		`names the configuration.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SilenceUsage = true

		path := os.Getenv("COUPLER_CONFIG")
		if len(args) == 1 {
			path = args[0]
		}

		if path == "" {
			fmt.Fprintln(os.Stderr,
				"no configuration given and COUPLER_CONFIG is not set")
			os.Exit(1)
		}

		if validateConfig(path) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(path string) bool {
	cfg, err := coupling.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return true
	}

	registry, err := exchange.NewRegistry(cfg.RunLength, cfg.TransferSpecs())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return true
	}

	fmt.Printf("configuration %s is valid\n", path)

	for _, name := range registry.Transfers() {
		t, _ := registry.Transfer(name)
		fmt.Printf("  transfer %s: method %v, history %d\n",
			name, t.Method(), t.History())
	}

	return false
}
