package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/zina/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "zina-cli",
	Short: "Zina storefront tooling",
	Long: `zina-cli bundles the development tools of the Zina storefront.

Available commands:
  devapi           Run the development REST API the storefront talks to
  promo            Check promotion rules against a product seed
  routes           Print the storefront's HTTP routes
  list-services    List the keys modules register in the service registry

Use "zina-cli [command] --help" for more information about a command.`,
	PersistentPreRun: func(*cobra.Command, []string) {
		logging.New()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
