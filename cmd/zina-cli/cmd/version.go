package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden in release builds:
//
//	go build -ldflags "-X github.com/nfrund/zina/cmd/zina-cli/cmd.version=1.2.0"
var version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the zina-cli release",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "zina-cli v%s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
