package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nfrund/zina/internal/config"
	"github.com/nfrund/zina/internal/server"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the storefront's HTTP routes",
	Long: `Builds the storefront from the current configuration, boots its modules
without listening and prints every registered route.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		s, err := server.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if err := s.Boot(cmd.Context()); err != nil {
			return err
		}
		defer s.Shutdown(cmd.Context())

		routes := s.Routes()
		sort.Strings(routes)
		for _, r := range routes {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
