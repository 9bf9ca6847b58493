package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/zina/internal/devapi"
	"github.com/nfrund/zina/internal/promo"
)

var promoSeed string

var promoCmd = &cobra.Command{
	Use:   "promo [script]",
	Short: "Check promotion rules against a product seed",
	Long: `Compiles a promotion script (the built-in rules when none is given) and
prints the badge and price it assigns to every product in the seed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		script := ""
		if len(args) == 1 {
			script = args[0]
		}
		engine, err := promo.New(fs, script)
		if err != nil {
			return err
		}
		defer engine.Close()

		seed, err := devapi.LoadSeed(fs, promoSeed)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tBADGE")
		fmt.Fprintln(w, "--\t----\t-----\t-----")
		for _, p := range engine.Apply(cmd.Context(), seed.Products) {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.EffectivePrice(), p.Badge)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(promoCmd)
	promoCmd.Flags().StringVar(&promoSeed, "seed", "", "YAML seed file (default: the bundled catalog)")
}
