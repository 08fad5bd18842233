package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// variantsUpdateCmd represents the variants.update command
var variantsUpdateCmd = &cobra.Command{
	Use:   "variants.update",
	Short: "Reorder product variants and sync their metafields",
	Long: `Walks every product in the shop. Positions are reordered to the fixed
size order (Pouch, Small Jar, Large Jar, Small Bulk, Large Bulk);
metafields (custom.quantity and custom.price_per_piece) come from the
price list workbook passed via --xlsx.`,
	Example: `  # Only fix variant order
  garnish variants.update --what positions

  # Sync quantity and price-per-piece metafields from the workbook
  garnish variants.update --what metafields --xlsx prices.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		what, _ := cmd.Flags().GetString("what")
		switch what {
		case "positions", "metafields", "all":
		default:
			return fmt.Errorf("invalid --what %q (valid: positions, metafields, all)", what)
		}
		xlsxPath, _ := cmd.Flags().GetString("xlsx")

		app := internal.NewApp(config)
		return app.UpdateVariants(cmd.Context(), what, xlsxPath)
	},
}

func init() {
	variantsUpdateCmd.Flags().String("what", "all", "what to update: positions, metafields, or all")
	variantsUpdateCmd.Flags().String("xlsx", "", "master price list workbook (source of metafield data)")

	rootCmd.AddCommand(variantsUpdateCmd)
}
