package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// collectionsUpdateCmd represents the collections.update command
var collectionsUpdateCmd = &cobra.Command{
	Use:   "collections.update",
	Short: "Keep a collection in sync with the price list products",
	Long: `Matches shop products against the product names in the price list
workbook and adds them to the named collection, creating it if needed.
Products already in the collection are not re-added.`,
	Example: `  # Sync the main garnish collection
  garnish collections.update --title "Dehydrated Garnishes" --xlsx prices.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")

		app := internal.NewApp(config)
		return app.SyncCollection(cmd.Context(), title, xlsxPath)
	},
}

func init() {
	collectionsUpdateCmd.Flags().String("title", "", "collection title (required)")
	collectionsUpdateCmd.Flags().String("xlsx", "", "master price list workbook (required)")
	_ = collectionsUpdateCmd.MarkFlagRequired("title")
	_ = collectionsUpdateCmd.MarkFlagRequired("xlsx")

	rootCmd.AddCommand(collectionsUpdateCmd)
}
