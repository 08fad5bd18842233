package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// productsExportCmd represents the products.export command
var productsExportCmd = &cobra.Command{
	Use:   "products.export",
	Short: "Export the master price list workbook to a Shopify product CSV",
	Example: `  # Export using a previous Shopify export as the column template
  garnish products.export --xlsx prices.xlsx --template export.csv --out products.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		templatePath, _ := cmd.Flags().GetString("template")
		outPath, _ := cmd.Flags().GetString("out")

		app := internal.NewApp(config)
		return app.ExportProducts(xlsxPath, templatePath, outPath)
	},
}

func init() {
	productsExportCmd.Flags().String("xlsx", "", "master price list workbook (required)")
	productsExportCmd.Flags().String("template", "", "Shopify product export CSV used as the column template (required)")
	productsExportCmd.Flags().String("out", "products.csv", "output CSV path")
	_ = productsExportCmd.MarkFlagRequired("xlsx")
	_ = productsExportCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(productsExportCmd)
}
