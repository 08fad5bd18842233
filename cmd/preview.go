package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// recipesPreviewCmd represents the recipes.preview command
var recipesPreviewCmd = &cobra.Command{
	Use:   "recipes.preview <folder or handle>",
	Short: "Render a published recipe in the terminal",
	Example: `  # Preview a recipe by folder
  garnish recipes.preview ./recipes/old_fashioned

  # Preview by handle and copy the article HTML
  garnish recipes.preview old_fashioned --copy-html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		copyHTML, _ := cmd.Flags().GetBool("copy-html")

		app := internal.NewApp(config)
		return app.PreviewRecipe(cmd.Context(), args[0], copyHTML)
	},
}

func init() {
	recipesPreviewCmd.Flags().Bool("copy-html", false, "copy the generated article HTML to the clipboard")

	rootCmd.AddCommand(recipesPreviewCmd)
}
