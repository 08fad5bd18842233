package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// recipesPublishCmd represents the recipes.publish command
var recipesPublishCmd = &cobra.Command{
	Use:   "recipes.publish",
	Short: "Transcribe recipe videos and publish recipe metaobjects",
	Long: `For every folder under --root: prepare the folder's images, transcribe
the recipe video into structured content, upload up to three images, and
upsert the recipe metaobject. Folders are processed independently; a
failing recipe is reported and skipped.`,
	Example: `  # Publish every recipe folder
  garnish recipes.publish --root ./recipes

  # Re-upload images without paying for transcription again
  garnish recipes.publish --root ./recipes --skip-transcribe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleModelFlag(cmd, config); err != nil {
			return err
		}

		root, _ := cmd.Flags().GetString("root")
		skipTranscribe, _ := cmd.Flags().GetBool("skip-transcribe")
		width, _ := cmd.Flags().GetInt("width")
		if width == 0 {
			width = config.ImageWidth
		}

		app := internal.NewApp(config)
		return app.PublishRecipes(cmd.Context(), root, skipTranscribe, width)
	},
}

func init() {
	recipesPublishCmd.Flags().String("root", "", "directory holding one folder per recipe (required)")
	recipesPublishCmd.Flags().Bool("skip-transcribe", false, "skip transcription, only upload images and upsert")
	recipesPublishCmd.Flags().Int("width", 0, "image width in pixels (default from config)")
	internal.AddModelFlag(recipesPublishCmd)
	_ = recipesPublishCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(recipesPublishCmd)
}
