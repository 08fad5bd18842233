package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// mediaPrepareCmd represents the media.prepare command
var mediaPrepareCmd = &cobra.Command{
	Use:   "media.prepare",
	Short: "Resize and rename recipe folder images",
	Long: `Resizes every image under each recipe folder to the target width
(aspect ratio preserved) and renames it <folder>_<n>.jpg. Originals are
removed after the resized copy is written. With --normalize the folder's
video is re-muxed to a faststart mp4.`,
	Example: `  # Prepare all recipe images at the default width
  garnish media.prepare --root ./recipes

  # Prepare at a custom width and normalize recipe videos
  garnish media.prepare --root ./recipes --width 1080 --normalize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		width, _ := cmd.Flags().GetInt("width")
		normalize, _ := cmd.Flags().GetBool("normalize")
		if width == 0 {
			width = config.ImageWidth
		}

		app := internal.NewApp(config)
		return app.PrepareMedia(cmd.Context(), root, width, normalize)
	},
}

func init() {
	mediaPrepareCmd.Flags().String("root", "", "directory holding one folder per recipe (required)")
	mediaPrepareCmd.Flags().Int("width", 0, "target image width in pixels (default from config)")
	mediaPrepareCmd.Flags().Bool("normalize", false, "re-mux recipe videos to faststart mp4")
	_ = mediaPrepareCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(mediaPrepareCmd)
}
