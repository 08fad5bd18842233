package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dehy/garnish/internal"
)

// youtubeUploadCmd represents the youtube.upload command
var youtubeUploadCmd = &cobra.Command{
	Use:   "youtube.upload",
	Short: "Upload recipe videos to YouTube and sync watch URLs",
	Long: `Uploads the video in each recipe folder to YouTube (skipping videos
whose title already exists on the channel) and writes the watch URL back
into the recipe metaobject's video_url field.`,
	Example: `  # Upload all recipe videos
  garnish youtube.upload --root ./recipes --client-secrets client_secret.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		secrets, _ := cmd.Flags().GetString("client-secrets")

		app := internal.NewApp(config)
		return app.UploadYouTube(cmd.Context(), root, secrets)
	},
}

func init() {
	youtubeUploadCmd.Flags().String("root", "", "directory holding one folder per recipe (required)")
	youtubeUploadCmd.Flags().String("client-secrets", "", "OAuth client secrets file (default from config)")
	_ = youtubeUploadCmd.MarkFlagRequired("root")

	rootCmd.AddCommand(youtubeUploadCmd)
}
